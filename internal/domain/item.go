package domain

import "time"

// Category classifies a catalog item and drives purchase/equip behavior.
type Category string

const (
	CategoryColor   Category = "COLOR"
	CategoryBadge   Category = "BADGE"
	CategoryCase    Category = "CASE"
	CategoryRod     Category = "ROD"
	CategoryRodPart Category = "ROD_PART"
	CategoryGeneric Category = "GENERIC"
)

// Stackable reports whether a user may hold more than one unit of the
// same catalog item in this category.
func (c Category) Stackable() bool {
	switch c {
	case CategoryColor, CategoryBadge, CategoryRod:
		return false
	default:
		return true
	}
}

// HasDurability reports whether instances of this category carry
// durability/experience stats. Items flagged as infinite durability
// on the catalog definition are exempt at mint time.
func (c Category) HasDurability() bool {
	return c == CategoryRod || c == CategoryRodPart
}

// Rarity is the ordered drop tier of an item
type Rarity string

const (
	RarityCommon    Rarity = "COMMON"
	RarityUncommon  Rarity = "UNCOMMON"
	RarityRare      Rarity = "RARE"
	RarityEpic      Rarity = "EPIC"
	RarityLegendary Rarity = "LEGENDARY"
)

// Rank returns the ordinal position of the rarity (COMMON=0 .. LEGENDARY=4).
// Unknown rarities rank as COMMON.
func (r Rarity) Rank() int {
	ranks := map[Rarity]int{
		RarityCommon:    0,
		RarityUncommon:  1,
		RarityRare:      2,
		RarityEpic:      3,
		RarityLegendary: 4,
	}
	if rank, ok := ranks[r]; ok {
		return rank
	}
	return 0
}

// CatalogItem represents one purchasable item definition.
// MaxCopies, when set, caps the total number of instances ever minted;
// CopiesSold counts mints and never decreases.
type CatalogItem struct {
	ID             int        `json:"item_id" db:"item_id"`
	InternalName   string     `json:"internal_name" db:"internal_name"`
	DisplayName    string     `json:"display_name" db:"display_name"`
	Description    string     `json:"description" db:"item_description"`
	Category       Category   `json:"category" db:"category"`
	Price          int        `json:"price" db:"price"`
	Rarity         Rarity     `json:"rarity" db:"rarity"`
	Active         bool       `json:"active" db:"active"`
	ExpiresAt      *time.Time `json:"expires_at,omitempty" db:"expires_at"`
	MaxCopies      *int       `json:"max_copies,omitempty" db:"max_copies"`
	CopiesSold     int        `json:"copies_sold" db:"copies_sold"`
	RequiredRole   *string    `json:"required_role,omitempty" db:"required_role"`
	ExternalRoleID *string    `json:"external_role_id,omitempty" db:"external_role_id"`

	// Gear stats, only meaningful for ROD and ROD_PART
	Durability         *int `json:"durability,omitempty" db:"durability"`
	InfiniteDurability bool `json:"infinite_durability,omitempty" db:"infinite_durability"`
}

// IsCapped reports whether the item has a finite print run.
func (i *CatalogItem) IsCapped() bool {
	return i.MaxCopies != nil
}

// CopiesRemaining returns how many more instances may be minted.
// Uncapped items report -1.
func (i *CatalogItem) CopiesRemaining() int {
	if i.MaxCopies == nil {
		return -1
	}
	remaining := *i.MaxCopies - i.CopiesSold
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired reports whether the item's sale window has closed.
func (i *CatalogItem) IsExpired(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}
