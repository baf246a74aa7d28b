package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemInstance is one concrete unit of a catalog item held by a user.
// SerialNumber is assigned densely at mint time for capped items and is
// unique per catalog item. Durability/Experience are only populated for
// gear categories.
type ItemInstance struct {
	ID            uuid.UUID `json:"instance_id" db:"instance_id"`
	OwnerID       uuid.UUID `json:"owner_id" db:"owner_id"`
	CatalogItemID int       `json:"catalog_item_id" db:"catalog_item_id"`
	SerialNumber  *int      `json:"serial_number,omitempty" db:"serial_number"`

	Durability    *int `json:"durability,omitempty" db:"durability"`
	MaxDurability *int `json:"max_durability,omitempty" db:"max_durability"`
	Experience    int  `json:"experience" db:"experience"`

	// EquippedPartID points at a ROD_PART instance mounted on this rod.
	EquippedPartID *uuid.UUID `json:"equipped_part_id,omitempty" db:"equipped_part_id"`

	AcquiredAt time.Time `json:"acquired_at" db:"acquired_at"`
}

// NewInstance mints an instance of the given item for a user, initializing
// gear stats from the catalog definition. Serial assignment is the caller's
// responsibility (it depends on the pre-increment copies counter).
func NewInstance(owner uuid.UUID, item *CatalogItem, now time.Time) ItemInstance {
	inst := ItemInstance{
		ID:            uuid.New(),
		OwnerID:       owner,
		CatalogItemID: item.ID,
		AcquiredAt:    now,
	}

	if item.Category.HasDurability() && !item.InfiniteDurability && item.Durability != nil {
		d := *item.Durability
		m := *item.Durability
		inst.Durability = &d
		inst.MaxDurability = &m
	}

	return inst
}
