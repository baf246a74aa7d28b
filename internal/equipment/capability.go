package equipment

import (
	"context"
	"fmt"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// Equippable is the per-category equip capability. One implementation per
// equippable category keeps category behavior out of conditional chains:
// adding a category means adding an implementation, not another branch.
type Equippable interface {
	Category() domain.Category

	// Validate rejects the equip before any state changes.
	Validate(user *domain.User, item *domain.CatalogItem) error

	// Equip mutates the slot inside the transaction and returns the
	// previously equipped catalog item id, if any, so role side effects
	// can be enqueued for it.
	Equip(ctx context.Context, tx repository.EconomyTx, user *domain.User, item *domain.CatalogItem) (previous *int, err error)

	// Unequip clears the slot and returns the catalog item id that was
	// equipped, if any.
	Unequip(ctx context.Context, tx repository.EconomyTx, user *domain.User) (previous *int, err error)

	// Equipped returns the catalog item id currently in the slot, or nil.
	Equipped(user *domain.User) *int

	// RoleBound reports whether this category carries external role
	// side effects.
	RoleBound() bool
}

// slotCapability is the shared implementation for categories backed by a
// single per-user slot pointer.
type slotCapability struct {
	category  domain.Category
	roleBound bool
	get       func(*domain.User) *int
	set       func(*domain.User, *int)
}

func (c *slotCapability) Category() domain.Category    { return c.category }
func (c *slotCapability) RoleBound() bool              { return c.roleBound }
func (c *slotCapability) Equipped(u *domain.User) *int { return c.get(u) }

func (c *slotCapability) Validate(user *domain.User, item *domain.CatalogItem) error {
	if item.Category != c.category {
		return fmt.Errorf("%w: %s is %s", domain.ErrItemNotEquippable, item.InternalName, item.Category)
	}
	return nil
}

func (c *slotCapability) Equip(ctx context.Context, tx repository.EconomyTx, user *domain.User, item *domain.CatalogItem) (*int, error) {
	previous := c.get(user)
	id := item.ID
	c.set(user, &id)
	if err := tx.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update equipped slot: %w", err)
	}
	return previous, nil
}

func (c *slotCapability) Unequip(ctx context.Context, tx repository.EconomyTx, user *domain.User) (*int, error) {
	previous := c.get(user)
	if previous == nil {
		return nil, nil
	}
	c.set(user, nil)
	if err := tx.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to clear equipped slot: %w", err)
	}
	return previous, nil
}

// rodPartCapability attaches a rod part to the currently equipped rod
// instance. Parts live on the rod instance, not on a user slot, and carry
// no external role.
type rodPartCapability struct{}

func (c *rodPartCapability) Category() domain.Category    { return domain.CategoryRodPart }
func (c *rodPartCapability) RoleBound() bool              { return false }
func (c *rodPartCapability) Equipped(u *domain.User) *int { return nil }

func (c *rodPartCapability) Validate(user *domain.User, item *domain.CatalogItem) error {
	if item.Category != domain.CategoryRodPart {
		return fmt.Errorf("%w: %s is %s", domain.ErrItemNotEquippable, item.InternalName, item.Category)
	}
	if user.EquippedRodID == nil {
		return fmt.Errorf("%w: no rod equipped to attach %s to", domain.ErrItemNotEquippable, item.InternalName)
	}
	return nil
}

func (c *rodPartCapability) Equip(ctx context.Context, tx repository.EconomyTx, user *domain.User, item *domain.CatalogItem) (*int, error) {
	rod, part, err := c.resolve(ctx, tx, user, item.ID)
	if err != nil {
		return nil, err
	}
	rod.EquippedPartID = &part.ID
	if err := tx.UpdateInstance(ctx, rod); err != nil {
		return nil, fmt.Errorf("failed to attach rod part: %w", err)
	}
	return nil, nil
}

func (c *rodPartCapability) Unequip(ctx context.Context, tx repository.EconomyTx, user *domain.User) (*int, error) {
	if user.EquippedRodID == nil {
		return nil, nil
	}
	rod, err := tx.GetOwnedInstance(ctx, user.ID, *user.EquippedRodID)
	if err != nil {
		return nil, fmt.Errorf("failed to get equipped rod: %w", err)
	}
	if rod == nil || rod.EquippedPartID == nil {
		return nil, nil
	}
	rod.EquippedPartID = nil
	if err := tx.UpdateInstance(ctx, rod); err != nil {
		return nil, fmt.Errorf("failed to detach rod part: %w", err)
	}
	return nil, nil
}

func (c *rodPartCapability) resolve(ctx context.Context, tx repository.EconomyTx, user *domain.User, partItemID int) (rod, part *domain.ItemInstance, err error) {
	rod, err = tx.GetOwnedInstance(ctx, user.ID, *user.EquippedRodID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get equipped rod: %w", err)
	}
	if rod == nil {
		return nil, nil, fmt.Errorf("%w: equipped rod instance missing", domain.ErrItemNotEquippable)
	}
	part, err = tx.GetOwnedInstance(ctx, user.ID, partItemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get rod part: %w", err)
	}
	if part == nil {
		return nil, nil, fmt.Errorf("%w: item %d", domain.ErrItemNotOwned, partItemID)
	}
	return rod, part, nil
}

// capabilities maps each equippable category to its implementation. Case
// and generic items are deliberately absent: they cannot be equipped.
func capabilities() map[domain.Category]Equippable {
	return map[domain.Category]Equippable{
		domain.CategoryColor: &slotCapability{
			category:  domain.CategoryColor,
			roleBound: true,
			get:       func(u *domain.User) *int { return u.EquippedColorID },
			set:       func(u *domain.User, id *int) { u.EquippedColorID = id },
		},
		domain.CategoryRod: &slotCapability{
			category:  domain.CategoryRod,
			roleBound: true,
			get:       func(u *domain.User) *int { return u.EquippedRodID },
			set:       func(u *domain.User, id *int) { u.EquippedRodID = id },
		},
		domain.CategoryBadge: &slotCapability{
			category:  domain.CategoryBadge,
			roleBound: false,
			get:       func(u *domain.User) *int { return u.EquippedBadgeID },
			set:       func(u *domain.User, id *int) { u.EquippedBadgeID = id },
		},
		domain.CategoryRodPart: &rodPartCapability{},
	}
}
