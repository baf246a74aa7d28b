// Package equipment governs which item is active per category slot for a
// user. External role grants and revokes ride the transactional outbox:
// the slot change commits regardless of whether the external system is
// reachable, and delivery is retried asynchronously.
package equipment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/emberhold/GuildShop_Go/internal/concurrency"
	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/inventory"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/metrics"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// Service is the equipment state machine
type Service interface {
	// Equip makes the item active in its category slot, replacing
	// whatever was equipped there.
	Equip(ctx context.Context, userID uuid.UUID, itemID int) error

	// Unequip clears the slot for a category. Clearing an empty slot is
	// a no-op.
	Unequip(ctx context.Context, userID uuid.UUID, category domain.Category) error

	// UnequipBadge clears the badge slot only if the given badge is the
	// one equipped.
	UnequipBadge(ctx context.Context, userID uuid.UUID, badgeID int) error

	// BatchEquip validates every item up front, then equips them in
	// order. Validation failures abort the whole batch before any state
	// changes; failures after mutation begins are logged per item and
	// the batch continues.
	BatchEquip(ctx context.Context, userID uuid.UUID, itemIDs []int) error
}

type service struct {
	repo         repository.Economy
	ledger       inventory.Ledger
	bus          event.Bus
	locks        *concurrency.LockManager
	capabilities map[domain.Category]Equippable
}

// NewService creates a new equipment service
func NewService(repo repository.Economy, ledger inventory.Ledger, bus event.Bus, locks *concurrency.LockManager) Service {
	return &service{
		repo:         repo,
		ledger:       ledger,
		bus:          bus,
		locks:        locks,
		capabilities: capabilities(),
	}
}

func (s *service) Equip(ctx context.Context, userID uuid.UUID, itemID int) error {
	lock := s.locks.UserLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.equip(ctx, userID, itemID)
}

// equip runs with the per-user lock held, which keeps the pre-transaction
// slot snapshot accurate for role side-effect resolution.
func (s *service) equip(ctx context.Context, userID uuid.UUID, itemID int) error {
	log := logger.FromContext(ctx)

	user, item, capability, err := s.validateEquip(ctx, userID, itemID)
	if err != nil {
		log.Warn(LogMsgEquipRejected, "user_id", userID, "item_id", itemID, "error", err)
		return err
	}

	// Role refs are resolved before the transaction: only the user row
	// is locked inside it, preserving the item-before-user lock order
	// used by purchases.
	displaced, err := s.displacedItem(ctx, capability.Equipped(user), itemID)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	lockedUser, err := tx.GetUserForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}
	if lockedUser == nil {
		return domain.ErrUserNotFound
	}

	if _, err := capability.Equip(ctx, tx, lockedUser, item); err != nil {
		return err
	}

	// Revoke the displaced item's role first, then grant the new one.
	// Both are intents delivered by the outbox, never inline calls.
	if displaced != nil && displaced.ExternalRoleID != nil {
		if err := tx.EnqueueRoleChange(ctx, userID, *displaced.ExternalRoleID, domain.RoleChangeRevoke); err != nil {
			return fmt.Errorf("failed to enqueue role revoke: %w", err)
		}
	}
	if item.ExternalRoleID != nil {
		if err := tx.EnqueueRoleChange(ctx, userID, *item.ExternalRoleID, domain.RoleChangeGrant); err != nil {
			return fmt.Errorf("failed to enqueue role grant: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit equip: %w", err)
	}

	metrics.ItemsEquipped.WithLabelValues(string(item.Category)).Inc()
	if err := s.bus.Publish(ctx, event.NewItemEquippedEvent(event.ItemEquipped, userID.String(), itemID, item.Category)); err != nil {
		log.Error(LogMsgEventPublishFail, "error", err, "item_id", itemID)
	}

	log.Info(LogMsgItemEquipped, "user_id", userID, "item_id", itemID, "category", item.Category)
	return nil
}

func (s *service) Unequip(ctx context.Context, userID uuid.UUID, category domain.Category) error {
	lock := s.locks.UserLock(userID)
	lock.Lock()
	defer lock.Unlock()
	return s.unequip(ctx, userID, category)
}

func (s *service) unequip(ctx context.Context, userID uuid.UUID, category domain.Category) error {
	log := logger.FromContext(ctx)

	capability, ok := s.capabilities[category]
	if !ok {
		return fmt.Errorf("%w: category %s", domain.ErrItemNotEquippable, category)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}

	displaced, err := s.displacedItem(ctx, capability.Equipped(user), 0)
	if err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	lockedUser, err := tx.GetUserForUpdate(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to lock user: %w", err)
	}
	if lockedUser == nil {
		return domain.ErrUserNotFound
	}

	previous, err := capability.Unequip(ctx, tx, lockedUser)
	if err != nil {
		return err
	}
	if previous != nil && displaced != nil && displaced.ExternalRoleID != nil {
		if err := tx.EnqueueRoleChange(ctx, userID, *displaced.ExternalRoleID, domain.RoleChangeRevoke); err != nil {
			return fmt.Errorf("failed to enqueue role revoke: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit unequip: %w", err)
	}

	if previous != nil {
		if err := s.bus.Publish(ctx, event.NewItemEquippedEvent(event.ItemUnequipped, userID.String(), *previous, category)); err != nil {
			log.Error(LogMsgEventPublishFail, "error", err, "category", category)
		}
	}
	log.Info(LogMsgItemUnequipped, "user_id", userID, "category", category)
	return nil
}

func (s *service) UnequipBadge(ctx context.Context, userID uuid.UUID, badgeID int) error {
	lock := s.locks.UserLock(userID)
	lock.Lock()
	defer lock.Unlock()

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.EquippedBadgeID == nil || *user.EquippedBadgeID != badgeID {
		return fmt.Errorf("%w: badge %d", domain.ErrBadgeNotEquipped, badgeID)
	}
	return s.unequip(ctx, userID, domain.CategoryBadge)
}

func (s *service) BatchEquip(ctx context.Context, userID uuid.UUID, itemIDs []int) error {
	log := logger.FromContext(ctx)

	if len(itemIDs) == 0 {
		return fmt.Errorf("%w: empty batch", domain.ErrInvalidInput)
	}

	lock := s.locks.UserLock(userID)
	lock.Lock()
	defer lock.Unlock()

	// Validate the whole batch before touching anything. At most one
	// badge per batch: the badge slot is single-occupancy and a batch
	// equipping two would silently drop one.
	badges := 0
	for _, itemID := range itemIDs {
		_, item, _, err := s.validateEquip(ctx, userID, itemID)
		if err != nil {
			return err
		}
		if item.Category == domain.CategoryBadge {
			badges++
		}
	}
	if badges > 1 {
		return fmt.Errorf("%w: batch contains %d badges", domain.ErrInvalidInput, badges)
	}

	var errs []error
	for _, itemID := range itemIDs {
		if err := s.equip(ctx, userID, itemID); err != nil {
			log.Error(LogMsgBatchItemFailed, "user_id", userID, "item_id", itemID, "error", err)
			errs = append(errs, fmt.Errorf("item %d: %w", itemID, err))
		}
	}
	return errors.Join(errs...)
}

func (s *service) validateEquip(ctx context.Context, userID uuid.UUID, itemID int) (*domain.User, *domain.CatalogItem, Equippable, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, nil, domain.ErrUserNotFound
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, nil, nil, domain.ErrItemNotFound
	}

	capability, ok := s.capabilities[item.Category]
	if !ok {
		return nil, nil, nil, fmt.Errorf("%w: category %s", domain.ErrItemNotEquippable, item.Category)
	}
	if err := capability.Validate(user, item); err != nil {
		return nil, nil, nil, err
	}

	owned, err := s.ledger.Owns(ctx, userID, itemID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to check ownership: %w", err)
	}
	if !owned {
		return nil, nil, nil, fmt.Errorf("%w: item %d", domain.ErrItemNotOwned, itemID)
	}

	return user, item, capability, nil
}

// displacedItem resolves the currently equipped item when it differs from
// the incoming one, so its role revoke can be enqueued.
func (s *service) displacedItem(ctx context.Context, equippedID *int, incomingItemID int) (*domain.CatalogItem, error) {
	if equippedID == nil || *equippedID == incomingItemID {
		return nil, nil
	}
	item, err := s.repo.GetItemByID(ctx, *equippedID)
	if err != nil {
		return nil, fmt.Errorf("failed to get displaced item: %w", err)
	}
	return item, nil
}
