// Package admin implements catalog administration, centrally the cascading
// deletion of a catalog item: drop table cleanup, per-holder refunds,
// unequipping from every slot, role revocation intents and instance
// removal, all in one transaction.
package admin

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/metrics"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// DeletionReport summarizes the effects of a cascading item deletion
type DeletionReport struct {
	ItemID              int   `json:"item_id"`
	DropEntriesRemoved  int64 `json:"drop_entries_removed"`
	PrizeEntriesRemoved int64 `json:"prize_entries_removed"`
	InstancesRemoved    int64 `json:"instances_removed"`
	UsersAffected       int   `json:"users_affected"`
	CreditsRefunded     int   `json:"credits_refunded"`
	SlotsCleared        int64 `json:"slots_cleared"`
}

// Service performs administrative catalog mutations
type Service interface {
	// DeleteItem removes a catalog item and everything hanging off it.
	// Every holder is refunded the original price per copy held.
	DeleteItem(ctx context.Context, itemID int) (*DeletionReport, error)
}

type service struct {
	repo repository.Economy
	bus  event.Bus
}

// NewService creates a new admin service
func NewService(repo repository.Economy, bus event.Bus) Service {
	return &service{repo: repo, bus: bus}
}

func (s *service) DeleteItem(ctx context.Context, itemID int) (*DeletionReport, error) {
	log := logger.FromContext(ctx)

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		log.Warn(LogMsgDeleteRejected, "item_id", itemID, "error", domain.ErrItemNotFound)
		return nil, domain.ErrItemNotFound
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	locked, err := tx.GetItemForUpdate(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}
	if locked == nil {
		return nil, domain.ErrItemNotFound
	}

	report := &DeletionReport{ItemID: itemID}

	if locked.Category == domain.CategoryCase {
		report.DropEntriesRemoved, err = tx.DeleteDropTableByCase(ctx, itemID)
		if err != nil {
			return nil, fmt.Errorf("failed to delete drop table: %w", err)
		}
	}

	// No renormalization of the remaining weights: a case left summing
	// below 100 is rejected at open time instead.
	report.PrizeEntriesRemoved, err = tx.DeleteDropTableByPrize(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove prize entries: %w", err)
	}
	if report.PrizeEntriesRemoved > 0 {
		log.Warn(LogMsgDropWeightsInvalid, "item_id", itemID, "entries_removed", report.PrizeEntriesRemoved)
	}

	if err := s.refundHolders(ctx, tx, locked, report); err != nil {
		return nil, err
	}

	report.SlotsCleared, err = tx.ClearEquippedSlots(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to clear equipped slots: %w", err)
	}
	if _, err := tx.ClearEquippedParts(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to clear equipped parts: %w", err)
	}

	report.InstancesRemoved, err = tx.DeleteInstancesByItem(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete instances: %w", err)
	}
	if err := tx.DeleteItem(ctx, itemID); err != nil {
		return nil, fmt.Errorf("failed to delete item: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit deletion: %w", err)
	}

	metrics.CreditsRefunded.Add(float64(report.CreditsRefunded))
	if err := s.bus.Publish(ctx, event.NewItemDeletedEvent(itemID, int(report.InstancesRemoved), report.CreditsRefunded, report.UsersAffected)); err != nil {
		log.Error(LogMsgEventPublishFail, "error", err, "item_id", itemID)
	}

	log.Info(LogMsgItemDeleted,
		"item_id", itemID,
		"instances_removed", report.InstancesRemoved,
		"users_affected", report.UsersAffected,
		"credits_refunded", report.CreditsRefunded)
	return report, nil
}

// refundHolders credits every owner the original price per copy held and
// queues a role revoke when the item granted one. Owners are processed in
// a stable order.
func (s *service) refundHolders(ctx context.Context, tx repository.EconomyTx, item *domain.CatalogItem, report *DeletionReport) error {
	instances, err := tx.GetInstancesByItem(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("failed to get outstanding instances: %w", err)
	}

	held := make(map[uuid.UUID]int)
	for _, inst := range instances {
		held[inst.OwnerID]++
	}
	owners := make([]uuid.UUID, 0, len(held))
	for owner := range held {
		owners = append(owners, owner)
	}
	sort.Slice(owners, func(i, j int) bool { return owners[i].String() < owners[j].String() })

	for _, owner := range owners {
		user, err := tx.GetUserForUpdate(ctx, owner)
		if err != nil {
			return fmt.Errorf("failed to lock holder %s: %w", owner, err)
		}
		if user == nil {
			continue
		}

		refund := item.Price * held[owner]
		user.Credits += refund
		if err := tx.UpdateUser(ctx, user); err != nil {
			return fmt.Errorf("failed to refund holder %s: %w", owner, err)
		}

		if item.ExternalRoleID != nil {
			if err := tx.EnqueueRoleChange(ctx, owner, *item.ExternalRoleID, domain.RoleChangeRevoke); err != nil {
				return fmt.Errorf("failed to enqueue role revoke: %w", err)
			}
		}

		report.UsersAffected++
		report.CreditsRefunded += refund
	}
	return nil
}
