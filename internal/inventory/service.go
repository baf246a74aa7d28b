package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// Ledger owns the life cycle of item instances. Mint and Consume operate
// inside a caller-held transaction so they commit or roll back with the
// credit mutation they belong to.
type Ledger interface {
	// Mint creates quantity instances of item for owner. For capped items
	// serial numbers are assigned densely from the pre-increment sold
	// counter; the increment itself re-checks the cap so concurrent
	// transactions can never over-mint.
	Mint(ctx context.Context, tx repository.EconomyTx, ownerID uuid.UUID, item *domain.CatalogItem, quantity int) ([]domain.ItemInstance, error)

	// Consume removes exactly one instance of item from the owner and
	// returns it. Returns nil when the owner holds none.
	Consume(ctx context.Context, tx repository.EconomyTx, ownerID uuid.UUID, itemID int) (*domain.ItemInstance, error)

	// Owns reports whether the user holds at least one instance.
	Owns(ctx context.Context, userID uuid.UUID, itemID int) (bool, error)

	GetInstances(ctx context.Context, userID uuid.UUID) ([]domain.ItemInstance, error)
}

type ledger struct {
	repo repository.Economy
	now  func() time.Time
}

// NewLedger creates a new inventory ledger
func NewLedger(repo repository.Economy) Ledger {
	return &ledger{
		repo: repo,
		now:  time.Now,
	}
}

func (l *ledger) Mint(ctx context.Context, tx repository.EconomyTx, ownerID uuid.UUID, item *domain.CatalogItem, quantity int) ([]domain.ItemInstance, error) {
	log := logger.FromContext(ctx)

	if quantity <= 0 {
		return nil, fmt.Errorf("%w: mint quantity %d", domain.ErrInvalidInput, quantity)
	}

	soldBefore, err := tx.IncrementCopiesSold(ctx, item.ID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to increment sold counter: %w", err)
	}

	now := l.now()
	instances := make([]domain.ItemInstance, 0, quantity)
	for i := 0; i < quantity; i++ {
		inst := domain.NewInstance(ownerID, item, now)
		if item.IsCapped() {
			serial := soldBefore + i + 1
			inst.SerialNumber = &serial
		}
		if err := tx.InsertInstance(ctx, &inst); err != nil {
			return nil, fmt.Errorf("failed to insert instance: %w", err)
		}
		instances = append(instances, inst)
	}

	log.Debug("Instances minted", "owner_id", ownerID, "item_id", item.ID, "quantity", quantity, "sold_before", soldBefore)
	return instances, nil
}

func (l *ledger) Consume(ctx context.Context, tx repository.EconomyTx, ownerID uuid.UUID, itemID int) (*domain.ItemInstance, error) {
	inst, err := tx.GetOwnedInstance(ctx, ownerID, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get owned instance: %w", err)
	}
	if inst == nil {
		return nil, nil
	}

	if err := tx.DeleteInstance(ctx, inst.ID); err != nil {
		return nil, fmt.Errorf("failed to delete instance: %w", err)
	}
	return inst, nil
}

func (l *ledger) Owns(ctx context.Context, userID uuid.UUID, itemID int) (bool, error) {
	count, err := l.repo.CountOwned(ctx, userID, itemID)
	if err != nil {
		return false, fmt.Errorf("failed to count owned instances: %w", err)
	}
	return count > 0, nil
}

func (l *ledger) GetInstances(ctx context.Context, userID uuid.UUID) ([]domain.ItemInstance, error) {
	instances, err := l.repo.GetInstances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get instances: %w", err)
	}
	return instances, nil
}
