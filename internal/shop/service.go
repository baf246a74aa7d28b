// Package shop implements the purchase transaction flow: precondition
// validation in a fixed order, pessimistic row locking, atomic debit plus
// mint, and an audit entry for every attempt whether it succeeds or not.
package shop

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emberhold/GuildShop_Go/internal/audit"
	"github.com/emberhold/GuildShop_Go/internal/catalog"
	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/inventory"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/metrics"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// PurchaseResult describes a completed purchase
type PurchaseResult struct {
	Item          domain.CatalogItem    `json:"item"`
	Quantity      int                   `json:"quantity"`
	TotalPrice    int                   `json:"total_price"`
	CreditsBefore int                   `json:"credits_before"`
	CreditsAfter  int                   `json:"credits_after"`
	Instances     []domain.ItemInstance `json:"instances"`
}

// Service handles shop purchases
type Service interface {
	// Purchase buys quantity copies of an item for the user. Validation
	// runs in a fixed order so the caller always sees the first failing
	// precondition; stock and balance are re-checked under row locks
	// before any state changes.
	Purchase(ctx context.Context, userID uuid.UUID, itemID, quantity int) (*PurchaseResult, error)
}

type service struct {
	repo    repository.Economy
	ledger  inventory.Ledger
	catalog catalog.Service
	auditor audit.Recorder
	bus     event.Bus
	now     func() time.Time
}

// NewService creates a new shop service
func NewService(repo repository.Economy, ledger inventory.Ledger, cat catalog.Service, auditor audit.Recorder, bus event.Bus) Service {
	return &service{
		repo:    repo,
		ledger:  ledger,
		catalog: cat,
		auditor: auditor,
		bus:     bus,
		now:     time.Now,
	}
}

func (s *service) Purchase(ctx context.Context, userID uuid.UUID, itemID, quantity int) (*PurchaseResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgPurchaseStarted, "user_id", userID, "item_id", itemID, "quantity", quantity)

	user, item, err := s.validate(ctx, userID, itemID, quantity)
	if err != nil {
		s.recordFailure(ctx, userID, itemID, quantity, user, err)
		log.Warn(LogMsgPurchaseRejected, "user_id", userID, "item_id", itemID, "error", err)
		return nil, err
	}

	result, err := s.execute(ctx, user, item, quantity)
	if err != nil {
		s.recordFailure(ctx, userID, itemID, quantity, user, err)
		log.Warn(LogMsgPurchaseRejected, "user_id", userID, "item_id", itemID, "error", err)
		return nil, err
	}

	s.auditor.RecordPurchase(ctx, domain.PurchaseAuditRecord{
		UserID:        userID,
		CatalogItemID: itemID,
		Quantity:      quantity,
		Outcome:       domain.PurchaseOutcomeSuccess,
		CreditsBefore: result.CreditsBefore,
		CreditsAfter:  result.CreditsAfter,
	})
	metrics.PurchasesTotal.WithLabelValues(result.Item.InternalName).Inc()
	metrics.CreditsSpent.Add(float64(result.TotalPrice))

	if err := s.bus.Publish(ctx, event.NewItemPurchasedEvent(userID.String(), itemID, result.Item.DisplayName, quantity, result.Item.Price)); err != nil {
		log.Error(LogMsgEventPublishFail, "error", err, "item_id", itemID)
	}

	log.Info(LogMsgPurchaseCompleted,
		"user_id", userID,
		"item_id", itemID,
		"quantity", quantity,
		"total_price", result.TotalPrice,
		"credits_after", result.CreditsAfter)
	return result, nil
}

// validate runs the purchase preconditions in their fixed order against
// unlocked reads. The transactional phase re-checks anything that can
// change between now and the row locks.
func (s *service) validate(ctx context.Context, userID uuid.UUID, itemID, quantity int) (*domain.User, *domain.CatalogItem, error) {
	if quantity < 1 || quantity > domain.MaxPurchaseQuantity {
		return nil, nil, fmt.Errorf("%w: %d", domain.ErrInvalidQuantity, quantity)
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrUserNotFound
	}

	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return user, nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return user, nil, domain.ErrItemNotFound
	}

	now := s.now()
	if !item.Active || item.IsExpired(now) {
		return user, item, fmt.Errorf("%w: %s", domain.ErrItemNotPurchasable, item.InternalName)
	}
	shown, err := s.catalog.IsShownTo(ctx, userID, itemID, now)
	if err != nil {
		return user, item, fmt.Errorf("failed to resolve shop layout: %w", err)
	}
	if !shown {
		return user, item, fmt.Errorf("%w: %s", domain.ErrItemNotPurchasable, item.InternalName)
	}

	total := item.Price * quantity
	if user.Credits < total {
		return user, item, fmt.Errorf("%w: need %d, have %d", domain.ErrInsufficientCredits, total, user.Credits)
	}

	if item.RequiredRole != nil && !user.HasRole(*item.RequiredRole) {
		return user, item, fmt.Errorf("%w: %s", domain.ErrRoleRequirement, *item.RequiredRole)
	}

	if item.IsCapped() && item.CopiesRemaining() < quantity {
		return user, item, fmt.Errorf("%w: %d remaining", domain.ErrInsufficientStock, item.CopiesRemaining())
	}

	if !item.Category.Stackable() {
		if quantity != 1 {
			return user, item, fmt.Errorf("%w: %s is not stackable", domain.ErrInvalidQuantity, item.InternalName)
		}
		owned, err := s.ledger.Owns(ctx, userID, itemID)
		if err != nil {
			return user, item, fmt.Errorf("failed to check ownership: %w", err)
		}
		if owned {
			return user, item, fmt.Errorf("%w: %s", domain.ErrItemAlreadyOwned, item.InternalName)
		}
	}

	return user, item, nil
}

// execute performs the locked transactional phase. Lock ordering is item
// row before user row; every transaction in this package follows it.
func (s *service) execute(ctx context.Context, user *domain.User, item *domain.CatalogItem, quantity int) (*PurchaseResult, error) {
	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	lockedItem, err := tx.GetItemForUpdate(ctx, item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock item: %w", err)
	}
	if lockedItem == nil {
		return nil, domain.ErrItemNotFound
	}
	if lockedItem.IsCapped() && lockedItem.CopiesRemaining() < quantity {
		return nil, fmt.Errorf("%w: %d remaining", domain.ErrInsufficientStock, lockedItem.CopiesRemaining())
	}

	lockedUser, err := tx.GetUserForUpdate(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if lockedUser == nil {
		return nil, domain.ErrUserNotFound
	}

	// Ownership was checked against an unlocked read; a concurrent
	// purchase by the same user may have minted in the meantime. The
	// user row lock serializes us behind it, so re-check here.
	if !lockedItem.Category.Stackable() {
		count, err := tx.CountOwned(ctx, lockedUser.ID, lockedItem.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check ownership: %w", err)
		}
		if count > 0 {
			return nil, fmt.Errorf("%w: %s", domain.ErrItemAlreadyOwned, lockedItem.InternalName)
		}
	}

	total := lockedItem.Price * quantity
	if lockedUser.Credits < total {
		return nil, fmt.Errorf("%w: need %d, have %d", domain.ErrInsufficientCredits, total, lockedUser.Credits)
	}

	creditsBefore := lockedUser.Credits
	lockedUser.Credits -= total
	if err := tx.UpdateUser(ctx, lockedUser); err != nil {
		return nil, fmt.Errorf("failed to debit credits: %w", err)
	}

	instances, err := s.ledger.Mint(ctx, tx, lockedUser.ID, lockedItem, quantity)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit purchase: %w", err)
	}

	return &PurchaseResult{
		Item:          *lockedItem,
		Quantity:      quantity,
		TotalPrice:    total,
		CreditsBefore: creditsBefore,
		CreditsAfter:  lockedUser.Credits,
		Instances:     instances,
	}, nil
}

func (s *service) recordFailure(ctx context.Context, userID uuid.UUID, itemID, quantity int, user *domain.User, cause error) {
	credits := 0
	if user != nil {
		credits = user.Credits
	}
	s.auditor.RecordPurchase(ctx, domain.PurchaseAuditRecord{
		UserID:        userID,
		CatalogItemID: itemID,
		Quantity:      quantity,
		Outcome:       domain.PurchaseOutcomeFailed,
		FailureReason: cause.Error(),
		CreditsBefore: credits,
		CreditsAfter:  credits,
	})
	metrics.PurchaseFailures.WithLabelValues(failureReason(cause)).Inc()
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidQuantity):
		return ReasonInvalidQuantity
	case errors.Is(err, domain.ErrUserNotFound):
		return ReasonUserNotFound
	case errors.Is(err, domain.ErrItemNotFound):
		return ReasonItemNotFound
	case errors.Is(err, domain.ErrItemNotPurchasable):
		return ReasonNotPurchasable
	case errors.Is(err, domain.ErrInsufficientCredits):
		return ReasonInsufficientCredits
	case errors.Is(err, domain.ErrRoleRequirement):
		return ReasonRoleRequirement
	case errors.Is(err, domain.ErrInsufficientStock):
		return ReasonInsufficientStock
	case errors.Is(err, domain.ErrItemAlreadyOwned):
		return ReasonAlreadyOwned
	default:
		return ReasonInternal
	}
}
