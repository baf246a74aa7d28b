// Package cases implements the case reward engine: consuming one case
// instance, resolving a weighted-random prize with a cryptographically
// strong roll, handling duplicate prizes with rarity-tiered compensation,
// and leaving a tamper-evidencing roll audit trail.
package cases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/emberhold/GuildShop_Go/internal/audit"
	"github.com/emberhold/GuildShop_Go/internal/concurrency"
	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/inventory"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/metrics"
	"github.com/emberhold/GuildShop_Go/internal/repository"
	"github.com/emberhold/GuildShop_Go/internal/utils"
)

// RollResult describes a completed case open
type RollResult struct {
	Prize         domain.CatalogItem   `json:"prize"`
	RollValue     int                  `json:"roll_value"`
	DropRate      int                  `json:"drop_rate"`
	AlreadyOwned  bool                 `json:"already_owned"`
	Compensation  *Compensation        `json:"compensation,omitempty"`
	Instance      *domain.ItemInstance `json:"instance,omitempty"`
	CreditsBefore int                  `json:"credits_before"`
	CreditsAfter  int                  `json:"credits_after"`
}

// Service opens cases
type Service interface {
	// OpenCase consumes one case instance from the user and resolves a
	// prize from the case's drop table. Misconfigured drop tables are
	// rejected before anything is consumed.
	OpenCase(ctx context.Context, userID uuid.UUID, caseItemID int) (*RollResult, error)
}

type service struct {
	repo    repository.Economy
	ledger  inventory.Ledger
	auditor audit.Recorder
	bus     event.Bus
	locks   *concurrency.LockManager
	roll    func(bound int) (int, error)
}

// NewService creates a new case opening service
func NewService(repo repository.Economy, ledger inventory.Ledger, auditor audit.Recorder, bus event.Bus, locks *concurrency.LockManager) Service {
	return &service{
		repo:    repo,
		ledger:  ledger,
		auditor: auditor,
		bus:     bus,
		locks:   locks,
		roll:    utils.SecureInt,
	}
}

func (s *service) OpenCase(ctx context.Context, userID uuid.UUID, caseItemID int) (*RollResult, error) {
	log := logger.FromContext(ctx)
	log.Info(LogMsgCaseOpenStarted, "user_id", userID, "case_item_id", caseItemID)

	// Serialize same-user opens in-process; the user row lock inside the
	// transaction covers other processes.
	lock := s.locks.UserLock(userID)
	lock.Lock()
	defer lock.Unlock()

	caseItem, entries, err := s.validate(ctx, userID, caseItemID)
	if err != nil {
		log.Warn(LogMsgCaseOpenRejected, "user_id", userID, "case_item_id", caseItemID, "error", err)
		return nil, err
	}

	rollValue, err := s.roll(domain.DropWeightTotal)
	if err != nil {
		return nil, fmt.Errorf("failed to draw roll value: %w", err)
	}
	entry, err := ResolvePrize(entries, rollValue)
	if err != nil {
		return nil, err
	}

	prize, err := s.repo.GetItemByID(ctx, entry.PrizeItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get prize item: %w", err)
	}
	if prize == nil {
		// Drop table references a missing item: server misconfiguration,
		// the case must not be consumed.
		return nil, fmt.Errorf("%w: prize %d does not exist", domain.ErrInvalidCaseContents, entry.PrizeItemID)
	}

	result, err := s.execute(ctx, userID, caseItemID, prize, entry, rollValue)
	if err != nil {
		log.Warn(LogMsgCaseOpenRejected, "user_id", userID, "case_item_id", caseItemID, "error", err)
		return nil, err
	}

	s.auditor.RecordRoll(ctx, domain.RollAuditRecord{
		UserID:        userID,
		CaseItemID:    caseItemID,
		RollValue:     result.RollValue,
		PrizeItemID:   result.Prize.ID,
		DropRate:      result.DropRate,
		AlreadyOwned:  result.AlreadyOwned,
		CreditsBefore: result.CreditsBefore,
		CreditsAfter:  result.CreditsAfter,
		RolledAt:      time.Now(),
	})
	metrics.CasesOpened.WithLabelValues(caseItem.InternalName).Inc()
	if result.AlreadyOwned {
		metrics.CaseDuplicates.Inc()
	}

	if err := s.bus.Publish(ctx, event.NewCaseOpenedEvent(userID.String(), caseItemID, result.RollValue, result.Prize.ID, result.AlreadyOwned)); err != nil {
		log.Error(LogMsgEventPublishFail, "error", err, "case_item_id", caseItemID)
	}

	log.Info(LogMsgCaseOpenCompleted,
		"user_id", userID,
		"case_item_id", caseItemID,
		"roll_value", result.RollValue,
		"prize_item_id", result.Prize.ID,
		"already_owned", result.AlreadyOwned)
	return result, nil
}

// validate runs every precondition that must hold before a case instance
// may be consumed. Data-integrity failures here are server
// misconfiguration and cost the user nothing.
func (s *service) validate(ctx context.Context, userID uuid.UUID, caseItemID int) (*domain.CatalogItem, []domain.DropTableEntry, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, domain.ErrUserNotFound
	}

	caseItem, err := s.repo.GetItemByID(ctx, caseItemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get case item: %w", err)
	}
	if caseItem == nil {
		return nil, nil, domain.ErrItemNotFound
	}
	if caseItem.Category != domain.CategoryCase {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrNotACase, caseItem.InternalName)
	}

	owned, err := s.ledger.Owns(ctx, userID, caseItemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check case ownership: %w", err)
	}
	if !owned {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrCaseNotOwned, caseItem.InternalName)
	}

	entries, err := s.repo.GetDropTable(ctx, caseItemID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get drop table: %w", err)
	}
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrEmptyCase, caseItem.InternalName)
	}
	if sum := domain.SumDropWeights(entries); sum != domain.DropWeightTotal {
		return nil, nil, fmt.Errorf("%w: weights sum to %d", domain.ErrInvalidCaseContents, sum)
	}

	return caseItem, entries, nil
}

// execute performs the locked transactional phase: consume exactly one
// case instance, then mint the prize or award compensation. Lock ordering
// is prize item row before user row.
func (s *service) execute(ctx context.Context, userID uuid.UUID, caseItemID int, prize *domain.CatalogItem, entry domain.DropTableEntry, rollValue int) (*RollResult, error) {
	log := logger.FromContext(ctx)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer repository.SafeRollback(ctx, tx)

	lockedPrize, err := tx.GetItemForUpdate(ctx, prize.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock prize item: %w", err)
	}
	if lockedPrize == nil {
		return nil, fmt.Errorf("%w: prize %d does not exist", domain.ErrInvalidCaseContents, prize.ID)
	}

	lockedUser, err := tx.GetUserForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock user: %w", err)
	}
	if lockedUser == nil {
		return nil, domain.ErrUserNotFound
	}

	// Consuming the case first closes the reopen race on the same
	// physical instance.
	consumed, err := s.ledger.Consume(ctx, tx, userID, caseItemID)
	if err != nil {
		return nil, err
	}
	if consumed == nil {
		return nil, fmt.Errorf("%w: item %d", domain.ErrCaseNotOwned, caseItemID)
	}

	result := &RollResult{
		Prize:         *lockedPrize,
		RollValue:     rollValue,
		DropRate:      entry.DropWeight,
		CreditsBefore: lockedUser.Credits,
		CreditsAfter:  lockedUser.Credits,
	}

	duplicate := false
	if !lockedPrize.Category.Stackable() {
		count, err := tx.CountOwned(ctx, userID, lockedPrize.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check prize ownership: %w", err)
		}
		duplicate = count > 0
	}

	if duplicate {
		s.compensate(result, lockedUser)
		result.AlreadyOwned = true
		if err := tx.UpdateUser(ctx, lockedUser); err != nil {
			return nil, fmt.Errorf("failed to award compensation: %w", err)
		}
	} else {
		instances, err := s.ledger.Mint(ctx, tx, userID, lockedPrize, 1)
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			// Capped prize sold out since the table was configured. The
			// user keeps their roll: compensate at the prize's rarity
			// instead of failing the open.
			log.Warn(LogMsgPrizeSoldOut, "prize_item_id", lockedPrize.ID, "user_id", userID)
			s.compensate(result, lockedUser)
			if err := tx.UpdateUser(ctx, lockedUser); err != nil {
				return nil, fmt.Errorf("failed to award compensation: %w", err)
			}
		case err != nil:
			return nil, err
		default:
			result.Instance = &instances[0]
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit case open: %w", err)
	}
	return result, nil
}

func (s *service) compensate(result *RollResult, user *domain.User) {
	comp := CompensationFor(result.Prize.Rarity)
	user.Credits += comp.Credits
	user.Experience += comp.Experience
	result.Compensation = &comp
	result.CreditsAfter = user.Credits
}
