package domain

import (
	"time"

	"github.com/google/uuid"
)

// Purchase audit outcomes
const (
	PurchaseOutcomeSuccess = "PURCHASE_SUCCESS"
	PurchaseOutcomeFailed  = "PURCHASE_FAILED"
)

// PurchaseAuditRecord records one purchase attempt, success or failure,
// with the balance on both sides of the transaction. On failure the
// balances are equal.
type PurchaseAuditRecord struct {
	ID            int64     `json:"audit_id"`
	UserID        uuid.UUID `json:"user_id"`
	CatalogItemID int       `json:"catalog_item_id"`
	Quantity      int       `json:"quantity"`
	Outcome       string    `json:"outcome"`
	FailureReason string    `json:"failure_reason,omitempty"`
	CreditsBefore int       `json:"credits_before"`
	CreditsAfter  int       `json:"credits_after"`
	CreatedAt     time.Time `json:"created_at"`
}

// RollAuditRecord is the immutable record of one case open. It is written
// once, never mutated, and carries a tamper-evidencing hash so drop-rate
// fairness can be audited without re-deriving game logic.
type RollAuditRecord struct {
	ID              int64     `json:"roll_id"`
	UserID          uuid.UUID `json:"user_id"`
	CaseItemID      int       `json:"case_item_id"`
	RollValue       int       `json:"roll_value"`
	PrizeItemID     int       `json:"prize_item_id"`
	DropRate        int       `json:"drop_rate"`
	AlreadyOwned    bool      `json:"already_owned"`
	CreditsBefore   int       `json:"credits_before"`
	CreditsAfter    int       `json:"credits_after"`
	StatisticalHash string    `json:"statistical_hash"`
	RolledAt        time.Time `json:"rolled_at"`
}
