package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role change kinds
const (
	RoleChangeGrant  = "GRANT"
	RoleChangeRevoke = "REVOKE"
)

// Role change delivery states
const (
	RoleChangePending   = "PENDING"
	RoleChangeDelivered = "DELIVERED"
	RoleChangeAbandoned = "ABANDONED"
)

// RoleChange is one intended external role grant or revoke, recorded inside
// the business transaction and delivered asynchronously. The external call
// is never transactional with database state; the outbox makes the eventual
// consistency gap auditable instead of silent.
type RoleChange struct {
	ID             int64     `json:"id"`
	UserID         uuid.UUID `json:"user_id"`
	ExternalRoleID string    `json:"external_role_id"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	Attempts       int       `json:"attempts"`
	LastError      string    `json:"last_error,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}
