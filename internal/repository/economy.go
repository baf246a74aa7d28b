package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/emberhold/GuildShop_Go/internal/domain"
)

// Economy defines the interface for shop economy persistence. Unlocked reads
// serve precondition checks; everything that mutates credits, stock or
// instances goes through an EconomyTx.
type Economy interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	GetUserByDiscordID(ctx context.Context, discordID string) (*domain.User, error)
	GetItemByID(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	GetActiveItems(ctx context.Context) ([]domain.CatalogItem, error)
	GetDropTable(ctx context.Context, caseItemID int) ([]domain.DropTableEntry, error)
	CountOwned(ctx context.Context, userID uuid.UUID, itemID int) (int, error)
	GetInstances(ctx context.Context, userID uuid.UUID) ([]domain.ItemInstance, error)
	BeginTx(ctx context.Context) (EconomyTx, error)
}

// EconomyTx defines the interface for economy transactions.
//
// Lock ordering: callers that lock both rows must take the item row before
// the user row so concurrent purchases cannot deadlock.
type EconomyTx interface {
	Tx

	// GetItemForUpdate locks the catalog item row for the duration of
	// the transaction. Stock checks and copies_sold increments are only
	// valid against a locked row.
	GetItemForUpdate(ctx context.Context, itemID int) (*domain.CatalogItem, error)

	// GetUserForUpdate locks the user row, serializing credit mutation
	// and case consumption for that user.
	GetUserForUpdate(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	UpdateUser(ctx context.Context, user *domain.User) error

	// IncrementCopiesSold bumps the sold counter by qty and returns the
	// pre-increment value, which seeds dense serial number assignment.
	IncrementCopiesSold(ctx context.Context, itemID, qty int) (int, error)

	InsertInstance(ctx context.Context, inst *domain.ItemInstance) error
	UpdateInstance(ctx context.Context, inst *domain.ItemInstance) error
	DeleteInstance(ctx context.Context, instanceID uuid.UUID) error
	GetOwnedInstance(ctx context.Context, userID uuid.UUID, itemID int) (*domain.ItemInstance, error)
	CountOwned(ctx context.Context, userID uuid.UUID, itemID int) (int, error)

	// EnqueueRoleChange records an intended external role side effect in
	// the outbox as part of this transaction.
	EnqueueRoleChange(ctx context.Context, userID uuid.UUID, externalRoleID, kind string) error

	// Cascade deletion support
	GetInstancesByItem(ctx context.Context, itemID int) ([]domain.ItemInstance, error)
	DeleteDropTableByCase(ctx context.Context, caseItemID int) (int64, error)
	DeleteDropTableByPrize(ctx context.Context, prizeItemID int) (int64, error)
	ClearEquippedSlots(ctx context.Context, itemID int) (int64, error)
	ClearEquippedParts(ctx context.Context, itemID int) (int64, error)
	DeleteInstancesByItem(ctx context.Context, itemID int) (int64, error)
	DeleteItem(ctx context.Context, itemID int) error
}
