// Package postgres implements the repository interfaces against
// PostgreSQL with pgx. Row locks (SELECT ... FOR UPDATE) back the
// pessimistic concurrency model; the copies_sold increment enforces the
// stock cap inside the UPDATE itself so the cap holds under any
// interleaving.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

const itemColumns = `item_id, internal_name, display_name, item_description, category, price, rarity,
	active, expires_at, max_copies, copies_sold, required_role, external_role_id, durability, infinite_durability`

const userColumns = `user_id, discord_id, username, credits, experience, roles,
	equipped_color_id, equipped_rod_id, equipped_badge_id`

const instanceColumns = `instance_id, owner_id, catalog_item_id, serial_number,
	durability, max_durability, experience, equipped_part_id, acquired_at`

// EconomyRepository implements repository.Economy for PostgreSQL
type EconomyRepository struct {
	db *pgxpool.Pool
}

// NewEconomyRepository creates a new EconomyRepository
func NewEconomyRepository(db *pgxpool.Pool) *EconomyRepository {
	return &EconomyRepository{db: db}
}

// EconomyTx implements repository.EconomyTx
type EconomyTx struct {
	tx pgx.Tx
}

// BeginTx starts a new transaction
func (r *EconomyRepository) BeginTx(ctx context.Context) (repository.EconomyTx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return &EconomyTx{tx: tx}, nil
}

// Commit commits the transaction
func (t *EconomyTx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction
func (t *EconomyTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func (r *EconomyRepository) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return getUser(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE user_id = $1`, userID)
}

func (r *EconomyRepository) GetUserByDiscordID(ctx context.Context, discordID string) (*domain.User, error) {
	return getUser(ctx, r.db, `SELECT `+userColumns+` FROM users WHERE discord_id = $1`, discordID)
}

func (r *EconomyRepository) GetItemByID(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	return getItem(ctx, r.db, `SELECT `+itemColumns+` FROM catalog_items WHERE item_id = $1`, itemID)
}

func (r *EconomyRepository) GetActiveItems(ctx context.Context) ([]domain.CatalogItem, error) {
	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM catalog_items WHERE active ORDER BY item_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active items: %w", err)
	}
	defer rows.Close()

	var items []domain.CatalogItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *EconomyRepository) GetDropTable(ctx context.Context, caseItemID int) ([]domain.DropTableEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT entry_id, case_item_id, prize_item_id, drop_weight FROM drop_table WHERE case_item_id = $1 ORDER BY entry_id`,
		caseItemID)
	if err != nil {
		return nil, fmt.Errorf("failed to query drop table: %w", err)
	}
	defer rows.Close()

	var entries []domain.DropTableEntry
	for rows.Next() {
		var e domain.DropTableEntry
		if err := rows.Scan(&e.ID, &e.CaseItemID, &e.PrizeItemID, &e.DropWeight); err != nil {
			return nil, fmt.Errorf("failed to scan drop table entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *EconomyRepository) CountOwned(ctx context.Context, userID uuid.UUID, itemID int) (int, error) {
	return countOwned(ctx, r.db, userID, itemID)
}

func (r *EconomyRepository) GetInstances(ctx context.Context, userID uuid.UUID) ([]domain.ItemInstance, error) {
	return queryInstances(ctx, r.db,
		`SELECT `+instanceColumns+` FROM item_instances WHERE owner_id = $1 ORDER BY acquired_at, instance_id`,
		userID)
}

// ---- transaction methods ----

func (t *EconomyTx) GetItemForUpdate(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	return getItem(ctx, t.tx, `SELECT `+itemColumns+` FROM catalog_items WHERE item_id = $1 FOR UPDATE`, itemID)
}

func (t *EconomyTx) GetUserForUpdate(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return getUser(ctx, t.tx, `SELECT `+userColumns+` FROM users WHERE user_id = $1 FOR UPDATE`, userID)
}

func (t *EconomyTx) UpdateUser(ctx context.Context, user *domain.User) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE users SET username = $2, credits = $3, experience = $4, roles = $5,
			equipped_color_id = $6, equipped_rod_id = $7, equipped_badge_id = $8
		WHERE user_id = $1`,
		user.ID, user.Username, user.Credits, user.Experience, user.Roles,
		user.EquippedColorID, user.EquippedRodID, user.EquippedBadgeID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// IncrementCopiesSold enforces the stock cap in the UPDATE predicate: when
// the increment would exceed max_copies no row is touched and the caller
// gets ErrInsufficientStock.
func (t *EconomyTx) IncrementCopiesSold(ctx context.Context, itemID, qty int) (int, error) {
	var soldBefore int
	err := t.tx.QueryRow(ctx, `
		UPDATE catalog_items SET copies_sold = copies_sold + $2
		WHERE item_id = $1 AND (max_copies IS NULL OR copies_sold + $2 <= max_copies)
		RETURNING copies_sold - $2`,
		itemID, qty).Scan(&soldBefore)
	if errors.Is(err, pgx.ErrNoRows) {
		item, lookupErr := getItem(ctx, t.tx, `SELECT `+itemColumns+` FROM catalog_items WHERE item_id = $1`, itemID)
		if lookupErr != nil {
			return 0, lookupErr
		}
		if item == nil {
			return 0, domain.ErrItemNotFound
		}
		return 0, domain.ErrInsufficientStock
	}
	if err != nil {
		return 0, fmt.Errorf("failed to increment copies sold: %w", err)
	}
	return soldBefore, nil
}

func (t *EconomyTx) InsertInstance(ctx context.Context, inst *domain.ItemInstance) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO item_instances (`+instanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		inst.ID, inst.OwnerID, inst.CatalogItemID, inst.SerialNumber,
		inst.Durability, inst.MaxDurability, inst.Experience, inst.EquippedPartID, inst.AcquiredAt)
	if err != nil {
		return fmt.Errorf("failed to insert instance: %w", err)
	}
	return nil
}

func (t *EconomyTx) UpdateInstance(ctx context.Context, inst *domain.ItemInstance) error {
	_, err := t.tx.Exec(ctx, `
		UPDATE item_instances SET durability = $2, max_durability = $3, experience = $4, equipped_part_id = $5
		WHERE instance_id = $1`,
		inst.ID, inst.Durability, inst.MaxDurability, inst.Experience, inst.EquippedPartID)
	if err != nil {
		return fmt.Errorf("failed to update instance: %w", err)
	}
	return nil
}

func (t *EconomyTx) DeleteInstance(ctx context.Context, instanceID uuid.UUID) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM item_instances WHERE instance_id = $1`, instanceID)
	if err != nil {
		return fmt.Errorf("failed to delete instance: %w", err)
	}
	return nil
}

func (t *EconomyTx) GetOwnedInstance(ctx context.Context, userID uuid.UUID, itemID int) (*domain.ItemInstance, error) {
	instances, err := queryInstances(ctx, t.tx,
		`SELECT `+instanceColumns+` FROM item_instances
		 WHERE owner_id = $1 AND catalog_item_id = $2
		 ORDER BY acquired_at, instance_id LIMIT 1`,
		userID, itemID)
	if err != nil {
		return nil, err
	}
	if len(instances) == 0 {
		return nil, nil
	}
	return &instances[0], nil
}

func (t *EconomyTx) CountOwned(ctx context.Context, userID uuid.UUID, itemID int) (int, error) {
	return countOwned(ctx, t.tx, userID, itemID)
}

func (t *EconomyTx) EnqueueRoleChange(ctx context.Context, userID uuid.UUID, externalRoleID, kind string) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO role_outbox (user_id, external_role_id, kind) VALUES ($1, $2, $3)`,
		userID, externalRoleID, kind)
	if err != nil {
		return fmt.Errorf("failed to enqueue role change: %w", err)
	}
	return nil
}

func (t *EconomyTx) GetInstancesByItem(ctx context.Context, itemID int) ([]domain.ItemInstance, error) {
	return queryInstances(ctx, t.tx,
		`SELECT `+instanceColumns+` FROM item_instances WHERE catalog_item_id = $1 ORDER BY acquired_at, instance_id`,
		itemID)
}

func (t *EconomyTx) DeleteDropTableByCase(ctx context.Context, caseItemID int) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM drop_table WHERE case_item_id = $1`, caseItemID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete drop table: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *EconomyTx) DeleteDropTableByPrize(ctx context.Context, prizeItemID int) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM drop_table WHERE prize_item_id = $1`, prizeItemID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete prize entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *EconomyTx) ClearEquippedSlots(ctx context.Context, itemID int) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE users SET
			equipped_color_id = CASE WHEN equipped_color_id = $1 THEN NULL ELSE equipped_color_id END,
			equipped_rod_id   = CASE WHEN equipped_rod_id   = $1 THEN NULL ELSE equipped_rod_id   END,
			equipped_badge_id = CASE WHEN equipped_badge_id = $1 THEN NULL ELSE equipped_badge_id END
		WHERE equipped_color_id = $1 OR equipped_rod_id = $1 OR equipped_badge_id = $1`,
		itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear equipped slots: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *EconomyTx) ClearEquippedParts(ctx context.Context, itemID int) (int64, error) {
	tag, err := t.tx.Exec(ctx, `
		UPDATE item_instances SET equipped_part_id = NULL
		WHERE equipped_part_id IN (SELECT instance_id FROM item_instances WHERE catalog_item_id = $1)`,
		itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear equipped parts: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *EconomyTx) DeleteInstancesByItem(ctx context.Context, itemID int) (int64, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM item_instances WHERE catalog_item_id = $1`, itemID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete instances: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *EconomyTx) DeleteItem(ctx context.Context, itemID int) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM catalog_items WHERE item_id = $1`, itemID)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	return nil
}

// ---- shared scans ----

func getItem(ctx context.Context, q querier, sql string, args ...any) (*domain.CatalogItem, error) {
	item, err := scanItem(q.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func scanItem(row pgx.Row) (*domain.CatalogItem, error) {
	var item domain.CatalogItem
	var category, rarity string
	err := row.Scan(&item.ID, &item.InternalName, &item.DisplayName, &item.Description,
		&category, &item.Price, &rarity, &item.Active, &item.ExpiresAt, &item.MaxCopies,
		&item.CopiesSold, &item.RequiredRole, &item.ExternalRoleID,
		&item.Durability, &item.InfiniteDurability)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan catalog item: %w", err)
	}
	item.Category = domain.Category(category)
	item.Rarity = domain.Rarity(rarity)
	return &item, nil
}

func getUser(ctx context.Context, q querier, sql string, args ...any) (*domain.User, error) {
	var user domain.User
	err := q.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.DiscordID, &user.Username,
		&user.Credits, &user.Experience, &user.Roles,
		&user.EquippedColorID, &user.EquippedRodID, &user.EquippedBadgeID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &user, nil
}

func countOwned(ctx context.Context, q querier, userID uuid.UUID, itemID int) (int, error) {
	var count int
	err := q.QueryRow(ctx,
		`SELECT count(*) FROM item_instances WHERE owner_id = $1 AND catalog_item_id = $2`,
		userID, itemID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count owned instances: %w", err)
	}
	return count, nil
}

func queryInstances(ctx context.Context, q querier, sql string, args ...any) ([]domain.ItemInstance, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query instances: %w", err)
	}
	defer rows.Close()

	var instances []domain.ItemInstance
	for rows.Next() {
		var inst domain.ItemInstance
		if err := rows.Scan(&inst.ID, &inst.OwnerID, &inst.CatalogItemID, &inst.SerialNumber,
			&inst.Durability, &inst.MaxDurability, &inst.Experience, &inst.EquippedPartID, &inst.AcquiredAt); err != nil {
			return nil, fmt.Errorf("failed to scan instance: %w", err)
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}
