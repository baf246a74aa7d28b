// Package memory provides an in-memory implementation of the repository
// interfaces for unit tests. BeginTx takes the store-wide lock until commit
// or rollback, which models the pessimistic row locking of the postgres
// implementation closely enough to exercise concurrent flows.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// Store implements repository.Economy, repository.Audit and
// repository.Outbox against process memory.
type Store struct {
	mu    sync.Mutex
	state *state

	auditMu        sync.Mutex
	purchaseAudits []domain.PurchaseAuditRecord
	rollAudits     []domain.RollAuditRecord

	nextOutboxID int64
	nextAuditID  int64

	// Failure injection for error-path tests
	ErrOnBeginTx        error
	ErrOnCommit         error
	ErrOnUpdateUser     error
	ErrOnInsertInstance error
	ErrOnPurchaseAudit  error
	ErrOnRollAudit      error
}

type state struct {
	users     map[uuid.UUID]*domain.User
	items     map[int]*domain.CatalogItem
	drops     map[int][]domain.DropTableEntry
	instances map[uuid.UUID]*domain.ItemInstance
	outbox    []domain.RoleChange
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		state: &state{
			users:     make(map[uuid.UUID]*domain.User),
			items:     make(map[int]*domain.CatalogItem),
			drops:     make(map[int][]domain.DropTableEntry),
			instances: make(map[uuid.UUID]*domain.ItemInstance),
		},
	}
}

// ---- seeding helpers ----

// AddUser seeds a user
func (s *Store) AddUser(u domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.users[u.ID] = copyUser(&u)
}

// AddItem seeds a catalog item
func (s *Store) AddItem(item domain.CatalogItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.items[item.ID] = copyItem(&item)
}

// AddDropEntry seeds one drop table entry
func (s *Store) AddDropEntry(e domain.DropTableEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.drops[e.CaseItemID] = append(s.state.drops[e.CaseItemID], e)
}

// AddInstance seeds an item instance
func (s *Store) AddInstance(inst domain.ItemInstance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.instances[inst.ID] = copyInstance(&inst)
}

// ---- snapshot helpers for assertions ----

// UserSnapshot returns the committed state of a user
func (s *Store) UserSnapshot(id uuid.UUID) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.state.users[id])
}

// ItemSnapshot returns the committed state of a catalog item
func (s *Store) ItemSnapshot(id int) *domain.CatalogItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItem(s.state.items[id])
}

// InstanceSnapshot returns the committed state of one instance
func (s *Store) InstanceSnapshot(id uuid.UUID) *domain.ItemInstance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyInstance(s.state.instances[id])
}

// InstanceCount counts committed instances of an item held by a user
func (s *Store) InstanceCount(userID uuid.UUID, itemID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOwned(s.state, userID, itemID)
}

// TotalInstances counts all committed instances of an item
func (s *Store) TotalInstances(itemID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, inst := range s.state.instances {
		if inst.CatalogItemID == itemID {
			n++
		}
	}
	return n
}

// PurchaseAudits returns all recorded purchase audit entries
func (s *Store) PurchaseAudits() []domain.PurchaseAuditRecord {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	out := make([]domain.PurchaseAuditRecord, len(s.purchaseAudits))
	copy(out, s.purchaseAudits)
	return out
}

// RollAudits returns all recorded roll audit entries
func (s *Store) RollAudits() []domain.RollAuditRecord {
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	out := make([]domain.RollAuditRecord, len(s.rollAudits))
	copy(out, s.rollAudits)
	return out
}

// OutboxEntries returns all committed role changes
func (s *Store) OutboxEntries() []domain.RoleChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.RoleChange, len(s.state.outbox))
	copy(out, s.state.outbox)
	return out
}

// ---- repository.Economy (unlocked reads) ----

func (s *Store) GetUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyUser(s.state.users[userID]), nil
}

func (s *Store) GetUserByDiscordID(ctx context.Context, discordID string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.state.users {
		if u.DiscordID == discordID {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *Store) GetItemByID(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyItem(s.state.items[itemID]), nil
}

func (s *Store) GetActiveItems(ctx context.Context) ([]domain.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var items []domain.CatalogItem
	for _, item := range s.state.items {
		if item.Active {
			items = append(items, *copyItem(item))
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (s *Store) GetDropTable(ctx context.Context, caseItemID int) ([]domain.DropTableEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]domain.DropTableEntry, len(s.state.drops[caseItemID]))
	copy(entries, s.state.drops[caseItemID])
	return entries, nil
}

func (s *Store) CountOwned(ctx context.Context, userID uuid.UUID, itemID int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOwned(s.state, userID, itemID), nil
}

func (s *Store) GetInstances(ctx context.Context, userID uuid.UUID) ([]domain.ItemInstance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ItemInstance
	for _, inst := range s.state.instances {
		if inst.OwnerID == userID {
			out = append(out, *copyInstance(inst))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

// BeginTx locks the store until Commit or Rollback
func (s *Store) BeginTx(ctx context.Context) (repository.EconomyTx, error) {
	if s.ErrOnBeginTx != nil {
		return nil, s.ErrOnBeginTx
	}
	s.mu.Lock()
	return &memTx{store: s, staged: copyState(s.state)}, nil
}

// ---- repository.Audit ----

func (s *Store) InsertPurchaseAudit(ctx context.Context, record *domain.PurchaseAuditRecord) error {
	if s.ErrOnPurchaseAudit != nil {
		return s.ErrOnPurchaseAudit
	}
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	s.nextAuditID++
	record.ID = s.nextAuditID
	s.purchaseAudits = append(s.purchaseAudits, *record)
	return nil
}

func (s *Store) InsertRollAudit(ctx context.Context, record *domain.RollAuditRecord) error {
	if s.ErrOnRollAudit != nil {
		return s.ErrOnRollAudit
	}
	s.auditMu.Lock()
	defer s.auditMu.Unlock()
	s.nextAuditID++
	record.ID = s.nextAuditID
	s.rollAudits = append(s.rollAudits, *record)
	return nil
}

// ---- repository.Outbox ----

func (s *Store) FetchPending(ctx context.Context, limit int) ([]domain.RoleChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.RoleChange
	for _, rc := range s.state.outbox {
		if rc.Status == domain.RoleChangePending {
			out = append(out, rc)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *Store) MarkDelivered(ctx context.Context, id int64) error {
	return s.updateOutbox(id, func(rc *domain.RoleChange) {
		now := time.Now()
		rc.Status = domain.RoleChangeDelivered
		rc.DeliveredAt = &now
	})
}

func (s *Store) MarkFailed(ctx context.Context, id int64, lastError string) error {
	return s.updateOutbox(id, func(rc *domain.RoleChange) {
		rc.Attempts++
		rc.LastError = lastError
	})
}

func (s *Store) MarkAbandoned(ctx context.Context, id int64, lastError string) error {
	return s.updateOutbox(id, func(rc *domain.RoleChange) {
		rc.Status = domain.RoleChangeAbandoned
		rc.LastError = lastError
	})
}

func (s *Store) updateOutbox(id int64, fn func(*domain.RoleChange)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.state.outbox {
		if s.state.outbox[i].ID == id {
			fn(&s.state.outbox[i])
			return nil
		}
	}
	return errors.New("outbox entry not found")
}

// ---- transaction ----

type memTx struct {
	store  *Store
	staged *state
	closed bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.closed {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.closed = true
	if t.store.ErrOnCommit != nil {
		t.store.mu.Unlock()
		return t.store.ErrOnCommit
	}
	t.store.state = t.staged
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.closed {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.closed = true
	t.store.mu.Unlock()
	return nil
}

func (t *memTx) GetItemForUpdate(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	return copyItem(t.staged.items[itemID]), nil
}

func (t *memTx) GetUserForUpdate(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return copyUser(t.staged.users[userID]), nil
}

func (t *memTx) UpdateUser(ctx context.Context, user *domain.User) error {
	if t.store.ErrOnUpdateUser != nil {
		return t.store.ErrOnUpdateUser
	}
	t.staged.users[user.ID] = copyUser(user)
	return nil
}

func (t *memTx) IncrementCopiesSold(ctx context.Context, itemID, qty int) (int, error) {
	item, ok := t.staged.items[itemID]
	if !ok {
		return 0, domain.ErrItemNotFound
	}
	if item.MaxCopies != nil && item.CopiesSold+qty > *item.MaxCopies {
		return 0, domain.ErrInsufficientStock
	}
	before := item.CopiesSold
	item.CopiesSold += qty
	return before, nil
}

func (t *memTx) InsertInstance(ctx context.Context, inst *domain.ItemInstance) error {
	if t.store.ErrOnInsertInstance != nil {
		return t.store.ErrOnInsertInstance
	}
	t.staged.instances[inst.ID] = copyInstance(inst)
	return nil
}

func (t *memTx) UpdateInstance(ctx context.Context, inst *domain.ItemInstance) error {
	t.staged.instances[inst.ID] = copyInstance(inst)
	return nil
}

func (t *memTx) DeleteInstance(ctx context.Context, instanceID uuid.UUID) error {
	delete(t.staged.instances, instanceID)
	return nil
}

func (t *memTx) GetOwnedInstance(ctx context.Context, userID uuid.UUID, itemID int) (*domain.ItemInstance, error) {
	var candidates []*domain.ItemInstance
	for _, inst := range t.staged.instances {
		if inst.OwnerID == userID && inst.CatalogItemID == itemID {
			candidates = append(candidates, inst)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ID.String() < candidates[j].ID.String()
	})
	return copyInstance(candidates[0]), nil
}

func (t *memTx) CountOwned(ctx context.Context, userID uuid.UUID, itemID int) (int, error) {
	return countOwned(t.staged, userID, itemID), nil
}

func (t *memTx) EnqueueRoleChange(ctx context.Context, userID uuid.UUID, externalRoleID, kind string) error {
	t.store.nextOutboxID++
	t.staged.outbox = append(t.staged.outbox, domain.RoleChange{
		ID:             t.store.nextOutboxID,
		UserID:         userID,
		ExternalRoleID: externalRoleID,
		Kind:           kind,
		Status:         domain.RoleChangePending,
		CreatedAt:      time.Now(),
	})
	return nil
}

func (t *memTx) GetInstancesByItem(ctx context.Context, itemID int) ([]domain.ItemInstance, error) {
	var out []domain.ItemInstance
	for _, inst := range t.staged.instances {
		if inst.CatalogItemID == itemID {
			out = append(out, *copyInstance(inst))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, nil
}

func (t *memTx) DeleteDropTableByCase(ctx context.Context, caseItemID int) (int64, error) {
	n := int64(len(t.staged.drops[caseItemID]))
	delete(t.staged.drops, caseItemID)
	return n, nil
}

func (t *memTx) DeleteDropTableByPrize(ctx context.Context, prizeItemID int) (int64, error) {
	var removed int64
	for caseID, entries := range t.staged.drops {
		kept := entries[:0]
		for _, e := range entries {
			if e.PrizeItemID == prizeItemID {
				removed++
			} else {
				kept = append(kept, e)
			}
		}
		t.staged.drops[caseID] = kept
	}
	return removed, nil
}

func (t *memTx) ClearEquippedSlots(ctx context.Context, itemID int) (int64, error) {
	var affected int64
	for _, u := range t.staged.users {
		cleared := false
		if u.EquippedColorID != nil && *u.EquippedColorID == itemID {
			u.EquippedColorID = nil
			cleared = true
		}
		if u.EquippedRodID != nil && *u.EquippedRodID == itemID {
			u.EquippedRodID = nil
			cleared = true
		}
		if u.EquippedBadgeID != nil && *u.EquippedBadgeID == itemID {
			u.EquippedBadgeID = nil
			cleared = true
		}
		if cleared {
			affected++
		}
	}
	return affected, nil
}

func (t *memTx) ClearEquippedParts(ctx context.Context, itemID int) (int64, error) {
	partIDs := make(map[uuid.UUID]bool)
	for id, inst := range t.staged.instances {
		if inst.CatalogItemID == itemID {
			partIDs[id] = true
		}
	}
	var cleared int64
	for _, inst := range t.staged.instances {
		if inst.EquippedPartID != nil && partIDs[*inst.EquippedPartID] {
			inst.EquippedPartID = nil
			cleared++
		}
	}
	return cleared, nil
}

func (t *memTx) DeleteInstancesByItem(ctx context.Context, itemID int) (int64, error) {
	var removed int64
	for id, inst := range t.staged.instances {
		if inst.CatalogItemID == itemID {
			delete(t.staged.instances, id)
			removed++
		}
	}
	return removed, nil
}

func (t *memTx) DeleteItem(ctx context.Context, itemID int) error {
	delete(t.staged.items, itemID)
	return nil
}

// ---- deep copies ----

func countOwned(st *state, userID uuid.UUID, itemID int) int {
	n := 0
	for _, inst := range st.instances {
		if inst.OwnerID == userID && inst.CatalogItemID == itemID {
			n++
		}
	}
	return n
}

func copyUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	out := *u
	out.Roles = append([]string(nil), u.Roles...)
	out.EquippedColorID = copyIntPtr(u.EquippedColorID)
	out.EquippedRodID = copyIntPtr(u.EquippedRodID)
	out.EquippedBadgeID = copyIntPtr(u.EquippedBadgeID)
	return &out
}

func copyItem(i *domain.CatalogItem) *domain.CatalogItem {
	if i == nil {
		return nil
	}
	out := *i
	out.ExpiresAt = copyTimePtr(i.ExpiresAt)
	out.MaxCopies = copyIntPtr(i.MaxCopies)
	out.RequiredRole = copyStrPtr(i.RequiredRole)
	out.ExternalRoleID = copyStrPtr(i.ExternalRoleID)
	out.Durability = copyIntPtr(i.Durability)
	return &out
}

func copyInstance(inst *domain.ItemInstance) *domain.ItemInstance {
	if inst == nil {
		return nil
	}
	out := *inst
	out.SerialNumber = copyIntPtr(inst.SerialNumber)
	out.Durability = copyIntPtr(inst.Durability)
	out.MaxDurability = copyIntPtr(inst.MaxDurability)
	if inst.EquippedPartID != nil {
		id := *inst.EquippedPartID
		out.EquippedPartID = &id
	}
	return &out
}

func copyState(st *state) *state {
	out := &state{
		users:     make(map[uuid.UUID]*domain.User, len(st.users)),
		items:     make(map[int]*domain.CatalogItem, len(st.items)),
		drops:     make(map[int][]domain.DropTableEntry, len(st.drops)),
		instances: make(map[uuid.UUID]*domain.ItemInstance, len(st.instances)),
		outbox:    append([]domain.RoleChange(nil), st.outbox...),
	}
	for id, u := range st.users {
		out.users[id] = copyUser(u)
	}
	for id, i := range st.items {
		out.items[id] = copyItem(i)
	}
	for id, entries := range st.drops {
		out.drops[id] = append([]domain.DropTableEntry(nil), entries...)
	}
	for id, inst := range st.instances {
		out.instances[id] = copyInstance(inst)
	}
	return out
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyStrPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func copyTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
