package shop

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhold/GuildShop_Go/internal/audit"
	"github.com/emberhold/GuildShop_Go/internal/catalog"
	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/inventory"
	"github.com/emberhold/GuildShop_Go/internal/repository/memory"
)

// Slot counts exceed any test pool so every purchasable item is in the
// user's layout and layout selection never interferes with the flow
// under test.
func newTestService(store *memory.Store) Service {
	cat := catalog.NewService(store, 50, 50)
	return NewService(store, inventory.NewLedger(store), cat, audit.NewRecorder(store), event.NewMemoryBus())
}

func seedUser(store *memory.Store, credits int, roles ...string) uuid.UUID {
	id := uuid.New()
	store.AddUser(domain.User{
		ID:        id,
		DiscordID: "discord-" + id.String()[:8],
		Username:  "buyer",
		Credits:   credits,
		Roles:     roles,
	})
	return id
}

func TestPurchase_Success(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	store.AddItem(domain.CatalogItem{
		ID:           1,
		InternalName: "fish_bait",
		DisplayName:  "Fish Bait",
		Category:     domain.CategoryGeneric,
		Price:        100,
		Rarity:       domain.RarityCommon,
		Active:       true,
	})
	svc := newTestService(store)

	result, err := svc.Purchase(context.Background(), userID, 1, 3)
	require.NoError(t, err)

	assert.Equal(t, 300, result.TotalPrice)
	assert.Equal(t, 1000, result.CreditsBefore)
	assert.Equal(t, 700, result.CreditsAfter)
	assert.Len(t, result.Instances, 3)

	user := store.UserSnapshot(userID)
	assert.Equal(t, 700, user.Credits)
	assert.Equal(t, 3, store.InstanceCount(userID, 1))

	audits := store.PurchaseAudits()
	require.Len(t, audits, 1)
	assert.Equal(t, domain.PurchaseOutcomeSuccess, audits[0].Outcome)
	assert.Equal(t, 1000, audits[0].CreditsBefore)
	assert.Equal(t, 700, audits[0].CreditsAfter)
}

func TestPurchase_InvalidQuantity(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	svc := newTestService(store)

	for _, qty := range []int{0, -1, domain.MaxPurchaseQuantity + 1} {
		_, err := svc.Purchase(context.Background(), userID, 1, qty)
		assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "quantity %d", qty)
	}
}

func TestPurchase_UserNotFound(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), uuid.New(), 1, 1)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestPurchase_ItemNotFound(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), userID, 99, 1)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestPurchase_InactiveItemNotPurchasable(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	store.AddItem(domain.CatalogItem{
		ID:           2,
		InternalName: "retired_color",
		Category:     domain.CategoryColor,
		Price:        50,
		Active:       false,
	})
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), userID, 2, 1)
	assert.ErrorIs(t, err, domain.ErrItemNotPurchasable)
}

func TestPurchase_ExpiredItemNotPurchasable(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	past := time.Now().Add(-time.Hour)
	store.AddItem(domain.CatalogItem{
		ID:           3,
		InternalName: "seasonal_badge",
		Category:     domain.CategoryBadge,
		Price:        50,
		Active:       true,
		ExpiresAt:    &past,
	})
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), userID, 3, 1)
	assert.ErrorIs(t, err, domain.ErrItemNotPurchasable)
}

func TestPurchase_InsufficientCredits(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 99)
	store.AddItem(domain.CatalogItem{
		ID:           4,
		InternalName: "fish_bait",
		Category:     domain.CategoryGeneric,
		Price:        100,
		Active:       true,
	})
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), userID, 4, 1)
	assert.ErrorIs(t, err, domain.ErrInsufficientCredits)

	// Balance untouched, failure audited with equal balances
	assert.Equal(t, 99, store.UserSnapshot(userID).Credits)
	audits := store.PurchaseAudits()
	require.Len(t, audits, 1)
	assert.Equal(t, domain.PurchaseOutcomeFailed, audits[0].Outcome)
	assert.Equal(t, audits[0].CreditsBefore, audits[0].CreditsAfter)
	assert.Contains(t, audits[0].FailureReason, domain.ErrMsgInsufficientCredits)
}

func TestPurchase_RoleRequirement(t *testing.T) {
	store := memory.NewStore()
	plainID := seedUser(store, 1000)
	vipID := seedUser(store, 1000, "vip")
	role := "vip"
	store.AddItem(domain.CatalogItem{
		ID:           5,
		InternalName: "vip_color",
		Category:     domain.CategoryColor,
		Price:        100,
		Active:       true,
		RequiredRole: &role,
	})
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), plainID, 5, 1)
	assert.ErrorIs(t, err, domain.ErrRoleRequirement)

	_, err = svc.Purchase(context.Background(), vipID, 5, 1)
	assert.NoError(t, err)
}

func TestPurchase_InsufficientStock(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 10000)
	maxCopies := 5
	store.AddItem(domain.CatalogItem{
		ID:           6,
		InternalName: "limited_crate",
		Category:     domain.CategoryCase,
		Price:        100,
		Active:       true,
		MaxCopies:    &maxCopies,
		CopiesSold:   3,
	})
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), userID, 6, 3)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// The whole request is rejected, not partially filled
	assert.Equal(t, 0, store.InstanceCount(userID, 6))
	assert.Equal(t, 10000, store.UserSnapshot(userID).Credits)
}

func TestPurchase_NonStackableRules(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	store.AddItem(domain.CatalogItem{
		ID:           7,
		InternalName: "crimson_color",
		Category:     domain.CategoryColor,
		Price:        100,
		Active:       true,
	})
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), userID, 7, 2)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = svc.Purchase(context.Background(), userID, 7, 1)
	require.NoError(t, err)

	_, err = svc.Purchase(context.Background(), userID, 7, 1)
	assert.ErrorIs(t, err, domain.ErrItemAlreadyOwned)
}

func TestPurchase_DenseSerialNumbers(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 10000)
	maxCopies := 10
	store.AddItem(domain.CatalogItem{
		ID:           8,
		InternalName: "collector_crate",
		Category:     domain.CategoryCase,
		Price:        100,
		Active:       true,
		MaxCopies:    &maxCopies,
	})
	svc := newTestService(store)

	first, err := svc.Purchase(context.Background(), userID, 8, 3)
	require.NoError(t, err)
	second, err := svc.Purchase(context.Background(), userID, 8, 2)
	require.NoError(t, err)

	var serials []int
	for _, inst := range append(first.Instances, second.Instances...) {
		require.NotNil(t, inst.SerialNumber)
		serials = append(serials, *inst.SerialNumber)
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, serials)
	assert.Equal(t, 5, store.ItemSnapshot(8).CopiesSold)
}

func TestPurchase_MintFailureRollsBack(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	store.AddItem(domain.CatalogItem{
		ID:           9,
		InternalName: "fish_bait",
		Category:     domain.CategoryGeneric,
		Price:        100,
		Active:       true,
	})
	store.ErrOnInsertInstance = assert.AnError
	svc := newTestService(store)

	_, err := svc.Purchase(context.Background(), userID, 9, 1)
	require.Error(t, err)

	assert.Equal(t, 1000, store.UserSnapshot(userID).Credits)
	assert.Equal(t, 0, store.InstanceCount(userID, 9))
	assert.Equal(t, 0, store.ItemSnapshot(9).CopiesSold)
}

// Two buyers race for the last copy; the cap must hold and exactly one
// purchase may succeed.
func TestPurchase_ConcurrentLastCopy(t *testing.T) {
	store := memory.NewStore()
	aliceID := seedUser(store, 1000)
	bobID := seedUser(store, 1000)
	maxCopies := 1
	store.AddItem(domain.CatalogItem{
		ID:           10,
		InternalName: "one_of_one",
		Category:     domain.CategoryCase,
		Price:        100,
		Active:       true,
		MaxCopies:    &maxCopies,
	})
	svc := newTestService(store)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, userID := range []uuid.UUID{aliceID, bobID} {
		wg.Add(1)
		go func(slot int, id uuid.UUID) {
			defer wg.Done()
			_, results[slot] = svc.Purchase(context.Background(), id, 10, 1)
		}(i, userID)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, store.TotalInstances(10))
	assert.Equal(t, 1, store.ItemSnapshot(10).CopiesSold)
}

// One balance, two concurrent debits that each pass the unlocked
// pre-check; the locked re-check must reject the loser.
func TestPurchase_ConcurrentCreditSpend(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 100)
	store.AddItem(domain.CatalogItem{
		ID:           11,
		InternalName: "fish_bait",
		Category:     domain.CategoryGeneric,
		Price:        100,
		Active:       true,
	})
	svc := newTestService(store)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = svc.Purchase(context.Background(), userID, 11, 1)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 0, store.UserSnapshot(userID).Credits)
}

// rendezvousLedger holds both ownership pre-checks at a barrier so each
// purchase finishes its unlocked read before either takes the row locks.
type rendezvousLedger struct {
	inventory.Ledger
	barrier *sync.WaitGroup
}

func (l *rendezvousLedger) Owns(ctx context.Context, userID uuid.UUID, itemID int) (bool, error) {
	owned, err := l.Ledger.Owns(ctx, userID, itemID)
	l.barrier.Done()
	l.barrier.Wait()
	return owned, err
}

// Two concurrent purchases of the same non-stackable item by one user
// both pass the unlocked ownership check; the locked re-check must let
// exactly one mint.
func TestPurchase_ConcurrentNonStackableMintsOnce(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	store.AddItem(domain.CatalogItem{
		ID:           13,
		InternalName: "crimson_hue",
		DisplayName:  "Crimson Hue",
		Category:     domain.CategoryColor,
		Price:        100,
		Rarity:       domain.RarityCommon,
		Active:       true,
	})

	var barrier sync.WaitGroup
	barrier.Add(2)
	ledger := &rendezvousLedger{Ledger: inventory.NewLedger(store), barrier: &barrier}
	cat := catalog.NewService(store, 50, 50)
	svc := NewService(store, ledger, cat, audit.NewRecorder(store), event.NewMemoryBus())

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = svc.Purchase(context.Background(), userID, 13, 1)
		}(i)
	}
	wg.Wait()

	var failures []error
	for _, err := range results {
		if err != nil {
			failures = append(failures, err)
		}
	}
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], domain.ErrItemAlreadyOwned)
	assert.Equal(t, 1, store.InstanceCount(userID, 13))
	assert.Equal(t, 900, store.UserSnapshot(userID).Credits)
}

func TestPurchase_PublishesEvent(t *testing.T) {
	store := memory.NewStore()
	userID := seedUser(store, 1000)
	store.AddItem(domain.CatalogItem{
		ID:           12,
		InternalName: "fish_bait",
		DisplayName:  "Fish Bait",
		Category:     domain.CategoryGeneric,
		Price:        100,
		Active:       true,
	})

	bus := event.NewMemoryBus()
	var mu sync.Mutex
	var received []event.Event
	bus.Subscribe(event.ItemPurchased, func(ctx context.Context, e event.Event) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
		return nil
	})

	cat := catalog.NewService(store, 50, 50)
	svc := NewService(store, inventory.NewLedger(store), cat, audit.NewRecorder(store), bus)

	_, err := svc.Purchase(context.Background(), userID, 12, 1)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.Equal(t, event.ItemPurchased, received[0].Type)
}
