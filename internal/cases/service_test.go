package cases

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhold/GuildShop_Go/internal/audit"
	"github.com/emberhold/GuildShop_Go/internal/concurrency"
	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/inventory"
	"github.com/emberhold/GuildShop_Go/internal/repository/memory"
	"github.com/emberhold/GuildShop_Go/internal/utils"
)

const (
	caseID          = 1
	legendaryID     = 101
	epicID          = 102
	rareID          = 103
	commonID        = 104
)

// newFixture seeds a user holding one case with the standard four-tier
// drop table and returns a service whose roll is fixed to rollValue.
func newFixture(t *testing.T, rollValue int) (*memory.Store, uuid.UUID, Service) {
	t.Helper()
	store := memory.NewStore()

	userID := uuid.New()
	store.AddUser(domain.User{ID: userID, DiscordID: "d-1", Username: "opener", Credits: 1000})

	store.AddItem(domain.CatalogItem{ID: caseID, InternalName: "mystery_case", Category: domain.CategoryCase, Price: 250, Active: true})
	store.AddItem(domain.CatalogItem{ID: legendaryID, InternalName: "gilded_color", Category: domain.CategoryColor, Price: 5000, Rarity: domain.RarityLegendary, Active: true})
	store.AddItem(domain.CatalogItem{ID: epicID, InternalName: "storm_color", Category: domain.CategoryColor, Price: 2000, Rarity: domain.RarityEpic, Active: true})
	store.AddItem(domain.CatalogItem{ID: rareID, InternalName: "tide_badge", Category: domain.CategoryBadge, Price: 800, Rarity: domain.RarityRare, Active: true})
	store.AddItem(domain.CatalogItem{ID: commonID, InternalName: "bait_bundle", Category: domain.CategoryGeneric, Price: 100, Rarity: domain.RarityCommon, Active: true})

	for _, e := range fourTierTable() {
		store.AddDropEntry(e)
	}

	store.AddInstance(domain.ItemInstance{ID: uuid.New(), OwnerID: userID, CatalogItemID: caseID})

	svc := newFixedRollService(store, rollValue)
	return store, userID, svc
}

func newFixedRollService(store *memory.Store, rollValue int) Service {
	return &service{
		repo:    store,
		ledger:  inventory.NewLedger(store),
		auditor: audit.NewRecorder(store),
		bus:     event.NewMemoryBus(),
		locks:   concurrency.NewLockManager(),
		roll:    func(bound int) (int, error) { return rollValue, nil },
	}
}

func TestOpenCase_LegendaryBand(t *testing.T) {
	store, userID, svc := newFixture(t, 1)

	result, err := svc.OpenCase(context.Background(), userID, caseID)
	require.NoError(t, err)

	assert.Equal(t, legendaryID, result.Prize.ID)
	assert.Equal(t, 1, result.RollValue)
	assert.Equal(t, 2, result.DropRate)
	assert.False(t, result.AlreadyOwned)
	require.NotNil(t, result.Instance)

	// Case consumed, prize minted, credits untouched
	assert.Equal(t, 0, store.InstanceCount(userID, caseID))
	assert.Equal(t, 1, store.InstanceCount(userID, legendaryID))
	assert.Equal(t, 1000, store.UserSnapshot(userID).Credits)
}

func TestOpenCase_EpicAndCommonBands(t *testing.T) {
	_, userID, svc := newFixture(t, 5)
	result, err := svc.OpenCase(context.Background(), userID, caseID)
	require.NoError(t, err)
	assert.Equal(t, epicID, result.Prize.ID)

	_, userID, svc = newFixture(t, 99)
	result, err = svc.OpenCase(context.Background(), userID, caseID)
	require.NoError(t, err)
	assert.Equal(t, commonID, result.Prize.ID)
}

func TestOpenCase_DuplicateLegendaryCompensated(t *testing.T) {
	store, userID, svc := newFixture(t, 1)
	store.AddInstance(domain.ItemInstance{ID: uuid.New(), OwnerID: userID, CatalogItemID: legendaryID})

	result, err := svc.OpenCase(context.Background(), userID, caseID)
	require.NoError(t, err)

	assert.True(t, result.AlreadyOwned)
	assert.Nil(t, result.Instance)
	require.NotNil(t, result.Compensation)
	assert.Equal(t, 500, result.Compensation.Credits)
	assert.Equal(t, 100, result.Compensation.Experience)
	assert.Equal(t, 1000, result.CreditsBefore)
	assert.Equal(t, 1500, result.CreditsAfter)

	// No second instance, compensation committed exactly once
	assert.Equal(t, 1, store.InstanceCount(userID, legendaryID))
	user := store.UserSnapshot(userID)
	assert.Equal(t, 1500, user.Credits)
	assert.Equal(t, 100, user.Experience)
}

func TestOpenCase_StackablePrizeAlwaysMints(t *testing.T) {
	store, userID, svc := newFixture(t, 50)
	store.AddInstance(domain.ItemInstance{ID: uuid.New(), OwnerID: userID, CatalogItemID: commonID})

	result, err := svc.OpenCase(context.Background(), userID, caseID)
	require.NoError(t, err)

	assert.Equal(t, commonID, result.Prize.ID)
	assert.False(t, result.AlreadyOwned)
	assert.Equal(t, 2, store.InstanceCount(userID, commonID))
}

func TestOpenCase_NotACase(t *testing.T) {
	_, userID, svc := newFixture(t, 1)

	_, err := svc.OpenCase(context.Background(), userID, commonID)
	assert.ErrorIs(t, err, domain.ErrNotACase)
}

func TestOpenCase_CaseNotOwned(t *testing.T) {
	store, _, svc := newFixture(t, 1)
	strangerID := uuid.New()
	store.AddUser(domain.User{ID: strangerID, DiscordID: "d-2", Username: "stranger", Credits: 100})

	_, err := svc.OpenCase(context.Background(), strangerID, caseID)
	assert.ErrorIs(t, err, domain.ErrCaseNotOwned)
}

func TestOpenCase_UserNotFound(t *testing.T) {
	_, _, svc := newFixture(t, 1)

	_, err := svc.OpenCase(context.Background(), uuid.New(), caseID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestOpenCase_EmptyDropTableDoesNotConsume(t *testing.T) {
	store := memory.NewStore()
	userID := uuid.New()
	store.AddUser(domain.User{ID: userID, DiscordID: "d-1", Username: "opener", Credits: 100})
	store.AddItem(domain.CatalogItem{ID: caseID, InternalName: "hollow_case", Category: domain.CategoryCase, Active: true})
	store.AddInstance(domain.ItemInstance{ID: uuid.New(), OwnerID: userID, CatalogItemID: caseID})
	svc := newFixedRollService(store, 1)

	_, err := svc.OpenCase(context.Background(), userID, caseID)
	assert.ErrorIs(t, err, domain.ErrEmptyCase)

	// Server misconfiguration must not cost the user their case
	assert.Equal(t, 1, store.InstanceCount(userID, caseID))
}

func TestOpenCase_BadWeightSumDoesNotConsume(t *testing.T) {
	store := memory.NewStore()
	userID := uuid.New()
	store.AddUser(domain.User{ID: userID, DiscordID: "d-1", Username: "opener", Credits: 100})
	store.AddItem(domain.CatalogItem{ID: caseID, InternalName: "skewed_case", Category: domain.CategoryCase, Active: true})
	store.AddItem(domain.CatalogItem{ID: commonID, InternalName: "bait_bundle", Category: domain.CategoryGeneric, Rarity: domain.RarityCommon, Active: true})
	store.AddDropEntry(domain.DropTableEntry{ID: 1, CaseItemID: caseID, PrizeItemID: commonID, DropWeight: 90})
	store.AddInstance(domain.ItemInstance{ID: uuid.New(), OwnerID: userID, CatalogItemID: caseID})
	svc := newFixedRollService(store, 1)

	_, err := svc.OpenCase(context.Background(), userID, caseID)
	assert.ErrorIs(t, err, domain.ErrInvalidCaseContents)
	assert.Equal(t, 1, store.InstanceCount(userID, caseID))
}

func TestOpenCase_SoldOutPrizeFallsBackToCompensation(t *testing.T) {
	store, userID, svc := newFixture(t, 50)
	maxCopies := 3
	item := store.ItemSnapshot(commonID)
	item.MaxCopies = &maxCopies
	item.CopiesSold = 3
	store.AddItem(*item)

	result, err := svc.OpenCase(context.Background(), userID, caseID)
	require.NoError(t, err)

	assert.Nil(t, result.Instance)
	require.NotNil(t, result.Compensation)
	assert.Equal(t, CompensationFor(domain.RarityCommon), *result.Compensation)
	assert.Equal(t, 0, store.InstanceCount(userID, commonID))
	assert.Equal(t, 3, store.ItemSnapshot(commonID).CopiesSold)
}

func TestOpenCase_WritesRollAudit(t *testing.T) {
	store, userID, svc := newFixture(t, 1)

	_, err := svc.OpenCase(context.Background(), userID, caseID)
	require.NoError(t, err)

	audits := store.RollAudits()
	require.Len(t, audits, 1)
	assert.Equal(t, userID, audits[0].UserID)
	assert.Equal(t, caseID, audits[0].CaseItemID)
	assert.Equal(t, 1, audits[0].RollValue)
	assert.Equal(t, legendaryID, audits[0].PrizeItemID)
	assert.Equal(t, 2, audits[0].DropRate)
	assert.Len(t, audits[0].StatisticalHash, 64)
}

func TestOpenCase_AuditFailureDoesNotFailOpen(t *testing.T) {
	store, userID, svc := newFixture(t, 1)
	store.ErrOnRollAudit = assert.AnError

	result, err := svc.OpenCase(context.Background(), userID, caseID)
	require.NoError(t, err)
	assert.Equal(t, legendaryID, result.Prize.ID)
}

// Two concurrent opens of a single physical case instance: the user lock
// serializes them and the loser fails without consuming anything.
func TestOpenCase_ConcurrentSingleInstance(t *testing.T) {
	store, userID, svc := newFixture(t, 99)

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			_, results[slot] = svc.OpenCase(context.Background(), userID, caseID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range results {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, domain.ErrCaseNotOwned)
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, store.InstanceCount(userID, commonID))
}

func TestOpenCase_SecureRollInRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		roll, err := utils.SecureInt(domain.DropWeightTotal)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, roll, 0)
		assert.Less(t, roll, domain.DropWeightTotal)
	}
}
