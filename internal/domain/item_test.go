package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRarityRank_Ordered(t *testing.T) {
	order := []Rarity{RarityCommon, RarityUncommon, RarityRare, RarityEpic, RarityLegendary}
	for i := 1; i < len(order); i++ {
		assert.Greater(t, order[i].Rank(), order[i-1].Rank(), "rarity %s must outrank %s", order[i], order[i-1])
	}
}

func TestRarityRank_UnknownDefaultsToCommon(t *testing.T) {
	assert.Equal(t, RarityCommon.Rank(), Rarity("HOLOGRAPHIC").Rank())
}

func TestCategoryStackable(t *testing.T) {
	assert.False(t, CategoryColor.Stackable())
	assert.False(t, CategoryBadge.Stackable())
	assert.False(t, CategoryRod.Stackable())
	assert.True(t, CategoryCase.Stackable())
	assert.True(t, CategoryRodPart.Stackable())
	assert.True(t, CategoryGeneric.Stackable())
}

func TestCatalogItem_CopiesRemaining(t *testing.T) {
	maxCopies := 10

	capped := &CatalogItem{MaxCopies: &maxCopies, CopiesSold: 7}
	assert.Equal(t, 3, capped.CopiesRemaining())
	assert.True(t, capped.IsCapped())

	uncapped := &CatalogItem{}
	assert.Equal(t, -1, uncapped.CopiesRemaining())
	assert.False(t, uncapped.IsCapped())

	soldOut := &CatalogItem{MaxCopies: &maxCopies, CopiesSold: 10}
	assert.Equal(t, 0, soldOut.CopiesRemaining())
}

func TestCatalogItem_IsExpired(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.True(t, (&CatalogItem{ExpiresAt: &past}).IsExpired(now))
	assert.False(t, (&CatalogItem{ExpiresAt: &future}).IsExpired(now))
	assert.False(t, (&CatalogItem{}).IsExpired(now))
}

func TestNewInstance_GearStatsFromCatalog(t *testing.T) {
	durability := 40
	owner := uuid.New()
	rod := &CatalogItem{ID: 5, Category: CategoryRod, Durability: &durability}

	inst := NewInstance(owner, rod, time.Now())

	require.NotNil(t, inst.Durability)
	require.NotNil(t, inst.MaxDurability)
	assert.Equal(t, 40, *inst.Durability)
	assert.Equal(t, 40, *inst.MaxDurability)
	assert.Equal(t, owner, inst.OwnerID)
	assert.Equal(t, 5, inst.CatalogItemID)
}

func TestNewInstance_InfiniteDurabilityExempt(t *testing.T) {
	durability := 40
	part := &CatalogItem{ID: 6, Category: CategoryRodPart, Durability: &durability, InfiniteDurability: true}

	inst := NewInstance(uuid.New(), part, time.Now())

	assert.Nil(t, inst.Durability)
	assert.Nil(t, inst.MaxDurability)
}

func TestNewInstance_NonGearHasNoStats(t *testing.T) {
	inst := NewInstance(uuid.New(), &CatalogItem{ID: 7, Category: CategoryColor}, time.Now())
	assert.Nil(t, inst.Durability)
	assert.Nil(t, inst.MaxDurability)
}
