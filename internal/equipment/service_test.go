package equipment

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emberhold/GuildShop_Go/internal/concurrency"
	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/event"
	"github.com/emberhold/GuildShop_Go/internal/inventory"
	"github.com/emberhold/GuildShop_Go/internal/repository/memory"
)

const (
	redColorID  = 1
	blueColorID = 2
	rodID       = 3
	reelPartID  = 4
	badgeOneID  = 5
	badgeTwoID  = 6
	crateID     = 7
)

func newEquipFixture(t *testing.T) (*memory.Store, uuid.UUID, Service) {
	t.Helper()
	store := memory.NewStore()

	userID := uuid.New()
	store.AddUser(domain.User{ID: userID, DiscordID: "d-1", Username: "angler", Credits: 100})

	redRole := "role-red"
	blueRole := "role-blue"
	rodRole := "role-rod"
	store.AddItem(domain.CatalogItem{ID: redColorID, InternalName: "red_color", Category: domain.CategoryColor, Active: true, ExternalRoleID: &redRole})
	store.AddItem(domain.CatalogItem{ID: blueColorID, InternalName: "blue_color", Category: domain.CategoryColor, Active: true, ExternalRoleID: &blueRole})
	durability := 100
	store.AddItem(domain.CatalogItem{ID: rodID, InternalName: "oak_rod", Category: domain.CategoryRod, Active: true, ExternalRoleID: &rodRole, Durability: &durability})
	store.AddItem(domain.CatalogItem{ID: reelPartID, InternalName: "brass_reel", Category: domain.CategoryRodPart, Active: true, Durability: &durability})
	store.AddItem(domain.CatalogItem{ID: badgeOneID, InternalName: "tide_badge", Category: domain.CategoryBadge, Active: true})
	store.AddItem(domain.CatalogItem{ID: badgeTwoID, InternalName: "storm_badge", Category: domain.CategoryBadge, Active: true})
	store.AddItem(domain.CatalogItem{ID: crateID, InternalName: "mystery_case", Category: domain.CategoryCase, Active: true})

	svc := NewService(store, inventory.NewLedger(store), event.NewMemoryBus(), concurrency.NewLockManager())
	return store, userID, svc
}

func giveInstance(store *memory.Store, userID uuid.UUID, itemID int) uuid.UUID {
	id := uuid.New()
	store.AddInstance(domain.ItemInstance{ID: id, OwnerID: userID, CatalogItemID: itemID})
	return id
}

func TestEquip_ColorGrantsRole(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, redColorID)

	err := svc.Equip(context.Background(), userID, redColorID)
	require.NoError(t, err)

	user := store.UserSnapshot(userID)
	require.NotNil(t, user.EquippedColorID)
	assert.Equal(t, redColorID, *user.EquippedColorID)

	entries := store.OutboxEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.RoleChangeGrant, entries[0].Kind)
	assert.Equal(t, "role-red", entries[0].ExternalRoleID)
	assert.Equal(t, domain.RoleChangePending, entries[0].Status)
}

func TestEquip_ReplacementRevokesOldRole(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, redColorID)
	giveInstance(store, userID, blueColorID)

	require.NoError(t, svc.Equip(context.Background(), userID, redColorID))
	require.NoError(t, svc.Equip(context.Background(), userID, blueColorID))

	user := store.UserSnapshot(userID)
	require.NotNil(t, user.EquippedColorID)
	assert.Equal(t, blueColorID, *user.EquippedColorID)

	// grant red, then revoke red + grant blue
	entries := store.OutboxEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, domain.RoleChangeGrant, entries[0].Kind)
	assert.Equal(t, "role-red", entries[0].ExternalRoleID)
	assert.Equal(t, domain.RoleChangeRevoke, entries[1].Kind)
	assert.Equal(t, "role-red", entries[1].ExternalRoleID)
	assert.Equal(t, domain.RoleChangeGrant, entries[2].Kind)
	assert.Equal(t, "role-blue", entries[2].ExternalRoleID)
}

func TestEquip_NotOwned(t *testing.T) {
	_, userID, svc := newEquipFixture(t)

	err := svc.Equip(context.Background(), userID, redColorID)
	assert.ErrorIs(t, err, domain.ErrItemNotOwned)
}

func TestEquip_CaseNotEquippable(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, crateID)

	err := svc.Equip(context.Background(), userID, crateID)
	assert.ErrorIs(t, err, domain.ErrItemNotEquippable)
}

func TestEquip_UserNotFound(t *testing.T) {
	_, _, svc := newEquipFixture(t)

	err := svc.Equip(context.Background(), uuid.New(), redColorID)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestEquip_BadgeSingleSlot(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, badgeOneID)
	giveInstance(store, userID, badgeTwoID)

	require.NoError(t, svc.Equip(context.Background(), userID, badgeOneID))
	require.NoError(t, svc.Equip(context.Background(), userID, badgeTwoID))

	user := store.UserSnapshot(userID)
	require.NotNil(t, user.EquippedBadgeID)
	assert.Equal(t, badgeTwoID, *user.EquippedBadgeID)
}

func TestEquip_RodPartAttachesToEquippedRod(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	rodInstID := giveInstance(store, userID, rodID)
	partInstID := giveInstance(store, userID, reelPartID)

	require.NoError(t, svc.Equip(context.Background(), userID, rodID))
	require.NoError(t, svc.Equip(context.Background(), userID, reelPartID))

	rodInst := store.InstanceSnapshot(rodInstID)
	require.NotNil(t, rodInst.EquippedPartID)
	assert.Equal(t, partInstID, *rodInst.EquippedPartID)
}

func TestEquip_RodPartWithoutRod(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, reelPartID)

	err := svc.Equip(context.Background(), userID, reelPartID)
	assert.ErrorIs(t, err, domain.ErrItemNotEquippable)
}

func TestUnequip_ClearsSlotAndRevokesRole(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, redColorID)
	require.NoError(t, svc.Equip(context.Background(), userID, redColorID))

	err := svc.Unequip(context.Background(), userID, domain.CategoryColor)
	require.NoError(t, err)

	user := store.UserSnapshot(userID)
	assert.Nil(t, user.EquippedColorID)

	entries := store.OutboxEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RoleChangeRevoke, entries[1].Kind)
	assert.Equal(t, "role-red", entries[1].ExternalRoleID)
}

func TestUnequip_EmptySlotIsNoop(t *testing.T) {
	store, userID, svc := newEquipFixture(t)

	err := svc.Unequip(context.Background(), userID, domain.CategoryColor)
	require.NoError(t, err)
	assert.Empty(t, store.OutboxEntries())
}

func TestUnequip_UnknownCategory(t *testing.T) {
	_, userID, svc := newEquipFixture(t)

	err := svc.Unequip(context.Background(), userID, domain.CategoryGeneric)
	assert.ErrorIs(t, err, domain.ErrItemNotEquippable)
}

func TestUnequipBadge(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, badgeOneID)
	require.NoError(t, svc.Equip(context.Background(), userID, badgeOneID))

	err := svc.UnequipBadge(context.Background(), userID, badgeTwoID)
	assert.ErrorIs(t, err, domain.ErrBadgeNotEquipped)

	err = svc.UnequipBadge(context.Background(), userID, badgeOneID)
	require.NoError(t, err)
	assert.Nil(t, store.UserSnapshot(userID).EquippedBadgeID)
}

func TestBatchEquip_ValidatesUpFront(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, redColorID)
	// badgeOneID deliberately not owned

	err := svc.BatchEquip(context.Background(), userID, []int{redColorID, badgeOneID})
	assert.ErrorIs(t, err, domain.ErrItemNotOwned)

	// Nothing mutated: validation failed before any equip ran
	user := store.UserSnapshot(userID)
	assert.Nil(t, user.EquippedColorID)
	assert.Empty(t, store.OutboxEntries())
}

func TestBatchEquip_RejectsTwoBadges(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, badgeOneID)
	giveInstance(store, userID, badgeTwoID)

	err := svc.BatchEquip(context.Background(), userID, []int{badgeOneID, badgeTwoID})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, store.UserSnapshot(userID).EquippedBadgeID)
}

func TestBatchEquip_Success(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, redColorID)
	giveInstance(store, userID, rodID)
	giveInstance(store, userID, badgeOneID)

	err := svc.BatchEquip(context.Background(), userID, []int{redColorID, rodID, badgeOneID})
	require.NoError(t, err)

	user := store.UserSnapshot(userID)
	require.NotNil(t, user.EquippedColorID)
	require.NotNil(t, user.EquippedRodID)
	require.NotNil(t, user.EquippedBadgeID)
	assert.Equal(t, redColorID, *user.EquippedColorID)
	assert.Equal(t, rodID, *user.EquippedRodID)
	assert.Equal(t, badgeOneID, *user.EquippedBadgeID)
}

func TestBatchEquip_EmptyBatch(t *testing.T) {
	_, userID, svc := newEquipFixture(t)

	err := svc.BatchEquip(context.Background(), userID, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Whatever sequence of equips runs, each slot holds at most one item.
func TestEquip_SlotExclusivity(t *testing.T) {
	store, userID, svc := newEquipFixture(t)
	giveInstance(store, userID, redColorID)
	giveInstance(store, userID, blueColorID)
	giveInstance(store, userID, badgeOneID)
	giveInstance(store, userID, badgeTwoID)

	sequence := []int{redColorID, badgeOneID, blueColorID, badgeTwoID, redColorID}
	for _, itemID := range sequence {
		require.NoError(t, svc.Equip(context.Background(), userID, itemID))
	}

	user := store.UserSnapshot(userID)
	require.NotNil(t, user.EquippedColorID)
	require.NotNil(t, user.EquippedBadgeID)
	assert.Equal(t, redColorID, *user.EquippedColorID)
	assert.Equal(t, badgeTwoID, *user.EquippedBadgeID)
}
