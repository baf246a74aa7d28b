package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/emberhold/GuildShop_Go/internal/admin"
	"github.com/emberhold/GuildShop_Go/internal/cases"
	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/shop"
)

// Hand-rolled testify mocks for the service interfaces the handlers depend on.

type MockShopService struct {
	mock.Mock
}

func (m *MockShopService) Purchase(ctx context.Context, userID uuid.UUID, itemID, quantity int) (*shop.PurchaseResult, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shop.PurchaseResult), args.Error(1)
}

type MockCaseService struct {
	mock.Mock
}

func (m *MockCaseService) OpenCase(ctx context.Context, userID uuid.UUID, caseItemID int) (*cases.RollResult, error) {
	args := m.Called(ctx, userID, caseItemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cases.RollResult), args.Error(1)
}

type MockEquipmentService struct {
	mock.Mock
}

func (m *MockEquipmentService) Equip(ctx context.Context, userID uuid.UUID, itemID int) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

func (m *MockEquipmentService) Unequip(ctx context.Context, userID uuid.UUID, category domain.Category) error {
	return m.Called(ctx, userID, category).Error(0)
}

func (m *MockEquipmentService) UnequipBadge(ctx context.Context, userID uuid.UUID, badgeID int) error {
	return m.Called(ctx, userID, badgeID).Error(0)
}

func (m *MockEquipmentService) BatchEquip(ctx context.Context, userID uuid.UUID, itemIDs []int) error {
	return m.Called(ctx, userID, itemIDs).Error(0)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) DeleteItem(ctx context.Context, itemID int) (*admin.DeletionReport, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*admin.DeletionReport), args.Error(1)
}

type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) GetActiveItems(ctx context.Context) ([]domain.CatalogItem, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) FeaturedSelection(ctx context.Context, day time.Time) ([]domain.CatalogItem, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) DailySelection(ctx context.Context, userID uuid.UUID, day time.Time) ([]domain.CatalogItem, error) {
	args := m.Called(ctx, userID, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CatalogItem), args.Error(1)
}

func (m *MockCatalogService) IsShownTo(ctx context.Context, userID uuid.UUID, itemID int, now time.Time) (bool, error) {
	args := m.Called(ctx, userID, itemID, now)
	return args.Bool(0), args.Error(1)
}

// stubPool satisfies database.Pool for readiness checks.
type stubPool struct {
	pingErr error
}

func (p *stubPool) Ping(ctx context.Context) error { return p.pingErr }
func (p *stubPool) Close()                         {}
