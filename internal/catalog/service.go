package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/emberhold/GuildShop_Go/internal/domain"
	"github.com/emberhold/GuildShop_Go/internal/logger"
	"github.com/emberhold/GuildShop_Go/internal/repository"
)

// Service is the read model over purchasable items. It owns the featured
// rotation and each user's personalized daily selection, both derived
// deterministically from the calendar day so any replica computes the
// same layout without coordination.
type Service interface {
	GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error)
	GetActiveItems(ctx context.Context) ([]domain.CatalogItem, error)
	FeaturedSelection(ctx context.Context, day time.Time) ([]domain.CatalogItem, error)
	DailySelection(ctx context.Context, userID uuid.UUID, day time.Time) ([]domain.CatalogItem, error)

	// IsShownTo reports whether the item is part of the user's current
	// shop layout (featured rotation or personalized daily selection).
	// Purchase validation uses this to reject items the user was never
	// shown today.
	IsShownTo(ctx context.Context, userID uuid.UUID, itemID int, now time.Time) (bool, error)
}

type service struct {
	repo          repository.Economy
	featuredSlots int
	dailySlots    int

	// selection ids per user per day; recomputing is cheap but the shop
	// layout is consulted on every purchase attempt
	dailyCache *expirable.LRU[string, []int]
}

// NewService creates a new catalog service
func NewService(repo repository.Economy, featuredSlots, dailySlots int) Service {
	return &service{
		repo:          repo,
		featuredSlots: featuredSlots,
		dailySlots:    dailySlots,
		dailyCache:    expirable.NewLRU[string, []int](DailyCacheSize, nil, DailyCacheTTL),
	}
}

func (s *service) GetItem(ctx context.Context, itemID int) (*domain.CatalogItem, error) {
	item, err := s.repo.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	if item == nil {
		return nil, domain.ErrItemNotFound
	}
	return item, nil
}

func (s *service) GetActiveItems(ctx context.Context) ([]domain.CatalogItem, error) {
	items, err := s.repo.GetActiveItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active items: %w", err)
	}
	return items, nil
}

// purchasablePool returns active, unexpired, in-stock items in stable id order.
func (s *service) purchasablePool(ctx context.Context, now time.Time) ([]domain.CatalogItem, error) {
	items, err := s.repo.GetActiveItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get active items: %w", err)
	}

	pool := make([]domain.CatalogItem, 0, len(items))
	for _, item := range items {
		if item.IsExpired(now) {
			continue
		}
		if item.IsCapped() && item.CopiesRemaining() == 0 {
			continue
		}
		pool = append(pool, item)
	}
	return pool, nil
}

func (s *service) FeaturedSelection(ctx context.Context, day time.Time) ([]domain.CatalogItem, error) {
	pool, err := s.purchasablePool(ctx, day)
	if err != nil {
		return nil, err
	}
	return pickDeterministic(pool, featuredSeed(day), s.featuredSlots), nil
}

func (s *service) DailySelection(ctx context.Context, userID uuid.UUID, day time.Time) ([]domain.CatalogItem, error) {
	pool, err := s.purchasablePool(ctx, day)
	if err != nil {
		return nil, err
	}

	selection := pickDeterministic(pool, dailySeed(userID, day), s.dailySlots)

	ids := make([]int, len(selection))
	for i, item := range selection {
		ids[i] = item.ID
	}
	s.dailyCache.Add(dailyCacheKey(userID, day), ids)

	return selection, nil
}

func (s *service) IsShownTo(ctx context.Context, userID uuid.UUID, itemID int, now time.Time) (bool, error) {
	log := logger.FromContext(ctx)

	if ids, ok := s.dailyCache.Get(dailyCacheKey(userID, now)); ok {
		for _, id := range ids {
			if id == itemID {
				return true, nil
			}
		}
		// Cached daily selection missed; the item may still be featured.
	} else {
		daily, err := s.DailySelection(ctx, userID, now)
		if err != nil {
			return false, err
		}
		for _, item := range daily {
			if item.ID == itemID {
				return true, nil
			}
		}
	}

	featured, err := s.FeaturedSelection(ctx, now)
	if err != nil {
		return false, err
	}
	for _, item := range featured {
		if item.ID == itemID {
			return true, nil
		}
	}

	log.Debug(LogMsgItemNotInLayout, "user_id", userID, "item_id", itemID)
	return false, nil
}
