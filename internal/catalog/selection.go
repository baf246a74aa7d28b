package catalog

import (
	"fmt"
	"hash/fnv"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/emberhold/GuildShop_Go/internal/domain"
)

// dayStamp collapses a timestamp to its UTC calendar day. Selections are
// keyed on this, so "the same day" means the same day everywhere.
func dayStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func dailyCacheKey(userID uuid.UUID, day time.Time) string {
	return userID.String() + "|" + dayStamp(day)
}

// featuredSeed derives the shared rotation seed for one calendar day.
func featuredSeed(day time.Time) int64 {
	return hashSeed("featured|" + dayStamp(day))
}

// dailySeed derives one user's personal selection seed for one calendar day.
func dailySeed(userID uuid.UUID, day time.Time) int64 {
	return hashSeed(userID.String() + "|" + dayStamp(day))
}

func hashSeed(s string) int64 {
	h := fnv.New64a()
	_, _ = fmt.Fprint(h, s)
	return int64(h.Sum64())
}

// pickDeterministic shuffles a copy of the pool with the given seed and
// takes the first n items. The pool is sorted by id first so the result
// depends only on (pool contents, seed), not input order.
//
// This is layout selection, not reward resolution: math/rand seeded for
// reproducibility is the point here. Case rolls use crypto/rand.
func pickDeterministic(pool []domain.CatalogItem, seed int64, n int) []domain.CatalogItem {
	if n <= 0 || len(pool) == 0 {
		return nil
	}

	picked := make([]domain.CatalogItem, len(pool))
	copy(picked, pool)
	sort.Slice(picked, func(i, j int) bool { return picked[i].ID < picked[j].ID })

	rnd := rand.New(rand.NewSource(seed)) //nolint:gosec // deterministic layout shuffle, not security critical
	rnd.Shuffle(len(picked), func(i, j int) {
		picked[i], picked[j] = picked[j], picked[i]
	})

	if n > len(picked) {
		n = len(picked)
	}
	return picked[:n]
}
