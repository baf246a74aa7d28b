package cases

import (
	"fmt"

	"github.com/emberhold/GuildShop_Go/internal/domain"
)

// ResolvePrize maps a roll value in [0, DropWeightTotal) onto a drop table
// entry. Entries are walked in ascending weight order with ties broken by
// prize id, accumulating weights; the first entry whose cumulative weight
// exceeds the roll wins. The walk is fully deterministic: recomputing the
// winner for the same roll, for a reveal animation or an audit, always
// yields the same entry.
func ResolvePrize(entries []domain.DropTableEntry, roll int) (domain.DropTableEntry, error) {
	if roll < 0 || roll >= domain.DropWeightTotal {
		return domain.DropTableEntry{}, fmt.Errorf("roll value %d out of range [0,%d)", roll, domain.DropWeightTotal)
	}

	sorted := make([]domain.DropTableEntry, len(entries))
	copy(sorted, entries)
	domain.SortDropTable(sorted)

	cumulative := 0
	for _, entry := range sorted {
		cumulative += entry.DropWeight
		if cumulative > roll {
			return entry, nil
		}
	}
	// Unreachable when weights sum to DropWeightTotal, which callers
	// validate before rolling.
	return domain.DropTableEntry{}, fmt.Errorf("roll value %d not covered by drop table", roll)
}
