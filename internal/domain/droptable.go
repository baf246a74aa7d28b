package domain

import "sort"

// DropWeightTotal is the exact sum drop weights under one case must reach.
const DropWeightTotal = 100

// DropTableEntry ties one prize item to a case with an integer percentage
// weight. Weights across all entries of a case must sum to exactly
// DropWeightTotal or the case is rejected as misconfigured.
type DropTableEntry struct {
	ID          int `json:"entry_id" db:"entry_id"`
	CaseItemID  int `json:"case_item_id" db:"case_item_id"`
	PrizeItemID int `json:"prize_item_id" db:"prize_item_id"`
	DropWeight  int `json:"drop_weight" db:"drop_weight"`
}

// SortDropTable orders entries for the deterministic roll walk: ascending
// weight so the rarest prizes occupy the lowest roll values, ties broken
// by ascending prize item id. The same order is used for prize resolution
// and for any client-side reveal, so a roll value always maps to the same
// winner.
func SortDropTable(entries []DropTableEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].DropWeight != entries[j].DropWeight {
			return entries[i].DropWeight < entries[j].DropWeight
		}
		return entries[i].PrizeItemID < entries[j].PrizeItemID
	})
}

// SumDropWeights returns the total weight across entries.
func SumDropWeights(entries []DropTableEntry) int {
	total := 0
	for _, e := range entries {
		total += e.DropWeight
	}
	return total
}
