package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSortDropTable_AscendingWeightThenPrizeID(t *testing.T) {
	entries := []DropTableEntry{
		{PrizeItemID: 4, DropWeight: 20},
		{PrizeItemID: 2, DropWeight: 70},
		{PrizeItemID: 9, DropWeight: 2},
		{PrizeItemID: 3, DropWeight: 8},
	}

	SortDropTable(entries)

	assert.Equal(t, []int{9, 3, 4, 2}, []int{
		entries[0].PrizeItemID,
		entries[1].PrizeItemID,
		entries[2].PrizeItemID,
		entries[3].PrizeItemID,
	})
}

func TestSortDropTable_TiesBrokenByPrizeID(t *testing.T) {
	entries := []DropTableEntry{
		{PrizeItemID: 7, DropWeight: 50},
		{PrizeItemID: 3, DropWeight: 50},
	}

	SortDropTable(entries)

	assert.Equal(t, 3, entries[0].PrizeItemID)
	assert.Equal(t, 7, entries[1].PrizeItemID)
}

func TestSumDropWeights(t *testing.T) {
	entries := []DropTableEntry{
		{DropWeight: 2}, {DropWeight: 8}, {DropWeight: 20}, {DropWeight: 70},
	}
	assert.Equal(t, DropWeightTotal, SumDropWeights(entries))
	assert.Equal(t, 0, SumDropWeights(nil))
}
