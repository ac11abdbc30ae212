package quote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allowAll(string) bool { return true }

func TestSelect_RanksByOutput(t *testing.T) {
	quotes := []*Quote{
		{Venue: "AnimeSwap", OutputAmount: 2_400_000},
		{Venue: "Liquidswap", OutputAmount: 2_500_000},
		{Venue: "PancakeSwap", OutputAmount: 2_450_000},
	}

	filtered, best := Select(quotes, allowAll)
	require.Len(t, filtered, 3)
	require.NotNil(t, best)

	assert.Equal(t, "Liquidswap", best.Venue)
	assert.True(t, best.IsBest)
	assert.Equal(t, filtered[0], best)
	assert.Equal(t, "PancakeSwap", filtered[1].Venue)
	assert.Equal(t, "AnimeSwap", filtered[2].Venue)

	// Exactly one best
	count := 0
	for _, q := range filtered {
		if q.IsBest {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSelect_StrictMaximum(t *testing.T) {
	// One raw unit of difference decides
	filtered, best := Select([]*Quote{
		{Venue: "SushiSwap", OutputAmount: 2_500_000_000},
		{Venue: "Liquidswap", OutputAmount: 2_500_000_001},
	}, allowAll)

	require.Len(t, filtered, 2)
	assert.Equal(t, "Liquidswap", best.Venue)
	assert.False(t, filtered[1].IsBest)
}

func TestSelect_TieBreaksByName(t *testing.T) {
	filtered, best := Select([]*Quote{
		{Venue: "PancakeSwap", OutputAmount: 1000},
		{Venue: "AnimeSwap", OutputAmount: 1000},
		{Venue: "Liquidswap", OutputAmount: 1000},
	}, allowAll)

	require.Len(t, filtered, 3)
	assert.Equal(t, "AnimeSwap", best.Venue)
	assert.Equal(t, "Liquidswap", filtered[1].Venue)
	assert.Equal(t, "PancakeSwap", filtered[2].Venue)
}

func TestSelect_DropsZeroOutput(t *testing.T) {
	filtered, best := Select([]*Quote{
		{Venue: "Liquidswap", OutputAmount: 0},
		{Venue: "SushiSwap", OutputAmount: 100},
	}, allowAll)

	require.Len(t, filtered, 1)
	assert.Equal(t, "SushiSwap", best.Venue)
}

func TestSelect_DropsDisallowedVenues(t *testing.T) {
	// A disallowed venue must not win even with the best price
	filtered, best := Select([]*Quote{
		{Venue: "BathSwap", OutputAmount: 9_999_999},
		{Venue: "Liquidswap", OutputAmount: 2_500_000},
	}, func(name string) bool { return name != "BathSwap" })

	require.Len(t, filtered, 1)
	assert.Equal(t, "Liquidswap", best.Venue)
}

func TestSelect_Empty(t *testing.T) {
	filtered, best := Select(nil, allowAll)
	assert.Empty(t, filtered)
	assert.Nil(t, best)

	filtered, best = Select([]*Quote{{Venue: "Liquidswap", OutputAmount: 0}}, allowAll)
	assert.Empty(t, filtered)
	assert.Nil(t, best)
}

func TestSelect_ClearsStaleBestMarks(t *testing.T) {
	// Re-selecting previously marked quotes must not leave two bests
	quotes := []*Quote{
		{Venue: "Liquidswap", OutputAmount: 100, IsBest: true},
		{Venue: "SushiSwap", OutputAmount: 200, IsBest: true},
	}

	filtered, best := Select(quotes, allowAll)
	require.Len(t, filtered, 2)
	assert.Equal(t, "SushiSwap", best.Venue)
	assert.False(t, filtered[1].IsBest)
}
