package quote

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

func rawValues(vals ...string) []json.RawMessage {
	out := make([]json.RawMessage, len(vals))
	for i, v := range vals {
		out[i] = json.RawMessage(v)
	}
	return out
}

func TestContractQuoter_Simulate(t *testing.T) {
	reg := registry.Default()
	view := &fakeViewCaller{values: rawValues(
		`"2500000"`, `"1"`, `"30"`, `"15"`, `"1"`,
	)}
	q := NewContractQuoter(view, reg, "0xagg", nil)

	quote, err := q.Simulate(context.Background(), aptUSDCRequest())
	require.NoError(t, err)

	assert.Equal(t, registry.AggregatorVenue, quote.Venue)
	assert.Equal(t, uint64(2_500_000), quote.OutputAmount)
	assert.Equal(t, "2.5", quote.OutputDecimal)
	assert.Equal(t, uint16(30), quote.FeeBps)
	assert.Equal(t, uint16(15), quote.PriceImpactBps)
	assert.Equal(t, 1, quote.Hops)
	assert.Equal(t, []string{registry.AggregatorVenue}, quote.Route)
}

func TestContractQuoter_RouteDecoding(t *testing.T) {
	reg := registry.Default()
	view := &fakeViewCaller{values: rawValues(
		`"2500000"`, `"1"`, `"30"`, `"15"`, `"2"`, `["1","7"]`,
	)}
	q := NewContractQuoter(view, reg, "0xagg", nil)

	quote, err := q.Simulate(context.Background(), aptUSDCRequest())
	require.NoError(t, err)

	assert.Equal(t, 2, quote.Hops)
	assert.Equal(t, []string{"Liquidswap", "PancakeSwap"}, quote.Route)
}

func TestContractQuoter_ZeroOutputIsNoQuote(t *testing.T) {
	view := &fakeViewCaller{values: rawValues(
		`"0"`, `"1"`, `"30"`, `"0"`, `"1"`,
	)}
	q := NewContractQuoter(view, registry.Default(), "0xagg", nil)

	_, err := q.Simulate(context.Background(), aptUSDCRequest())
	assert.Error(t, err)
}

func TestContractQuoter_ShortTuple(t *testing.T) {
	view := &fakeViewCaller{values: rawValues(`"2500000"`, `"1"`)}
	q := NewContractQuoter(view, registry.Default(), "0xagg", nil)

	_, err := q.Simulate(context.Background(), aptUSDCRequest())
	assert.Error(t, err)
}

func TestContractQuoter_ZeroHopsNormalized(t *testing.T) {
	view := &fakeViewCaller{values: rawValues(
		`"2500000"`, `"1"`, `"30"`, `"0"`, `"0"`,
	)}
	q := NewContractQuoter(view, registry.Default(), "0xagg", nil)

	quote, err := q.Simulate(context.Background(), aptUSDCRequest())
	require.NoError(t, err)
	assert.Equal(t, 1, quote.Hops)
}
