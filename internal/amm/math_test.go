package amm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOutput_KnownValues(t *testing.T) {
	// Balanced pool, 30 bps fee:
	// inAfterFee = 1000 * 9970 / 10000 = 997
	// out = floor(997 * 1000000 / (1000000 + 997)) = 996006
	out, err := ComputeOutput(1000, 1_000_000, 1_000_000, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(996006), out)

	// Zero fee: out = floor(1000 * 1000000 / 1001000) = 999
	out, err = ComputeOutput(1000, 1_000_000, 1_000_000, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(999), out)
}

func TestComputeOutput_ZeroInput(t *testing.T) {
	out, err := ComputeOutput(0, 1_000_000, 1_000_000, 30)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), out)
}

func TestComputeOutput_InvalidReserves(t *testing.T) {
	_, err := ComputeOutput(1000, 0, 1_000_000, 30)
	assert.ErrorIs(t, err, ErrInvalidReserves)

	_, err = ComputeOutput(1000, 1_000_000, 0, 30)
	assert.ErrorIs(t, err, ErrInvalidReserves)

	// 100% fee can never price a swap
	_, err = ComputeOutput(1000, 1_000_000, 1_000_000, 10000)
	assert.ErrorIs(t, err, ErrInvalidReserves)
}

func TestComputeOutput_NoOverflow(t *testing.T) {
	// Products of max-uint64 operands must not wrap
	out, err := ComputeOutput(1<<63, 1<<62, 1<<62, 30)
	require.NoError(t, err)
	assert.Less(t, out, uint64(1)<<62)
}

func TestComputeOutput_Monotonic(t *testing.T) {
	const reserveIn, reserveOut = 4_985_074_000, 4_492_248_000

	var prev uint64
	for amount := uint64(1000); amount <= 100_000_000; amount *= 10 {
		out, err := ComputeOutput(amount, reserveIn, reserveOut, 30)
		require.NoError(t, err)

		// Output grows with input but never reaches the far reserve
		assert.GreaterOrEqual(t, out, prev)
		assert.Less(t, out, uint64(reserveOut))
		prev = out
	}
}

func TestPriceImpact(t *testing.T) {
	// A tiny trade against a deep pool barely moves the price
	out, err := ComputeOutput(1000, 1_000_000_000, 1_000_000_000, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, PriceImpact(1000, out, 1_000_000_000, 1_000_000_000), 0.001)

	// Swapping the whole reserve in roughly halves the execution rate
	out, err = ComputeOutput(1_000_000, 1_000_000, 1_000_000, 0)
	require.NoError(t, err)
	impact := PriceImpact(1_000_000, out, 1_000_000, 1_000_000)
	assert.InDelta(t, 0.5, impact, 0.01)
}

func TestPriceImpactBps_Bounds(t *testing.T) {
	assert.Equal(t, uint16(0), PriceImpactBps(0, 0, 1000, 1000))
	// Zero output on a non-zero input is a total loss, capped at 10000
	assert.Equal(t, uint16(10000), PriceImpactBps(1000, 0, 1000, 1000))
}

func TestApplySlippage(t *testing.T) {
	assert.Equal(t, uint64(995000), ApplySlippage(1_000_000, 50))
	assert.Equal(t, uint64(1_000_000), ApplySlippage(1_000_000, 0))
	// Flooring: 999 * 9950 / 10000 = 994.005 -> 994
	assert.Equal(t, uint64(994), ApplySlippage(999, 50))
	assert.Equal(t, uint64(0), ApplySlippage(1_000_000, 10000))
}
