package amm

import (
	"errors"
	"math"
	"math/big"
)

// ErrInvalidReserves marks a pool whose reserves cannot price a swap.
// Callers drop the venue instead of surfacing the error.
var ErrInvalidReserves = errors.New("invalid reserves")

const bpsDenominator = 10000

// ComputeOutput computes the constant-product swap output with the fee
// deducted from the input side:
//
//	inAfterFee = amountIn * (10000 - feeBps) / 10000
//	out        = floor(inAfterFee * reserveOut / (reserveIn + inAfterFee))
//
// The result is always floored; rounding up would promise liquidity the
// pool does not have. Uses big.Int to prevent overflow on the products.
func ComputeOutput(amountIn, reserveIn, reserveOut uint64, feeBps uint16) (uint64, error) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, ErrInvalidReserves
	}
	if feeBps >= bpsDenominator {
		return 0, ErrInvalidReserves
	}
	if amountIn == 0 {
		return 0, nil
	}

	amountInBig := new(big.Int).SetUint64(amountIn)
	feeMultiplier := new(big.Int).SetUint64(uint64(bpsDenominator - feeBps))

	inAfterFee := new(big.Int).Mul(amountInBig, feeMultiplier)
	inAfterFee.Div(inAfterFee, big.NewInt(bpsDenominator))

	numerator := new(big.Int).Mul(inAfterFee, new(big.Int).SetUint64(reserveOut))
	denominator := new(big.Int).Add(new(big.Int).SetUint64(reserveIn), inAfterFee)

	out := new(big.Int).Div(numerator, denominator)
	if !out.IsUint64() {
		return 0, ErrInvalidReserves
	}
	return out.Uint64(), nil
}

// PriceImpact estimates how far the execution rate falls below the ideal
// (marginal) rate, as a fraction in [0, 1]
func PriceImpact(amountIn, amountOut, reserveIn, reserveOut uint64) float64 {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0
	}

	idealRate := float64(reserveOut) / float64(reserveIn)
	executionRate := float64(amountOut) / float64(amountIn)
	if idealRate <= 0 {
		return 0
	}
	return math.Max(0, 1-(executionRate/idealRate))
}

// PriceImpactBps is PriceImpact expressed in basis points
func PriceImpactBps(amountIn, amountOut, reserveIn, reserveOut uint64) uint16 {
	bps := PriceImpact(amountIn, amountOut, reserveIn, reserveOut) * bpsDenominator
	if bps >= bpsDenominator {
		return bpsDenominator
	}
	return uint16(bps)
}

// ApplySlippage floors the output by the slippage tolerance:
// minOut = amountOut * (10000 - slippageBps) / 10000
func ApplySlippage(amountOut uint64, slippageBps uint16) uint64 {
	if slippageBps >= bpsDenominator {
		return 0
	}

	factor := new(big.Int).SetUint64(uint64(bpsDenominator - slippageBps))
	result := new(big.Int).Mul(new(big.Int).SetUint64(amountOut), factor)
	result.Div(result, big.NewInt(bpsDenominator))

	return result.Uint64()
}
