// Package payload renders a selected quote into the entry-function
// descriptor an external wallet signs and submits. The service never
// holds keys; the descriptor is the hand-off boundary.
package payload

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/amm"
	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

// Build modes. Aggregator routes through the on-chain aggregator
// contract; direct calls a venue's own entry function; cross-address
// delivers the output coin to a different account.
const (
	ModeAggregator   = "aggregator"
	ModeDirect       = "direct"
	ModeCrossAddress = "cross_address"
)

const (
	// DefaultSlippageBps bounds how much worse than the quote the
	// executed output may be before the transaction aborts.
	DefaultSlippageBps = 50

	// DefaultDeadline is how long a built payload stays submittable.
	DefaultDeadline = 20 * time.Minute
)

var (
	ErrUnknownVenue    = errors.New("unknown venue")
	ErrUnsupportedMode = errors.New("venue does not support requested mode")
)

// Instruction is the wallet-facing transaction descriptor. All numeric
// arguments are decimal strings, matching the node's JSON encoding.
type Instruction struct {
	Type          string   `json:"type"`
	Function      string   `json:"function"`
	TypeArguments []string `json:"type_arguments"`
	Arguments     []string `json:"arguments"`
}

// Params describes the swap to encode
type Params struct {
	Mode        string
	Venue       string
	InputToken  string
	OutputToken string
	AmountIn    uint64
	QuotedOut   uint64 // the quote being executed; minOut derives from it
	SlippageBps uint16 // zero means DefaultSlippageBps
	Receiver    string // cross-address mode only
}

// directBuilder encodes a swap against one venue's own entry function
type directBuilder func(pool *registry.PoolInstance, p Params, amountIn, minOut string) Instruction

// Venues with a known direct entry function. Everything else must route
// through the aggregator contract.
var directBuilders = map[string]directBuilder{
	"SushiSwap": func(pool *registry.PoolInstance, p Params, amountIn, minOut string) Instruction {
		return Instruction{
			Type:          "entry_function_payload",
			Function:      "0x31a6675cbe84365bf2b0cbce617ece6c47023ef70826533bde5203d32171dc3c::swap::swap_exact_in",
			TypeArguments: []string{p.InputToken, p.OutputToken},
			Arguments:     []string{pool.Address, amountIn, minOut},
		}
	},
	"Aux": func(pool *registry.PoolInstance, p Params, amountIn, minOut string) Instruction {
		return Instruction{
			Type:          "entry_function_payload",
			Function:      "0xbd35135844473187163ca197ca93b2ab014370587bb0ed3befff9e902d6bb541::amm::swap_exact_coin_for_coin_with_signer",
			TypeArguments: []string{p.InputToken, p.OutputToken},
			Arguments:     []string{amountIn, minOut},
		}
	},
}

// Builder encodes swap instructions against the venue catalog
type Builder struct {
	registry          *registry.Registry
	aggregatorAddress string
	logger            *logrus.Logger
	now               func() time.Time
}

// NewBuilder creates a payload builder targeting the aggregator contract
// at the given address
func NewBuilder(reg *registry.Registry, aggregatorAddress string, logger *logrus.Logger) *Builder {
	if logger == nil {
		logger = logrus.New()
	}
	return &Builder{
		registry:          reg,
		aggregatorAddress: aggregatorAddress,
		logger:            logger,
		now:               time.Now,
	}
}

// MinOut applies the slippage bound to the quoted output
func MinOut(quotedOut uint64, slippageBps uint16) uint64 {
	if slippageBps == 0 {
		slippageBps = DefaultSlippageBps
	}
	return amm.ApplySlippage(quotedOut, slippageBps)
}

// Build encodes the instruction for the given mode. The aggregator
// pseudo-venue always builds in aggregator mode regardless of p.Mode.
func (b *Builder) Build(p Params) (*Instruction, error) {
	if p.AmountIn == 0 || p.QuotedOut == 0 {
		return nil, errors.New("amount and quoted output must be positive")
	}

	amountIn := strconv.FormatUint(p.AmountIn, 10)
	minOut := strconv.FormatUint(MinOut(p.QuotedOut, p.SlippageBps), 10)
	deadline := strconv.FormatInt(b.now().Add(DefaultDeadline).Unix(), 10)

	if p.Venue == registry.AggregatorVenue {
		return b.buildAggregator(nil, p, amountIn, minOut, deadline)
	}

	v, ok := b.registry.Venue(p.Venue)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVenue, p.Venue)
	}
	pool, ok := v.Pool(p.InputToken, p.OutputToken)
	if !ok {
		return nil, fmt.Errorf("%s has no pool for pair", p.Venue)
	}

	switch p.Mode {
	case ModeDirect:
		build, ok := directBuilders[p.Venue]
		if !ok {
			return nil, fmt.Errorf("%w: %s has no direct entry function", ErrUnsupportedMode, p.Venue)
		}
		inst := build(pool, p, amountIn, minOut)
		return &inst, nil

	case ModeCrossAddress:
		if !v.SupportsCrossAddress {
			return nil, fmt.Errorf("%w: %s cannot deliver cross-address", ErrUnsupportedMode, p.Venue)
		}
		if p.Receiver == "" {
			return nil, errors.New("cross-address swap requires a receiver")
		}
		return &Instruction{
			Type:          "entry_function_payload",
			Function:      b.aggregatorAddress + "::multiswap_aggregator_v4::swap_cross_address_v2",
			TypeArguments: []string{p.InputToken, p.OutputToken},
			Arguments:     []string{p.Receiver, amountIn, minOut, deadline},
		}, nil

	case ModeAggregator, "":
		return b.buildAggregator(v, p, amountIn, minOut, deadline)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedMode, p.Mode)
	}
}

func (b *Builder) buildAggregator(v *registry.Venue, p Params, amountIn, minOut, deadline string) (*Instruction, error) {
	args := []string{amountIn, minOut, deadline}
	if v != nil && v.NeedsPoolArg {
		pool, ok := v.Pool(p.InputToken, p.OutputToken)
		if !ok {
			return nil, fmt.Errorf("%s has no pool for pair", p.Venue)
		}
		args = append([]string{pool.Address}, args...)
	}
	return &Instruction{
		Type:          "entry_function_payload",
		Function:      b.aggregatorAddress + "::multiswap_aggregator_v4::swap_exact_input",
		TypeArguments: []string{p.InputToken, p.OutputToken},
		Arguments:     args,
	}, nil
}
