package registry

import (
	"fmt"
	"sort"
	"strings"
)

// Capability describes how a venue is quoted
type Capability string

const (
	// CapReservePair venues expose raw AMM reserves in a pool resource
	CapReservePair Capability = "reserve-pair"
	// CapOrderBook venues expose an on-chain order book (best-ask pricing)
	CapOrderBook Capability = "order-book"
	// CapExternalAPI venues are priced through an off-chain service
	CapExternalAPI Capability = "external-api"
)

// Well-known coin types
const (
	TokenAPT     = "0x1::aptos_coin::AptosCoin"
	TokenUSDC    = "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::USDC"
	TokenUSDT    = "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::USDT"
	TokenAuxUSDC = "0x5e156f1207d0ebfa19a9eeff00d62a282278fb8719f4fab3a586a0a2c0fffbea::coin::T"
)

// AggregatorVenue labels the quote reported by the on-chain aggregator
// contract; it is not a configured venue but shares the quote shape.
const AggregatorVenue = "Aggregator"

// TokenDecimals maps coin types to their decimal places
var TokenDecimals = map[string]uint8{
	TokenAPT:     8,
	TokenUSDC:    6,
	TokenUSDT:    6,
	TokenAuxUSDC: 6,
}

// TokenTypes maps ticker symbols to coin types (used by the AI assistant
// and request normalization)
var TokenTypes = map[string]string{
	"APT":  TokenAPT,
	"USDC": TokenUSDC,
	"USDT": TokenUSDT,
}

// Decimals returns the decimal places for a coin type, defaulting to 6
func Decimals(tokenType string) uint8 {
	if d, ok := TokenDecimals[tokenType]; ok {
		return d
	}
	return 6
}

// PoolInstance is one concrete liquidity pool for a token pair within a venue
type PoolInstance struct {
	Address string // account holding the pool resource
	// TypeTemplate is the fully-qualified resource type with two %s slots
	// for the coin types, in the pool's canonical order
	TypeTemplate string
	// TokenX and TokenY are the coin types embedded on-chain, in pool
	// order. They may differ from the requested tokens for venues that
	// wrap assets (Aux wraps USDC in its own coin type).
	TokenX string
	TokenY string
	// FeeBps overrides the venue default when non-zero
	FeeBps uint16
}

// ResourceTypes returns both orderings of the pool's state-resource type.
// The caller tries them in order; which one exists depends on how the pool
// was created.
func (p *PoolInstance) ResourceTypes() [2]string {
	return [2]string{
		fmt.Sprintf(p.TypeTemplate, p.TokenX, p.TokenY),
		fmt.Sprintf(p.TypeTemplate, p.TokenY, p.TokenX),
	}
}

// InputIsX reports whether the requested input token sits on the X side of
// the pool. Unknown tokens fall through to the Y side, which matches how
// wrapped-asset venues are registered.
func (p *PoolInstance) InputIsX(inputToken string) bool {
	return inputToken == p.TokenX
}

// Venue is one liquidity source. Immutable after registry construction.
type Venue struct {
	Name       string
	DexID      uint64 // protocol id used by the aggregator contract
	Address    string
	FeeBps     uint16
	Capability Capability
	// Allowed marks the venue as safe for execution; quotes from venues
	// outside the allow-list are never selectable as best.
	Allowed bool
	// NeedsPoolArg venues require a trailing pool address on the
	// aggregator entry function
	NeedsPoolArg bool
	// SupportsCrossAddress venues are confirmed to deliver output to a
	// third-party receiver
	SupportsCrossAddress bool
	// PriceScale converts order-book ticks to output units per input unit
	// (order-book venues only)
	PriceScale float64

	pools map[string]*PoolInstance
}

// Pool returns the venue's pool for a token pair, direction-agnostic
func (v *Venue) Pool(tokenA, tokenB string) (*PoolInstance, bool) {
	p, ok := v.pools[PairKey(tokenA, tokenB)]
	return p, ok
}

// EffectiveFeeBps returns the pool fee override or the venue default
func (v *Venue) EffectiveFeeBps(p *PoolInstance) uint16 {
	if p != nil && p.FeeBps != 0 {
		return p.FeeBps
	}
	return v.FeeBps
}

// Registry is the immutable catalog of known venues. Built once at startup
// and shared without locking; nothing mutates it afterwards.
type Registry struct {
	venues []*Venue
	byName map[string]*Venue
	byID   map[uint64]*Venue
}

// PairKey builds the direction-agnostic key for a token pair
func PairKey(tokenA, tokenB string) string {
	if strings.Compare(tokenA, tokenB) > 0 {
		tokenA, tokenB = tokenB, tokenA
	}
	return tokenA + "|" + tokenB
}

// New builds a registry from venue definitions
func New(venues []*Venue) *Registry {
	r := &Registry{
		venues: venues,
		byName: make(map[string]*Venue, len(venues)),
		byID:   make(map[uint64]*Venue, len(venues)),
	}
	for _, v := range venues {
		r.byName[v.Name] = v
		r.byID[v.DexID] = v
	}
	return r
}

// Venue looks up a venue by name
func (r *Registry) Venue(name string) (*Venue, bool) {
	v, ok := r.byName[name]
	return v, ok
}

// VenueNameByID resolves an aggregator-contract protocol id to a venue name
func (r *Registry) VenueNameByID(id uint64) string {
	if v, ok := r.byID[id]; ok {
		return v.Name
	}
	return fmt.Sprintf("DEX %d", id)
}

// VenuesForPair returns every venue holding a pool for the pair, in a
// stable name order
func (r *Registry) VenuesForPair(tokenA, tokenB string) []*Venue {
	var out []*Venue
	for _, v := range r.venues {
		if _, ok := v.Pool(tokenA, tokenB); ok {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// IsAllowed reports whether a venue may be selected as best. The
// aggregator pseudo-venue is always selectable.
func (r *Registry) IsAllowed(name string) bool {
	if name == AggregatorVenue {
		return true
	}
	if v, ok := r.byName[name]; ok {
		return v.Allowed
	}
	return false
}

// WithPools attaches a pool map keyed by PairKey to a venue definition
func WithPools(v *Venue, pools map[string]*PoolInstance) *Venue {
	v.pools = pools
	return v
}

// Default returns the production venue catalog
func Default() *Registry {
	aptUSDC := PairKey(TokenAPT, TokenUSDC)

	return New([]*Venue{
		WithPools(&Venue{
			Name: "Liquidswap", DexID: 1, FeeBps: 30,
			Address:              "0x190d44266241744264b964a37b8f09863167a12d3e70cda39376cfb4e3561e12",
			Capability:           CapReservePair,
			Allowed:              true,
			SupportsCrossAddress: true,
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address:      "0x190d44266241744264b964a37b8f09863167a12d3e70cda39376cfb4e3561e12",
				TypeTemplate: "0x190d44266241744264b964a37b8f09863167a12d3e70cda39376cfb4e3561e12::liquidswap::LiquidityPool<%s,%s,0x1::curves::Uncorrelated>",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
		WithPools(&Venue{
			Name: "PancakeSwap", DexID: 7, FeeBps: 30,
			Address:              "0xc7efb4076dbe143cbcd98cfaaa929ecfc8f299203dfff63b95ccb6bfe19850fa",
			Capability:           CapReservePair,
			Allowed:              true,
			NeedsPoolArg:         true,
			SupportsCrossAddress: true,
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address:      "0xc7efb4076dbe143cbcd98cfaaa929ecfc8f299203dfff63b95ccb6bfe19850fa",
				TypeTemplate: "0xc7efb4076dbe143cbcd98cfaaa929ecfc8f299203dfff63b95ccb6bfe19850fa::swap::TokenPairReserve<%s, %s>",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
		WithPools(&Venue{
			Name: "AnimeSwap", DexID: 5, FeeBps: 30,
			Address:    "0x16fe2df00ea7dde4a63409201f7f4e536bde7bb7335526a35d0511e68aa322c",
			Capability: CapReservePair,
			Allowed:    true,
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address:      "0x16fe2df00ea7dde4a63409201f7f4e536bde7bb7335526a35d0511e68aa322c",
				TypeTemplate: "0x16fe2df00ea7dde4a63409201f7f4e536bde7bb7335526a35d0511e68aa322c::AnimeSwapPoolV1::LiquidityPool<%s,%s>",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
		WithPools(&Venue{
			Name: "SushiSwap", DexID: 6, FeeBps: 30,
			Address:    "0x31a6675cbe84365bf2b0cbce617ece6c47023ef70826533bde5203d32171dc3c",
			Capability: CapReservePair,
			Allowed:    true,
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address:      "0x31a6675cbe84365bf2b0cbce617ece6c47023ef70826533bde5203d32171dc3c",
				TypeTemplate: "0x31a6675cbe84365bf2b0cbce617ece6c47023ef70826533bde5203d32171dc3c::swap::TokenPairReserve<%s,%s>",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
		WithPools(&Venue{
			Name: "BaptSwap", DexID: 8, FeeBps: 30,
			Address:      "0xe52923154e25c258d9befb0237a30b4001c63dc3bb7301fc29cb3739befffcef",
			Capability:   CapReservePair,
			Allowed:      true,
			NeedsPoolArg: true,
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address:      "0xe52923154e25c258d9befb0237a30b4001c63dc3bb7301fc29cb3739befffcef",
				TypeTemplate: "0xe52923154e25c258d9befb0237a30b4001c63dc3bb7301fc29cb3739befffcef::swap_v2dot1::TokenPairReserve<%s,%s>",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
		WithPools(&Venue{
			Name: "Aux", DexID: 12, FeeBps: 30,
			Address:    "0xbd35135844473187163ca197ca93b2ab014370587bb0ed3befff9e902d6bb541",
			Capability: CapReservePair,
			Allowed:    true,
		}, map[string]*PoolInstance{
			// Aux wraps USDC in its own coin type; the pool is still
			// registered under the public pair so requests find it.
			aptUSDC: {
				Address:      "0xbd35135844473187163ca197ca93b2ab014370587bb0ed3befff9e902d6bb541",
				TypeTemplate: "0xbd35135844473187163ca197ca93b2ab014370587bb0ed3befff9e902d6bb541::amm::Pool<%s,%s>",
				TokenX:       TokenAPT, TokenY: TokenAuxUSDC,
			},
		}),
		WithPools(&Venue{
			Name: "Hyperion", DexID: 11, FeeBps: 30,
			Address:    "0x8b4a2c4bb53857c718a04c020b98f8c2e1f99a68b0f57389a8bf5434cd22e05c",
			Capability: CapReservePair,
			Allowed:    true,
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address:      "0x8b4a2c4bb53857c718a04c020b98f8c2e1f99a68b0f57389a8bf5434cd22e05c",
				TypeTemplate: "0x8b4a2c4bb53857c718a04c020b98f8c2e1f99a68b0f57389a8bf5434cd22e05c::hyperfluid::HyperfluidPool<%s,%s>",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
		// BathSwap is configured but experimental: the selector drops its
		// quotes from results entirely until it is allowed.
		WithPools(&Venue{
			Name: "BathSwap", DexID: 9, FeeBps: 30,
			Address:    "0x7421a8a8b4f8b3e3d2bb8f3b7a16712cfbd0a264b1a9f14281b1ef5ef1d97e11",
			Capability: CapReservePair,
			Allowed:    false,
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address:      "0x7421a8a8b4f8b3e3d2bb8f3b7a16712cfbd0a264b1a9f14281b1ef5ef1d97e11",
				TypeTemplate: "0x7421a8a8b4f8b3e3d2bb8f3b7a16712cfbd0a264b1a9f14281b1ef5ef1d97e11::swap::TokenPairReserve<%s,%s>",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
		WithPools(&Venue{
			Name: "Econia", DexID: 10, FeeBps: 35,
			Address:    "0xc0deb00c405f84c85dc13442e305df75d9b58c5481e6824349a528b0b78d4bb5",
			Capability: CapOrderBook,
			Allowed:    true,
			PriceScale: 1e-6, // ticks are quoted in 1e-6 output units
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address:      "0xc0deb00c405f84c85dc13442e305df75d9b58c5481e6824349a528b0b78d4bb5",
				TypeTemplate: "Market<%s,%s>",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
		WithPools(&Venue{
			Name: "Panora", DexID: 3, FeeBps: 30,
			Address:    "0x1eabed72c53feb3805180a7c8464bc46f1103de1",
			Capability: CapExternalAPI,
			Allowed:    true,
		}, map[string]*PoolInstance{
			aptUSDC: {
				Address: "0x1eabed72c53feb3805180a7c8464bc46f1103de1",
				// priced through the Panora API, no on-chain state resource
				TypeTemplate: "",
				TokenX:       TokenAPT, TokenY: TokenUSDC,
			},
		}),
	})
}
