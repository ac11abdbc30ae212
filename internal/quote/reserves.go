package quote

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/aptos"
	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

// ErrNoReserves is returned when a pool's state cannot be fetched or
// parsed. The venue is demoted to "no quote"; the error never aborts the
// surrounding request.
var ErrNoReserves = errors.New("no reserves available")

// ReservePair is a pool's resolved state, oriented to the request: In is
// the side being sold, Out the side being bought. Never partially filled;
// both values come from one successful read or the pair is absent.
type ReservePair struct {
	ReserveIn  uint64
	ReserveOut uint64
	InToken    string
	OutToken   string
}

// reserveParser extracts a raw (x, y) reserve pair from one of the schema
// shapes venues use. Parsers are tried in priority order; the first one
// that yields two non-null integers wins.
type reserveParser struct {
	name  string
	parse func(data json.RawMessage) (x, y uint64, ok bool)
}

var reserveParsers = []reserveParser{
	{
		name: "reserve_x/reserve_y",
		parse: func(data json.RawMessage) (uint64, uint64, bool) {
			var s struct {
				ReserveX *U64 `json:"reserve_x"`
				ReserveY *U64 `json:"reserve_y"`
			}
			if json.Unmarshal(data, &s) != nil || s.ReserveX == nil || s.ReserveY == nil {
				return 0, 0, false
			}
			return uint64(*s.ReserveX), uint64(*s.ReserveY), true
		},
	},
	{
		name: "coin_x/coin_y",
		parse: func(data json.RawMessage) (uint64, uint64, bool) {
			var s struct {
				CoinX *struct {
					Value U64 `json:"value"`
				} `json:"coin_x"`
				CoinY *struct {
					Value U64 `json:"value"`
				} `json:"coin_y"`
			}
			if json.Unmarshal(data, &s) != nil || s.CoinX == nil || s.CoinY == nil {
				return 0, 0, false
			}
			return uint64(s.CoinX.Value), uint64(s.CoinY.Value), true
		},
	},
	{
		name: "token_x_reserve/token_y_reserve",
		parse: func(data json.RawMessage) (uint64, uint64, bool) {
			var s struct {
				TokenXReserve *U64 `json:"token_x_reserve"`
				TokenYReserve *U64 `json:"token_y_reserve"`
			}
			if json.Unmarshal(data, &s) != nil || s.TokenXReserve == nil || s.TokenYReserve == nil {
				return 0, 0, false
			}
			return uint64(*s.TokenXReserve), uint64(*s.TokenYReserve), true
		},
	},
}

// ReserveFetcher is the slice of the ledger-read collaborator the
// resolver needs
type ReserveFetcher interface {
	GetResource(ctx context.Context, account, resourceType string) (json.RawMessage, error)
}

// Resolver fetches and normalizes pool reserves. Reserves are re-fetched
// on every request; there is no staleness to manage.
type Resolver struct {
	client ReserveFetcher
	logger *logrus.Logger
}

// NewResolver creates a resolver over the ledger-read collaborator
func NewResolver(client ReserveFetcher, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Resolver{client: client, logger: logger}
}

// Resolve fetches the pool's state resource and orients the reserves to
// the requested input token.
//
// The resource type embeds the coin pair in a fixed order, but pools are
// created in either direction, so both orderings are attempted; whichever
// returns data decides how x/y map back to in/out.
func (r *Resolver) Resolve(ctx context.Context, pool *registry.PoolInstance, inputToken, outputToken string) (*ReservePair, error) {
	if pool.TypeTemplate == "" {
		return nil, ErrNoReserves
	}

	candidates := pool.ResourceTypes()
	inIsX := pool.InputIsX(inputToken)

	for i, resourceType := range candidates {
		data, err := r.client.GetResource(ctx, pool.Address, resourceType)
		if err != nil {
			if !errors.Is(err, aptos.ErrResourceNotFound) {
				r.logger.WithError(err).WithFields(logrus.Fields{
					"pool": pool.Address,
					"type": resourceType,
				}).Debug("reserve fetch failed")
			}
			continue
		}

		x, y, parser, ok := parseReserves(data)
		if !ok {
			r.logger.WithFields(logrus.Fields{
				"pool": pool.Address,
				"type": resourceType,
			}).Debug("unknown reserve schema")
			continue
		}

		// The second candidate embeds (TokenY, TokenX), so its x field
		// holds TokenY's reserve.
		xIsIn := inIsX == (i == 0)

		pair := &ReservePair{InToken: inputToken, OutToken: outputToken}
		if xIsIn {
			pair.ReserveIn, pair.ReserveOut = x, y
		} else {
			pair.ReserveIn, pair.ReserveOut = y, x
		}

		r.logger.WithFields(logrus.Fields{
			"pool":       pool.Address,
			"schema":     parser,
			"reserveIn":  pair.ReserveIn,
			"reserveOut": pair.ReserveOut,
		}).Debug("resolved reserves")

		return pair, nil
	}

	return nil, ErrNoReserves
}

func parseReserves(data json.RawMessage) (x, y uint64, parser string, ok bool) {
	for _, p := range reserveParsers {
		if x, y, ok := p.parse(data); ok {
			return x, y, p.name, true
		}
	}
	return 0, 0, "", false
}
