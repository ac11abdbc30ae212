// Package econia quotes swaps against the Econia on-chain order book.
// Unlike AMM venues there are no reserves; the quote is the input amount
// priced at the book's best (lowest) ask.
package econia

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/DucLoc1999/Dexonic-Trading/internal/aptos"
)

// ErrNoMarket is returned when the account holds no market resource for
// the pair
var ErrNoMarket = errors.New("no market for pair")

// ErrEmptyBook is returned when the market exists but has no open asks.
// An empty book means no quote, not a zero-priced one.
var ErrEmptyBook = errors.New("order book has no asks")

// ResourceScanner is the slice of the ledger-read collaborator the
// strategy needs: order books are found by scanning the whole account.
type ResourceScanner interface {
	GetResources(ctx context.Context, account string) ([]aptos.Resource, error)
}

// Strategy prices swaps from the order book
type Strategy struct {
	client ResourceScanner
	logger *logrus.Logger
}

// NewStrategy creates an order-book quote strategy
func NewStrategy(client ResourceScanner, logger *logrus.Logger) *Strategy {
	if logger == nil {
		logger = logrus.New()
	}
	return &Strategy{client: client, logger: logger}
}

type order struct {
	Price U64 `json:"price"`
	Size  U64 `json:"size"`
}

type marketData struct {
	Asks struct {
		Orders []order `json:"orders"`
	} `json:"asks"`
}

// U64 mirrors the fullnode's string-encoded u64 values
type U64 uint64

func (u *U64) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		var v uint64
		for _, c := range s {
			if c < '0' || c > '9' {
				return errors.New("invalid u64 string")
			}
			v = v*10 + uint64(c-'0')
		}
		*u = U64(v)
		return nil
	}
	var v uint64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*u = U64(v)
	return nil
}

// BestAskOutput scans the venue account for the pair's market, picks the
// lowest-priced ask (first encountered on ties), and prices the input at
// it: out = floor(amountIn * price * priceScale). priceScale converts the
// book's tick units into output units per input unit.
func (s *Strategy) BestAskOutput(ctx context.Context, account, inputToken, outputToken string, amountIn uint64, priceScale float64) (uint64, error) {
	resources, err := s.client.GetResources(ctx, account)
	if err != nil {
		return 0, err
	}

	var market *marketData
	for _, res := range resources {
		if !strings.Contains(res.Type, "Market<") {
			continue
		}
		if !strings.Contains(res.Type, inputToken) || !strings.Contains(res.Type, outputToken) {
			continue
		}
		var m marketData
		if err := json.Unmarshal(res.Data, &m); err != nil {
			s.logger.WithError(err).WithField("type", res.Type).Debug("failed to decode market resource")
			continue
		}
		market = &m
		break
	}
	if market == nil {
		return 0, ErrNoMarket
	}
	if len(market.Asks.Orders) == 0 {
		return 0, ErrEmptyBook
	}

	best := market.Asks.Orders[0]
	for _, o := range market.Asks.Orders[1:] {
		if o.Price < best.Price {
			best = o
		}
	}

	price := float64(best.Price) * priceScale
	if price <= 0 {
		return 0, ErrEmptyBook
	}

	out := math.Floor(float64(amountIn) * price)
	if out <= 0 || out >= math.MaxUint64 {
		return 0, ErrEmptyBook
	}

	s.logger.WithFields(logrus.Fields{
		"bestAsk": uint64(best.Price),
		"output":  uint64(out),
	}).Debug("order-book quote")

	return uint64(out), nil
}
