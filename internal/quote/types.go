package quote

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

// ErrInvalidRequest wraps request-validation failures so the HTTP layer
// can map them to a 400 without inspecting messages
var ErrInvalidRequest = errors.New("invalid quote request")

// Request is one swap-quote request. AmountIn is in the input token's
// smallest units.
type Request struct {
	InputToken  string
	OutputToken string
	AmountIn    uint64
}

// Validate rejects requests before any venue is queried
func (r Request) Validate() error {
	if r.InputToken == "" {
		return fmt.Errorf("%w: inputToken is required", ErrInvalidRequest)
	}
	if r.OutputToken == "" {
		return fmt.Errorf("%w: outputToken is required", ErrInvalidRequest)
	}
	if r.InputToken == r.OutputToken {
		return fmt.Errorf("%w: input and output tokens must differ", ErrInvalidRequest)
	}
	if r.AmountIn == 0 {
		return fmt.Errorf("%w: inputAmount must be positive", ErrInvalidRequest)
	}
	return nil
}

// ParseRequest builds a Request from the wire representation, where
// inputAmount is a decimal string in smallest units
func ParseRequest(inputToken, outputToken, inputAmount string) (Request, error) {
	if inputAmount == "" {
		return Request{}, fmt.Errorf("%w: inputAmount is required", ErrInvalidRequest)
	}
	amount, err := strconv.ParseUint(inputAmount, 10, 64)
	if err != nil {
		return Request{}, fmt.Errorf("%w: inputAmount must be a positive integer", ErrInvalidRequest)
	}

	req := Request{InputToken: inputToken, OutputToken: outputToken, AmountIn: amount}
	if err := req.Validate(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Quote is one venue's answer for one request. Quotes are transient;
// nothing outlives the request that produced them.
type Quote struct {
	Venue          string   `json:"venue"`
	OutputAmount   uint64   `json:"outputAmount,string"` // smallest units
	OutputDecimal  string   `json:"outputDecimal"`       // human-readable units
	FeeBps         uint16   `json:"feeBps"`
	PriceImpactBps uint16   `json:"priceImpactBps"`
	Route          []string `json:"route"`
	Hops           int      `json:"hops"`
	PoolAddress    string   `json:"poolAddress,omitempty"`
	IsBest         bool     `json:"isBest"`
}

// AggregatedResult is every surviving quote for one request plus the
// selected best, if any venue produced a valid one
type AggregatedResult struct {
	Quotes      []*Quote `json:"quotes"`
	TotalQuotes int      `json:"totalQuotes"`
	BestQuote   *Quote   `json:"bestQuote,omitempty"`
}

// HumanAmount renders a raw amount in display units for the given token
func HumanAmount(raw uint64, tokenType string) string {
	d := decimal.NewFromUint64(raw).Shift(-int32(registry.Decimals(tokenType)))
	return d.String()
}

// U64 decodes Aptos u64 values, which arrive as JSON strings from the
// fullnode but as bare numbers from some tooling
type U64 uint64

func (u *U64) UnmarshalJSON(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty u64 value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid u64 %q: %w", s, err)
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
