package econia

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DucLoc1999/Dexonic-Trading/internal/aptos"
)

const (
	testAPT  = "0x1::aptos_coin::AptosCoin"
	testUSDC = "0xf22::asset::USDC"
)

type fakeScanner struct {
	resources []aptos.Resource
	err       error
}

func (f *fakeScanner) GetResources(context.Context, string) ([]aptos.Resource, error) {
	return f.resources, f.err
}

func marketResource(asks string) aptos.Resource {
	return aptos.Resource{
		Type: fmt.Sprintf("0xecon::market::Market<%s,%s>", testAPT, testUSDC),
		Data: json.RawMessage(fmt.Sprintf(`{"asks":{"orders":%s}}`, asks)),
	}
}

func TestBestAskOutput_PicksLowestAsk(t *testing.T) {
	scanner := &fakeScanner{resources: []aptos.Resource{
		marketResource(`[{"price":"9100","size":"500"},{"price":"8900","size":"100"},{"price":"9000","size":"200"}]`),
	}}
	s := NewStrategy(scanner, nil)

	// out = floor(1000000 * 8900 * 1e-6) = 8900
	out, err := s.BestAskOutput(context.Background(), "0xecon", testAPT, testUSDC, 1_000_000, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, uint64(8900), out)
}

func TestBestAskOutput_FirstWinsOnTie(t *testing.T) {
	scanner := &fakeScanner{resources: []aptos.Resource{
		marketResource(`[{"price":"9000","size":"111"},{"price":"9000","size":"999"}]`),
	}}
	s := NewStrategy(scanner, nil)

	out, err := s.BestAskOutput(context.Background(), "0xecon", testAPT, testUSDC, 1_000_000, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, uint64(9000), out)
}

func TestBestAskOutput_NoMarket(t *testing.T) {
	// Resources exist but none is a market for the pair
	scanner := &fakeScanner{resources: []aptos.Resource{
		{Type: "0x1::coin::CoinStore<" + testAPT + ">", Data: json.RawMessage(`{}`)},
		{Type: fmt.Sprintf("0xecon::market::Market<%s,0xother::coin::T>", testAPT), Data: json.RawMessage(`{"asks":{"orders":[]}}`)},
	}}
	s := NewStrategy(scanner, nil)

	_, err := s.BestAskOutput(context.Background(), "0xecon", testAPT, testUSDC, 1_000_000, 1e-6)
	assert.ErrorIs(t, err, ErrNoMarket)
}

func TestBestAskOutput_EmptyBook(t *testing.T) {
	scanner := &fakeScanner{resources: []aptos.Resource{marketResource(`[]`)}}
	s := NewStrategy(scanner, nil)

	_, err := s.BestAskOutput(context.Background(), "0xecon", testAPT, testUSDC, 1_000_000, 1e-6)
	assert.ErrorIs(t, err, ErrEmptyBook)
}

func TestBestAskOutput_ScanFailure(t *testing.T) {
	scanner := &fakeScanner{err: fmt.Errorf("node unavailable")}
	s := NewStrategy(scanner, nil)

	_, err := s.BestAskOutput(context.Background(), "0xecon", testAPT, testUSDC, 1_000_000, 1e-6)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoMarket)
}

func TestBestAskOutput_MalformedMarketSkipped(t *testing.T) {
	scanner := &fakeScanner{resources: []aptos.Resource{
		{
			Type: fmt.Sprintf("0xecon::market::Market<%s,%s>", testAPT, testUSDC),
			Data: json.RawMessage(`{"asks":"not-an-object"}`),
		},
	}}
	s := NewStrategy(scanner, nil)

	_, err := s.BestAskOutput(context.Background(), "0xecon", testAPT, testUSDC, 1_000_000, 1e-6)
	assert.ErrorIs(t, err, ErrNoMarket)
}

func TestBestAskOutput_TinyInputRoundsToZero(t *testing.T) {
	scanner := &fakeScanner{resources: []aptos.Resource{
		marketResource(`[{"price":"1","size":"100"}]`),
	}}
	s := NewStrategy(scanner, nil)

	// floor(1 * 1 * 1e-6) = 0, which is not a usable quote
	_, err := s.BestAskOutput(context.Background(), "0xecon", testAPT, testUSDC, 1, 1e-6)
	assert.ErrorIs(t, err, ErrEmptyBook)
}
