package quote

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DucLoc1999/Dexonic-Trading/internal/aptos"
	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

type fakeFetcher struct {
	resources map[string]json.RawMessage // resourceType -> data
	calls     []string
}

func (f *fakeFetcher) GetResource(_ context.Context, _, resourceType string) (json.RawMessage, error) {
	f.calls = append(f.calls, resourceType)
	if data, ok := f.resources[resourceType]; ok {
		return data, nil
	}
	return nil, aptos.ErrResourceNotFound
}

func testPool() *registry.PoolInstance {
	return &registry.PoolInstance{
		Address:      "0xpool",
		TypeTemplate: "0xabc::swap::Pool<%s,%s>",
		TokenX:       registry.TokenAPT,
		TokenY:       registry.TokenUSDC,
	}
}

func TestResolve_SchemaVariants(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"reserve_x/reserve_y", `{"reserve_x":"5000","reserve_y":"9000"}`},
		{"coin_x/coin_y", `{"coin_x":{"value":"5000"},"coin_y":{"value":"9000"}}`},
		{"token_x_reserve/token_y_reserve", `{"token_x_reserve":"5000","token_y_reserve":"9000"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pool := testPool()
			fetcher := &fakeFetcher{resources: map[string]json.RawMessage{
				pool.ResourceTypes()[0]: json.RawMessage(tc.data),
			}}
			r := NewResolver(fetcher, nil)

			pair, err := r.Resolve(context.Background(), pool, registry.TokenAPT, registry.TokenUSDC)
			require.NoError(t, err)

			// Same schema, same answer: schema choice never changes values
			assert.Equal(t, uint64(5000), pair.ReserveIn)
			assert.Equal(t, uint64(9000), pair.ReserveOut)
		})
	}
}

func TestResolve_OrientsToInputToken(t *testing.T) {
	pool := testPool()
	fetcher := &fakeFetcher{resources: map[string]json.RawMessage{
		pool.ResourceTypes()[0]: json.RawMessage(`{"reserve_x":"5000","reserve_y":"9000"}`),
	}}
	r := NewResolver(fetcher, nil)

	// Selling USDC flips the orientation: x is now the output side
	pair, err := r.Resolve(context.Background(), pool, registry.TokenUSDC, registry.TokenAPT)
	require.NoError(t, err)
	assert.Equal(t, uint64(9000), pair.ReserveIn)
	assert.Equal(t, uint64(5000), pair.ReserveOut)
}

func TestResolve_DirectionalRetry(t *testing.T) {
	// Pool created with the coin pair reversed: only the second resource
	// type ordering exists, and its x field holds TokenY's reserve.
	pool := testPool()
	fetcher := &fakeFetcher{resources: map[string]json.RawMessage{
		pool.ResourceTypes()[1]: json.RawMessage(`{"reserve_x":"9000","reserve_y":"5000"}`),
	}}
	r := NewResolver(fetcher, nil)

	pair, err := r.Resolve(context.Background(), pool, registry.TokenAPT, registry.TokenUSDC)
	require.NoError(t, err)

	require.Len(t, fetcher.calls, 2)
	assert.Equal(t, uint64(5000), pair.ReserveIn)
	assert.Equal(t, uint64(9000), pair.ReserveOut)
}

func TestResolve_NoResource(t *testing.T) {
	pool := testPool()
	r := NewResolver(&fakeFetcher{}, nil)

	_, err := r.Resolve(context.Background(), pool, registry.TokenAPT, registry.TokenUSDC)
	assert.ErrorIs(t, err, ErrNoReserves)
}

func TestResolve_UnknownSchema(t *testing.T) {
	pool := testPool()
	fetcher := &fakeFetcher{resources: map[string]json.RawMessage{
		pool.ResourceTypes()[0]: json.RawMessage(`{"liquidity":"5000"}`),
	}}
	r := NewResolver(fetcher, nil)

	_, err := r.Resolve(context.Background(), pool, registry.TokenAPT, registry.TokenUSDC)
	assert.ErrorIs(t, err, ErrNoReserves)
}

func TestResolve_PartialSchemaRejected(t *testing.T) {
	// One present field must not yield a half-filled pair
	pool := testPool()
	fetcher := &fakeFetcher{resources: map[string]json.RawMessage{
		pool.ResourceTypes()[0]: json.RawMessage(`{"reserve_x":"5000"}`),
	}}
	r := NewResolver(fetcher, nil)

	_, err := r.Resolve(context.Background(), pool, registry.TokenAPT, registry.TokenUSDC)
	assert.ErrorIs(t, err, ErrNoReserves)
}

func TestResolve_EmptyTemplate(t *testing.T) {
	pool := &registry.PoolInstance{Address: "0xpool", TokenX: registry.TokenAPT, TokenY: registry.TokenUSDC}
	fetcher := &fakeFetcher{}
	r := NewResolver(fetcher, nil)

	_, err := r.Resolve(context.Background(), pool, registry.TokenAPT, registry.TokenUSDC)
	assert.ErrorIs(t, err, ErrNoReserves)
	assert.Empty(t, fetcher.calls)
}
