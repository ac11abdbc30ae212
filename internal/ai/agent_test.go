package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DucLoc1999/Dexonic-Trading/internal/registry"
)

func TestIntentToRequest(t *testing.T) {
	req, err := intentToRequest(&swapIntent{
		InputSymbol:  "apt",
		OutputSymbol: "USDC",
		Amount:       "1.5",
	})
	require.NoError(t, err)

	assert.Equal(t, registry.TokenAPT, req.InputToken)
	assert.Equal(t, registry.TokenUSDC, req.OutputToken)
	// 1.5 APT at 8 decimals
	assert.Equal(t, uint64(150_000_000), req.AmountIn)
}

func TestIntentToRequest_FractionalDustFloored(t *testing.T) {
	req, err := intentToRequest(&swapIntent{
		InputSymbol:  "USDC",
		OutputSymbol: "APT",
		Amount:       "0.0000019",
	})
	require.NoError(t, err)
	// 6 decimals: 1.9 raw units floors to 1
	assert.Equal(t, uint64(1), req.AmountIn)
}

func TestIntentToRequest_Rejections(t *testing.T) {
	cases := []swapIntent{
		{InputSymbol: "DOGE", OutputSymbol: "USDC", Amount: "1"},
		{InputSymbol: "APT", OutputSymbol: "SHIB", Amount: "1"},
		{InputSymbol: "APT", OutputSymbol: "USDC", Amount: "zero"},
		{InputSymbol: "APT", OutputSymbol: "USDC", Amount: "-2"},
		{InputSymbol: "APT", OutputSymbol: "USDC", Amount: "0"},
		{InputSymbol: "APT", OutputSymbol: "APT", Amount: "1"},
	}
	for _, intent := range cases {
		intent := intent
		_, err := intentToRequest(&intent)
		assert.Error(t, err, "intent %+v should be rejected", intent)
	}
}

func TestSanitizeJSON(t *testing.T) {
	want := `{"input_symbol":"APT"}`

	assert.Equal(t, want, sanitizeJSON(want))
	assert.Equal(t, want, sanitizeJSON("```json\n"+want+"\n```"))
	assert.Equal(t, want, sanitizeJSON("```\n"+want+"\n```"))
	assert.Equal(t, want, sanitizeJSON("  "+want+"  "))
}
