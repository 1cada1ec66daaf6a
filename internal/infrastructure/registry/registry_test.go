package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCategory(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		want       string
	}{
		{"native mint", NativeMint, "crypto"},
		{"USDC is cash", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "cash"},
		{"USDT is cash", "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB", "cash"},
		{"tokenized gold is commodities", "Xsv9hRk1z5ystj9MhnA7Lq4vjSsLwzL2nxrwmwtD3re", "commodities"},
		{"unknown falls back", "SomeRandomMint1111111111111111111111111111", FallbackCategory},
		{"empty falls back", "", FallbackCategory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveCategory(tt.identifier))
		})
	}
}

func TestLamportsToSol(t *testing.T) {
	assert.InDelta(t, 2.0, LamportsToSol(2_000_000_000), 1e-9)
	assert.InDelta(t, 1.5, LamportsToSol(1_500_000_000), 1e-9)
	// Rounds to 5 decimals.
	assert.InDelta(t, 0.00001, LamportsToSol(12_345), 1e-9)
	assert.InDelta(t, 0.0, LamportsToSol(4_999), 1e-9)
}

func TestSystemInvestmentTypeByID(t *testing.T) {
	stock, ok := SystemInvestmentTypeByID("stock")
	require.True(t, ok)
	assert.Equal(t, "Stock", stock.Name)
	assert.NotEmpty(t, stock.DefaultAssets)

	_, ok = SystemInvestmentTypeByID("made_up")
	assert.False(t, ok)
}

func TestSystemInvestmentTypesCoverDefaults(t *testing.T) {
	all := SystemInvestmentTypes()
	assert.Len(t, all, 6)

	for _, id := range DefaultActiveInvestmentTypeIDs {
		_, ok := SystemInvestmentTypeByID(id)
		assert.True(t, ok, "default active id %q must have a template", id)
	}
}
