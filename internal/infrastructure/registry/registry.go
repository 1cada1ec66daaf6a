// Package registry holds the compiled-in definition tables: the native asset
// constants, the mint-to-category lookup used by the category resolver and the
// system investment-type templates. None of it is runtime-editable.
package registry

import (
	"math"

	"github.com/zhengqian8958/Solari/internal/domain/entity"
)

// Native asset (SOL) constants. Holdings listings may report the native asset
// under the owner's account address instead of this canonical mint.
const (
	NativeMint     = "So11111111111111111111111111111111111111112"
	NativeName     = "Solana"
	NativeSymbol   = "SOL"
	NativeDecimals = 9
	LamportsPerSOL = 1_000_000_000
)

// FallbackCategory is returned for any identifier absent from the lookup table.
const FallbackCategory = "crypto"

// tokenCategories maps mint addresses to investment-type category ids.
var tokenCategories = map[string]string{
	// Cash (stablecoins)
	"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v": "cash", // USDC
	"Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB": "cash", // USDT

	// Crypto
	NativeMint: "crypto", // SOL

	// Commodities (tokenized gold and silver)
	"Xsv9hRk1z5ystj9MhnA7Lq4vjSsLwzL2nxrwmwtD3re":  "commodities", // Gold
	"7C56WnJ94iEP7YeH2iKiYpvsS5zkcpP9rJBBEBoUGdzj": "commodities", // Silver
}

// ResolveCategory maps a token identifier to an investment-type category id.
// The native mint always resolves to "crypto" regardless of table contents,
// since holdings lists may carry it under either its mint or an account
// address. Total function: unknown identifiers get the fallback category.
func ResolveCategory(identifier string) string {
	if identifier == NativeMint {
		return "crypto"
	}
	if category, ok := tokenCategories[identifier]; ok {
		return category
	}
	return FallbackCategory
}

// LamportsToSol converts lamports to a SOL ui-amount rounded to 5 decimals.
func LamportsToSol(lamports int64) float64 {
	return math.Round(float64(lamports)/LamportsPerSOL*100000) / 100000
}

// DefaultActiveInvestmentTypeIDs is the active-category list persisted on first run.
var DefaultActiveInvestmentTypeIDs = []string{"stock", "crypto", "real_estate"}

// systemInvestmentTypes are the fixed templates users can activate. Default
// assets feed first-run/demo portfolios only.
var systemInvestmentTypes = []entity.SystemInvestmentType{
	{
		ID:    "stock",
		Name:  "Stock",
		Icon:  "monitoring",
		Color: "anime-blue",
		DefaultAssets: []entity.Asset{
			{Name: "Apple Inc.", Symbol: "AAPL", Value: 25000, Percentage: 40, Change: 1200, ChangePercentage: 5.04},
			{Name: "Tesla", Symbol: "TSLA", Value: 18750, Percentage: 30, Change: -450, ChangePercentage: -2.34},
			{Name: "Google", Symbol: "GOOGL", Value: 18750, Percentage: 30, Change: 890, ChangePercentage: 4.98},
		},
	},
	{
		ID:    "crypto",
		Name:  "Crypto",
		Icon:  "token",
		Color: "anime-purple",
		DefaultAssets: []entity.Asset{
			{Name: "Solana", Symbol: "SOL", Value: 15000, Percentage: 50, Change: 750, ChangePercentage: 5.26},
			{Name: "Bitcoin", Symbol: "BTC", Value: 9000, Percentage: 30, Change: -200, ChangePercentage: -2.17},
			{Name: "Ethereum", Symbol: "ETH", Value: 6000, Percentage: 20, Change: 150, ChangePercentage: 2.56},
		},
	},
	{
		ID:    "real_estate",
		Name:  "Real Estate",
		Icon:  "home_work",
		Color: "anime-mint",
		DefaultAssets: []entity.Asset{
			{Name: "Vanguard REIT", Symbol: "VNQ", Value: 12000, Percentage: 60, Change: 240, ChangePercentage: 2.04},
			{Name: "Property Token", Symbol: "PROP", Value: 8000, Percentage: 40, Change: 120, ChangePercentage: 1.52},
		},
	},
	{
		ID:    "bonds",
		Name:  "Bonds",
		Icon:  "request_quote",
		Color: "anime-yellow",
		DefaultAssets: []entity.Asset{
			{Name: "US Treasury", Symbol: "T-BOND", Value: 15000, Percentage: 60, Change: 75, ChangePercentage: 0.5},
			{Name: "Corporate Bonds", Symbol: "CORP", Value: 10000, Percentage: 40, Change: 50, ChangePercentage: 0.5},
		},
	},
	{
		ID:    "commodities",
		Name:  "Commodities",
		Icon:  "agriculture",
		Color: "anime-orange",
		DefaultAssets: []entity.Asset{
			{Name: "Gold", Symbol: "GOLD", Value: 12000, Percentage: 50, Change: 360, ChangePercentage: 3.09},
			{Name: "Silver", Symbol: "SILVER", Value: 8000, Percentage: 33.33, Change: -120, ChangePercentage: -1.48},
			{Name: "Oil", Symbol: "OIL", Value: 4000, Percentage: 16.67, Change: 80, ChangePercentage: 2.04},
		},
	},
	{
		ID:    "cash",
		Name:  "Cash",
		Icon:  "account_balance_wallet",
		Color: "anime-pink",
		DefaultAssets: []entity.Asset{
			{Name: "USD Savings", Symbol: "USD", Value: 15000, Percentage: 75, Change: 0, ChangePercentage: 0},
			{Name: "USDC Stablecoin", Symbol: "USDC", Value: 5000, Percentage: 25, Change: 25, ChangePercentage: 0.5},
		},
	},
}

// SystemInvestmentTypes returns all investment-type templates as a copy.
func SystemInvestmentTypes() []entity.SystemInvestmentType {
	out := make([]entity.SystemInvestmentType, len(systemInvestmentTypes))
	copy(out, systemInvestmentTypes)
	return out
}

// SystemInvestmentTypeByID returns the template for the given id, and true if found.
func SystemInvestmentTypeByID(id string) (entity.SystemInvestmentType, bool) {
	for _, t := range systemInvestmentTypes {
		if t.ID == id {
			return t, true
		}
	}
	return entity.SystemInvestmentType{}, false
}
