package entity

// Asset represents a single holding or manual entry inside an investment type.
// For on-chain holdings the ID is the account or mint identifier reported by
// the indexer; for custom entries it is generated locally.
type Asset struct {
	ID               string  `json:"id"`
	Mint             string  `json:"mint,omitempty"` // identifier used for price/category lookup; differs from ID for native SOL
	Name             string  `json:"name"`
	Symbol           string  `json:"symbol"`
	Value            float64 `json:"value"`
	Percentage       float64 `json:"percentage"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"changePercentage"`
	InvestmentTypeID string  `json:"investmentTypeId"`
	Icon             string  `json:"icon,omitempty"`
	IsCustom         bool    `json:"isCustom,omitempty"`
	CreatedAt        int64   `json:"createdAt,omitempty"` // epoch millis, custom assets only
	PreviousValue    float64 `json:"previousValue,omitempty"`
}

// InvestmentType is a named bucket (e.g. "Stock", "Crypto") grouping assets.
type InvestmentType struct {
	ID               string  `json:"id"`
	Name             string  `json:"name"`
	Icon             string  `json:"icon"`
	Color            string  `json:"color"`
	TotalValue       float64 `json:"totalValue"`
	Percentage       float64 `json:"percentage"`
	Change           float64 `json:"change"`
	ChangePercentage float64 `json:"changePercentage"`
	Assets           []Asset `json:"assets"`
}

// Portfolio is the root aggregate, recomputed from scratch on every
// reconciliation pass.
type Portfolio struct {
	TotalValue            float64          `json:"totalValue"`
	TotalChange           float64          `json:"totalChange"`
	TotalChangePercentage float64          `json:"totalChangePercentage"`
	InvestmentTypes       []InvestmentType `json:"investmentTypes"`
}

// SystemInvestmentType is a compiled-in investment type template. DefaultAssets
// are used only for first-run/demo portfolios, never for reconciliation.
type SystemInvestmentType struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Icon          string  `json:"icon"`
	Color         string  `json:"color"`
	DefaultAssets []Asset `json:"defaultAssets"`
}
