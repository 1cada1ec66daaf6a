package entity

// RawHolding is one entry from the indexer's assets-by-owner listing, before
// normalization. Balance is in integer base units; PricePerToken is zero when
// the listing carried no price info.
type RawHolding struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Symbol        string  `json:"symbol"`
	Balance       int64   `json:"balance"`
	Decimals      int     `json:"decimals"`
	PricePerToken float64 `json:"pricePerToken"`
}

// HoldingDetail is one entry from the batched detail lookup. The returned ID
// may legitimately differ from the requested one for the native asset.
type HoldingDetail struct {
	ID            string  `json:"id"`
	PricePerToken float64 `json:"pricePerToken"`
}

// WalletAsset is a normalized wallet holding: decimal amount, resolved price,
// USD value and investment-type category. Recreated fresh on every fetch.
type WalletAsset struct {
	ID         string  `json:"id"`
	Mint       string  `json:"mint"` // price-lookup identifier (canonical mint for native SOL)
	Name       string  `json:"name"`
	Symbol     string  `json:"symbol"`
	Amount     int64   `json:"amount"`
	Decimals   int     `json:"decimals"`
	UIAmount   float64 `json:"uiAmount"`
	Price      float64 `json:"price"`
	Value      float64 `json:"value"`
	CategoryID string  `json:"categoryId"`
}
