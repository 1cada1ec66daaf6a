package heliusclient

// rpcRequest is the JSON-RPC 2.0 request envelope used by the Helius DAS API.
type rpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      string      `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// rpcError is the JSON-RPC error object.
type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// dasAsset is a single asset entry as returned by getAssetsByOwner and
// getAssetBatch. Only the fields this service consumes are declared.
type dasAsset struct {
	ID      string `json:"id"`
	Content struct {
		Metadata struct {
			Name   string `json:"name"`
			Symbol string `json:"symbol"`
		} `json:"metadata"`
	} `json:"content"`
	TokenInfo struct {
		Balance   int64 `json:"balance"`
		Decimals  int   `json:"decimals"`
		PriceInfo *struct {
			PricePerToken float64 `json:"price_per_token"`
			Currency      string  `json:"currency"`
		} `json:"price_info"`
	} `json:"token_info"`
}

type assetsByOwnerParams struct {
	OwnerAddress   string `json:"ownerAddress"`
	Page           int    `json:"page"`
	Limit          int    `json:"limit"`
	DisplayOptions struct {
		ShowFungible      bool `json:"showFungible"`
		ShowNativeBalance bool `json:"showNativeBalance"`
	} `json:"displayOptions"`
}

type assetsByOwnerResponse struct {
	Result *struct {
		Total int        `json:"total"`
		Items []dasAsset `json:"items"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}

type assetBatchParams struct {
	IDs []string `json:"ids"`
}

type assetBatchResponse struct {
	Result []dasAsset `json:"result"`
	Error  *rpcError  `json:"error"`
}

type balanceResponse struct {
	Result *struct {
		Value int64 `json:"value"`
	} `json:"result"`
	Error *rpcError `json:"error"`
}
