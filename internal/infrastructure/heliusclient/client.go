package heliusclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zhengqian8958/Solari/internal/domain/entity"
	"github.com/zhengqian8958/Solari/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the Helius DAS JSON-RPC API. It implements
// port.HoldingsSource; detail lookups are chunked at maxIDsPerBatch.
type Client struct {
	client         *fasthttp.Client
	rpcURL         string
	timeout        time.Duration
	logger         *zap.Logger
	limiter        *rate.Limiter
	maxIDsPerBatch int
	pageLimit      int
}

// NewClient creates a new Helius DAS client.
func NewClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger, maxIDsPerBatch int, rps, burst int) *Client {
	if rps <= 0 {
		rps = 10
	}
	if burst <= 0 {
		burst = rps
	}
	return &Client{
		client:         &fasthttp.Client{},
		rpcURL:         fmt.Sprintf("%s/?api-key=%s", strings.TrimRight(baseURL, "/"), apiKey),
		timeout:        timeout,
		logger:         logger.Named("HeliusClient"),
		limiter:        rate.NewLimiter(rate.Limit(rps), burst),
		maxIDsPerBatch: maxIDsPerBatch,
		pageLimit:      1000,
	}
}

// FetchHoldings implements port.HoldingsSource using the getAssetsByOwner
// method with fungible tokens and native balance enabled. The native balance
// in this listing is flaky; callers must cross-check with FetchNativeBalance.
func (c *Client) FetchHoldings(ctx context.Context, owner string) ([]entity.RawHolding, error) {
	params := assetsByOwnerParams{
		OwnerAddress: owner,
		Page:         1,
		Limit:        c.pageLimit,
	}
	params.DisplayOptions.ShowFungible = true
	params.DisplayOptions.ShowNativeBalance = true

	var resp assetsByOwnerResponse
	if err := c.call(ctx, "getAssetsByOwner", params, &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		c.logger.Error("getAssetsByOwner returned RPC error",
			zap.Int("code", resp.Error.Code),
			zap.String("message", resp.Error.Message))
		return nil, fmt.Errorf("getAssetsByOwner RPC error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil {
		return nil, fmt.Errorf("getAssetsByOwner returned empty result")
	}

	holdings := make([]entity.RawHolding, 0, len(resp.Result.Items))
	for _, item := range resp.Result.Items {
		holdings = append(holdings, mapRawHolding(item))
	}
	c.logger.Debug("Fetched holdings", zap.String("owner", owner), zap.Int("count", len(holdings)))
	return holdings, nil
}

// FetchNativeBalance implements port.HoldingsSource using getBalance.
func (c *Client) FetchNativeBalance(ctx context.Context, owner string) (int64, error) {
	var resp balanceResponse
	if err := c.call(ctx, "getBalance", []string{owner}, &resp); err != nil {
		return 0, err
	}
	if resp.Error != nil {
		return 0, fmt.Errorf("getBalance RPC error %d: %s", resp.Error.Code, resp.Error.Message)
	}
	if resp.Result == nil {
		return 0, fmt.Errorf("getBalance returned empty result")
	}
	c.logger.Debug("Fetched native balance", zap.String("owner", owner), zap.Int64("lamports", resp.Result.Value))
	return resp.Result.Value, nil
}

// FetchDetails implements port.HoldingsSource using getAssetBatch, chunking
// the id list at the configured batch ceiling. A failed chunk is logged and
// skipped; the remaining chunks still contribute results.
func (c *Client) FetchDetails(ctx context.Context, ids []string) ([]entity.HoldingDetail, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	details := make([]entity.HoldingDetail, 0, len(ids))
	for _, batch := range utils.BatchStrings(ids, c.maxIDsPerBatch) {
		var resp assetBatchResponse
		if err := c.call(ctx, "getAssetBatch", assetBatchParams{IDs: batch}, &resp); err != nil {
			c.logger.Warn("getAssetBatch chunk failed, skipping",
				zap.Int("chunk_size", len(batch)), zap.Error(err))
			continue
		}
		if resp.Error != nil {
			c.logger.Warn("getAssetBatch chunk returned RPC error, skipping",
				zap.Int("code", resp.Error.Code), zap.String("message", resp.Error.Message))
			continue
		}
		for _, item := range resp.Result {
			if item.ID == "" {
				continue
			}
			detail := entity.HoldingDetail{ID: item.ID}
			if item.TokenInfo.PriceInfo != nil {
				detail.PricePerToken = item.TokenInfo.PriceInfo.PricePerToken
			}
			details = append(details, detail)
		}
	}
	c.logger.Debug("Fetched asset details", zap.Int("requested", len(ids)), zap.Int("returned", len(details)))
	return details, nil
}

// call executes one JSON-RPC request against the Helius endpoint.
func (c *Client) call(ctx context.Context, method string, params interface{}, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", method, err)
	}

	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      "solari-" + method,
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s request: %w", method, err)
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.rpcURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			c.logger.Error("Failed to execute Helius request", zap.String("method", method), zap.Error(err))
			return fmt.Errorf("failed to execute %s request: %w", method, err)
		}
	} else {
		if err := c.client.DoTimeout(req, resp, c.timeout); err != nil {
			c.logger.Error("Failed to execute Helius request (with default timeout)", zap.String("method", method), zap.Error(err))
			return fmt.Errorf("failed to execute %s request with default timeout: %w", method, err)
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("Helius API request failed",
			zap.String("method", method),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", resp.Body()))
		return fmt.Errorf("helius %s request failed with status %d", method, resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to unmarshal %s response: %w", method, err)
	}
	return nil
}

func mapRawHolding(item dasAsset) entity.RawHolding {
	holding := entity.RawHolding{
		ID:       item.ID,
		Name:     item.Content.Metadata.Name,
		Symbol:   item.Content.Metadata.Symbol,
		Balance:  item.TokenInfo.Balance,
		Decimals: item.TokenInfo.Decimals,
	}
	if item.TokenInfo.PriceInfo != nil {
		holding.PricePerToken = item.TokenInfo.PriceInfo.PricePerToken
	}
	return holding
}
