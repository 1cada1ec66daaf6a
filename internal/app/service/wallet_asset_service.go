package service

import (
	"context"
	"math"
	"time"

	"github.com/zhengqian8958/Solari/internal/app/port"
	"github.com/zhengqian8958/Solari/internal/domain/entity"
	"github.com/zhengqian8958/Solari/internal/infrastructure/registry"
	"github.com/zhengqian8958/Solari/internal/pkg/metrics"

	gocache "github.com/patrickmn/go-cache"
)

// WalletAssetService normalizes raw holdings into priced, categorized wallet
// assets. Prices resolved through the batched detail lookup are kept in a TTL
// cache so the 30s refresh cadence does not refetch every mint each pass.
type WalletAssetService struct {
	holdings   port.HoldingsSource
	logger     port.Logger
	priceCache *gocache.Cache
}

// NewWalletAssetService creates a new WalletAssetService.
func NewWalletAssetService(holdings port.HoldingsSource, logger port.Logger, priceTTL, cacheCleanup time.Duration) *WalletAssetService {
	return &WalletAssetService{
		holdings:   holdings,
		logger:     logger,
		priceCache: gocache.New(priceTTL, cacheCleanup),
	}
}

// FetchWalletAssets fetches and normalizes all holdings for the owner.
// Fetch failures degrade to partial or empty results, never an error: a
// failed price lookup yields zero-value assets, a failed holdings listing
// yields at most the synthesized native entry.
func (s *WalletAssetService) FetchWalletAssets(ctx context.Context, owner string) []entity.WalletAsset {
	holdings, err := s.holdings.FetchHoldings(ctx, owner)
	if err != nil {
		s.logger.Error("Failed to fetch holdings, continuing with empty list", "owner", owner, "error", err)
		holdings = nil
	}

	// The bulk listing misreports the native balance; a dedicated read is
	// authoritative. When that read fails the raw entry is left untouched.
	lamports, nativeErr := s.holdings.FetchNativeBalance(ctx, owner)
	if nativeErr != nil {
		s.logger.Warn("Failed to fetch native balance, keeping raw holdings value", "owner", owner, "error", nativeErr)
	}

	holdings = s.reconcileNativeEntry(holdings, owner, lamports, nativeErr == nil)
	if len(holdings) == 0 {
		return []entity.WalletAsset{}
	}

	priceIDs := make([]string, len(holdings))
	for i, h := range holdings {
		priceIDs[i] = priceLookupID(h, owner)
	}
	priceMap := s.resolvePrices(ctx, priceIDs)

	assets := make([]entity.WalletAsset, 0, len(holdings))
	for _, h := range holdings {
		asset, ok := s.mapWalletAsset(h, owner, priceMap)
		if !ok {
			continue
		}
		// Zero-value dust is not surfaced.
		if asset.Value <= 0 {
			continue
		}
		assets = append(assets, asset)
	}

	metrics.WalletAssetsFetched.Set(float64(len(assets)))
	s.logger.Info("Wallet assets normalized", "owner", owner, "raw_count", len(holdings), "asset_count", len(assets))
	return assets
}

// reconcileNativeEntry overwrites or injects the native asset entry using the
// authoritative balance reading. The native asset may appear in the raw list
// under the owner's address, the canonical mint or just its symbol.
func (s *WalletAssetService) reconcileNativeEntry(holdings []entity.RawHolding, owner string, lamports int64, authoritative bool) []entity.RawHolding {
	idx := -1
	for i, h := range holdings {
		if h.ID == owner || h.ID == registry.NativeMint || h.Symbol == registry.NativeSymbol {
			idx = i
			break
		}
	}

	if idx >= 0 {
		if authoritative {
			s.logger.Debug("Overriding native balance from raw holdings",
				"raw_balance", holdings[idx].Balance, "authoritative_balance", lamports)
			holdings[idx].Balance = lamports
		}
		holdings[idx].Name = registry.NativeName
		holdings[idx].Symbol = registry.NativeSymbol
		holdings[idx].Decimals = registry.NativeDecimals
		return holdings
	}

	if authoritative && lamports > 0 {
		s.logger.Debug("Injecting native asset entry", "lamports", lamports)
		holdings = append(holdings, entity.RawHolding{
			ID:       owner,
			Name:     registry.NativeName,
			Symbol:   registry.NativeSymbol,
			Balance:  lamports,
			Decimals: registry.NativeDecimals,
		})
	}
	return holdings
}

// priceLookupID resolves the identifier used for the batched price lookup.
// Native entries always resolve to the canonical mint: the price service
// indexes by mint, not by account address.
func priceLookupID(h entity.RawHolding, owner string) string {
	if h.ID == owner || h.Symbol == registry.NativeSymbol {
		return registry.NativeMint
	}
	return h.ID
}

// resolvePrices returns a price per lookup id, consulting the TTL cache first
// and fetching the rest in one chunked batch call. The map is keyed by both
// the returned and the originally-requested ids, which differ only for the
// native asset.
func (s *WalletAssetService) resolvePrices(ctx context.Context, ids []string) map[string]float64 {
	priceMap := make(map[string]float64, len(ids))

	var missing []string
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if cached, ok := s.priceCache.Get(id); ok {
			priceMap[id] = cached.(float64)
			continue
		}
		missing = append(missing, id)
	}

	if len(missing) == 0 {
		return priceMap
	}

	details, err := s.holdings.FetchDetails(ctx, missing)
	if err != nil {
		s.logger.Error("Failed to fetch asset details, prices default to zero", "requested", len(missing), "error", err)
		return priceMap
	}

	for i, detail := range details {
		priceMap[detail.ID] = detail.PricePerToken
		if detail.PricePerToken > 0 {
			s.priceCache.SetDefault(detail.ID, detail.PricePerToken)
		}
		// When nothing was skipped, results align with the request order and
		// the requested id is keyed too.
		if len(details) == len(missing) && missing[i] != detail.ID {
			priceMap[missing[i]] = detail.PricePerToken
		}
	}
	return priceMap
}

// mapWalletAsset normalizes one raw holding. Returns false when the record is
// malformed; the batch continues without it.
func (s *WalletAssetService) mapWalletAsset(h entity.RawHolding, owner string, priceMap map[string]float64) (entity.WalletAsset, bool) {
	if h.ID == "" || h.Balance < 0 {
		s.logger.Warn("Skipping malformed holdings entry", "id", h.ID, "balance", h.Balance)
		return entity.WalletAsset{}, false
	}

	mint := priceLookupID(h, owner)

	var uiAmount float64
	switch {
	case mint == registry.NativeMint:
		uiAmount = registry.LamportsToSol(h.Balance)
	case h.Decimals > 0:
		uiAmount = float64(h.Balance) / math.Pow10(h.Decimals)
	default:
		uiAmount = float64(h.Balance)
	}

	price := priceMap[mint]
	name := h.Name
	if name == "" {
		name = "Unknown Token"
	}
	symbol := h.Symbol
	if symbol == "" {
		symbol = "UNK"
	}

	var categoryID string
	if mint == registry.NativeMint {
		categoryID = "crypto"
	} else {
		categoryID = registry.ResolveCategory(h.ID)
	}

	return entity.WalletAsset{
		ID:         h.ID,
		Mint:       mint,
		Name:       name,
		Symbol:     symbol,
		Amount:     h.Balance,
		Decimals:   h.Decimals,
		UIAmount:   uiAmount,
		Price:      price,
		Value:      uiAmount * price,
		CategoryID: categoryID,
	}, true
}
