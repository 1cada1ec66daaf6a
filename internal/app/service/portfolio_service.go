package service

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhengqian8958/Solari/internal/app/port"
	"github.com/zhengqian8958/Solari/internal/domain/entity"
	"github.com/zhengqian8958/Solari/internal/infrastructure/registry"
	"github.com/zhengqian8958/Solari/internal/pkg/metrics"
)

// Storage keys for the customization state and derived artifacts. There is no
// transactional coupling between them; every value except the snapshot is
// re-derivable, and snapshot loss only degrades change tracking.
const (
	activeTypesKey    = "portfolio:active_investment_types"
	removedAssetsKey  = "portfolio:removed_assets"
	customAssetsKey   = "portfolio:custom_assets"
	portfolioCacheKey = "portfolio:cache"
)

// PortfolioService owns the customization state (active categories, removed
// tombstones, custom assets) and recomputes the full Portfolio from scratch
// whenever any input changes. Each pass is a pure function of its inputs; the
// mutex only serializes state mutation and the persistence side effects.
type PortfolioService struct {
	store     port.KeyValueStore
	snapshots *SnapshotStore
	logger    port.Logger

	mu               sync.Mutex
	activeIDs        []string
	removed          map[string][]string
	custom           map[string][]entity.Asset
	selectedID       string
	lastWalletAssets []entity.WalletAsset
	portfolio        entity.Portfolio
	hasPortfolio     bool
}

// NewPortfolioService creates a new PortfolioService.
func NewPortfolioService(store port.KeyValueStore, snapshots *SnapshotStore, logger port.Logger) *PortfolioService {
	return &PortfolioService{
		store:     store,
		snapshots: snapshots,
		logger:    logger,
		activeIDs: append([]string(nil), registry.DefaultActiveInvestmentTypeIDs...),
		removed:   make(map[string][]string),
		custom:    make(map[string][]entity.Asset),
	}
}

// LoadState restores the persisted customization state. Corrupt or absent
// values fall back to defaults; on a true first run the default active-category
// list is persisted so subsequent starts see an explicit selection.
func (s *PortfolioService) LoadState(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ids, ok := s.loadStringSlice(ctx, activeTypesKey); ok {
		s.activeIDs = filterKnownTypeIDs(ids)
	} else {
		s.activeIDs = append([]string(nil), registry.DefaultActiveInvestmentTypeIDs...)
		s.persistActiveLocked(ctx)
		s.logger.Info("First run, persisted default active investment types", "ids", s.activeIDs)
	}

	s.removed = s.loadStringSliceMap(ctx, removedAssetsKey)
	s.custom = s.loadCustomAssets(ctx)

	s.logger.Info("Portfolio state loaded",
		"active_types", len(s.activeIDs),
		"tombstoned_categories", len(s.removed),
		"custom_categories", len(s.custom))
}

// SetWalletAssets replaces the current normalized wallet assets and runs a
// reconciliation pass.
func (s *PortfolioService) SetWalletAssets(ctx context.Context, assets []entity.WalletAsset) entity.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastWalletAssets = assets
	return s.reconcileLocked(ctx)
}

// Reconcile recomputes the Portfolio from the current inputs and persists the
// cache and snapshot. Safe to call after any mutation.
func (s *PortfolioService) Reconcile(ctx context.Context) entity.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconcileLocked(ctx)
}

func (s *PortfolioService) reconcileLocked(ctx context.Context) entity.Portfolio {
	start := time.Now()

	previous := SnapshotValues(s.snapshots.Load(ctx))
	portfolio, observed := reconcile(s.lastWalletAssets, s.activeIDs, s.removed, s.custom, previous)

	s.portfolio = portfolio
	s.hasPortfolio = true

	s.persistCacheLocked(ctx, portfolio)
	// Never overwrite the snapshot with an empty map: an empty pass (fetch
	// outage, everything tombstoned) must not erase all change history.
	if len(observed) > 0 {
		s.snapshots.Save(ctx, observed)
	}

	metrics.ReconcileDuration.Observe(time.Since(start).Seconds())
	metrics.PortfolioTotalValue.Set(portfolio.TotalValue)
	s.logger.Debug("Reconciliation pass complete",
		"total_value", portfolio.TotalValue,
		"investment_types", len(portfolio.InvestmentTypes),
		"observed_assets", len(observed))
	return portfolio
}

// reconcile is the pure core: it recomputes the full Portfolio from the four
// customization inputs plus the previous snapshot values, and returns the
// asset-id -> value map observed during the pass for the next snapshot.
func reconcile(
	walletAssets []entity.WalletAsset,
	activeIDs []string,
	removed map[string][]string,
	custom map[string][]entity.Asset,
	previous map[string]float64,
) (entity.Portfolio, map[string]float64) {
	grouped := make(map[string][]entity.WalletAsset)
	for _, wa := range walletAssets {
		grouped[wa.CategoryID] = append(grouped[wa.CategoryID], wa)
	}

	observed := make(map[string]float64)
	for _, wa := range walletAssets {
		observed[wa.ID] = wa.Value
	}
	for _, assets := range custom {
		for _, a := range assets {
			observed[a.ID] = a.Value
		}
	}

	types := make([]entity.InvestmentType, 0, len(activeIDs))
	for _, typeID := range activeIDs {
		template, ok := registry.SystemInvestmentTypeByID(typeID)
		if !ok {
			continue
		}

		tombstones := make(map[string]struct{}, len(removed[typeID]))
		for _, id := range removed[typeID] {
			tombstones[id] = struct{}{}
		}

		assets := make([]entity.Asset, 0, len(grouped[typeID])+len(custom[typeID]))
		for _, wa := range grouped[typeID] {
			if _, gone := tombstones[wa.ID]; gone {
				continue
			}
			assets = append(assets, walletAssetToAsset(wa, typeID, previous))
		}
		for _, ca := range custom[typeID] {
			if _, gone := tombstones[ca.ID]; gone {
				continue
			}
			assets = append(assets, customAssetWithChange(ca, typeID, previous))
		}

		var totalValue, totalChange float64
		for _, a := range assets {
			totalValue += a.Value
			totalChange += a.Change
		}
		for i := range assets {
			if totalValue > 0 {
				assets[i].Percentage = assets[i].Value / totalValue * 100
			} else {
				assets[i].Percentage = 0
			}
		}

		types = append(types, entity.InvestmentType{
			ID:               template.ID,
			Name:             template.Name,
			Icon:             template.Icon,
			Color:            template.Color,
			TotalValue:       totalValue,
			Change:           totalChange,
			ChangePercentage: guardedChangePercentage(totalValue, totalChange),
			Assets:           assets,
		})
	}

	var portfolioTotal, portfolioChange float64
	for _, t := range types {
		portfolioTotal += t.TotalValue
		portfolioChange += t.Change
	}
	for i := range types {
		if portfolioTotal > 0 {
			types[i].Percentage = types[i].TotalValue / portfolioTotal * 100
		} else {
			types[i].Percentage = 0
		}
	}

	return entity.Portfolio{
		TotalValue:            portfolioTotal,
		TotalChange:           portfolioChange,
		TotalChangePercentage: guardedChangePercentage(portfolioTotal, portfolioChange),
		InvestmentTypes:       types,
	}, observed
}

// guardedChangePercentage derives a relative delta from an aggregated total
// and its aggregated change, using (total - change) as the implied previous
// total. A non-positive implied previous yields 0 rather than a nonsense
// division.
func guardedChangePercentage(totalValue, totalChange float64) float64 {
	previous := totalValue - totalChange
	if previous <= 0 {
		return 0
	}
	return totalChange / previous * 100
}

func walletAssetToAsset(wa entity.WalletAsset, typeID string, previous map[string]float64) entity.Asset {
	prev, has := previous[wa.ID]
	change, changePct := ComputeChange(wa.Value, prev, has)
	return entity.Asset{
		ID:               wa.ID,
		Mint:             wa.Mint,
		Name:             wa.Name,
		Symbol:           wa.Symbol,
		Value:            wa.Value,
		Change:           change,
		ChangePercentage: changePct,
		InvestmentTypeID: typeID,
		PreviousValue:    prev,
	}
}

func customAssetWithChange(ca entity.Asset, typeID string, previous map[string]float64) entity.Asset {
	prev, has := previous[ca.ID]
	change, changePct := ComputeChange(ca.Value, prev, has)
	out := ca
	out.InvestmentTypeID = typeID
	out.Change = change
	out.ChangePercentage = changePct
	out.PreviousValue = prev
	return out
}

// AddInvestmentType activates a system investment type. Unknown or already
// active ids are a logged no-op.
func (s *PortfolioService) AddInvestmentType(ctx context.Context, id string) entity.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := registry.SystemInvestmentTypeByID(id); !ok {
		s.logger.Warn("Ignoring unknown investment type", "id", id)
		return s.portfolio
	}
	for _, active := range s.activeIDs {
		if active == id {
			s.logger.Debug("Investment type already active", "id", id)
			return s.portfolio
		}
	}

	s.activeIDs = append(s.activeIDs, id)
	s.persistActiveLocked(ctx)
	s.logger.Info("Investment type activated", "id", id)
	return s.reconcileLocked(ctx)
}

// RemoveInvestmentType deactivates an investment type and clears the view
// selection if it pointed at the removed type.
func (s *PortfolioService) RemoveInvestmentType(ctx context.Context, id string) entity.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := s.activeIDs[:0:0]
	for _, active := range s.activeIDs {
		if active != id {
			filtered = append(filtered, active)
		}
	}
	if len(filtered) == len(s.activeIDs) {
		s.logger.Debug("Investment type not active, nothing to remove", "id", id)
		return s.portfolio
	}

	s.activeIDs = filtered
	if s.selectedID == id {
		s.selectedID = ""
	}
	s.persistActiveLocked(ctx)
	s.logger.Info("Investment type deactivated", "id", id)
	return s.reconcileLocked(ctx)
}

// RemoveAsset tombstones an asset within a category. Wallet-derived assets
// reappear on every fetch, so suppression is recorded rather than deleted at
// source. Custom assets go through the same path; their stored record is left
// in place.
func (s *PortfolioService) RemoveAsset(ctx context.Context, categoryID, assetID string) entity.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.removed[categoryID] {
		if id == assetID {
			s.logger.Debug("Asset already tombstoned", "category", categoryID, "asset", assetID)
			return s.portfolio
		}
	}

	s.removed[categoryID] = append(s.removed[categoryID], assetID)
	s.persistRemovedLocked(ctx)
	s.logger.Info("Asset tombstoned", "category", categoryID, "asset", assetID)
	return s.reconcileLocked(ctx)
}

// AddAsset registers a manually-entered asset under a category. Manual entries
// have no price feed, so the value gets a lightweight randomized adjustment as
// placeholder pricing.
func (s *PortfolioService) AddAsset(ctx context.Context, categoryID, name string, amount float64) entity.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := registry.SystemInvestmentTypeByID(categoryID); !ok {
		s.logger.Warn("Ignoring custom asset for unknown category", "category", categoryID)
		return s.portfolio
	}
	if name == "" || amount <= 0 {
		s.logger.Warn("Ignoring invalid custom asset", "category", categoryID, "name", name, "amount", amount)
		return s.portfolio
	}

	value := round2(amount * (0.8 + rand.Float64()*0.4))
	symbol := strings.ToUpper(name)
	if len(symbol) > 4 {
		symbol = symbol[:4]
	}

	asset := entity.Asset{
		ID:               fmt.Sprintf("custom_%s_%s", categoryID, uuid.NewString()),
		Name:             name,
		Symbol:           symbol,
		Value:            value,
		Change:           round2(value * (rand.Float64()*0.1 - 0.05)),
		InvestmentTypeID: categoryID,
		IsCustom:         true,
		CreatedAt:        time.Now().UnixMilli(),
	}

	s.custom[categoryID] = append(s.custom[categoryID], asset)
	s.persistCustomLocked(ctx)
	s.logger.Info("Custom asset added", "category", categoryID, "id", asset.ID, "value", asset.Value)
	return s.reconcileLocked(ctx)
}

// Portfolio returns the latest in-memory Portfolio and whether one has been
// computed yet.
func (s *PortfolioService) Portfolio() (entity.Portfolio, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.portfolio, s.hasPortfolio
}

// CachedPortfolio loads the last persisted Portfolio for a fast first render
// before live data arrives. Corrupt or absent cache reports not-found.
func (s *PortfolioService) CachedPortfolio(ctx context.Context) (entity.Portfolio, bool) {
	data, ok, err := s.store.Get(ctx, portfolioCacheKey)
	if err != nil {
		s.logger.Error("Failed to load portfolio cache", "error", err)
		return entity.Portfolio{}, false
	}
	if !ok {
		return entity.Portfolio{}, false
	}
	var portfolio entity.Portfolio
	if err := json.Unmarshal([]byte(data), &portfolio); err != nil {
		s.logger.Warn("Failed to parse portfolio cache, treating as absent", "error", err)
		return entity.Portfolio{}, false
	}
	return portfolio, true
}

// ActiveInvestmentTypeIDs returns a copy of the active-category list in the
// user's persisted order.
func (s *PortfolioService) ActiveInvestmentTypeIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.activeIDs...)
}

// InvestmentType returns one reconciled investment type by id.
func (s *PortfolioService) InvestmentType(id string) (entity.InvestmentType, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.portfolio.InvestmentTypes {
		if t.ID == id {
			return t, true
		}
	}
	return entity.InvestmentType{}, false
}

// AssetsByInvestmentType returns the reconciled assets of one investment type.
func (s *PortfolioService) AssetsByInvestmentType(id string) []entity.Asset {
	t, ok := s.InvestmentType(id)
	if !ok {
		return []entity.Asset{}
	}
	return t.Assets
}

// SetSelectedInvestmentType records the currently-viewed category. Selecting
// an inactive or unknown id clears the selection.
func (s *PortfolioService) SetSelectedInvestmentType(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, active := range s.activeIDs {
		if active == id {
			s.selectedID = id
			return
		}
	}
	s.selectedID = ""
}

// SelectedInvestmentType returns the currently-viewed category id, if any.
func (s *PortfolioService) SelectedInvestmentType() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedID, s.selectedID != ""
}

func (s *PortfolioService) persistActiveLocked(ctx context.Context) {
	s.persistJSONLocked(ctx, activeTypesKey, s.activeIDs)
}

func (s *PortfolioService) persistRemovedLocked(ctx context.Context) {
	s.persistJSONLocked(ctx, removedAssetsKey, s.removed)
}

func (s *PortfolioService) persistCustomLocked(ctx context.Context) {
	s.persistJSONLocked(ctx, customAssetsKey, s.custom)
}

func (s *PortfolioService) persistCacheLocked(ctx context.Context, portfolio entity.Portfolio) {
	s.persistJSONLocked(ctx, portfolioCacheKey, portfolio)
}

// persistJSONLocked writes one state key best-effort. Failures are logged
// only: persistence must never block or fail a reconciliation pass.
func (s *PortfolioService) persistJSONLocked(ctx context.Context, key string, value any) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("Failed to marshal state", "key", key, "error", err)
		return
	}
	if err := s.store.Set(ctx, key, string(data)); err != nil {
		s.logger.Error("Failed to persist state", "key", key, "error", err)
	}
}

func (s *PortfolioService) loadStringSlice(ctx context.Context, key string) ([]string, bool) {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			s.logger.Error("Failed to load state", "key", key, "error", err)
		}
		return nil, false
	}
	var out []string
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		s.logger.Warn("Failed to parse state, treating as absent", "key", key, "error", err)
		return nil, false
	}
	return out, true
}

func (s *PortfolioService) loadStringSliceMap(ctx context.Context, key string) map[string][]string {
	data, ok, err := s.store.Get(ctx, key)
	if err != nil || !ok {
		if err != nil {
			s.logger.Error("Failed to load state", "key", key, "error", err)
		}
		return make(map[string][]string)
	}
	var out map[string][]string
	if err := json.Unmarshal([]byte(data), &out); err != nil || out == nil {
		if err != nil {
			s.logger.Warn("Failed to parse state, treating as absent", "key", key, "error", err)
		}
		return make(map[string][]string)
	}
	return out
}

func (s *PortfolioService) loadCustomAssets(ctx context.Context) map[string][]entity.Asset {
	data, ok, err := s.store.Get(ctx, customAssetsKey)
	if err != nil || !ok {
		if err != nil {
			s.logger.Error("Failed to load state", "key", customAssetsKey, "error", err)
		}
		return make(map[string][]entity.Asset)
	}
	var out map[string][]entity.Asset
	if err := json.Unmarshal([]byte(data), &out); err != nil || out == nil {
		if err != nil {
			s.logger.Warn("Failed to parse state, treating as absent", "key", customAssetsKey, "error", err)
		}
		return make(map[string][]entity.Asset)
	}
	return out
}

func filterKnownTypeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := registry.SystemInvestmentTypeByID(id); ok {
			out = append(out, id)
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
