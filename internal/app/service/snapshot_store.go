package service

import (
	"context"
	"time"

	"github.com/zhengqian8958/Solari/internal/app/port"
	"github.com/zhengqian8958/Solari/internal/domain/entity"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const snapshotKey = "portfolio:snapshot"

// SnapshotStore persists the timestamped asset-id -> value map used for
// period-over-period change. Exactly one snapshot exists at a time.
type SnapshotStore struct {
	store  port.KeyValueStore
	logger port.Logger
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(store port.KeyValueStore, logger port.Logger) *SnapshotStore {
	return &SnapshotStore{store: store, logger: logger}
}

// Save overwrites the previous snapshot with the given asset values. Failures
// are logged, not propagated: losing the snapshot only degrades change
// tracking to "everything looks new" on the next pass.
func (s *SnapshotStore) Save(ctx context.Context, assetValues map[string]float64) {
	snapshot := entity.PortfolioSnapshot{
		Timestamp: time.Now().UnixMilli(),
		Assets:    assetValues,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.Error("Failed to marshal portfolio snapshot", "error", err)
		return
	}
	if err := s.store.Set(ctx, snapshotKey, string(data)); err != nil {
		s.logger.Error("Failed to save portfolio snapshot", "error", err)
		return
	}
	s.logger.Debug("Portfolio snapshot saved", "asset_count", len(assetValues))
}

// Load returns the persisted snapshot, or nil if none exists or parsing fails.
func (s *SnapshotStore) Load(ctx context.Context) *entity.PortfolioSnapshot {
	data, ok, err := s.store.Get(ctx, snapshotKey)
	if err != nil {
		s.logger.Error("Failed to load portfolio snapshot", "error", err)
		return nil
	}
	if !ok {
		s.logger.Debug("No previous snapshot found")
		return nil
	}

	var snapshot entity.PortfolioSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		s.logger.Warn("Failed to parse stored snapshot, treating as absent", "error", err)
		return nil
	}
	s.logger.Debug("Previous snapshot loaded", "asset_count", len(snapshot.Assets))
	return &snapshot
}

// SnapshotValues extracts the asset-value map from a snapshot for lookup,
// returning an empty map when no snapshot exists.
func SnapshotValues(snapshot *entity.PortfolioSnapshot) map[string]float64 {
	if snapshot == nil || snapshot.Assets == nil {
		return map[string]float64{}
	}
	return snapshot.Assets
}

// ComputeChange calculates the absolute and relative delta between a current
// value and its previous counterpart. An asset with no previous value (or a
// previous value of exactly 0) is treated as newly observed and reported as a
// +100% gain when current > 0. This asymmetry is intentional; see the change
// semantics of the snapshot design, and do not "fix" it.
func ComputeChange(current, previous float64, hasPrevious bool) (change, changePercentage float64) {
	if !hasPrevious || previous == 0 {
		if current > 0 {
			return current, 100
		}
		return current, 0
	}

	change = current - previous
	changePercentage = (change / previous) * 100
	return change, changePercentage
}
