package service

import (
	"context"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengqian8958/Solari/internal/infrastructure/kvstore"
	"github.com/zhengqian8958/Solari/internal/pkg/logger"
)

func newTestSnapshotStore() (*SnapshotStore, *kvstore.MemoryStore) {
	store := kvstore.NewMemoryStore()
	return NewSnapshotStore(store, logger.NewSlogAdapter()), store
}

func TestComputeChange(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		previous    float64
		hasPrevious bool
		wantChange  float64
		wantPct     float64
	}{
		{"no previous, positive current", 4.0, 0, false, 4.0, 100},
		{"no previous, zero current", 0, 0, false, 0, 0},
		{"zero previous treated as absent", 5.0, 0, true, 5.0, 100},
		{"growth", 150, 100, true, 50, 50},
		{"decline", 75, 100, true, -25, -25},
		{"unchanged", 100, 100, true, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			change, pct := ComputeChange(tt.current, tt.previous, tt.hasPrevious)
			assert.InDelta(t, tt.wantChange, change, 1e-9)
			assert.InDelta(t, tt.wantPct, pct, 1e-9)
		})
	}
}

func TestComputeChangeNewAssetProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	// Any non-negative value with no history reports itself as the change and
	// +100% when positive.
	properties.Property("new asset reports full value as change", prop.ForAll(
		func(v float64) bool {
			change, pct := ComputeChange(v, 0, false)
			if change != v {
				return false
			}
			if v > 0 {
				return pct == 100
			}
			return pct == 0
		},
		gen.Float64Range(0, 1e12),
	))

	properties.TestingRun(t)
}

func TestSnapshotStoreSaveLoad(t *testing.T) {
	snapshots, _ := newTestSnapshotStore()
	ctx := context.Background()

	values := map[string]float64{"X": 4.0, "Y": 12.5}
	snapshots.Save(ctx, values)

	loaded := snapshots.Load(ctx)
	require.NotNil(t, loaded)
	assert.Equal(t, values, loaded.Assets)
	assert.Positive(t, loaded.Timestamp)
}

func TestSnapshotStoreLoadAbsent(t *testing.T) {
	snapshots, _ := newTestSnapshotStore()
	assert.Nil(t, snapshots.Load(context.Background()))
}

func TestSnapshotStoreLoadCorrupt(t *testing.T) {
	snapshots, store := newTestSnapshotStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, snapshotKey, "{not json"))
	assert.Nil(t, snapshots.Load(ctx))
}

func TestSnapshotValues(t *testing.T) {
	assert.Empty(t, SnapshotValues(nil))

	snapshots, _ := newTestSnapshotStore()
	ctx := context.Background()
	snapshots.Save(ctx, map[string]float64{"X": 1})
	assert.Equal(t, map[string]float64{"X": 1}, SnapshotValues(snapshots.Load(ctx)))
}
