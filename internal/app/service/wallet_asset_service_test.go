package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengqian8958/Solari/internal/domain/entity"
	"github.com/zhengqian8958/Solari/internal/infrastructure/registry"
	"github.com/zhengqian8958/Solari/internal/pkg/logger"
)

const testOwner = "3k5aKPz7yXAMnYJMCRj8fnbJXYEQPQqUeGkaCPxkQJZt"

// fakeHoldingsSource implements port.HoldingsSource with function fields.
type fakeHoldingsSource struct {
	holdings      func(ctx context.Context, owner string) ([]entity.RawHolding, error)
	nativeBalance func(ctx context.Context, owner string) (int64, error)
	details       func(ctx context.Context, ids []string) ([]entity.HoldingDetail, error)
}

func (f *fakeHoldingsSource) FetchHoldings(ctx context.Context, owner string) ([]entity.RawHolding, error) {
	if f.holdings == nil {
		return nil, nil
	}
	return f.holdings(ctx, owner)
}

func (f *fakeHoldingsSource) FetchNativeBalance(ctx context.Context, owner string) (int64, error) {
	if f.nativeBalance == nil {
		return 0, nil
	}
	return f.nativeBalance(ctx, owner)
}

func (f *fakeHoldingsSource) FetchDetails(ctx context.Context, ids []string) ([]entity.HoldingDetail, error) {
	if f.details == nil {
		return nil, nil
	}
	return f.details(ctx, ids)
}

func newTestWalletAssetService(source *fakeHoldingsSource) *WalletAssetService {
	return NewWalletAssetService(source, logger.NewSlogAdapter(), time.Minute, time.Minute)
}

func findWalletAsset(t *testing.T, assets []entity.WalletAsset, id string) entity.WalletAsset {
	t.Helper()
	for _, a := range assets {
		if a.ID == id {
			return a
		}
	}
	t.Fatalf("wallet asset %q not found", id)
	return entity.WalletAsset{}
}

func TestFetchWalletAssetsOverridesNativeBalance(t *testing.T) {
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return []entity.RawHolding{
				{ID: testOwner, Name: "sol?", Symbol: "SOL", Balance: 1_000_000_000, Decimals: 9},
			}, nil
		},
		nativeBalance: func(context.Context, string) (int64, error) {
			return 2_000_000_000, nil
		},
		details: func(_ context.Context, ids []string) ([]entity.HoldingDetail, error) {
			return []entity.HoldingDetail{{ID: registry.NativeMint, PricePerToken: 150}}, nil
		},
	}

	assets := newTestWalletAssetService(source).FetchWalletAssets(context.Background(), testOwner)
	require.Len(t, assets, 1)

	native := assets[0]
	assert.Equal(t, testOwner, native.ID)
	assert.Equal(t, registry.NativeMint, native.Mint)
	assert.Equal(t, registry.NativeName, native.Name)
	assert.InDelta(t, 2.0, native.UIAmount, 1e-9)
	assert.InDelta(t, 300.0, native.Value, 1e-9)
	assert.Equal(t, "crypto", native.CategoryID)
}

func TestFetchWalletAssetsInjectsMissingNative(t *testing.T) {
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return []entity.RawHolding{
				{ID: "SomeMint", Name: "Token", Symbol: "TOK", Balance: 2_000_000, Decimals: 6},
			}, nil
		},
		nativeBalance: func(context.Context, string) (int64, error) {
			return 1_500_000_000, nil
		},
		details: func(_ context.Context, ids []string) ([]entity.HoldingDetail, error) {
			return []entity.HoldingDetail{
				{ID: "SomeMint", PricePerToken: 2},
				{ID: registry.NativeMint, PricePerToken: 100},
			}, nil
		},
	}

	assets := newTestWalletAssetService(source).FetchWalletAssets(context.Background(), testOwner)
	require.Len(t, assets, 2)

	token := findWalletAsset(t, assets, "SomeMint")
	assert.InDelta(t, 4.0, token.Value, 1e-9)
	assert.Equal(t, registry.FallbackCategory, token.CategoryID)

	native := findWalletAsset(t, assets, testOwner)
	assert.InDelta(t, 1.5, native.UIAmount, 1e-9)
	assert.InDelta(t, 150.0, native.Value, 1e-9)
}

func TestFetchWalletAssetsSkipsZeroNativeInjection(t *testing.T) {
	source := &fakeHoldingsSource{
		nativeBalance: func(context.Context, string) (int64, error) { return 0, nil },
	}

	assets := newTestWalletAssetService(source).FetchWalletAssets(context.Background(), testOwner)
	assert.Empty(t, assets)
}

func TestFetchWalletAssetsDropsDust(t *testing.T) {
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return []entity.RawHolding{
				{ID: "Priced", Symbol: "PRC", Balance: 1_000_000, Decimals: 6},
				{ID: "Unpriced", Symbol: "DUST", Balance: 1_000_000, Decimals: 6},
			}, nil
		},
		details: func(_ context.Context, ids []string) ([]entity.HoldingDetail, error) {
			return []entity.HoldingDetail{
				{ID: "Priced", PricePerToken: 3},
				{ID: "Unpriced", PricePerToken: 0},
			}, nil
		},
	}

	assets := newTestWalletAssetService(source).FetchWalletAssets(context.Background(), testOwner)
	require.Len(t, assets, 1)
	assert.Equal(t, "Priced", assets[0].ID)
}

func TestFetchWalletAssetsPriceMapKeyedBothWays(t *testing.T) {
	// The price lookup requests the canonical mint for the native entry; the
	// returned id matches the request, and the asset keeps the owner id.
	var requested []string
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return []entity.RawHolding{
				{ID: testOwner, Symbol: "SOL", Balance: 1_000_000_000, Decimals: 9},
			}, nil
		},
		nativeBalance: func(context.Context, string) (int64, error) { return 1_000_000_000, nil },
		details: func(_ context.Context, ids []string) ([]entity.HoldingDetail, error) {
			requested = append(requested, ids...)
			return []entity.HoldingDetail{{ID: registry.NativeMint, PricePerToken: 50}}, nil
		},
	}

	assets := newTestWalletAssetService(source).FetchWalletAssets(context.Background(), testOwner)
	require.Len(t, assets, 1)
	assert.Equal(t, []string{registry.NativeMint}, requested)
	assert.InDelta(t, 50.0, assets[0].Price, 1e-9)
}

func TestFetchWalletAssetsHoldingsFailureDegrades(t *testing.T) {
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return nil, errors.New("rpc unavailable")
		},
		nativeBalance: func(context.Context, string) (int64, error) { return 1_000_000_000, nil },
		details: func(_ context.Context, ids []string) ([]entity.HoldingDetail, error) {
			return []entity.HoldingDetail{{ID: registry.NativeMint, PricePerToken: 10}}, nil
		},
	}

	// The listing failed but the native balance still surfaces.
	assets := newTestWalletAssetService(source).FetchWalletAssets(context.Background(), testOwner)
	require.Len(t, assets, 1)
	assert.Equal(t, testOwner, assets[0].ID)
	assert.InDelta(t, 10.0, assets[0].Value, 1e-9)
}

func TestFetchWalletAssetsNativeFailureKeepsRawEntry(t *testing.T) {
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return []entity.RawHolding{
				{ID: testOwner, Symbol: "SOL", Balance: 3_000_000_000, Decimals: 9},
			}, nil
		},
		nativeBalance: func(context.Context, string) (int64, error) {
			return 0, errors.New("getBalance timeout")
		},
		details: func(_ context.Context, ids []string) ([]entity.HoldingDetail, error) {
			return []entity.HoldingDetail{{ID: registry.NativeMint, PricePerToken: 100}}, nil
		},
	}

	assets := newTestWalletAssetService(source).FetchWalletAssets(context.Background(), testOwner)
	require.Len(t, assets, 1)
	assert.InDelta(t, 3.0, assets[0].UIAmount, 1e-9)
}

func TestFetchWalletAssetsDetailsFailureZeroesPrices(t *testing.T) {
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return []entity.RawHolding{
				{ID: "SomeMint", Symbol: "TOK", Balance: 1_000_000, Decimals: 6},
			}, nil
		},
		details: func(context.Context, []string) ([]entity.HoldingDetail, error) {
			return nil, errors.New("batch failed")
		},
	}

	// Zero prices mean zero values, which the dust filter then drops.
	assets := newTestWalletAssetService(source).FetchWalletAssets(context.Background(), testOwner)
	assert.Empty(t, assets)
}

func TestFetchWalletAssetsUsesPriceCache(t *testing.T) {
	calls := 0
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return []entity.RawHolding{
				{ID: "SomeMint", Symbol: "TOK", Balance: 1_000_000, Decimals: 6},
			}, nil
		},
		details: func(_ context.Context, ids []string) ([]entity.HoldingDetail, error) {
			calls++
			return []entity.HoldingDetail{{ID: "SomeMint", PricePerToken: 2}}, nil
		},
	}

	svc := newTestWalletAssetService(source)
	svc.FetchWalletAssets(context.Background(), testOwner)
	assets := svc.FetchWalletAssets(context.Background(), testOwner)

	assert.Equal(t, 1, calls)
	require.Len(t, assets, 1)
	assert.InDelta(t, 2.0, assets[0].Value, 1e-9)
}
