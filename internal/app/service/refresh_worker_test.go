package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhengqian8958/Solari/internal/domain/entity"
	"github.com/zhengqian8958/Solari/internal/infrastructure/kvstore"
	"github.com/zhengqian8958/Solari/internal/infrastructure/registry"
	"github.com/zhengqian8958/Solari/internal/pkg/logger"
)

func newTestRefreshWorker(source *fakeHoldingsSource, owner string) (*RefreshWorker, *PortfolioService) {
	log := logger.NewSlogAdapter()
	portfolioSvc := newTestPortfolioService(kvstore.NewMemoryStore())
	portfolioSvc.LoadState(context.Background())
	walletSvc := NewWalletAssetService(source, log, time.Minute, time.Minute)
	return NewRefreshWorker(walletSvc, portfolioSvc, owner, 30*time.Second, log), portfolioSvc
}

func TestRefreshFetchesAndReconciles(t *testing.T) {
	source := &fakeHoldingsSource{
		holdings: func(context.Context, string) ([]entity.RawHolding, error) {
			return []entity.RawHolding{
				{ID: "SomeMint", Symbol: "TOK", Balance: 2_000_000, Decimals: 6},
			}, nil
		},
		details: func(_ context.Context, ids []string) ([]entity.HoldingDetail, error) {
			return []entity.HoldingDetail{{ID: "SomeMint", PricePerToken: 2}}, nil
		},
	}
	worker, portfolioSvc := newTestRefreshWorker(source, testOwner)

	portfolio := worker.Refresh(context.Background())
	assert.InDelta(t, 4.0, portfolio.TotalValue, 1e-9)

	live, ok := portfolioSvc.Portfolio()
	require.True(t, ok)
	assert.Equal(t, portfolio, live)
}

func TestRefreshWithoutWalletReconcilesState(t *testing.T) {
	worker, portfolioSvc := newTestRefreshWorker(&fakeHoldingsSource{}, "")
	ctx := context.Background()

	portfolioSvc.AddAsset(ctx, "stock", "Acme Corp", 1000)
	portfolio := worker.Refresh(ctx)

	stock := findType(t, portfolio, "stock")
	assert.Len(t, stock.Assets, 1)
	assert.Equal(t, registry.DefaultActiveInvestmentTypeIDs, portfolioSvc.ActiveInvestmentTypeIDs())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	worker, _ := newTestRefreshWorker(&fakeHoldingsSource{}, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		worker.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after context cancellation")
	}
}
