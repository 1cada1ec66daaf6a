package service

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/zhengqian8958/Solari/internal/app/port"
	"github.com/zhengqian8958/Solari/internal/domain/entity"
	"github.com/zhengqian8958/Solari/internal/pkg/metrics"
)

// RefreshWorker polls the wallet on a fixed interval and feeds normalized
// assets into the reconciliation engine. Explicit refresh requests go through
// the same path; overlapping requests collapse to a single in-flight fetch.
type RefreshWorker struct {
	walletAssets *WalletAssetService
	portfolio    *PortfolioService
	owner        string
	interval     time.Duration
	logger       port.Logger
	group        singleflight.Group
}

// NewRefreshWorker creates a new RefreshWorker.
func NewRefreshWorker(walletAssets *WalletAssetService, portfolio *PortfolioService, owner string, interval time.Duration, logger port.Logger) *RefreshWorker {
	return &RefreshWorker{
		walletAssets: walletAssets,
		portfolio:    portfolio,
		owner:        owner,
		interval:     interval,
		logger:       logger,
	}
}

// Run refreshes once immediately, then on every tick until the context is
// cancelled.
func (w *RefreshWorker) Run(ctx context.Context) {
	w.logger.Info("Refresh worker started", "owner", w.owner, "interval", w.interval.String())

	w.Refresh(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Refresh worker stopped")
			return
		case <-ticker.C:
			w.Refresh(ctx)
		}
	}
}

// Refresh fetches the wallet and runs a reconciliation pass. Concurrent calls
// share one fetch and all receive the resulting Portfolio.
func (w *RefreshWorker) Refresh(ctx context.Context) entity.Portfolio {
	result, _, shared := w.group.Do("refresh", func() (any, error) {
		if w.owner == "" {
			// No wallet configured: reconcile customization state only.
			metrics.RefreshTotal.WithLabelValues("no_wallet").Inc()
			return w.portfolio.Reconcile(ctx), nil
		}

		assets := w.walletAssets.FetchWalletAssets(ctx, w.owner)
		if len(assets) == 0 {
			metrics.RefreshTotal.WithLabelValues("empty").Inc()
		} else {
			metrics.RefreshTotal.WithLabelValues("success").Inc()
		}
		return w.portfolio.SetWalletAssets(ctx, assets), nil
	})
	if shared {
		w.logger.Debug("Refresh request collapsed into in-flight fetch")
	}
	return result.(entity.Portfolio)
}
