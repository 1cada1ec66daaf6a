package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RefreshTotal counts wallet refresh passes by result
	// ("success" / "empty" / "no_wallet").
	RefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "solari_refresh_total",
			Help: "Number of wallet refresh passes by result.",
		},
		[]string{"result"},
	)

	// ReconcileDuration observes the duration of portfolio reconciliation passes.
	ReconcileDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "solari_reconcile_duration_seconds",
			Help:    "Duration of portfolio reconciliation passes.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// WalletAssetsFetched tracks the number of normalized wallet assets from the last fetch.
	WalletAssetsFetched = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "solari_wallet_assets_fetched",
			Help: "Normalized wallet assets returned by the last holdings fetch.",
		},
	)

	// PortfolioTotalValue tracks the total value of the last reconciled portfolio.
	PortfolioTotalValue = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "solari_portfolio_total_value",
			Help: "Total value of the last reconciled portfolio.",
		},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Panics on duplicate registration, so call it once from main.
func MustRegisterMetrics() {
	prometheus.MustRegister(
		RefreshTotal,
		ReconcileDuration,
		WalletAssetsFetched,
		PortfolioTotalValue,
	)
}
