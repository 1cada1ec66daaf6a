package entity

// PortfolioSnapshot records the last measured value per asset id. It is the
// sole source for period-over-period change; exactly one snapshot exists at a
// time (overwritten, never versioned).
type PortfolioSnapshot struct {
	Timestamp int64              `json:"timestamp"`
	Assets    map[string]float64 `json:"assets"` // asset id -> value
}
