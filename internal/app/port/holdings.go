package port

import (
	"context"

	"github.com/zhengqian8958/Solari/internal/domain/entity"
)

// HoldingsSource defines the interface for the external indexing service that
// reports on-chain holdings for a wallet. Implementations are free to chunk
// FetchDetails internally; callers pass the full id list.
type HoldingsSource interface {
	// FetchHoldings lists all fungible holdings of the owner. The native
	// balance in this listing is untrusted; use FetchNativeBalance instead.
	FetchHoldings(ctx context.Context, owner string) ([]entity.RawHolding, error)

	// FetchNativeBalance returns the authoritative native balance in base
	// units (lamports).
	FetchNativeBalance(ctx context.Context, owner string) (int64, error)

	// FetchDetails resolves price/detail data for a batch of asset ids.
	FetchDetails(ctx context.Context, ids []string) ([]entity.HoldingDetail, error)
}
