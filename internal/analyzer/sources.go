package analyzer

import (
	"context"

	"rugradar/internal/domain"
	"rugradar/internal/normalize"
)

// Source interfaces abstract the upstreams an analysis pulls from.
// Implementations signal "no data for this subject" by returning
// storage.ErrNotFound (wrapped is fine); every other error is treated
// as a degraded fetch.

// TokenSource fetches the primary mint record.
type TokenSource interface {
	GetToken(ctx context.Context, mint string) (*domain.Token, error)
}

// HolderSource fetches raw holder balances for a mint.
type HolderSource interface {
	GetHolders(ctx context.Context, mint string) ([]normalize.RawHolder, error)
}

// MarketData is the market view one analysis consumes.
type MarketData struct {
	Series domain.PriceSeries
	Social domain.SocialLinks
}

// MarketSource fetches price windows and social links for a mint.
type MarketSource interface {
	GetMarket(ctx context.Context, mint string) (*MarketData, error)
}

// WalletSource fetches per-wallet history around a mint's holders.
type WalletSource interface {
	// GetProfiles resolves history profiles for holder addresses.
	GetProfiles(ctx context.Context, addrs []string) ([]domain.WalletProfile, error)

	// GetBundleHints reports which holder addresses bought inside
	// launch bundles. A nil map with nil error means timing data is
	// unavailable for this mint.
	GetBundleHints(ctx context.Context, mint string) (map[string]bool, error)

	// GetDevOutflows returns transfers out of the deployer wallet.
	GetDevOutflows(ctx context.Context, mint string) ([]domain.Transaction, error)
}
