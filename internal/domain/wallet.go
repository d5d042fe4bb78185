package domain

// FundingCategory buckets the origin of a wallet's first funding.
type FundingCategory string

const (
	FundingExchange    FundingCategory = "exchange"     // centralized exchange withdrawal
	FundingSwapService FundingCategory = "swap_service" // instant-swap / mixer-style service
	FundingPeer        FundingCategory = "peer"         // ordinary peer wallet
	FundingUnknown     FundingCategory = "unknown"      // trace unavailable
)

// WalletProfile holds age and funding-trace data for one holder wallet.
type WalletProfile struct {
	Address         string
	CreatedAt       *int64          // wallet creation time, Unix ms (nullable)
	FundingSource   string          // address that first funded the wallet
	FundingCategory FundingCategory // bucket for the funding source
	HighRiskFunding bool            // funding source is on the flagged swap-service list
	FirstBuyTime    *int64          // first buy of the analyzed token, Unix ms
	BuyAmount       float64         // cumulative buy size in quote units
	SellCount       int             // sells of the analyzed token
}

// AgeDays returns wallet age in whole days relative to now (Unix ms),
// or -1 when the creation time is unknown.
func (w WalletProfile) AgeDays(now int64) int {
	if w.CreatedAt == nil || *w.CreatedAt <= 0 || now < *w.CreatedAt {
		return -1
	}
	return int((now - *w.CreatedAt) / MillisPerDay)
}
