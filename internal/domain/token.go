package domain

// Token represents on-chain mint state for a token under analysis.
// Immutable once fetched; re-fetched per analysis call.
type Token struct {
	Mint            string   // base58 mint address
	Decimals        int      // token decimals
	Supply          float64  // total supply in UI units
	MetadataMutable bool     // metadata can still be changed by the creator
	MintAuthority   bool     // mint authority still present (supply can grow)
	FreezeAuthority bool     // freeze authority still present (accounts can be frozen)
	Name            *string  // token name (nullable)
	Symbol          *string  // token symbol (nullable)
	CreatedAt       *int64   // first known activity, Unix ms (nullable)
}

// AgeDays returns the token age in whole days relative to now (Unix ms).
// Returns -1 when the creation time is unknown.
func (t *Token) AgeDays(now int64) int {
	if t.CreatedAt == nil || *t.CreatedAt <= 0 || now < *t.CreatedAt {
		return -1
	}
	return int((now - *t.CreatedAt) / MillisPerDay)
}

// Time constants used by age-relative checks.
const (
	MillisPerDay = int64(24 * 60 * 60 * 1000)
)
