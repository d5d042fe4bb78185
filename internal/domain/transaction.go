package domain

import "sort"

// Transaction represents one observed or synthetic transfer affecting a
// token pool. Amount is signed: positive is inflow to the pool (a buy),
// negative is outflow (a sell or liquidity drain).
type Transaction struct {
	Timestamp   int64   // Unix ms, monotonic within a timeline
	Source      string  // sender address
	Destination string  // receiver address
	Amount      float64 // signed amount in quote units

	// Labels carried by synthetic timelines for calibration.
	IsDevSell   bool // disguised developer sell
	IsRugEdge   bool // the liquidity-drain edge itself
	IsSniperBuy bool // injected sniper buy at launch
	IsWashTrade bool // leg of a wash-trading loop
	IsFakeHype  bool // volume created to simulate organic interest
}

// SortTransactions sorts a timeline by timestamp ascending with a stable
// (source, destination) tie-break. Every sequence-aware consumer must
// sort first, and the augmentation pipeline re-sorts after each mutation.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if txs[i].Timestamp != txs[j].Timestamp {
			return txs[i].Timestamp < txs[j].Timestamp
		}
		if txs[i].Source != txs[j].Source {
			return txs[i].Source < txs[j].Source
		}
		return txs[i].Destination < txs[j].Destination
	})
}

// TransactionsSorted reports whether the timeline is in ascending
// timestamp order.
func TransactionsSorted(txs []Transaction) bool {
	for i := 1; i < len(txs); i++ {
		if txs[i].Timestamp < txs[i-1].Timestamp {
			return false
		}
	}
	return true
}
