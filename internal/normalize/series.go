package normalize

import (
	"math"

	"rugradar/internal/domain"
)

// Lookback windows in milliseconds.
const (
	windowM5  = int64(5 * 60 * 1000)
	windowH1  = int64(60 * 60 * 1000)
	windowH6  = int64(6 * 60 * 60 * 1000)
	windowH24 = int64(24 * 60 * 60 * 1000)
)

// SeriesFromTransactions rebuilds per-window market stats from a raw
// timeline, using cumulative pool balance as the price proxy (bonding
// curve semantics: price rises deterministically with net inflow).
// asOf anchors the lookback windows; transactions after asOf are ignored.
// Used by calibration to feed the pump & dump detector with synthetic data.
func SeriesFromTransactions(txs []domain.Transaction, asOf int64) domain.PriceSeries {
	sorted := make([]domain.Transaction, len(txs))
	copy(sorted, txs)
	domain.SortTransactions(sorted)

	// Cumulative pool balance at each transaction.
	balances := make([]float64, len(sorted))
	cum := 0.0
	for i, tx := range sorted {
		cum += tx.Amount
		balances[i] = cum
	}

	return domain.PriceSeries{
		M5:  windowStats(sorted, balances, asOf-windowM5, asOf),
		H1:  windowStats(sorted, balances, asOf-windowH1, asOf),
		H6:  windowStats(sorted, balances, asOf-windowH6, asOf),
		H24: windowStats(sorted, balances, asOf-windowH24, asOf),
	}
}

// windowStats computes stats for transactions in (start, end].
// Price change compares the pool balance at window start against the
// balance at the last transaction inside the window.
func windowStats(txs []domain.Transaction, balances []float64, start, end int64) domain.WindowStats {
	var stats domain.WindowStats

	startBalance := 0.0
	lastBalance := 0.0
	seen := false
	for i, tx := range txs {
		if tx.Timestamp > end {
			break
		}
		if tx.Timestamp <= start {
			startBalance = balances[i]
			lastBalance = balances[i]
			continue
		}
		seen = true
		lastBalance = balances[i]
		if tx.Amount >= 0 {
			stats.BuyCount++
		} else {
			stats.SellCount++
		}
		stats.Volume += math.Abs(tx.Amount)
	}

	if seen {
		stats.PriceChangePct = changePercent(startBalance, lastBalance)
	}
	return stats
}

// changePercent computes (to-from)/from*100. A zero or negative
// baseline coerces to +100 on growth and 0 otherwise; NaN/Inf coerce
// to 0 and declines are floored at -100.
func changePercent(from, to float64) float64 {
	if from <= 0 {
		if to > 0 {
			return 100
		}
		return 0
	}
	pct := (to - from) / from * 100
	if math.IsNaN(pct) || math.IsInf(pct, 0) {
		return 0
	}
	if pct < -100 {
		return -100
	}
	return pct
}
