package domain

// WindowStats holds market activity for one fixed lookback window.
// PriceChangePct is signed: negative means decline.
type WindowStats struct {
	PriceChangePct float64 // percent price change over the window
	BuyCount       int     // buy transactions in the window
	SellCount      int     // sell transactions in the window
	Volume         float64 // traded volume in the window (quote units)
}

// TxCount returns total transactions in the window.
func (w WindowStats) TxCount() int {
	return w.BuyCount + w.SellCount
}

// SellRatio returns sells / total transactions, 0 when the window is empty.
func (w WindowStats) SellRatio() float64 {
	total := w.TxCount()
	if total == 0 {
		return 0
	}
	return float64(w.SellCount) / float64(total)
}

// PriceSeries holds per-window market snapshots for a token.
// Windows are conceptually non-overlapping but may share trade data.
type PriceSeries struct {
	M5  WindowStats // 5 minutes
	H1  WindowStats // 1 hour
	H6  WindowStats // 6 hours
	H24 WindowStats // 24 hours
}
