package detector

import (
	"fmt"
	"math"

	"rugradar/internal/domain"
)

// PatternWashTrading identifies wash-trading findings.
const PatternWashTrading = "wash_trading"

// Wash trading is detected from raw timelines as buy/sell leg pairs
// that cancel out: a sell matching a recent buy to within the amount
// tolerance inside the pairing window. Labels on synthetic data are
// never consulted, so calibration measures real recall.
const (
	washPairWindowMs    = int64(10_000)
	washAmountTolerance = 0.001

	minWashPairs       = 5
	minWashVolumeShare = 0.05

	washShareCritical = 0.25
	washShareHigh     = 0.10
)

// WashTradeResult holds wash-trading analysis for one timeline.
type WashTradeResult struct {
	Findings        []domain.RiskFinding
	PairCount       int     // matched buy/sell leg pairs
	WashVolumeShare float64 // matched volume over total volume, 0..1
	Detected        bool
}

// AnalyzeWashTrading scans a timeline for volume-neutral leg pairs.
// Each buy matches at most one later sell. txs must be sorted by
// timestamp ascending.
func AnalyzeWashTrading(txs []domain.Transaction) WashTradeResult {
	var result WashTradeResult

	totalVolume := 0.0
	for _, tx := range txs {
		totalVolume += math.Abs(tx.Amount)
	}
	if totalVolume == 0 {
		return result
	}

	matched := make([]bool, len(txs))
	washVolume := 0.0
	for i, sell := range txs {
		if sell.Amount >= 0 {
			continue
		}
		for j := i - 1; j >= 0; j-- {
			buy := txs[j]
			if sell.Timestamp-buy.Timestamp > washPairWindowMs {
				break
			}
			if matched[j] || buy.Amount <= 0 {
				continue
			}
			if math.Abs(buy.Amount+sell.Amount) > buy.Amount*washAmountTolerance {
				continue
			}
			matched[j] = true
			result.PairCount++
			washVolume += buy.Amount + math.Abs(sell.Amount)
			break
		}
	}

	result.WashVolumeShare = washVolume / totalVolume
	result.Detected = result.PairCount >= minWashPairs && result.WashVolumeShare >= minWashVolumeShare
	if !result.Detected {
		return result
	}

	severity := domain.SeverityMedium
	confidence := 60
	switch {
	case result.WashVolumeShare >= washShareCritical:
		severity = domain.SeverityCritical
		confidence = 90
	case result.WashVolumeShare >= washShareHigh:
		severity = domain.SeverityHigh
		confidence = 75
	}

	result.Findings = append(result.Findings, domain.RiskFinding{
		Type:       PatternWashTrading,
		Severity:   severity,
		Confidence: confidence,
		Description: fmt.Sprintf("%d wash-trade pairs moving %.0f%% of observed volume",
			result.PairCount, result.WashVolumeShare*100),
		Evidence: map[string]string{
			"pair_count":        fmt.Sprintf("%d", result.PairCount),
			"wash_volume_share": fmt.Sprintf("%.3f", result.WashVolumeShare),
		},
	})
	return result
}
