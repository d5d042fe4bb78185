package detector

import (
	"fmt"

	"rugradar/internal/domain"
)

// Pattern identifiers for pump & dump findings.
const (
	PatternRapidPump    = "rapid_pump"
	PatternInstantDump  = "instant_dump"
	PatternSellPressure = "sell_pressure"
	PatternVolumeSpike  = "volume_anomaly"
)

// Fixed rug-confidence contributions per pattern type. Additive with a
// cap at 100: several weak signals combine into strong suspicion
// without per-pattern recalibration.
const (
	rugPointsPump      = 30
	rugPointsDump      = 40
	rugPointsImbalance = 20
	rugPointsVolume    = 15

	// RugPullThreshold is the rug confidence at which IsRugPull flips.
	RugPullThreshold = 60
)

// Minimum activity required before a window is statistically meaningful.
const (
	minImbalanceTxCount = 10
	minVolumeH24        = 1000.0
)

// PumpDumpResult holds price-action pattern findings for one series.
type PumpDumpResult struct {
	Findings      []domain.RiskFinding
	RugConfidence int  // additive points, capped at 100
	IsRugPull     bool // RugConfidence >= RugPullThreshold
}

// AnalyzePumpDump runs the four independent pattern checks over a price
// series. Each check yields at most one finding; within the dump chain
// only the first matching rule fires.
func AnalyzePumpDump(series domain.PriceSeries) PumpDumpResult {
	var result PumpDumpResult
	points := 0

	if f := checkRapidPump(series); f != nil {
		result.Findings = append(result.Findings, *f)
		points += rugPointsPump
	}
	if f := checkInstantDump(series); f != nil {
		result.Findings = append(result.Findings, *f)
		points += rugPointsDump
	}
	if f := checkSellPressure(series); f != nil {
		result.Findings = append(result.Findings, *f)
		points += rugPointsImbalance
	}
	if f := checkVolumeAnomaly(series); f != nil {
		result.Findings = append(result.Findings, *f)
		points += rugPointsVolume
	}

	if points > 100 {
		points = 100
	}
	result.RugConfidence = points
	result.IsRugPull = points >= RugPullThreshold
	return result
}

// checkRapidPump flags extreme 1-hour rises.
func checkRapidPump(s domain.PriceSeries) *domain.RiskFinding {
	h1 := s.H1.PriceChangePct
	switch {
	case h1 > 500:
		return pumpDumpFinding(PatternRapidPump, domain.SeverityCritical, 95,
			fmt.Sprintf("Price pumped %.0f%% in 1 hour", h1), s)
	case h1 > 300:
		return pumpDumpFinding(PatternRapidPump, domain.SeverityHigh, 85,
			fmt.Sprintf("Price pumped %.0f%% in 1 hour", h1), s)
	case h1 > 150:
		return pumpDumpFinding(PatternRapidPump, domain.SeverityMedium, 60,
			fmt.Sprintf("Price rose %.0f%% in 1 hour", h1), s)
	}
	return nil
}

// checkInstantDump flags collapses, checked in priority order: only the
// first matching rule fires per series.
func checkInstantDump(s domain.PriceSeries) *domain.RiskFinding {
	m5 := s.M5.PriceChangePct
	h1 := s.H1.PriceChangePct
	h6 := s.H6.PriceChangePct
	switch {
	case m5 < -90:
		return pumpDumpFinding(PatternInstantDump, domain.SeverityCritical, 100,
			fmt.Sprintf("RUG PULLED: price collapsed %.0f%% in 5 minutes", m5), s)
	case m5 < -80:
		return pumpDumpFinding(PatternInstantDump, domain.SeverityCritical, 95,
			fmt.Sprintf("Price collapsed %.0f%% in 5 minutes", m5), s)
	case h1 < -90:
		return pumpDumpFinding(PatternInstantDump, domain.SeverityCritical, 95,
			fmt.Sprintf("Price collapsed %.0f%% in 1 hour", h1), s)
	case h1 < -60:
		return pumpDumpFinding(PatternInstantDump, domain.SeverityHigh, 80,
			fmt.Sprintf("Price dropped %.0f%% in 1 hour", h1), s)
	case h6 > 200 && h1 < -40:
		return pumpDumpFinding(PatternInstantDump, domain.SeverityCritical, 90,
			fmt.Sprintf("Classic pump & dump: +%.0f%% over 6 hours, %.0f%% in the last hour", h6, h1), s)
	}
	return nil
}

// checkSellPressure flags buy/sell imbalance in the 1-hour window.
// Requires at least 10 transactions to be statistically meaningful.
func checkSellPressure(s domain.PriceSeries) *domain.RiskFinding {
	if s.H1.TxCount() < minImbalanceTxCount {
		return nil
	}
	ratio := s.H1.SellRatio()
	h1 := s.H1.PriceChangePct
	switch {
	case ratio > 0.9:
		return pumpDumpFinding(PatternSellPressure, domain.SeverityCritical, 95,
			fmt.Sprintf("%.0f%% of 1h transactions are sells", ratio*100), s)
	case ratio > 0.8:
		return pumpDumpFinding(PatternSellPressure, domain.SeverityHigh, 80,
			fmt.Sprintf("%.0f%% of 1h transactions are sells", ratio*100), s)
	case ratio > 0.7 && h1 < -20:
		return pumpDumpFinding(PatternSellPressure, domain.SeverityHigh, 75,
			fmt.Sprintf("Sell pressure %.0f%% with price down %.0f%%", ratio*100, h1), s)
	}
	return nil
}

// checkVolumeAnomaly flags concentrated volume bursts. Requires 24h
// volume of at least 1000 to avoid division noise on illiquid tokens.
func checkVolumeAnomaly(s domain.PriceSeries) *domain.RiskFinding {
	if s.H24.Volume < minVolumeH24 {
		return nil
	}
	m5Share := s.M5.Volume / s.H24.Volume
	h1Share := s.H1.Volume / s.H24.Volume
	switch {
	case m5Share > 0.6 && s.M5.PriceChangePct < -30:
		return pumpDumpFinding(PatternVolumeSpike, domain.SeverityCritical, 90,
			fmt.Sprintf("%.0f%% of daily volume hit in 5 minutes during a %.0f%% drop", m5Share*100, s.M5.PriceChangePct), s)
	case h1Share > 0.4 && s.H1.PriceChangePct < -20:
		return pumpDumpFinding(PatternVolumeSpike, domain.SeverityHigh, 75,
			fmt.Sprintf("%.0f%% of daily volume hit in 1 hour during a %.0f%% drop", h1Share*100, s.H1.PriceChangePct), s)
	case h1Share > 0.5:
		return pumpDumpFinding(PatternVolumeSpike, domain.SeverityMedium, 60,
			fmt.Sprintf("%.0f%% of daily volume concentrated in 1 hour", h1Share*100), s)
	}
	return nil
}

func pumpDumpFinding(typ string, sev domain.Severity, confidence int, desc string, s domain.PriceSeries) *domain.RiskFinding {
	return &domain.RiskFinding{
		Type:        typ,
		Severity:    sev,
		Confidence:  confidence,
		Description: desc,
		Evidence: map[string]string{
			"m5_change_pct":  fmt.Sprintf("%.2f", s.M5.PriceChangePct),
			"h1_change_pct":  fmt.Sprintf("%.2f", s.H1.PriceChangePct),
			"h6_change_pct":  fmt.Sprintf("%.2f", s.H6.PriceChangePct),
			"h24_change_pct": fmt.Sprintf("%.2f", s.H24.PriceChangePct),
		},
	}
}
