// Package detector contains the component risk detectors. Each detector
// is a pure, stateless function over already-normalized data: identical
// input always yields identical findings. Age-relative checks take an
// explicit now parameter instead of reading the wall clock.
package detector

import (
	"fmt"
	"math"

	"rugradar/internal/domain"
)

// Concentration thresholds (percent of supply).
const (
	TopHolderCriticalPct = 20.0
	TopHolderHighPct     = 10.0
	Top10HighPct         = 50.0
	Top10MediumPct       = 35.0
)

// ConcentrationResult holds holder concentration metrics and findings.
// Risk direction: higher concentration is worse.
type ConcentrationResult struct {
	TopHolderPercent   float64 // largest qualifying holder's share, 0..100
	Top10Concentration float64 // sum of top 10 qualifying shares, 0..100
	QualifyingHolders  int     // holders counted after exclusions
	Findings           []domain.RiskFinding
}

// AnalyzeConcentration computes top-holder metrics over the qualifying
// subset of the HolderSet. LP, exchange and protocol accounts never
// count toward concentration; mixing them in is a correctness bug.
func AnalyzeConcentration(holders domain.HolderSet) ConcentrationResult {
	qualifying := holders.Qualifying()

	var result ConcentrationResult
	result.QualifyingHolders = len(qualifying)

	if len(qualifying) == 0 {
		return result
	}

	result.TopHolderPercent = clampPercent(qualifying[0].Percent)

	// Fewer than 10 qualifying holders: sum all available.
	limit := 10
	if len(qualifying) < limit {
		limit = len(qualifying)
	}
	sum := 0.0
	for i := 0; i < limit; i++ {
		sum += qualifying[i].Percent
	}
	result.Top10Concentration = clampPercent(sum)

	switch {
	case result.TopHolderPercent >= TopHolderCriticalPct:
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "top_holder_concentration",
			Severity:    domain.SeverityCritical,
			Confidence:  90,
			Description: fmt.Sprintf("Largest wallet holds %.1f%% of supply (>= %.0f%%)", result.TopHolderPercent, TopHolderCriticalPct),
			Evidence:    map[string]string{"top_holder_percent": fmt.Sprintf("%.2f", result.TopHolderPercent)},
		})
	case result.TopHolderPercent >= TopHolderHighPct:
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "top_holder_concentration",
			Severity:    domain.SeverityHigh,
			Confidence:  70,
			Description: fmt.Sprintf("Largest wallet holds %.1f%% of supply", result.TopHolderPercent),
			Evidence:    map[string]string{"top_holder_percent": fmt.Sprintf("%.2f", result.TopHolderPercent)},
		})
	}

	switch {
	case result.Top10Concentration >= Top10HighPct:
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "top10_concentration",
			Severity:    domain.SeverityHigh,
			Confidence:  80,
			Description: fmt.Sprintf("Top 10 wallets hold %.1f%% of supply (>= %.0f%%)", result.Top10Concentration, Top10HighPct),
			Evidence:    map[string]string{"top10_concentration": fmt.Sprintf("%.2f", result.Top10Concentration)},
		})
	case result.Top10Concentration >= Top10MediumPct:
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "top10_concentration",
			Severity:    domain.SeverityMedium,
			Confidence:  60,
			Description: fmt.Sprintf("Top 10 wallets hold %.1f%% of supply", result.Top10Concentration),
			Evidence:    map[string]string{"top10_concentration": fmt.Sprintf("%.2f", result.Top10Concentration)},
		})
	}

	return result
}

// clampPercent bounds a percentage to [0,100] and coerces NaN/Inf to 0.
func clampPercent(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
