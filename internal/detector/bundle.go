package detector

import (
	"fmt"

	"rugradar/internal/domain"
)

// Bundle score bands (percent of supply acquired inside launch bundles).
const (
	BundleCriticalPct = 60.0
	BundleHighPct     = 35.0
)

// BundleResult holds launch-bundle clustering output.
// Known=false means timing data was unavailable: the token is UNKNOWN,
// not clean, and the aggregator must surface that distinction.
type BundleResult struct {
	Known          bool
	BundledPercent float64 // supply share held by bundle participants
	BundledWallets int
	Findings       []domain.RiskFinding
}

// AnalyzeBundles sums the supply share of holders flagged as bundle
// participants. hasTimingData reports whether block/slot co-occurrence
// evidence was available at all; when it is false the detector refuses
// to issue a clean verdict.
func AnalyzeBundles(holders domain.HolderSet, hasTimingData bool) BundleResult {
	if !hasTimingData {
		return BundleResult{Known: false}
	}

	result := BundleResult{Known: true}
	for _, h := range holders.Bundled() {
		result.BundledPercent += h.Percent
		result.BundledWallets++
	}
	result.BundledPercent = clampPercent(result.BundledPercent)

	switch {
	case result.BundledPercent >= BundleCriticalPct:
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "bundled_supply",
			Severity:    domain.SeverityCritical,
			Confidence:  90,
			Description: fmt.Sprintf("%.1f%% of supply bought in launch bundles across %d wallets", result.BundledPercent, result.BundledWallets),
			Evidence: map[string]string{
				"bundled_percent": fmt.Sprintf("%.2f", result.BundledPercent),
				"bundled_wallets": fmt.Sprintf("%d", result.BundledWallets),
			},
		})
	case result.BundledPercent >= BundleHighPct:
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "bundled_supply",
			Severity:    domain.SeverityHigh,
			Confidence:  75,
			Description: fmt.Sprintf("%.1f%% of supply bought in launch bundles across %d wallets", result.BundledPercent, result.BundledWallets),
			Evidence: map[string]string{
				"bundled_percent": fmt.Sprintf("%.2f", result.BundledPercent),
				"bundled_wallets": fmt.Sprintf("%d", result.BundledWallets),
			},
		})
	}

	return result
}
