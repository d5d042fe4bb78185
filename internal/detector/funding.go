package detector

import (
	"fmt"
	"sort"

	"rugradar/internal/domain"
)

// Funding-source risk thresholds.
const (
	// SwapServiceCriticalPct: share of qualifying supply funded through
	// one flagged swap-service source that triggers a critical finding.
	SwapServiceCriticalPct = 30.0

	// FreshClusterWallets / FreshClusterMaxDays define the fresh-wallet
	// cluster rule: this many wallets both younger than the day limit
	// and high-risk-funded.
	FreshClusterWallets = 5
	FreshClusterMaxDays = 7
)

// FundingResult holds funding-source risk output.
type FundingResult struct {
	Known              bool
	HighRiskSupplyPct  float64 // supply funded via flagged swap services
	FreshHighRiskCount int     // wallets <7d old with high-risk funding
	Findings           []domain.RiskFinding
}

// AnalyzeFunding buckets holder funding sources and flags the known
// scam-deployment pattern: large supply share funded through instant-swap
// services, or a cluster of fresh high-risk-funded wallets. Holder supply
// shares come from the qualifying HolderSet; wallets without a trace
// count as unknown and contribute no risk. Known stays false until at
// least one wallet carries an actual trace, so profiles fetched without
// funding data never read as verified clean.
func AnalyzeFunding(holders domain.HolderSet, wallets []domain.WalletProfile, now int64) FundingResult {
	if len(wallets) == 0 {
		return FundingResult{Known: false}
	}

	byAddress := make(map[string]domain.WalletProfile, len(wallets))
	traced := false
	for _, w := range wallets {
		byAddress[w.Address] = w
		if hasFundingTrace(w) {
			traced = true
		}
	}
	if !traced {
		return FundingResult{Known: false}
	}

	result := FundingResult{Known: true}

	// Supply share funded through each flagged swap-service source.
	perSource := make(map[string]float64)
	for _, h := range holders.Qualifying() {
		w, ok := byAddress[h.Address]
		if !ok || !w.HighRiskFunding {
			continue
		}
		perSource[w.FundingSource] += h.Percent
		result.HighRiskSupplyPct += h.Percent
	}
	result.HighRiskSupplyPct = clampPercent(result.HighRiskSupplyPct)

	// Fresh wallet cluster: young and high-risk-funded.
	for _, w := range wallets {
		age := w.AgeDays(now)
		if age >= 0 && age < FreshClusterMaxDays && w.HighRiskFunding {
			result.FreshHighRiskCount++
		}
	}

	// Worst single source, deterministic pick on ties.
	worstSource := ""
	worstPct := 0.0
	sources := make([]string, 0, len(perSource))
	for s := range perSource {
		sources = append(sources, s)
	}
	sort.Strings(sources)
	for _, s := range sources {
		if perSource[s] > worstPct {
			worstSource = s
			worstPct = perSource[s]
		}
	}

	if worstPct >= SwapServiceCriticalPct {
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "swap_service_funding",
			Severity:    domain.SeverityCritical,
			Confidence:  90,
			Description: fmt.Sprintf("%.1f%% of supply funded through one flagged swap service", worstPct),
			Evidence: map[string]string{
				"source":              worstSource,
				"supply_percent":      fmt.Sprintf("%.2f", worstPct),
				"high_risk_total_pct": fmt.Sprintf("%.2f", result.HighRiskSupplyPct),
			},
		})
	}

	if result.FreshHighRiskCount >= FreshClusterWallets {
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "fresh_wallet_cluster",
			Severity:    domain.SeverityCritical,
			Confidence:  85,
			Description: fmt.Sprintf("%d wallets under %d days old funded through high-risk services", result.FreshHighRiskCount, FreshClusterMaxDays),
			Evidence: map[string]string{
				"fresh_wallets": fmt.Sprintf("%d", result.FreshHighRiskCount),
			},
		})
	}

	return result
}

// hasFundingTrace reports whether the profile carries funding data at
// all, as opposed to the neutral defaults a failed trace leaves behind.
func hasFundingTrace(w domain.WalletProfile) bool {
	if w.FundingSource != "" {
		return true
	}
	return w.FundingCategory != "" && w.FundingCategory != domain.FundingUnknown
}
