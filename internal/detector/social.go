package detector

import (
	"fmt"

	"rugradar/internal/domain"
)

// Social red-flag point contributions.
const (
	socialPointsMissing3 = 40
	socialPointsMissing2 = 25
	socialPointsCasino   = 50

	// Verdict breakpoints on the social risk score.
	SocialAvoidScore   = 60
	SocialWarningScore = 30
)

// SocialResult holds social-presence red-flag output.
// Score direction: higher is worse.
type SocialResult struct {
	Score         int // 0..100
	Verdict       domain.Verdict
	CasinoOutflow bool
	Findings      []domain.RiskFinding
}

// AnalyzeSocial checks social presence and dev-wallet casino outflows.
// links must already be merged across sources in fallback order (see
// normalize.MergeSocial). devOutflows are transfers out of the dev
// wallet; casinoAddrs is the known gambling-address list.
func AnalyzeSocial(links domain.SocialLinks, devOutflows []domain.Transaction, casinoAddrs map[string]bool) SocialResult {
	var result SocialResult
	score := 0

	missing := links.MissingCore()
	switch {
	case missing >= 3:
		score += socialPointsMissing3
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "no_social_presence",
			Severity:    domain.SeverityHigh,
			Confidence:  85,
			Description: "Instant avoid: no website, Twitter or Telegram",
			Evidence:    map[string]string{"missing_links": fmt.Sprintf("%d", missing)},
		})
	case missing == 2:
		score += socialPointsMissing2
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "weak_social_presence",
			Severity:    domain.SeverityMedium,
			Confidence:  65,
			Description: "Two of three core social links are missing",
			Evidence:    map[string]string{"missing_links": "2"},
		})
	}

	// Casino outflows from the dev wallet trump everything else.
	casinoCount := 0
	casinoTotal := 0.0
	for _, tx := range devOutflows {
		if casinoAddrs[tx.Destination] {
			casinoCount++
			if tx.Amount < 0 {
				casinoTotal += -tx.Amount
			} else {
				casinoTotal += tx.Amount
			}
		}
	}
	if casinoCount > 0 {
		score += socialPointsCasino
		result.CasinoOutflow = true
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "casino_outflow",
			Severity:    domain.SeverityCritical,
			Confidence:  95,
			Description: fmt.Sprintf("Dev wallet sent %d transfer(s) to known gambling addresses", casinoCount),
			Evidence: map[string]string{
				"transfers": fmt.Sprintf("%d", casinoCount),
				"total":     fmt.Sprintf("%.2f", casinoTotal),
			},
		})
	}

	if score > 100 {
		score = 100
	}
	result.Score = score

	switch {
	case score >= SocialAvoidScore || result.CasinoOutflow:
		result.Verdict = domain.VerdictAvoid
	case score >= SocialWarningScore:
		result.Verdict = domain.VerdictWarning
	default:
		result.Verdict = domain.VerdictSafe
	}

	return result
}
