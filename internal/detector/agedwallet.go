package detector

import (
	"fmt"
	"math"
	"sort"

	"rugradar/internal/domain"
)

// Aged-wallet pattern point contributions. Bounded sum; each pattern
// present raises suspicion of coordinated fake volume.
const (
	agedPointsSharedFunder   = 30
	agedPointsCoBuy          = 25
	agedPointsNoSells        = 20
	agedPointsIdenticalSizes = 25

	// FakeVolumeCritical and FakeVolumeHigh are the band edges.
	FakeVolumeCritical = 70
	FakeVolumeHigh     = 40
)

// Coordination parameters.
const (
	coBuyWindowMs       = int64(60 * 1000) // near-simultaneous buy window
	agedWalletMinDays   = 30               // "aged" for the no-sell check
	minClusterWallets   = 3                // wallets needed to call a cluster
	sizeSimilarityFrac  = 0.01             // +-1% counts as near-identical
	minNoSellWallets    = 5
)

// AgedWalletResult holds fake-volume detection output.
type AgedWalletResult struct {
	Known    bool // wallet-age data was available
	Score    int  // bounded risk, 0..100
	Patterns []string
	Findings []domain.RiskFinding
}

// AnalyzeAgedWallets looks for coordinated activity among wallets with
// known age. now is the analysis time in Unix ms. Degrades gracefully:
// when no holder has age data, the result is Known=false with zero risk
// and no findings rather than an error.
func AnalyzeAgedWallets(wallets []domain.WalletProfile, now int64) AgedWalletResult {
	var aged []domain.WalletProfile
	for _, w := range wallets {
		if w.AgeDays(now) >= 0 {
			aged = append(aged, w)
		}
	}
	if len(aged) == 0 {
		return AgedWalletResult{Known: false}
	}

	result := AgedWalletResult{Known: true}
	score := 0

	if n := sharedFunderClusterSize(aged); n >= minClusterWallets {
		score += agedPointsSharedFunder
		result.Patterns = append(result.Patterns,
			fmt.Sprintf("%d aged wallets share one funding source", n))
	}
	if n := coBuyClusterSize(aged); n >= minClusterWallets {
		score += agedPointsCoBuy
		result.Patterns = append(result.Patterns,
			fmt.Sprintf("%d wallets bought within %d seconds of each other", n, coBuyWindowMs/1000))
	}
	if n := noSellCount(aged, now); n >= minNoSellWallets {
		score += agedPointsNoSells
		result.Patterns = append(result.Patterns,
			fmt.Sprintf("%d wallets older than %d days have never sold", n, agedWalletMinDays))
	}
	if n := identicalSizeClusterSize(aged); n >= minClusterWallets {
		score += agedPointsIdenticalSizes
		result.Patterns = append(result.Patterns,
			fmt.Sprintf("%d wallets bought near-identical amounts", n))
	}

	if score > 100 {
		score = 100
	}
	result.Score = score

	evidence := map[string]string{
		"score":        fmt.Sprintf("%d", score),
		"aged_wallets": fmt.Sprintf("%d", len(aged)),
	}
	switch {
	case score >= FakeVolumeCritical:
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "fake_volume",
			Severity:    domain.SeverityCritical,
			Confidence:  score,
			Description: "Fake volume: coordinated aged-wallet activity detected",
			Evidence:    evidence,
		})
	case score >= FakeVolumeHigh:
		result.Findings = append(result.Findings, domain.RiskFinding{
			Type:        "fake_volume",
			Severity:    domain.SeverityHigh,
			Confidence:  score,
			Description: "Suspicious coordinated activity among aged wallets",
			Evidence:    evidence,
		})
	}

	return result
}

// sharedFunderClusterSize returns the size of the largest group of
// wallets funded from the same source address.
func sharedFunderClusterSize(wallets []domain.WalletProfile) int {
	counts := make(map[string]int)
	best := 0
	for _, w := range wallets {
		if w.FundingSource == "" {
			continue
		}
		counts[w.FundingSource]++
		if counts[w.FundingSource] > best {
			best = counts[w.FundingSource]
		}
	}
	return best
}

// coBuyClusterSize returns the size of the largest set of wallets whose
// first buys fall inside one coBuyWindowMs window.
func coBuyClusterSize(wallets []domain.WalletProfile) int {
	var times []int64
	for _, w := range wallets {
		if w.FirstBuyTime != nil {
			times = append(times, *w.FirstBuyTime)
		}
	}
	if len(times) < 2 {
		return 0
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	best := 1
	start := 0
	for end := 1; end < len(times); end++ {
		for times[end]-times[start] > coBuyWindowMs {
			start++
		}
		if end-start+1 > best {
			best = end - start + 1
		}
	}
	return best
}

// noSellCount counts wallets old enough that silence is suspicious.
func noSellCount(wallets []domain.WalletProfile, now int64) int {
	count := 0
	for _, w := range wallets {
		if w.AgeDays(now) >= agedWalletMinDays && w.SellCount == 0 && w.BuyAmount > 0 {
			count++
		}
	}
	return count
}

// identicalSizeClusterSize returns the size of the largest group of
// wallets whose buy amounts are within sizeSimilarityFrac of each other.
func identicalSizeClusterSize(wallets []domain.WalletProfile) int {
	var sizes []float64
	for _, w := range wallets {
		if w.BuyAmount > 0 {
			sizes = append(sizes, w.BuyAmount)
		}
	}
	if len(sizes) < 2 {
		return 0
	}
	sort.Float64s(sizes)

	best := 1
	start := 0
	for end := 1; end < len(sizes); end++ {
		for sizes[end]-sizes[start] > sizes[start]*sizeSimilarityFrac {
			start++
		}
		if end-start+1 > best {
			best = end - start + 1
		}
	}
	if best < 2 || math.IsNaN(sizes[0]) {
		return 0
	}
	return best
}
