package detector

import (
	"fmt"
	"testing"

	"rugradar/internal/domain"
)

const testNow = int64(1_700_000_000_000)

func agedWallet(addr string, ageDays int) domain.WalletProfile {
	created := testNow - int64(ageDays)*domain.MillisPerDay
	return domain.WalletProfile{Address: addr, CreatedAt: &created}
}

func TestAnalyzeAgedWallets_NoAgeDataDegrades(t *testing.T) {
	wallets := []domain.WalletProfile{
		{Address: "a"},
		{Address: "b"},
	}

	result := AnalyzeAgedWallets(wallets, testNow)

	if result.Known {
		t.Error("expected Known=false without age data")
	}
	if result.Score != 0 || len(result.Findings) != 0 {
		t.Errorf("degraded result must be zero-risk, got %+v", result)
	}
}

func TestAnalyzeAgedWallets_CoordinatedCluster(t *testing.T) {
	buyTime := testNow - 1000
	var wallets []domain.WalletProfile
	for i := 0; i < 6; i++ {
		w := agedWallet(fmt.Sprintf("w%d", i), 90)
		w.FundingSource = "funder"
		bt := buyTime + int64(i)*5000 // all within 60s
		w.FirstBuyTime = &bt
		w.BuyAmount = 100.0
		w.SellCount = 0
		wallets = append(wallets, w)
	}

	result := AnalyzeAgedWallets(wallets, testNow)

	// All four patterns present: 30+25+20+25 = 100.
	if result.Score != 100 {
		t.Errorf("expected score 100, got %d (patterns: %v)", result.Score, result.Patterns)
	}
	if len(result.Findings) != 1 || result.Findings[0].Severity != domain.SeverityCritical {
		t.Errorf("expected critical fake volume finding, got %+v", result.Findings)
	}
	if result.Findings[0].Type != "fake_volume" {
		t.Errorf("expected fake_volume type, got %s", result.Findings[0].Type)
	}
}

func TestAnalyzeAgedWallets_HighBand(t *testing.T) {
	// Only the shared-funder and co-buy patterns: 30+25 = 55 -> high.
	buyTime := testNow - 1000
	var wallets []domain.WalletProfile
	for i := 0; i < 3; i++ {
		w := agedWallet(fmt.Sprintf("w%d", i), 10)
		w.FundingSource = "funder"
		bt := buyTime + int64(i)*1000
		w.FirstBuyTime = &bt
		w.BuyAmount = float64(100 + i*50) // distinct sizes
		w.SellCount = 1
		wallets = append(wallets, w)
	}

	result := AnalyzeAgedWallets(wallets, testNow)

	if result.Score != 55 {
		t.Errorf("expected score 55, got %d (patterns: %v)", result.Score, result.Patterns)
	}
	if len(result.Findings) != 1 || result.Findings[0].Severity != domain.SeverityHigh {
		t.Errorf("expected high finding, got %+v", result.Findings)
	}
}

func TestAnalyzeAgedWallets_CleanWallets(t *testing.T) {
	var wallets []domain.WalletProfile
	for i := 0; i < 4; i++ {
		w := agedWallet(fmt.Sprintf("w%d", i), 100+i*30)
		w.FundingSource = fmt.Sprintf("funder%d", i)
		bt := testNow - int64(i+1)*domain.MillisPerDay
		w.FirstBuyTime = &bt
		w.BuyAmount = float64(50 + i*97)
		w.SellCount = 2
		wallets = append(wallets, w)
	}

	result := AnalyzeAgedWallets(wallets, testNow)

	if result.Score != 0 {
		t.Errorf("expected zero score for organic wallets, got %d (%v)", result.Score, result.Patterns)
	}
	if !result.Known {
		t.Error("age data was present, result must be known")
	}
}

func TestCoBuyClusterSize_Window(t *testing.T) {
	mk := func(offsetMs int64) domain.WalletProfile {
		bt := testNow + offsetMs
		return domain.WalletProfile{FirstBuyTime: &bt}
	}
	wallets := []domain.WalletProfile{
		mk(0), mk(30_000), mk(59_000), // inside one 60s window
		mk(200_000),
	}

	if n := coBuyClusterSize(wallets); n != 3 {
		t.Errorf("expected cluster of 3, got %d", n)
	}
}
