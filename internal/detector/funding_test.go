package detector

import (
	"fmt"
	"testing"

	"rugradar/internal/domain"
)

func TestAnalyzeFunding_SwapServiceCritical(t *testing.T) {
	holders := domain.HolderSet{
		{Address: "w1", Percent: 20},
		{Address: "w2", Percent: 15},
		{Address: "w3", Percent: 10},
	}
	wallets := []domain.WalletProfile{
		{Address: "w1", FundingSource: "swapper", FundingCategory: domain.FundingSwapService, HighRiskFunding: true},
		{Address: "w2", FundingSource: "swapper", FundingCategory: domain.FundingSwapService, HighRiskFunding: true},
		{Address: "w3", FundingSource: "cex", FundingCategory: domain.FundingExchange},
	}

	result := AnalyzeFunding(holders, wallets, testNow)

	if result.HighRiskSupplyPct != 35 {
		t.Errorf("expected 35%% high-risk supply, got %f", result.HighRiskSupplyPct)
	}
	if len(result.Findings) != 1 || result.Findings[0].Type != "swap_service_funding" {
		t.Fatalf("expected swap_service_funding finding, got %+v", result.Findings)
	}
	if result.Findings[0].Severity != domain.SeverityCritical {
		t.Errorf("expected critical severity, got %s", result.Findings[0].Severity)
	}
}

func TestAnalyzeFunding_BelowThreshold(t *testing.T) {
	holders := domain.HolderSet{
		{Address: "w1", Percent: 10},
	}
	wallets := []domain.WalletProfile{
		{Address: "w1", FundingSource: "swapper", HighRiskFunding: true},
	}

	result := AnalyzeFunding(holders, wallets, testNow)
	if len(result.Findings) != 0 {
		t.Errorf("10%% via swap service is below threshold, got %+v", result.Findings)
	}
}

func TestAnalyzeFunding_FreshWalletCluster(t *testing.T) {
	var wallets []domain.WalletProfile
	for i := 0; i < 5; i++ {
		created := testNow - 2*domain.MillisPerDay
		wallets = append(wallets, domain.WalletProfile{
			Address:         fmt.Sprintf("w%d", i),
			CreatedAt:       &created,
			FundingSource:   "swapper",
			HighRiskFunding: true,
		})
	}

	result := AnalyzeFunding(domain.HolderSet{}, wallets, testNow)

	if result.FreshHighRiskCount != 5 {
		t.Errorf("expected 5 fresh high-risk wallets, got %d", result.FreshHighRiskCount)
	}
	found := false
	for _, f := range result.Findings {
		if f.Type == "fresh_wallet_cluster" && f.Severity == domain.SeverityCritical {
			found = true
		}
	}
	if !found {
		t.Errorf("expected fresh_wallet_cluster critical finding, got %+v", result.Findings)
	}
}

func TestAnalyzeFunding_NoTracesIsUnknown(t *testing.T) {
	result := AnalyzeFunding(domain.HolderSet{{Address: "a", Percent: 50}}, nil, testNow)
	if result.Known {
		t.Error("no wallet traces must produce Known=false")
	}
	if len(result.Findings) != 0 {
		t.Errorf("unknown result must carry no findings, got %+v", result.Findings)
	}
}

func TestAnalyzeFunding_UntracedProfilesStayUnknown(t *testing.T) {
	// Profiles fetched without any funding data, the shape a failed
	// trace leaves behind. Must not read as verified clean.
	holders := domain.HolderSet{{Address: "w1", Percent: 50}}
	wallets := []domain.WalletProfile{
		{Address: "w1", FundingCategory: domain.FundingUnknown},
		{Address: "w2"},
	}

	result := AnalyzeFunding(holders, wallets, testNow)
	if result.Known {
		t.Errorf("profiles without funding traces must produce Known=false, got %+v", result)
	}
	if len(result.Findings) != 0 {
		t.Errorf("unknown result must carry no findings, got %+v", result.Findings)
	}
}

func TestAnalyzeFunding_SingleTraceMakesKnown(t *testing.T) {
	wallets := []domain.WalletProfile{
		{Address: "w1", FundingCategory: domain.FundingUnknown},
		{Address: "w2", FundingSource: "cex", FundingCategory: domain.FundingExchange},
	}

	result := AnalyzeFunding(domain.HolderSet{}, wallets, testNow)
	if !result.Known {
		t.Error("one traced wallet is enough to evaluate funding")
	}
}

func TestAnalyzeFunding_ExcludedHoldersDoNotCount(t *testing.T) {
	holders := domain.HolderSet{
		{Address: "pool", Percent: 90, IsLP: true},
		{Address: "w1", Percent: 5},
	}
	wallets := []domain.WalletProfile{
		{Address: "pool", FundingSource: "swapper", HighRiskFunding: true},
		{Address: "w1", FundingSource: "swapper", HighRiskFunding: true},
	}

	result := AnalyzeFunding(holders, wallets, testNow)
	if result.HighRiskSupplyPct != 5 {
		t.Errorf("LP share must not count toward funding risk, got %f", result.HighRiskSupplyPct)
	}
}
