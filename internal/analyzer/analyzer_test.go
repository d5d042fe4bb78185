package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"rugradar/internal/domain"
	"rugradar/internal/idhash"
	"rugradar/internal/normalize"
	"rugradar/internal/scoring"
	"rugradar/internal/storage"
)

const (
	testMint = "So11111111111111111111111111111111111111112"
	testNow  = int64(1_700_000_000_000)
)

// stubSources implements all four source interfaces from fixed data.
type stubSources struct {
	token       *domain.Token
	tokenErr    error
	holders     []normalize.RawHolder
	holdersErr  error
	market      *MarketData
	marketErr   error
	profiles    []domain.WalletProfile
	profilesErr error
	hints       map[string]bool
	hintsErr    error
	outflows    []domain.Transaction
	outflowsErr error
}

func (s *stubSources) GetToken(ctx context.Context, mint string) (*domain.Token, error) {
	return s.token, s.tokenErr
}

func (s *stubSources) GetHolders(ctx context.Context, mint string) ([]normalize.RawHolder, error) {
	return s.holders, s.holdersErr
}

func (s *stubSources) GetMarket(ctx context.Context, mint string) (*MarketData, error) {
	return s.market, s.marketErr
}

func (s *stubSources) GetProfiles(ctx context.Context, addrs []string) ([]domain.WalletProfile, error) {
	return s.profiles, s.profilesErr
}

func (s *stubSources) GetBundleHints(ctx context.Context, mint string) (map[string]bool, error) {
	return s.hints, s.hintsErr
}

func (s *stubSources) GetDevOutflows(ctx context.Context, mint string) ([]domain.Transaction, error) {
	return s.outflows, s.outflowsErr
}

func newTestAnalyzer(s *stubSources, cfg Config) *Analyzer {
	if cfg.Now == nil {
		cfg.Now = func() int64 { return testNow }
	}
	return New(s, s, s, s, cfg, nil)
}

func millis(days int) int64 { return testNow - int64(days)*domain.MillisPerDay }

func cleanStub() *stubSources {
	website := "https://example.com"
	twitter := "https://x.com/tok"
	telegram := "https://t.me/tok"

	holders := make([]normalize.RawHolder, 0, 20)
	for i := 0; i < 20; i++ {
		holders = append(holders, normalize.RawHolder{
			Address: string(rune('A'+i)) + "wallet",
			Balance: 20000 - float64(i),
		})
	}

	profiles := make([]domain.WalletProfile, 0, 20)
	for i := 0; i < 20; i++ {
		created := millis(200 + i)
		firstBuy := millis(100 - i)
		profiles = append(profiles, domain.WalletProfile{
			Address:         string(rune('A'+i)) + "wallet",
			CreatedAt:       &created,
			FundingSource:   "funder" + string(rune('A'+i)),
			FundingCategory: domain.FundingPeer,
			FirstBuyTime:    &firstBuy,
			BuyAmount:       float64(100 + i*13),
			SellCount:       1 + i%3,
		})
	}

	return &stubSources{
		token:    &domain.Token{Mint: testMint, Decimals: 6, Supply: 1_000_000},
		holders:  holders,
		market:   &MarketData{Social: domain.SocialLinks{Website: &website, Twitter: &twitter, Telegram: &telegram}},
		profiles: profiles,
		hints:    map[string]bool{},
		outflows: []domain.Transaction{},
	}
}

func TestAnalyze_InvalidAddress(t *testing.T) {
	a := newTestAnalyzer(cleanStub(), Config{})

	report := a.Analyze(context.Background(), "not-an-address")
	if report.Found {
		t.Error("invalid address must not be Found")
	}
	if report.Error == "" {
		t.Error("expected error message")
	}
	if report.AnalysisID != idhash.ComputeAnalysisID("not-an-address", testNow) {
		t.Error("analysis id must be deterministic")
	}
}

func TestAnalyze_MintNotFound(t *testing.T) {
	s := cleanStub()
	s.token = nil
	s.tokenErr = storage.ErrNotFound

	report := newTestAnalyzer(s, Config{}).Analyze(context.Background(), testMint)
	if report.Found {
		t.Error("missing mint must not be Found")
	}
	if report.Error != "" {
		t.Errorf("not-found is not a fatal error, got %q", report.Error)
	}
	if report.RiskScore != 0 {
		t.Errorf("risk score = %d", report.RiskScore)
	}
}

func TestAnalyze_FatalTokenFetch(t *testing.T) {
	s := cleanStub()
	s.token = nil
	s.tokenErr = errors.New("rpc exploded")

	report := newTestAnalyzer(s, Config{}).Analyze(context.Background(), testMint)
	if report.Found {
		t.Error("fatal fetch must not be Found")
	}
	if report.RiskScore != 100 || report.Verdict != domain.VerdictAvoid {
		t.Errorf("fatal fetch must be max risk, got score=%d verdict=%s", report.RiskScore, report.Verdict)
	}
	if !strings.Contains(report.Error, "rpc exploded") {
		t.Errorf("error not carried: %q", report.Error)
	}
}

func TestAnalyze_CleanToken(t *testing.T) {
	report := newTestAnalyzer(cleanStub(), Config{}).Analyze(context.Background(), testMint)

	if !report.Found {
		t.Fatal("expected Found")
	}
	if report.Verdict != domain.VerdictSafe {
		t.Errorf("verdict = %s, risks = %+v", report.Verdict, report.Risks)
	}
	if report.RiskScore != 0 {
		t.Errorf("risk score = %d", report.RiskScore)
	}
	if len(report.DegradedSignals) != 0 {
		t.Errorf("degraded signals = %v", report.DegradedSignals)
	}
	if len(report.Strengths) < 4 {
		t.Errorf("expected strengths for all clean components, got %v", report.Strengths)
	}
	found := false
	for _, s := range report.Strengths {
		if s == "Supply well distributed across holders" {
			found = true
		}
	}
	if !found {
		t.Errorf("concentration strength missing: %v", report.Strengths)
	}
}

func TestAnalyze_RuggedToken(t *testing.T) {
	s := cleanStub()
	// Dev holds 80% of supply, bought in a launch bundle.
	s.holders = []normalize.RawHolder{
		{Address: "dev", Balance: 800_000},
		{Address: "w1", Balance: 10_000},
		{Address: "w2", Balance: 9_000},
	}
	s.hints = map[string]bool{"dev": true}
	// Price collapsed with a sell-heavy, volume-spiked hour.
	s.market = &MarketData{
		Series: domain.PriceSeries{
			M5:  domain.WindowStats{PriceChangePct: -95, Volume: 30_000},
			H1:  domain.WindowStats{PriceChangePct: -90, BuyCount: 5, SellCount: 95, Volume: 40_000},
			H24: domain.WindowStats{Volume: 45_000},
		},
	}

	report := newTestAnalyzer(s, Config{}).Analyze(context.Background(), testMint)

	if report.Verdict != domain.VerdictAvoid {
		t.Errorf("verdict = %s, score = %d", report.Verdict, report.RiskScore)
	}
	if report.RiskScore < scoring.AvoidScore {
		t.Errorf("score = %d, want >= %d", report.RiskScore, scoring.AvoidScore)
	}
	if len(report.Risks) == 0 {
		t.Fatal("expected risk findings")
	}
	if report.Risks[0].Severity != domain.SeverityCritical {
		t.Errorf("first risk should be critical, got %s", report.Risks[0].Severity)
	}
}

func TestAnalyze_DegradedHolders(t *testing.T) {
	s := cleanStub()
	s.holders = nil
	s.holdersErr = errors.New("rpc down")

	report := newTestAnalyzer(s, Config{}).Analyze(context.Background(), testMint)

	if !report.Found {
		t.Fatal("secondary failure must not sink the analysis")
	}
	if reason, ok := report.DegradedSignals["holders"]; !ok || !strings.Contains(reason, "rpc down") {
		t.Errorf("degraded signals = %v", report.DegradedSignals)
	}
	// Wallet lookups depend on the holder list, so they degrade too.
	if _, ok := report.DegradedSignals["wallets"]; !ok {
		t.Errorf("wallets should be degraded: %v", report.DegradedSignals)
	}
	if report.Components["concentration"] != 0 {
		t.Errorf("unknown concentration must contribute 0, got %f", report.Components["concentration"])
	}
	for _, str := range report.Strengths {
		if str == "Supply well distributed across holders" {
			t.Error("degraded component must not claim a strength")
		}
	}
}

func TestAnalyze_CasinoOutflowForcesAvoid(t *testing.T) {
	s := cleanStub()
	s.outflows = []domain.Transaction{
		{Timestamp: millis(1), Source: "dev", Destination: "casino777", Amount: -500},
	}

	cfg := Config{CasinoAddrs: map[string]bool{"casino777": true}}
	report := newTestAnalyzer(s, cfg).Analyze(context.Background(), testMint)

	if report.Verdict != domain.VerdictAvoid {
		t.Errorf("casino outflow must force AVOID, got %s (score %d)", report.Verdict, report.RiskScore)
	}
}

func TestAnalyze_MintAuthorityRiskCarried(t *testing.T) {
	s := cleanStub()
	s.token.MintAuthority = true

	report := newTestAnalyzer(s, Config{}).Analyze(context.Background(), testMint)

	found := false
	for _, f := range report.Risks {
		if f.Type == "mint_authority_active" {
			found = true
		}
	}
	if !found {
		t.Errorf("mint authority finding missing: %+v", report.Risks)
	}
}

func TestAnalyze_MissingTimingDataDegradesBundle(t *testing.T) {
	s := cleanStub()
	s.hints = nil // timing data unavailable

	report := newTestAnalyzer(s, Config{}).Analyze(context.Background(), testMint)

	if _, ok := report.DegradedSignals["bundle_hints"]; !ok {
		t.Errorf("bundle hints should be degraded: %v", report.DegradedSignals)
	}
	if report.Components["bundle"] != 0 {
		t.Errorf("unknown bundle must contribute 0, got %f", report.Components["bundle"])
	}
	for _, str := range report.Strengths {
		if str == "No launch-bundle accumulation" {
			t.Error("unknown bundle must not claim a strength")
		}
	}
}
