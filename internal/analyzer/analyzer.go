// Package analyzer orchestrates one token analysis: fetch, normalize,
// detect, score. Analyze never returns an error; every failure mode is
// expressed inside the TokenReport so callers always get a renderable
// result.
package analyzer

import (
	"context"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"rugradar/internal/detector"
	"rugradar/internal/domain"
	"rugradar/internal/idhash"
	"rugradar/internal/normalize"
	"rugradar/internal/observability"
	"rugradar/internal/scoring"
	"rugradar/internal/solana"
	"rugradar/internal/storage"
)

// DefaultFetchTimeout bounds each secondary fetch.
const DefaultFetchTimeout = 10 * time.Second

// maxWalletProfiles caps how many holder wallets get a history lookup.
const maxWalletProfiles = 20

// Config tunes one Analyzer instance.
type Config struct {
	// Table is the weighting scheme; zero value selects CurrentTable.
	Table scoring.Table

	// Book classifies LP, exchange and protocol addresses.
	Book normalize.AddressBook

	// CasinoAddrs is the known gambling-address list for the dev
	// outflow check.
	CasinoAddrs map[string]bool

	// FetchTimeout bounds each secondary fetch; zero selects the default.
	FetchTimeout time.Duration

	// Now returns the current Unix ms; nil selects the wall clock.
	Now func() int64
}

// Analyzer runs token analyses against a fixed set of sources.
type Analyzer struct {
	tokens  TokenSource
	holders HolderSource
	market  MarketSource
	wallets WalletSource

	cfg     Config
	metrics *observability.Metrics
	logger  *log.Logger
}

// New creates an Analyzer. metrics may be nil.
func New(tokens TokenSource, holders HolderSource, market MarketSource, wallets WalletSource, cfg Config, metrics *observability.Metrics) *Analyzer {
	if cfg.Table.Weights == nil {
		cfg.Table = scoring.CurrentTable
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}
	if cfg.Now == nil {
		cfg.Now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Analyzer{
		tokens:  tokens,
		holders: holders,
		market:  market,
		wallets: wallets,
		cfg:     cfg,
		metrics: metrics,
		logger:  log.New(os.Stderr, "[analyzer] ", log.LstdFlags|log.Lshortfile),
	}
}

// Analyze runs the full pipeline for one mint. The primary mint fetch
// is fatal when it fails; every secondary fetch degrades to its neutral
// default and is listed in DegradedSignals instead.
func (a *Analyzer) Analyze(ctx context.Context, mint string) *domain.TokenReport {
	requestedAt := a.cfg.Now()
	report := &domain.TokenReport{
		AnalysisID:      idhash.ComputeAnalysisID(mint, requestedAt),
		Mint:            mint,
		RequestedAt:     requestedAt,
		DegradedSignals: make(map[string]string),
	}

	if err := solana.ValidateAddress(mint); err != nil {
		report.Error = err.Error()
		report.Recommendation = "Not a valid Solana mint address; nothing to analyze."
		report.GeneratedAt = a.cfg.Now()
		return report
	}

	token := fetchSignal(ctx, a, "token", func(c context.Context) (*domain.Token, error) {
		return a.tokens.GetToken(c, mint)
	})
	switch token.State {
	case domain.SignalMissing:
		report.Recommendation = "Mint not found on chain."
		report.GeneratedAt = a.cfg.Now()
		return report
	case domain.SignalDegraded:
		report.Error = token.Err
		report.RiskScore = 100
		report.Verdict = domain.VerdictAvoid
		report.Recommendation = "Analysis failed; treat as maximum risk until the token can be verified."
		report.GeneratedAt = a.cfg.Now()
		return report
	}
	report.Found = true

	var (
		holdersSig  domain.Signal[[]normalize.RawHolder]
		marketSig   domain.Signal[*MarketData]
		hintsSig    domain.Signal[map[string]bool]
		outflowsSig domain.Signal[[]domain.Transaction]
	)
	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		holdersSig = fetchSignal(ctx, a, "holders", func(c context.Context) ([]normalize.RawHolder, error) {
			return a.holders.GetHolders(c, mint)
		})
	}()
	go func() {
		defer wg.Done()
		marketSig = fetchSignal(ctx, a, "market", func(c context.Context) (*MarketData, error) {
			return a.market.GetMarket(c, mint)
		})
	}()
	go func() {
		defer wg.Done()
		hintsSig = fetchSignal(ctx, a, "bundle_hints", func(c context.Context) (map[string]bool, error) {
			return a.wallets.GetBundleHints(c, mint)
		})
	}()
	go func() {
		defer wg.Done()
		outflowsSig = fetchSignal(ctx, a, "dev_outflows", func(c context.Context) ([]domain.Transaction, error) {
			return a.wallets.GetDevOutflows(c, mint)
		})
	}()
	wg.Wait()

	var holderSet domain.HolderSet
	hasTimingData := false
	if holdersSig.OK() {
		holderSet = normalize.Holders(holdersSig.Value, token.Value.Supply, a.cfg.Book)
		if hintsSig.OK() && hintsSig.Value != nil {
			normalize.ApplyBundleHints(holderSet, hintsSig.Value)
			hasTimingData = true
		}
	}

	profilesSig := domain.Missing[[]domain.WalletProfile](nil)
	if holdersSig.OK() {
		addrs := holderSet.Qualifying().Addresses()
		if len(addrs) > maxWalletProfiles {
			addrs = addrs[:maxWalletProfiles]
		}
		profilesSig = fetchSignal(ctx, a, "wallets", func(c context.Context) ([]domain.WalletProfile, error) {
			return a.wallets.GetProfiles(c, addrs)
		})
	}

	var (
		concRes   detector.ConcentrationResult
		pumpRes   detector.PumpDumpResult
		bundleRes detector.BundleResult
		agedRes   detector.AgedWalletResult
		fundRes   detector.FundingResult
		socialRes detector.SocialResult
	)
	var dwg sync.WaitGroup
	dwg.Add(6)
	go func() {
		defer dwg.Done()
		concRes = detector.AnalyzeConcentration(holderSet)
	}()
	go func() {
		defer dwg.Done()
		if marketSig.OK() {
			pumpRes = detector.AnalyzePumpDump(marketSig.Value.Series)
		}
	}()
	go func() {
		defer dwg.Done()
		bundleRes = detector.AnalyzeBundles(holderSet, hasTimingData)
	}()
	go func() {
		defer dwg.Done()
		agedRes = detector.AnalyzeAgedWallets(profilesSig.Value, requestedAt)
	}()
	go func() {
		defer dwg.Done()
		fundRes = detector.AnalyzeFunding(holderSet, profilesSig.Value, requestedAt)
	}()
	go func() {
		defer dwg.Done()
		if marketSig.OK() {
			socialRes = detector.AnalyzeSocial(marketSig.Value.Social, outflowsSig.Value, a.cfg.CasinoAddrs)
		}
	}()
	dwg.Wait()

	inputs := scoring.Inputs{
		scoring.ComponentConcentration: {
			Fraction: scoring.SeverityFraction(concRes.Findings),
			Known:    holdersSig.OK(),
			Findings: concRes.Findings,
			Strength: "Supply well distributed across holders",
		},
		scoring.ComponentMarket: {
			Fraction: float64(pumpRes.RugConfidence) / 100,
			Known:    marketSig.OK(),
			Findings: pumpRes.Findings,
			Strength: "No pump & dump patterns in price action",
		},
		scoring.ComponentBundle: {
			Fraction: scoring.SeverityFraction(bundleRes.Findings),
			Known:    bundleRes.Known,
			Findings: bundleRes.Findings,
			Strength: "No launch-bundle accumulation",
		},
		scoring.ComponentWalletAge: {
			Fraction: float64(agedRes.Score) / 100,
			Known:    profilesSig.OK() && agedRes.Known,
			Findings: agedRes.Findings,
			Strength: "Buyer wallets look organic",
		},
		scoring.ComponentFunding: {
			Fraction: scoring.SeverityFraction(fundRes.Findings),
			Known:    profilesSig.OK() && fundRes.Known,
			Findings: fundRes.Findings,
			Strength: "No high-risk funding traces",
		},
		scoring.ComponentSocial: {
			Fraction:   float64(socialRes.Score) / 100,
			Known:      marketSig.OK(),
			Findings:   socialRes.Findings,
			ForceAvoid: socialRes.CasinoOutflow,
			Strength:   "Social presence established",
		},
	}

	agg := a.cfg.Table.Aggregate(inputs)

	// Authority and metadata risks are intrinsic to the mint record and
	// carried on every report regardless of the weighting scheme.
	agg.Risks = append(agg.Risks, intrinsicTokenRisks(token.Value)...)

	// Under schemes without a weighted social component the social
	// detector acts as a verdict floor instead.
	if _, weighted := a.cfg.Table.Weights[scoring.ComponentSocial]; !weighted && marketSig.OK() {
		agg.Risks = append(agg.Risks, socialRes.Findings...)
		if verdictRank(socialRes.Verdict) > verdictRank(agg.Verdict) {
			agg.Verdict = socialRes.Verdict
		}
	}
	scoring.SortFindings(agg.Risks)

	a.noteSignal(report, "holders", holdersSig.State, holdersSig.Err)
	a.noteSignal(report, "market", marketSig.State, marketSig.Err)
	a.noteSignal(report, "wallets", profilesSig.State, profilesSig.Err)
	a.noteSignal(report, "dev_outflows", outflowsSig.State, outflowsSig.Err)
	if !hasTimingData {
		a.noteSignal(report, "bundle_hints", domain.SignalMissing, hintsSig.Err)
	}

	report.RiskScore = agg.Score
	report.Verdict = agg.Verdict
	report.Risks = agg.Risks
	report.Strengths = agg.Strengths
	report.Components = agg.Components
	report.Recommendation = scoring.Recommendation(agg.Verdict, agg.Score, len(report.DegradedSignals))
	report.GeneratedAt = a.cfg.Now()

	for _, f := range agg.Risks {
		a.metrics.RecordRisk(f.Type, string(f.Severity))
	}
	a.metrics.RecordAnalysis(string(agg.Verdict), float64(report.GeneratedAt-requestedAt)/1000)
	a.logger.Printf("analyzed %s: score=%d verdict=%s risks=%d degraded=%d",
		mint, agg.Score, agg.Verdict, len(agg.Risks), len(report.DegradedSignals))

	return report
}

// fetchSignal runs one bounded fetch and tags the outcome. Sources
// report "no data for this subject" as storage.ErrNotFound; everything
// else is a degraded fetch.
func fetchSignal[T any](ctx context.Context, a *Analyzer, source string, fn func(context.Context) (T, error)) domain.Signal[T] {
	fctx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	v, err := fn(fctx)
	a.metrics.RecordFetch(source, time.Since(start).Seconds(), err)

	if err != nil {
		var zero T
		if errors.Is(err, storage.ErrNotFound) {
			return domain.Missing(zero)
		}
		return domain.Degraded(zero, err)
	}
	return domain.Fetched(v)
}

// noteSignal records a non-fetched signal on the report.
func (a *Analyzer) noteSignal(report *domain.TokenReport, source string, state domain.SignalState, reason string) {
	if state == domain.SignalFetched {
		return
	}
	if reason == "" {
		reason = "no data"
	}
	report.DegradedSignals[source] = reason
	a.metrics.RecordDegradedSignal(source)
}

// intrinsicTokenRisks flags authority and metadata state on the mint.
func intrinsicTokenRisks(t *domain.Token) []domain.RiskFinding {
	var findings []domain.RiskFinding
	if t.MintAuthority {
		findings = append(findings, domain.RiskFinding{
			Type:        "mint_authority_active",
			Severity:    domain.SeverityHigh,
			Confidence:  90,
			Description: "Mint authority not revoked: supply can be inflated at any time",
		})
	}
	if t.FreezeAuthority {
		findings = append(findings, domain.RiskFinding{
			Type:        "freeze_authority_active",
			Severity:    domain.SeverityMedium,
			Confidence:  85,
			Description: "Freeze authority not revoked: holder accounts can be frozen",
		})
	}
	if t.MetadataMutable {
		findings = append(findings, domain.RiskFinding{
			Type:        "metadata_mutable",
			Severity:    domain.SeverityLow,
			Confidence:  70,
			Description: "Token metadata can still be changed by the creator",
		})
	}
	return findings
}

func verdictRank(v domain.Verdict) int {
	switch v {
	case domain.VerdictAvoid:
		return 2
	case domain.VerdictWarning:
		return 1
	default:
		return 0
	}
}
