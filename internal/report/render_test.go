package report

import (
	"strings"
	"testing"

	"rugradar/internal/domain"
)

func sampleTokenReport() *domain.TokenReport {
	return &domain.TokenReport{
		AnalysisID: "abc123",
		Mint:       "Mint111",
		Found:      true,
		RiskScore:  72,
		Verdict:    domain.VerdictAvoid,
		Risks: []domain.RiskFinding{
			{Type: "instant_dump", Severity: domain.SeverityCritical, Confidence: 100,
				Description: "RUG PULLED: price collapsed -95% in 5 minutes"},
			{Type: "top10_concentration", Severity: domain.SeverityMedium, Confidence: 60,
				Description: "Top 10 hold 40%"},
		},
		Strengths:       []string{"No high-risk funding traces"},
		Recommendation:  "High rug-pull risk. Do not buy; exit any position.",
		Components:      map[string]float64{"concentration": 12, "market": 25},
		DegradedSignals: map[string]string{"wallets": "timeout"},
	}
}

func TestRenderTokenText(t *testing.T) {
	out := RenderTokenText(sampleTokenReport())

	for _, want := range []string{
		"Risk score: 72/100",
		"Verdict: AVOID",
		"[CRITICAL] RUG PULLED",
		"+ No high-risk funding traces",
		"Unverified signals",
		"? wallets: timeout",
		"Do not buy",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderTokenText_NotFound(t *testing.T) {
	r := &domain.TokenReport{Mint: "X", Recommendation: "Mint not found on chain."}
	out := RenderTokenText(r)
	if !strings.Contains(out, "Token not found.") {
		t.Errorf("missing not-found line:\n%s", out)
	}
	if strings.Contains(out, "Verdict") {
		t.Error("not-found report must not render a verdict")
	}
}

func TestRenderTokenText_FatalError(t *testing.T) {
	r := &domain.TokenReport{
		Mint: "X", Error: "rpc exploded", RiskScore: 100,
		Verdict:        domain.VerdictAvoid,
		Recommendation: "Analysis failed; treat as maximum risk until the token can be verified.",
	}
	out := RenderTokenText(r)
	if !strings.Contains(out, "ERROR: rpc exploded") {
		t.Errorf("missing error:\n%s", out)
	}
	if !strings.Contains(out, "100/100") {
		t.Errorf("fatal error must render max risk:\n%s", out)
	}
}

func TestRenderTokenMarkdown(t *testing.T) {
	out := RenderTokenMarkdown(sampleTokenReport())

	for _, want := range []string{
		"# Token Risk Report",
		"## Verdict: AVOID (72/100)",
		"| CRITICAL | RUG PULLED",
		"## Unverified Signals",
		"did NOT pass",
		"`wallets`: timeout",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderRepoMarkdown(t *testing.T) {
	r := &domain.RepoReport{
		RepoURL:    "https://github.com/foo/bar",
		Found:      true,
		TrustScore: 85,
		Grade:      "A",
		Components: map[string]float64{"activity": 25, "popularity": 18},
		Strengths:  []string{"321 stars"},
		Risks: []domain.RiskFinding{
			{Type: "no_license", Severity: domain.SeverityMedium, Description: "No license file"},
		},
	}

	out := RenderRepoMarkdown(r)
	for _, want := range []string{
		"## Grade: A (trust score 85/100)",
		"| activity | 25.0 |",
		"- [MEDIUM] No license file",
		"- 321 stars",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderDeterministicOrder(t *testing.T) {
	r := sampleTokenReport()
	first := RenderTokenMarkdown(r)
	second := RenderTokenMarkdown(r)
	if first != second {
		t.Error("render must be deterministic for identical input")
	}
}
