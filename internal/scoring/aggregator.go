package scoring

import (
	"math"
	"sort"

	"rugradar/internal/domain"
)

// Verdict breakpoints on the composite risk score.
const (
	AvoidScore   = 60
	WarningScore = 30
)

// StrengthMaxFraction is the risk fraction at or below which a known
// component is listed as a strength.
const StrengthMaxFraction = 0.2

// Aggregate is the combined scoring result before report assembly.
type Aggregate struct {
	Score      int // composite risk, 0..100
	Verdict    domain.Verdict
	Components map[string]float64 // weighted points contributed per component
	Risks      []domain.RiskFinding
	Strengths  []string
}

// Aggregate combines component inputs under this table's weights.
// Every metric is evaluated against its own threshold independently:
// a component can contribute points, appear in risks and be absent from
// strengths at the same time. The composite is clamped to [0,100].
func (t Table) Aggregate(inputs Inputs) Aggregate {
	agg := Aggregate{
		Components: make(map[string]float64, len(t.Weights)),
	}

	components := make([]Component, 0, len(t.Weights))
	for c := range t.Weights {
		components = append(components, c)
	}
	sort.Slice(components, func(i, j int) bool { return components[i] < components[j] })

	total := 0.0
	forceAvoid := false
	for _, c := range components {
		weight := t.Weights[c]
		in, ok := inputs[c]
		if !ok || !in.Known {
			agg.Components[string(c)] = 0
			continue
		}

		frac := clamp01(in.Fraction)
		points := frac * weight
		agg.Components[string(c)] = points
		total += points

		agg.Risks = append(agg.Risks, in.Findings...)
		if in.ForceAvoid {
			forceAvoid = true
		}
		if frac <= StrengthMaxFraction && in.Strength != "" {
			agg.Strengths = append(agg.Strengths, in.Strength)
		}
	}

	SortFindings(agg.Risks)

	agg.Score = clampScore(total)

	switch {
	case forceAvoid || agg.Score >= AvoidScore:
		agg.Verdict = domain.VerdictAvoid
	case agg.Score >= WarningScore:
		agg.Verdict = domain.VerdictWarning
	default:
		agg.Verdict = domain.VerdictSafe
	}

	return agg
}

// SortFindings orders findings critical-first, then by type for
// determinism.
func SortFindings(findings []domain.RiskFinding) {
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Severity.Rank() != findings[j].Severity.Rank() {
			return findings[i].Severity.Rank() < findings[j].Severity.Rank()
		}
		return findings[i].Type < findings[j].Type
	})
}

// Recommendation renders the one-line call for a verdict and score.
func Recommendation(verdict domain.Verdict, score int, degradedSignals int) string {
	switch verdict {
	case domain.VerdictAvoid:
		return "High rug-pull risk. Do not buy; exit any position."
	case domain.VerdictWarning:
		if degradedSignals > 0 {
			return "Elevated risk with incomplete data. Treat as unverified and size accordingly."
		}
		return "Elevated risk. Only proceed with funds you can afford to lose."
	default:
		if degradedSignals > 0 {
			return "No red flags in the signals we could fetch, but some sources were unavailable."
		}
		return "No major red flags detected. Standard caution still applies."
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampScore(v float64) int {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(math.Round(v))
}
