package scoring

import (
	"math"
	"reflect"
	"testing"

	"rugradar/internal/domain"
)

func TestAggregate_BoundedScore(t *testing.T) {
	// Every component at maximum risk: score stays at 100.
	inputs := Inputs{}
	for c := range CurrentTable.Weights {
		inputs[c] = ComponentInput{Fraction: 5.0, Known: true} // over-range, clamped
	}

	agg := CurrentTable.Aggregate(inputs)
	if agg.Score != 100 {
		t.Errorf("expected score 100, got %d", agg.Score)
	}
	if agg.Verdict != domain.VerdictAvoid {
		t.Errorf("expected AVOID, got %s", agg.Verdict)
	}
}

func TestAggregate_EmptyInputsIsZero(t *testing.T) {
	agg := CurrentTable.Aggregate(Inputs{})
	if agg.Score != 0 {
		t.Errorf("expected score 0, got %d", agg.Score)
	}
	if agg.Verdict != domain.VerdictSafe {
		t.Errorf("expected SAFE, got %s", agg.Verdict)
	}
	if len(agg.Strengths) != 0 {
		t.Errorf("unknown components must not be strengths, got %v", agg.Strengths)
	}
}

func TestAggregate_NaNFractionCoerced(t *testing.T) {
	inputs := Inputs{
		ComponentConcentration: {Fraction: math.NaN(), Known: true},
	}

	agg := CurrentTable.Aggregate(inputs)
	if agg.Score != 0 {
		t.Errorf("NaN fraction must coerce to 0, got score %d", agg.Score)
	}
}

func TestAggregate_WeightedSum(t *testing.T) {
	inputs := Inputs{
		ComponentConcentration: {Fraction: 1.0, Known: true},  // 30
		ComponentMarket:        {Fraction: 0.4, Known: true},  // 10
		ComponentBundle:        {Fraction: 0.5, Known: false}, // unknown: 0
	}

	agg := CurrentTable.Aggregate(inputs)
	if agg.Score != 40 {
		t.Errorf("expected 30+10=40, got %d", agg.Score)
	}
	if agg.Components["bundle"] != 0 {
		t.Errorf("unknown component must contribute 0, got %f", agg.Components["bundle"])
	}
	if agg.Verdict != domain.VerdictWarning {
		t.Errorf("expected WARNING at 40, got %s", agg.Verdict)
	}
}

func TestAggregate_ForceAvoidOverridesScore(t *testing.T) {
	inputs := Inputs{
		ComponentSocial: {Fraction: 0.1, Known: true, ForceAvoid: true},
	}

	agg := LegacyTable.Aggregate(inputs)
	if agg.Score >= AvoidScore {
		t.Fatalf("precondition: score should be below avoid threshold, got %d", agg.Score)
	}
	if agg.Verdict != domain.VerdictAvoid {
		t.Errorf("ForceAvoid must escalate verdict, got %s", agg.Verdict)
	}
}

func TestAggregate_RisksSortedCriticalFirst(t *testing.T) {
	inputs := Inputs{
		ComponentConcentration: {
			Fraction: 0.4, Known: true,
			Findings: []domain.RiskFinding{
				{Type: "top10_concentration", Severity: domain.SeverityMedium},
			},
		},
		ComponentMarket: {
			Fraction: 1.0, Known: true,
			Findings: []domain.RiskFinding{
				{Type: "instant_dump", Severity: domain.SeverityCritical},
			},
		},
	}

	agg := CurrentTable.Aggregate(inputs)
	if len(agg.Risks) != 2 {
		t.Fatalf("expected 2 risks, got %d", len(agg.Risks))
	}
	if agg.Risks[0].Severity != domain.SeverityCritical {
		t.Errorf("critical finding must sort first, got %s", agg.Risks[0].Severity)
	}
}

func TestAggregate_StrengthsOnlyWhenKnownAndClean(t *testing.T) {
	inputs := Inputs{
		ComponentConcentration: {Fraction: 0.1, Known: true, Strength: "Supply well distributed"},
		ComponentBundle:        {Fraction: 0.0, Known: false, Strength: "No launch bundles"},
		ComponentMarket:        {Fraction: 0.9, Known: true, Strength: "Healthy price action"},
	}

	agg := CurrentTable.Aggregate(inputs)
	if !reflect.DeepEqual(agg.Strengths, []string{"Supply well distributed"}) {
		t.Errorf("unexpected strengths: %v", agg.Strengths)
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	inputs := Inputs{
		ComponentConcentration: {Fraction: 0.5, Known: true},
		ComponentMarket:        {Fraction: 0.5, Known: true},
		ComponentFunding:       {Fraction: 0.5, Known: true},
	}

	first := CurrentTable.Aggregate(inputs)
	second := CurrentTable.Aggregate(inputs)
	if !reflect.DeepEqual(first, second) {
		t.Error("aggregation must be pure")
	}
}

func TestTables_WeightsSumTo100(t *testing.T) {
	for _, table := range []Table{CurrentTable, LegacyTable} {
		sum := 0.0
		for _, w := range table.Weights {
			sum += w
		}
		if sum != 100 {
			t.Errorf("table %s weights sum to %f, want 100", table.Name, sum)
		}
	}
}
