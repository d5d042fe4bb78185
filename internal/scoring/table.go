// Package scoring combines component detector outputs into one bounded
// composite risk score with a verdict and ordered risk/strength lists.
// Score direction here is risk: 0 = clean, 100 = dangerous. The engine
// is pure: identical inputs always produce identical output.
package scoring

import (
	"rugradar/internal/domain"
)

// Component identifies one weighted slice of the composite score.
type Component string

const (
	ComponentConcentration Component = "concentration"
	ComponentMarket        Component = "market"
	ComponentBundle        Component = "bundle"
	ComponentWalletAge     Component = "wallet_age"
	ComponentFunding       Component = "funding"
	ComponentSocial        Component = "social"
)

// Table is a weighting scheme: maximum points per component. Weights
// sum to 100 so the composite is naturally bounded. Alternative schemes
// are just different Table values, not forked code paths.
type Table struct {
	Name    string
	Weights map[Component]float64
}

// CurrentTable is the default weighting scheme.
var CurrentTable = Table{
	Name: "current",
	Weights: map[Component]float64{
		ComponentConcentration: 30,
		ComponentMarket:        25,
		ComponentBundle:        20,
		ComponentWalletAge:     15,
		ComponentFunding:       10,
	},
}

// LegacyTable is the earlier scheme that scored social presence inside
// the composite instead of as a verdict override.
var LegacyTable = Table{
	Name: "legacy",
	Weights: map[Component]float64{
		ComponentConcentration: 30,
		ComponentMarket:        20,
		ComponentBundle:        20,
		ComponentWalletAge:     10,
		ComponentFunding:       10,
		ComponentSocial:        10,
	},
}

// ComponentInput is one detector's contribution to the aggregate.
type ComponentInput struct {
	// Fraction is the component's risk fraction in [0,1]; it is
	// multiplied by the table weight. Values outside the range are
	// clamped.
	Fraction float64

	// Known is false when the detector's upstream signal was missing
	// or degraded. Unknown components contribute zero risk and are
	// excluded from strengths: absence of data is not cleanliness.
	Known bool

	Findings []domain.RiskFinding

	// ForceAvoid escalates the verdict to AVOID regardless of score
	// (casino outflows).
	ForceAvoid bool

	// Strength is the statement listed when the component is known
	// and clean. Empty disables the strength listing.
	Strength string
}

// Inputs maps components to their detector outputs. Components absent
// from the map contribute nothing.
type Inputs map[Component]ComponentInput

// SeverityFraction maps the worst finding severity to a risk fraction.
// Used by callers whose detectors emit findings without a numeric score.
func SeverityFraction(findings []domain.RiskFinding) float64 {
	worst := 0.0
	for _, f := range findings {
		var v float64
		switch f.Severity {
		case domain.SeverityCritical:
			v = 1.0
		case domain.SeverityHigh:
			v = 0.7
		case domain.SeverityMedium:
			v = 0.4
		case domain.SeverityLow:
			v = 0.2
		}
		if v > worst {
			worst = v
		}
	}
	return worst
}
