package domain

// Severity classifies how serious a finding is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank returns an ordering value for sorting findings, critical first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// RiskFinding is one qualitative detector output. Findings are
// append-only per analysis run and never mutated after creation.
type RiskFinding struct {
	Type        string            // stable finding type identifier
	Severity    Severity          // low | medium | high | critical
	Confidence  int               // 0..100
	Description string            // human-readable statement
	Evidence    map[string]string // supporting values, keyed by metric name
}
