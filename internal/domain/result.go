package domain

// Verdict is the user-facing call on a token.
type Verdict string

const (
	VerdictSafe    Verdict = "SAFE"
	VerdictWarning Verdict = "WARNING"
	VerdictAvoid   Verdict = "AVOID"
)

// TokenReport is the aggregated result of one token analysis.
// RiskScore convention: 0 = clean, 100 = dangerous. Created once per
// analysis invocation and immutable after construction.
type TokenReport struct {
	AnalysisID string // deterministic id, SHA256(mint|requested_at)
	Mint       string
	Found      bool   // primary mint fetch succeeded
	Error      string // fatal analysis error, empty on success

	RiskScore      int     // composite risk, 0..100
	Verdict        Verdict // SAFE | WARNING | AVOID
	Risks          []RiskFinding
	Strengths      []string
	Recommendation string

	// Component breakdown, weighted points actually contributed.
	Components map[string]float64

	// DegradedSignals lists upstream sources that fell back to their
	// neutral default, with reasons.
	DegradedSignals map[string]string

	RequestedAt int64 // Unix ms
	GeneratedAt int64 // Unix ms
}

// RepoReport is the aggregated result of one repository health analysis.
// TrustScore convention: 0 = abandoned/hollow, 100 = healthy. This is
// the opposite direction from TokenReport and the two never mix.
type RepoReport struct {
	RepoURL string
	Found   bool
	Error   string

	TrustScore float64 // 0..100
	Grade      string  // A+ | A | B | C | D | F

	// Component scores, each bounded by its weight.
	Components map[string]float64

	Strengths      []string
	Risks          []RiskFinding
	Recommendation string

	GeneratedAt int64 // Unix ms
}
