package domain

// Synthetic pattern identifiers produced by the augmentation pipeline.
const (
	PatternTimeStretch  = "TIME_STRETCH"
	PatternSniperInject = "SNIPER_INJECT"
	PatternPerfectCrime = "PERFECT_CRIME"
	PatternWashLoop     = "WASH_LOOP"
)

// SyntheticSample is one generated rug-pull timeline used for detector
// calibration. Transactions are sorted by timestamp ascending.
type SyntheticSample struct {
	SampleID     string // deterministic hash
	Pattern      string // one of the Pattern* constants
	Seed         int64  // RNG seed the sample was generated from
	CreatedAt    int64  // Unix ms
	Transactions []Transaction
}

// DetectorRun records one detector outcome over one synthetic sample.
// Corresponds to the detector_runs table in ClickHouse.
type DetectorRun struct {
	SampleID      string
	Pattern       string // pattern the sample was generated with
	Detector      string // detector identifier
	Detected      bool   // detector flagged the sample
	Confidence    int    // headline confidence, 0..100
	RugConfidence int    // additive rug confidence, 0..100
	RanAt         int64  // Unix ms
}
