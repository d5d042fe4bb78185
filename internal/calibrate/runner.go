// Package calibrate replays synthetic rug timelines through the
// timeline detectors and measures per-pattern sensitivity. The output
// answers one question per detector and pattern: how often does it
// fire, and with how much confidence, when the rug is known to be there.
package calibrate

import (
	"context"
	"fmt"
	"sort"
	"time"

	"rugradar/internal/detector"
	"rugradar/internal/domain"
	"rugradar/internal/normalize"
	"rugradar/internal/observability"
	"rugradar/internal/storage"
)

// Detector identifiers used in run records.
const (
	DetectorPumpDump  = "pump_dump"
	DetectorWashTrade = "wash_trade"
)

// PatternStats aggregates detector outcomes for one pattern.
type PatternStats struct {
	Samples       int
	Detected      int
	DetectionRate float64 // Detected / Samples

	// Headline confidence distribution across the pattern's samples.
	// Samples where the detector stayed silent contribute 0.
	ConfidenceMean float64
	ConfidenceP50  float64
	ConfidenceP90  float64
}

// DetectorSummary aggregates one detector's outcomes across patterns.
type DetectorSummary struct {
	Patterns map[string]PatternStats
	Overall  PatternStats
}

// Summary is the result of one calibration sweep, keyed by detector.
type Summary struct {
	Detectors map[string]DetectorSummary
}

// Runner evaluates detectors against synthetic samples. metrics may be
// nil.
type Runner struct {
	metrics *observability.Metrics
	now     func() int64
}

// NewRunner creates a Runner. A nil now selects the wall clock.
func NewRunner(metrics *observability.Metrics, now func() int64) *Runner {
	if now == nil {
		now = func() int64 { return time.Now().UnixMilli() }
	}
	return &Runner{metrics: metrics, now: now}
}

// Evaluate runs every timeline detector over one sample. The price
// series is rebuilt as of the sample's last transaction, which is when
// a live analysis would have seen the timeline.
func (r *Runner) Evaluate(sample *domain.SyntheticSample) []domain.DetectorRun {
	asOf := int64(0)
	if n := len(sample.Transactions); n > 0 {
		asOf = sample.Transactions[n-1].Timestamp
	}
	ranAt := r.now()

	series := normalize.SeriesFromTransactions(sample.Transactions, asOf)
	pd := detector.AnalyzePumpDump(series)
	wash := detector.AnalyzeWashTrading(sample.Transactions)

	runs := []domain.DetectorRun{
		{
			SampleID:      sample.SampleID,
			Pattern:       sample.Pattern,
			Detector:      DetectorPumpDump,
			Detected:      pd.IsRugPull,
			Confidence:    maxConfidence(pd.Findings),
			RugConfidence: pd.RugConfidence,
			RanAt:         ranAt,
		},
		{
			SampleID:   sample.SampleID,
			Pattern:    sample.Pattern,
			Detector:   DetectorWashTrade,
			Detected:   wash.Detected,
			Confidence: maxConfidence(wash.Findings),
			RanAt:      ranAt,
		},
	}
	for _, run := range runs {
		r.metrics.RecordDetectorRun(run.Detector, run.Detected)
	}
	return runs
}

// Run sweeps the whole corpus and aggregates per-pattern sensitivity.
func (r *Runner) Run(samples []*domain.SyntheticSample) (Summary, []domain.DetectorRun) {
	var runs []domain.DetectorRun
	for _, sample := range samples {
		runs = append(runs, r.Evaluate(sample)...)
	}
	r.metrics.RecordCalibrationRun()
	return Summarize(runs), runs
}

// RunAndStore sweeps the corpus and persists every run record.
func (r *Runner) RunAndStore(ctx context.Context, samples []*domain.SyntheticSample, store storage.DetectorRunStore) (Summary, error) {
	summary, runs := r.Run(samples)
	if store != nil && len(runs) > 0 {
		records := make([]*domain.DetectorRun, len(runs))
		for i := range runs {
			records[i] = &runs[i]
		}
		if err := store.InsertBulk(ctx, records); err != nil {
			return summary, fmt.Errorf("store detector runs: %w", err)
		}
	}
	return summary, nil
}

// Summarize aggregates run records by detector, then by pattern.
func Summarize(runs []domain.DetectorRun) Summary {
	byDetector := make(map[string][]domain.DetectorRun)
	for _, run := range runs {
		byDetector[run.Detector] = append(byDetector[run.Detector], run)
	}

	summary := Summary{Detectors: make(map[string]DetectorSummary, len(byDetector))}
	for det, group := range byDetector {
		byPattern := make(map[string][]domain.DetectorRun)
		for _, run := range group {
			byPattern[run.Pattern] = append(byPattern[run.Pattern], run)
		}

		ds := DetectorSummary{
			Patterns: make(map[string]PatternStats, len(byPattern)),
			Overall:  statsFor(group),
		}
		for pattern, patternRuns := range byPattern {
			ds.Patterns[pattern] = statsFor(patternRuns)
		}
		summary.Detectors[det] = ds
	}
	return summary
}

func statsFor(runs []domain.DetectorRun) PatternStats {
	stats := PatternStats{Samples: len(runs)}
	if len(runs) == 0 {
		return stats
	}

	confidences := make([]float64, 0, len(runs))
	sum := 0.0
	for _, run := range runs {
		if run.Detected {
			stats.Detected++
		}
		c := float64(run.Confidence)
		confidences = append(confidences, c)
		sum += c
	}
	sort.Float64s(confidences)

	stats.DetectionRate = float64(stats.Detected) / float64(stats.Samples)
	stats.ConfidenceMean = sum / float64(stats.Samples)
	stats.ConfidenceP50 = percentile(confidences, 0.50)
	stats.ConfidenceP90 = percentile(confidences, 0.90)
	return stats
}

func maxConfidence(findings []domain.RiskFinding) int {
	confidence := 0
	for _, f := range findings {
		if f.Confidence > confidence {
			confidence = f.Confidence
		}
	}
	return confidence
}

// percentile uses linear interpolation. sorted must be pre-sorted ASC.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	idx := p * float64(n-1)
	lower := int(idx)
	upper := lower + 1
	if upper >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}
