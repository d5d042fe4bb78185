// Package memory provides in-memory store implementations. They back
// the CLI tools when no database is configured and the store-facing
// tests everywhere else. Semantics mirror the database stores:
// append-only, duplicate keys rejected, reads return copies.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rugradar/internal/domain"
	"rugradar/internal/storage"
)

// TokenReportStore is an in-memory storage.TokenReportStore.
type TokenReportStore struct {
	mu      sync.RWMutex
	reports map[string]*domain.TokenReport
}

var _ storage.TokenReportStore = (*TokenReportStore)(nil)

// NewTokenReportStore creates an empty report store.
func NewTokenReportStore() *TokenReportStore {
	return &TokenReportStore{reports: make(map[string]*domain.TokenReport)}
}

func (s *TokenReportStore) Insert(ctx context.Context, r *domain.TokenReport) error {
	if r == nil || r.AnalysisID == "" {
		return fmt.Errorf("%w: report requires analysis id", storage.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.reports[r.AnalysisID]; exists {
		return fmt.Errorf("%w: analysis %s", storage.ErrDuplicateKey, r.AnalysisID)
	}
	s.reports[r.AnalysisID] = copyReport(r)
	return nil
}

func (s *TokenReportStore) GetByID(ctx context.Context, analysisID string) (*domain.TokenReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[analysisID]
	if !ok {
		return nil, fmt.Errorf("%w: analysis %s", storage.ErrNotFound, analysisID)
	}
	return copyReport(r), nil
}

func (s *TokenReportStore) GetByMint(ctx context.Context, mint string) ([]*domain.TokenReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TokenReport
	for _, r := range s.reports {
		if r.Mint == mint {
			out = append(out, copyReport(r))
		}
	}
	sortReports(out)
	return out, nil
}

func (s *TokenReportStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TokenReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.TokenReport
	for _, r := range s.reports {
		if r.RequestedAt >= start && r.RequestedAt <= end {
			out = append(out, copyReport(r))
		}
	}
	sortReports(out)
	return out, nil
}

func sortReports(reports []*domain.TokenReport) {
	sort.Slice(reports, func(i, j int) bool {
		if reports[i].RequestedAt != reports[j].RequestedAt {
			return reports[i].RequestedAt < reports[j].RequestedAt
		}
		return reports[i].AnalysisID < reports[j].AnalysisID
	})
}

func copyReport(r *domain.TokenReport) *domain.TokenReport {
	out := *r
	out.Risks = append([]domain.RiskFinding(nil), r.Risks...)
	out.Strengths = append([]string(nil), r.Strengths...)
	out.Components = copyMap(r.Components)
	out.DegradedSignals = copyMap(r.DegradedSignals)
	return &out
}

func copyMap[V any](m map[string]V) map[string]V {
	if m == nil {
		return nil
	}
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// SampleStore is an in-memory storage.SampleStore.
type SampleStore struct {
	mu      sync.RWMutex
	samples map[string]*domain.SyntheticSample
}

var _ storage.SampleStore = (*SampleStore)(nil)

// NewSampleStore creates an empty sample store.
func NewSampleStore() *SampleStore {
	return &SampleStore{samples: make(map[string]*domain.SyntheticSample)}
}

func (s *SampleStore) Insert(ctx context.Context, sample *domain.SyntheticSample) error {
	if sample == nil || sample.SampleID == "" {
		return fmt.Errorf("%w: sample requires id", storage.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(sample)
}

func (s *SampleStore) InsertBulk(ctx context.Context, samples []*domain.SyntheticSample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate the whole batch before touching the map.
	for _, sample := range samples {
		if sample == nil || sample.SampleID == "" {
			return fmt.Errorf("%w: sample requires id", storage.ErrInvalidInput)
		}
		if _, exists := s.samples[sample.SampleID]; exists {
			return fmt.Errorf("%w: sample %s", storage.ErrDuplicateKey, sample.SampleID)
		}
	}
	for _, sample := range samples {
		if err := s.insertLocked(sample); err != nil {
			return err
		}
	}
	return nil
}

func (s *SampleStore) insertLocked(sample *domain.SyntheticSample) error {
	if _, exists := s.samples[sample.SampleID]; exists {
		return fmt.Errorf("%w: sample %s", storage.ErrDuplicateKey, sample.SampleID)
	}
	s.samples[sample.SampleID] = copySample(sample)
	return nil
}

func (s *SampleStore) GetByID(ctx context.Context, sampleID string) (*domain.SyntheticSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sample, ok := s.samples[sampleID]
	if !ok {
		return nil, fmt.Errorf("%w: sample %s", storage.ErrNotFound, sampleID)
	}
	return copySample(sample), nil
}

func (s *SampleStore) GetByPattern(ctx context.Context, pattern string) ([]*domain.SyntheticSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.SyntheticSample
	for _, sample := range s.samples {
		if sample.Pattern == pattern {
			out = append(out, copySample(sample))
		}
	}
	sortSamples(out)
	return out, nil
}

func (s *SampleStore) GetAll(ctx context.Context) ([]*domain.SyntheticSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.SyntheticSample, 0, len(s.samples))
	for _, sample := range s.samples {
		out = append(out, copySample(sample))
	}
	sortSamples(out)
	return out, nil
}

func sortSamples(samples []*domain.SyntheticSample) {
	sort.Slice(samples, func(i, j int) bool {
		if samples[i].Pattern != samples[j].Pattern {
			return samples[i].Pattern < samples[j].Pattern
		}
		return samples[i].Seed < samples[j].Seed
	})
}

func copySample(sample *domain.SyntheticSample) *domain.SyntheticSample {
	out := *sample
	out.Transactions = append([]domain.Transaction(nil), sample.Transactions...)
	return &out
}

// DetectorRunStore is an in-memory storage.DetectorRunStore.
type DetectorRunStore struct {
	mu   sync.RWMutex
	runs []*domain.DetectorRun
	keys map[string]bool // sample_id|detector
}

var _ storage.DetectorRunStore = (*DetectorRunStore)(nil)

// NewDetectorRunStore creates an empty run store.
func NewDetectorRunStore() *DetectorRunStore {
	return &DetectorRunStore{keys: make(map[string]bool)}
}

func runKey(r *domain.DetectorRun) string {
	return r.SampleID + "|" + r.Detector
}

func (s *DetectorRunStore) InsertBulk(ctx context.Context, runs []*domain.DetectorRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, run := range runs {
		if run == nil || run.SampleID == "" || run.Detector == "" {
			return fmt.Errorf("%w: run requires sample id and detector", storage.ErrInvalidInput)
		}
		if s.keys[runKey(run)] {
			return fmt.Errorf("%w: run %s/%s", storage.ErrDuplicateKey, run.SampleID, run.Detector)
		}
	}
	for _, run := range runs {
		copied := *run
		s.runs = append(s.runs, &copied)
		s.keys[runKey(run)] = true
	}
	return nil
}

func (s *DetectorRunStore) GetBySampleID(ctx context.Context, sampleID string) ([]*domain.DetectorRun, error) {
	return s.filter(func(r *domain.DetectorRun) bool { return r.SampleID == sampleID })
}

func (s *DetectorRunStore) GetByDetector(ctx context.Context, detector string) ([]*domain.DetectorRun, error) {
	return s.filter(func(r *domain.DetectorRun) bool { return r.Detector == detector })
}

func (s *DetectorRunStore) GetAll(ctx context.Context) ([]*domain.DetectorRun, error) {
	return s.filter(func(*domain.DetectorRun) bool { return true })
}

func (s *DetectorRunStore) filter(keep func(*domain.DetectorRun) bool) ([]*domain.DetectorRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.DetectorRun
	for _, run := range s.runs {
		if keep(run) {
			copied := *run
			out = append(out, &copied)
		}
	}
	return out, nil
}
