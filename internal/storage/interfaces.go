package storage

import (
	"context"

	"rugradar/internal/domain"
)

// TokenReportStore provides access to analysis_reports storage.
type TokenReportStore interface {
	// Insert adds a finished report. Returns ErrDuplicateKey if analysis_id exists.
	Insert(ctx context.Context, r *domain.TokenReport) error

	// GetByID retrieves a report by its analysis ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, analysisID string) (*domain.TokenReport, error)

	// GetByMint retrieves all reports for a mint, ordered by requested_at ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.TokenReport, error)

	// GetByTimeRange retrieves reports requested within [start, end] (inclusive).
	GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TokenReport, error)
}

// SampleStore provides access to synthetic_transactions storage.
type SampleStore interface {
	// Insert adds a generated sample. Returns ErrDuplicateKey if sample_id exists.
	Insert(ctx context.Context, s *domain.SyntheticSample) error

	// InsertBulk adds multiple samples. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, samples []*domain.SyntheticSample) error

	// GetByID retrieves a sample by its ID, transactions ordered by
	// timestamp ASC. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, sampleID string) (*domain.SyntheticSample, error)

	// GetByPattern retrieves all samples generated with a pattern.
	GetByPattern(ctx context.Context, pattern string) ([]*domain.SyntheticSample, error)

	// GetAll retrieves every stored sample.
	GetAll(ctx context.Context) ([]*domain.SyntheticSample, error)
}

// DetectorRunStore provides access to detector_runs storage.
type DetectorRunStore interface {
	// InsertBulk adds multiple run records. Fails entire batch on any duplicate
	// (sample_id, detector).
	InsertBulk(ctx context.Context, runs []*domain.DetectorRun) error

	// GetBySampleID retrieves all runs recorded for a sample.
	GetBySampleID(ctx context.Context, sampleID string) ([]*domain.DetectorRun, error)

	// GetByDetector retrieves all runs for one detector across samples.
	GetByDetector(ctx context.Context, detector string) ([]*domain.DetectorRun, error)

	// GetAll retrieves every stored run.
	GetAll(ctx context.Context) ([]*domain.DetectorRun, error)
}
