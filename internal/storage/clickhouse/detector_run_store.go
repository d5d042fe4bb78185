package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"rugradar/internal/domain"
	"rugradar/internal/storage"
)

// DetectorRunStore implements storage.DetectorRunStore using ClickHouse.
type DetectorRunStore struct {
	conn *Conn
}

// NewDetectorRunStore creates a new DetectorRunStore.
func NewDetectorRunStore(conn *Conn) *DetectorRunStore {
	return &DetectorRunStore{conn: conn}
}

// Compile-time interface check.
var _ storage.DetectorRunStore = (*DetectorRunStore)(nil)

// InsertBulk adds multiple run records. Fails entire batch on any
// duplicate (sample_id, detector).
func (s *DetectorRunStore) InsertBulk(ctx context.Context, runs []*domain.DetectorRun) error {
	if len(runs) == 0 {
		return nil
	}

	type key struct {
		sampleID string
		detector string
	}
	seen := make(map[key]struct{}, len(runs))
	for _, run := range runs {
		if run == nil || run.SampleID == "" || run.Detector == "" {
			return fmt.Errorf("%w: run requires sample id and detector", storage.ErrInvalidInput)
		}
		k := key{run.SampleID, run.Detector}
		if _, dup := seen[k]; dup {
			return fmt.Errorf("%w: run %s/%s", storage.ErrDuplicateKey, run.SampleID, run.Detector)
		}
		seen[k] = struct{}{}

		exists, err := s.exists(ctx, run.SampleID, run.Detector)
		if err != nil {
			return fmt.Errorf("check run exists: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: run %s/%s", storage.ErrDuplicateKey, run.SampleID, run.Detector)
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO detector_runs (
			sample_id, pattern, detector, detected, confidence, rug_confidence, ran_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, run := range runs {
		err = batch.Append(
			run.SampleID, run.Pattern, run.Detector, boolFlag(run.Detected),
			uint8(run.Confidence), uint8(run.RugConfidence), run.RanAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetBySampleID retrieves all runs recorded for a sample.
func (s *DetectorRunStore) GetBySampleID(ctx context.Context, sampleID string) ([]*domain.DetectorRun, error) {
	rows, err := s.conn.Query(ctx, runQuery+` WHERE sample_id = ? ORDER BY detector`, sampleID)
	if err != nil {
		return nil, fmt.Errorf("query runs by sample id: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetByDetector retrieves all runs for one detector across samples.
func (s *DetectorRunStore) GetByDetector(ctx context.Context, detector string) ([]*domain.DetectorRun, error) {
	rows, err := s.conn.Query(ctx, runQuery+` WHERE detector = ? ORDER BY sample_id`, detector)
	if err != nil {
		return nil, fmt.Errorf("query runs by detector: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// GetAll retrieves every stored run.
func (s *DetectorRunStore) GetAll(ctx context.Context) ([]*domain.DetectorRun, error) {
	rows, err := s.conn.Query(ctx, runQuery+` ORDER BY detector, sample_id`)
	if err != nil {
		return nil, fmt.Errorf("query all runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

func (s *DetectorRunStore) exists(ctx context.Context, sampleID, detector string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM detector_runs WHERE sample_id = ? AND detector = ?`,
		sampleID, detector,
	)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

const runQuery = `
	SELECT sample_id, pattern, detector, detected, confidence, rug_confidence, ran_at
	FROM detector_runs
`

func scanRuns(rows driver.Rows) ([]*domain.DetectorRun, error) {
	var runs []*domain.DetectorRun

	for rows.Next() {
		var r domain.DetectorRun
		var detected, confidence, rugConfidence uint8

		err := rows.Scan(&r.SampleID, &r.Pattern, &r.Detector, &detected, &confidence, &rugConfidence, &r.RanAt)
		if err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}

		r.Detected = detected != 0
		r.Confidence = int(confidence)
		r.RugConfidence = int(rugConfidence)
		runs = append(runs, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}
