package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"rugradar/internal/domain"
	"rugradar/internal/storage"
)

// TokenReportStore implements storage.TokenReportStore using PostgreSQL.
// Findings, components and degraded signals are stored as JSONB; the
// scalar columns carry everything queries filter on.
type TokenReportStore struct {
	pool *Pool
}

// NewTokenReportStore creates a new TokenReportStore.
func NewTokenReportStore(pool *Pool) *TokenReportStore {
	return &TokenReportStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenReportStore = (*TokenReportStore)(nil)

const reportColumns = `
	analysis_id, mint, found, error,
	risk_score, verdict, risks, strengths, recommendation,
	components, degraded_signals,
	requested_at, generated_at
`

// Insert adds a finished report. Returns ErrDuplicateKey if analysis_id exists.
func (s *TokenReportStore) Insert(ctx context.Context, r *domain.TokenReport) error {
	if r == nil || r.AnalysisID == "" {
		return fmt.Errorf("%w: report requires analysis id", storage.ErrInvalidInput)
	}

	query := `
		INSERT INTO analysis_reports (` + reportColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		r.AnalysisID, r.Mint, r.Found, r.Error,
		r.RiskScore, string(r.Verdict), r.Risks, r.Strengths, r.Recommendation,
		r.Components, r.DegradedSignals,
		r.RequestedAt, r.GeneratedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return fmt.Errorf("%w: analysis %s", storage.ErrDuplicateKey, r.AnalysisID)
		}
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// GetByID retrieves a report by its analysis ID. Returns ErrNotFound if not exists.
func (s *TokenReportStore) GetByID(ctx context.Context, analysisID string) (*domain.TokenReport, error) {
	query := `SELECT ` + reportColumns + ` FROM analysis_reports WHERE analysis_id = $1`

	row := s.pool.QueryRow(ctx, query, analysisID)
	r, err := scanReport(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: analysis %s", storage.ErrNotFound, analysisID)
		}
		return nil, fmt.Errorf("get report by id: %w", err)
	}
	return r, nil
}

// GetByMint retrieves all reports for a mint, ordered by requested_at ASC.
func (s *TokenReportStore) GetByMint(ctx context.Context, mint string) ([]*domain.TokenReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM analysis_reports
		WHERE mint = $1
		ORDER BY requested_at ASC, analysis_id ASC
	`

	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("get reports by mint: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

// GetByTimeRange retrieves reports requested within [start, end] (inclusive).
func (s *TokenReportStore) GetByTimeRange(ctx context.Context, start, end int64) ([]*domain.TokenReport, error) {
	query := `
		SELECT ` + reportColumns + `
		FROM analysis_reports
		WHERE requested_at >= $1 AND requested_at <= $2
		ORDER BY requested_at ASC, analysis_id ASC
	`

	rows, err := s.pool.Query(ctx, query, start, end)
	if err != nil {
		return nil, fmt.Errorf("get reports by time range: %w", err)
	}
	defer rows.Close()

	return scanReports(rows)
}

func scanReport(row pgx.Row) (*domain.TokenReport, error) {
	var r domain.TokenReport
	var verdict string

	err := row.Scan(
		&r.AnalysisID, &r.Mint, &r.Found, &r.Error,
		&r.RiskScore, &verdict, &r.Risks, &r.Strengths, &r.Recommendation,
		&r.Components, &r.DegradedSignals,
		&r.RequestedAt, &r.GeneratedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Verdict = domain.Verdict(verdict)
	return &r, nil
}

func scanReports(rows pgx.Rows) ([]*domain.TokenReport, error) {
	var reports []*domain.TokenReport

	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		reports = append(reports, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate report rows: %w", err)
	}
	return reports, nil
}
