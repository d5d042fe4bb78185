package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"rugradar/internal/domain"
	"rugradar/internal/storage"
)

// SampleStore implements storage.SampleStore using ClickHouse. One row
// per transaction; sample metadata is denormalized onto every row and
// tx_index preserves intra-sample order across timestamp ties.
type SampleStore struct {
	conn *Conn
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(conn *Conn) *SampleStore {
	return &SampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SampleStore = (*SampleStore)(nil)

// Insert adds a generated sample. Returns ErrDuplicateKey if sample_id exists.
func (s *SampleStore) Insert(ctx context.Context, sample *domain.SyntheticSample) error {
	return s.InsertBulk(ctx, []*domain.SyntheticSample{sample})
}

// InsertBulk adds multiple samples. Fails entire batch on any duplicate.
func (s *SampleStore) InsertBulk(ctx context.Context, samples []*domain.SyntheticSample) error {
	if len(samples) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(samples))
	for _, sample := range samples {
		if sample == nil || sample.SampleID == "" {
			return fmt.Errorf("%w: sample requires id", storage.ErrInvalidInput)
		}
		if _, dup := seen[sample.SampleID]; dup {
			return fmt.Errorf("%w: sample %s", storage.ErrDuplicateKey, sample.SampleID)
		}
		seen[sample.SampleID] = struct{}{}

		exists, err := s.exists(ctx, sample.SampleID)
		if err != nil {
			return fmt.Errorf("check sample exists: %w", err)
		}
		if exists {
			return fmt.Errorf("%w: sample %s", storage.ErrDuplicateKey, sample.SampleID)
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO synthetic_transactions (
			sample_id, pattern, seed, created_at,
			tx_index, timestamp_ms, source, destination, amount,
			is_dev_sell, is_rug_edge, is_sniper_buy, is_wash_trade, is_fake_hype
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sample := range samples {
		for i, tx := range sample.Transactions {
			err = batch.Append(
				sample.SampleID, sample.Pattern, sample.Seed, sample.CreatedAt,
				uint32(i), tx.Timestamp, tx.Source, tx.Destination, tx.Amount,
				boolFlag(tx.IsDevSell), boolFlag(tx.IsRugEdge), boolFlag(tx.IsSniperBuy),
				boolFlag(tx.IsWashTrade), boolFlag(tx.IsFakeHype),
			)
			if err != nil {
				return fmt.Errorf("append to batch: %w", err)
			}
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByID retrieves a sample by its ID, transactions ordered by
// tx_index ASC. Returns ErrNotFound if not exists.
func (s *SampleStore) GetByID(ctx context.Context, sampleID string) (*domain.SyntheticSample, error) {
	rows, err := s.conn.Query(ctx, sampleQuery+` WHERE sample_id = ? ORDER BY sample_id, tx_index`, sampleID)
	if err != nil {
		return nil, fmt.Errorf("query sample by id: %w", err)
	}
	defer rows.Close()

	samples, err := scanSamples(rows)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: sample %s", storage.ErrNotFound, sampleID)
	}
	return samples[0], nil
}

// GetByPattern retrieves all samples generated with a pattern.
func (s *SampleStore) GetByPattern(ctx context.Context, pattern string) ([]*domain.SyntheticSample, error) {
	rows, err := s.conn.Query(ctx, sampleQuery+` WHERE pattern = ? ORDER BY sample_id, tx_index`, pattern)
	if err != nil {
		return nil, fmt.Errorf("query samples by pattern: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// GetAll retrieves every stored sample.
func (s *SampleStore) GetAll(ctx context.Context) ([]*domain.SyntheticSample, error) {
	rows, err := s.conn.Query(ctx, sampleQuery+` ORDER BY sample_id, tx_index`)
	if err != nil {
		return nil, fmt.Errorf("query all samples: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

func (s *SampleStore) exists(ctx context.Context, sampleID string) (bool, error) {
	var count uint64
	row := s.conn.QueryRow(ctx, `SELECT count(*) FROM synthetic_transactions WHERE sample_id = ?`, sampleID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

const sampleQuery = `
	SELECT
		sample_id, pattern, seed, created_at,
		timestamp_ms, source, destination, amount,
		is_dev_sell, is_rug_edge, is_sniper_buy, is_wash_trade, is_fake_hype
	FROM synthetic_transactions
`

// scanSamples regroups transaction rows into samples. Rows must be
// ordered by (sample_id, tx_index).
func scanSamples(rows driver.Rows) ([]*domain.SyntheticSample, error) {
	var samples []*domain.SyntheticSample
	var current *domain.SyntheticSample

	for rows.Next() {
		var sampleID, pattern, source, destination string
		var seed, createdAt, timestampMs int64
		var amount float64
		var devSell, rugEdge, sniper, washTrade, fakeHype uint8

		err := rows.Scan(
			&sampleID, &pattern, &seed, &createdAt,
			&timestampMs, &source, &destination, &amount,
			&devSell, &rugEdge, &sniper, &washTrade, &fakeHype,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}

		if current == nil || current.SampleID != sampleID {
			current = &domain.SyntheticSample{
				SampleID:  sampleID,
				Pattern:   pattern,
				Seed:      seed,
				CreatedAt: createdAt,
			}
			samples = append(samples, current)
		}

		current.Transactions = append(current.Transactions, domain.Transaction{
			Timestamp:   timestampMs,
			Source:      source,
			Destination: destination,
			Amount:      amount,
			IsDevSell:   devSell != 0,
			IsRugEdge:   rugEdge != 0,
			IsSniperBuy: sniper != 0,
			IsWashTrade: washTrade != 0,
			IsFakeHype:  fakeHype != 0,
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}
	return samples, nil
}

func boolFlag(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
