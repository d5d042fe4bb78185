package postgres_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"rugradar/internal/domain"
	"rugradar/internal/storage"
	"rugradar/internal/storage/postgres"
)

func testReport(id, mint string, requestedAt int64) *domain.TokenReport {
	return &domain.TokenReport{
		AnalysisID: id,
		Mint:       mint,
		Found:      true,
		RiskScore:  68,
		Verdict:    domain.VerdictAvoid,
		Risks: []domain.RiskFinding{
			{Type: "instant_dump", Severity: domain.SeverityCritical, Confidence: 100,
				Description: "RUG PULLED: price collapsed -95% in 5 minutes"},
		},
		Strengths:       []string{"No high-risk funding traces"},
		Recommendation:  "High rug-pull risk. Do not buy; exit any position.",
		Components:      map[string]float64{"concentration": 18, "market": 30},
		DegradedSignals: map[string]string{"wallets": "timeout"},
		RequestedAt:     requestedAt,
		GeneratedAt:     requestedAt + 1200,
	}
}

func TestTokenReportStore_RoundTrip(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewTokenReportStore(pool)

	want := testReport("a1", "MintX", 1000)
	require.NoError(t, store.Insert(ctx, want))

	got, err := store.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, want.Mint, got.Mint)
	require.Equal(t, want.RiskScore, got.RiskScore)
	require.Equal(t, want.Verdict, got.Verdict)
	require.Equal(t, want.Risks, got.Risks)
	require.Equal(t, want.Strengths, got.Strengths)
	require.Equal(t, want.Components, got.Components)
	require.Equal(t, want.DegradedSignals, got.DegradedSignals)
	require.Equal(t, want.RequestedAt, got.RequestedAt)
}

func TestTokenReportStore_NotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := postgres.NewTokenReportStore(pool)
	_, err := store.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTokenReportStore_Duplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewTokenReportStore(pool)

	require.NoError(t, store.Insert(ctx, testReport("a1", "MintX", 1000)))
	err := store.Insert(ctx, testReport("a1", "MintY", 2000))
	require.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestTokenReportStore_GetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewTokenReportStore(pool)

	require.NoError(t, store.Insert(ctx, testReport("a2", "MintX", 2000)))
	require.NoError(t, store.Insert(ctx, testReport("a1", "MintX", 1000)))
	require.NoError(t, store.Insert(ctx, testReport("b1", "Other", 1500)))

	got, err := store.GetByMint(ctx, "MintX")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "a1", got[0].AnalysisID)
	require.Equal(t, "a2", got[1].AnalysisID)
}

func TestTokenReportStore_GetByTimeRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := postgres.NewTokenReportStore(pool)

	require.NoError(t, store.Insert(ctx, testReport("a1", "M", 1000)))
	require.NoError(t, store.Insert(ctx, testReport("a2", "M", 2000)))
	require.NoError(t, store.Insert(ctx, testReport("a3", "M", 3000)))

	got, err := store.GetByTimeRange(ctx, 1000, 2000)
	require.NoError(t, err)
	require.Len(t, got, 2, "range bounds are inclusive")
}
