package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"finance/internal/core"
	"finance/internal/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Integration tests require a reachable PostgreSQL database.
// Run with: TEST_DATABASE_URL=postgres://... go test ./internal/storage/postgres

func connectTestRepo(t *testing.T) *Repository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	repo, err := Connect(context.Background(), databaseURL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestPostgresRepositoryContract(t *testing.T) {
	repo := connectTestRepo(t)
	ctx := context.Background()

	storetest.Run(t, func(t *testing.T) storetest.Backend {
		_, err := repo.Pool.Exec(ctx, `TRUNCATE transactions, monthly_plan_items RESTART IDENTITY`)
		require.NoError(t, err)
		return repo
	})
}

func TestPostgresCreatedAtNeverGoesBackwards(t *testing.T) {
	repo := connectTestRepo(t)
	ctx := context.Background()
	_, err := repo.Pool.Exec(ctx, `TRUNCATE transactions RESTART IDENTITY`)
	require.NoError(t, err)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := []time.Time{base, base.Add(-time.Hour)}
	repo.now = func() time.Time {
		now := clock[0]
		clock = clock[1:]
		return now
	}

	first, err := repo.CreateTransaction(ctx, core.TransactionInput{Text: "Salary", Amount: decimal.NewFromInt(2500)})
	require.NoError(t, err)
	second, err := repo.CreateTransaction(ctx, core.TransactionInput{Text: "Rent", Amount: decimal.NewFromInt(-900)})
	require.NoError(t, err)

	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
}
