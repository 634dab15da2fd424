package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	s, err := NewRedisStore(addr, "", 0, time.Minute)
	require.NoError(t, err)
	defer s.Close()

	runEstimateStoreContract(t, s)
}

func openPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := NewPostgresStore(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(context.Background()))
	return s
}

func TestPostgresStore(t *testing.T) {
	runEstimateStoreContract(t, openPostgres(t))
}

func TestPostgresStore_RateCard(t *testing.T) {
	s := openPostgres(t)
	ctx := context.Background()

	for key, price := range map[string]int64{"0.5": 500, "1": 800, "2": 1400} {
		require.NoError(t, s.PutTier(ctx, "QA", "USD", models.Kilograms, key, decimal.NewFromInt(price)))
	}

	table, err := s.Fetch(ctx, "QA")
	require.NoError(t, err)
	assert.Equal(t, "USD", table.Currency)
	assert.Equal(t, models.Kilograms, table.Unit)
	require.Len(t, table.Prices, 3)
	assert.True(t, table.Prices["2"].Equal(decimal.NewFromInt(1400)))

	_, err = s.Fetch(ctx, "XQ")
	assert.ErrorIs(t, err, shiperrors.ErrConfiguration)
}
