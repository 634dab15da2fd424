package ratecard

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

// MockSource counts fetches and can be told to fail or to block.
type MockSource struct {
	calls   atomic.Int32
	err     error
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (m *MockSource) Fetch(ctx context.Context, country string) (models.RateTable, error) {
	m.calls.Add(1)
	if m.started != nil {
		m.once.Do(func() { close(m.started) })
	}
	if m.release != nil {
		<-m.release
	}
	if m.err != nil {
		return models.RateTable{}, m.err
	}
	return models.RateTable{
		Currency: "USD",
		Unit:     models.Kilograms,
		Prices:   map[string]decimal.Decimal{"1": decimal.NewFromInt(800)},
	}, nil
}

func TestCache_HitDoesNotRefetch(t *testing.T) {
	src := &MockSource{}
	cache := NewCache(src, nil)

	first, err := cache.Get(context.Background(), "us")
	require.NoError(t, err)
	second, err := cache.Get(context.Background(), " US ")
	require.NoError(t, err)

	assert.Equal(t, int32(1), src.calls.Load())
	assert.Equal(t, "US", first.Country)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.Len())
}

func TestCache_DistinctCountriesFetchSeparately(t *testing.T) {
	src := &MockSource{}
	cache := NewCache(src, nil)

	for _, c := range []string{"US", "CA", "us", "ca", "GB"} {
		_, err := cache.Get(context.Background(), c)
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), src.calls.Load())
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	src := &MockSource{err: shiperrors.Network("fetch rate table", errors.New("connection reset"))}
	cache := NewCache(src, nil)

	_, err := cache.Get(context.Background(), "US")
	require.Error(t, err)
	assert.ErrorIs(t, err, shiperrors.ErrNetwork)
	assert.Equal(t, 0, cache.Len())

	src.err = nil
	table, err := cache.Get(context.Background(), "US")
	require.NoError(t, err)
	assert.Equal(t, "US", table.Country)
	assert.Equal(t, int32(2), src.calls.Load())
}

func TestCache_EmptyCountry(t *testing.T) {
	src := &MockSource{}
	_, err := NewCache(src, nil).Get(context.Background(), "   ")
	assert.ErrorIs(t, err, shiperrors.ErrConfiguration)
	assert.Equal(t, int32(0), src.calls.Load())
}

func TestCache_ConcurrentMissesShareOneFetch(t *testing.T) {
	src := &MockSource{started: make(chan struct{}), release: make(chan struct{})}
	cache := NewCache(src, nil)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cache.Get(context.Background(), "us")
			errs <- err
		}()
	}

	<-src.started
	time.Sleep(20 * time.Millisecond)
	close(src.release)
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), src.calls.Load())
}

func TestKey(t *testing.T) {
	assert.Equal(t, "US", Key(" us "))
	assert.Equal(t, "CANADA", Key("Canada"))
	assert.Equal(t, "", Key("  "))
}

// sequenceSource returns its tables in order, repeating the last one.
type sequenceSource struct {
	tables []models.RateTable
	calls  int
}

func (s *sequenceSource) Fetch(ctx context.Context, country string) (models.RateTable, error) {
	i := min(s.calls, len(s.tables)-1)
	s.calls++
	return s.tables[i], nil
}

func TestCache_TableWithoutTiersIsNotCached(t *testing.T) {
	src := &sequenceSource{tables: []models.RateTable{
		{Unit: models.Kilograms, Prices: map[string]decimal.Decimal{}},
		{Unit: models.Kilograms, Prices: map[string]decimal.Decimal{"heavy": decimal.NewFromInt(100)}},
		{Unit: models.Kilograms, Prices: map[string]decimal.Decimal{"1": decimal.NewFromInt(800)}},
	}}
	cache := NewCache(src, nil)

	for i := 0; i < 2; i++ {
		_, err := cache.Get(context.Background(), "US")
		require.ErrorIs(t, err, shiperrors.ErrNoTiers)
		assert.ErrorIs(t, err, shiperrors.ErrConfiguration)
		assert.Equal(t, 0, cache.Len())
	}

	table, err := cache.Get(context.Background(), "US")
	require.NoError(t, err)
	assert.Equal(t, "US", table.Country)
	assert.Equal(t, 3, src.calls)
	assert.Equal(t, 1, cache.Len())
}
