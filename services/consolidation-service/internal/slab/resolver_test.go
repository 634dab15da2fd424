package slab

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

func table(prices map[string]int64) models.RateTable {
	t := models.RateTable{Country: "US", Currency: "USD", Unit: models.Kilograms, Prices: map[string]decimal.Decimal{}}
	for k, v := range prices {
		t.Prices[k] = decimal.NewFromInt(v)
	}
	return t
}

var standard = table(map[string]int64{"0.5": 500, "1": 800, "2": 1400})

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		grams      int64
		wantKey    string
		wantCost   int64
		wantCapped bool
	}{
		{name: "zero weight takes the smallest tier", grams: 0, wantKey: "0.5", wantCost: 500},
		{name: "exact boundary 0.5kg", grams: 500, wantKey: "0.5", wantCost: 500},
		{name: "one gram over boundary moves up", grams: 501, wantKey: "1", wantCost: 800},
		{name: "exact boundary 1kg", grams: 1000, wantKey: "1", wantCost: 800},
		{name: "between tiers 1.5kg", grams: 1500, wantKey: "2", wantCost: 1400},
		{name: "exact top boundary", grams: 2000, wantKey: "2", wantCost: 1400},
		{name: "over the top tier is capped", grams: 5000, wantKey: "2", wantCost: 1400, wantCapped: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.grams, standard)
			require.NoError(t, err)
			assert.Equal(t, tt.wantKey, got.TierKey)
			assert.Equal(t, tt.wantCost, got.Cost)
			assert.Equal(t, tt.wantCapped, got.IsCapped)
		})
	}
}

func TestResolve_BoundaryNeverRoundsUp(t *testing.T) {
	tiers := Tiers(standard)
	for _, tier := range tiers {
		got, err := Resolve(tier.Grams, standard)
		require.NoError(t, err)
		assert.Equal(t, tier.Key, got.TierKey, "weight %dg", tier.Grams)
		assert.Equal(t, tier.Grams, got.ChargeableGrams)
		assert.False(t, got.IsCapped)
	}
}

func TestResolve_AboveMaximumAlwaysCapped(t *testing.T) {
	for _, grams := range []int64{2001, 2500, 10_000, 1 << 40} {
		got, err := Resolve(grams, standard)
		require.NoError(t, err)
		assert.Equal(t, "2", got.TierKey)
		assert.True(t, got.IsCapped, "weight %dg", grams)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	for _, grams := range []int64{0, 250, 999, 1000, 1999, 7000} {
		first, err := Resolve(grams, standard)
		require.NoError(t, err)
		second, err := Resolve(grams, standard)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestResolve_DuplicateTierValues(t *testing.T) {
	dup := table(map[string]int64{"1": 800, "1.0": 900, "1.000": 950, "3": 2000})

	for i := 0; i < 20; i++ {
		got, err := Resolve(700, dup)
		require.NoError(t, err)
		assert.Equal(t, "1", got.TierKey)
		assert.Equal(t, int64(800), got.Cost)
	}

	dupTop := table(map[string]int64{"2": 1400, "2.0": 1500})
	got, err := Resolve(9000, dupTop)
	require.NoError(t, err)
	assert.Equal(t, "2", got.TierKey)
	assert.True(t, got.IsCapped)
}

func TestResolve_DiscardsGarbageKeys(t *testing.T) {
	mixed := table(map[string]int64{"abc": 1, "": 2, "-1": 3, " 2 ": 1400, "0.5": 500})

	got, err := Resolve(1200, mixed)
	require.NoError(t, err)
	assert.Equal(t, " 2 ", got.TierKey)
	assert.Equal(t, int64(2000), got.ChargeableGrams)
}

func TestResolve_FailsWithoutTiers(t *testing.T) {
	for name, tbl := range map[string]models.RateTable{
		"nil prices":   {Unit: models.Kilograms},
		"empty prices": table(map[string]int64{}),
		"garbage only": table(map[string]int64{"heavy": 10, "x1": 20}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Resolve(500, tbl)
			require.Error(t, err)
			assert.True(t, errors.Is(err, shiperrors.ErrConfiguration))
		})
	}
}

func TestResolve_RejectsNegativeWeight(t *testing.T) {
	_, err := Resolve(-1, standard)
	assert.ErrorIs(t, err, shiperrors.ErrInvalidSelection)
}

func TestResolve_GramTables(t *testing.T) {
	grams := table(map[string]int64{"500": 500, "1000": 800})
	grams.Unit = models.Grams

	got, err := Resolve(501, grams)
	require.NoError(t, err)
	assert.Equal(t, "1000", got.TierKey)
	assert.Equal(t, int64(1000), got.ChargeableGrams)
}

func TestResolveKilograms_RoundsToWholeGrams(t *testing.T) {
	// 0.1 + 0.2 style drift must not push a boundary weight into the next tier.
	got, err := ResolveKilograms(0.1+0.2+0.2, standard)
	require.NoError(t, err)
	assert.Equal(t, "0.5", got.TierKey)

	got, err = ResolveKilograms(1.0004, standard)
	require.NoError(t, err)
	assert.Equal(t, "1", got.TierKey)
}

func TestResolve_FractionalPricesRoundToWholeUnits(t *testing.T) {
	tbl := models.RateTable{Unit: models.Kilograms, Prices: map[string]decimal.Decimal{
		"1": decimal.RequireFromString("799.5"),
	}}
	got, err := Resolve(900, tbl)
	require.NoError(t, err)
	assert.Equal(t, int64(800), got.Cost)
}
