package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
)

func sampleEstimate(country string, grams int64, ids ...string) models.ShipmentEstimate {
	return models.ShipmentEstimate{
		ID:                 uuid.New(),
		VaultID:            "vault-1",
		DestinationCountry: country,
		SelectedItemIDs:    models.NormalizeIDs(ids),
		TotalWeightGrams:   grams,
		Resolution:         models.SlabResolution{TierKey: "2", ChargeableGrams: 2000, Cost: 1400},
		Breakdown: models.CostBreakdown{
			Currency: "USD", ShippingCost: 1400, StorageCost: 100, PlatformFee: 75, TotalCost: 1575,
		},
		ComputedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// runEstimateStoreContract exercises the behaviour every backend must share.
func runEstimateStoreContract(t *testing.T, s EstimateStore) {
	t.Helper()
	ctx := context.Background()
	session := "session-" + uuid.NewString()

	_, ok, err := s.Load(ctx, session)
	require.NoError(t, err)
	assert.False(t, ok, "fresh session has no estimate")

	est := sampleEstimate("US", 1500, "item-1", "item-2")
	require.NoError(t, s.Save(ctx, session, est))

	got, ok, err := s.Load(ctx, session)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, est.ID, got.ID)
	assert.Equal(t, "US", got.DestinationCountry)
	assert.Equal(t, []string{"item-1", "item-2"}, got.SelectedItemIDs)
	assert.Equal(t, int64(1500), got.TotalWeightGrams)
	assert.Equal(t, est.Resolution, got.Resolution)
	assert.Equal(t, est.Breakdown, got.Breakdown)
	assert.True(t, est.ComputedAt.Equal(got.ComputedAt))

	if idx, ok := s.(ItemIndex); ok {
		sessions, err := idx.Sessions(ctx, "item-2")
		require.NoError(t, err)
		assert.Contains(t, sessions, session)
	}

	replacement := sampleEstimate("CA", 800, "item-3")
	require.NoError(t, s.Save(ctx, session, replacement))
	got, ok, err = s.Load(ctx, session)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "CA", got.DestinationCountry)

	require.NoError(t, s.Clear(ctx, session))
	_, ok, err = s.Load(ctx, session)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Clear(ctx, session), "clearing twice is fine")
	assert.ErrorIs(t, s.Save(ctx, "", est), ErrNoSession)
}

func TestStaleReason(t *testing.T) {
	est := sampleEstimate("US", 1500, "a", "b")
	tests := []struct {
		name    string
		current Inputs
		want    string
	}{
		{"unchanged", Inputs{Country: "US", TotalWeightGrams: 1500, ItemIDs: []string{"b", "a"}}, ""},
		{"destination", Inputs{Country: "CA", TotalWeightGrams: 1500, ItemIDs: []string{"a", "b"}}, ReasonDestinationChanged},
		{"destination cleared", Inputs{TotalWeightGrams: 1500, ItemIDs: []string{"a", "b"}}, ReasonDestinationChanged},
		{"weight", Inputs{Country: "US", TotalWeightGrams: 1600, ItemIDs: []string{"a", "b"}}, ReasonWeightChanged},
		{"selection, same weight", Inputs{Country: "US", TotalWeightGrams: 1500, ItemIDs: []string{"a", "c"}}, ReasonSelectionChanged},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StaleReason(est, tt.current))
		})
	}
}

func TestSession_ReconcileClearsOnDestinationChange(t *testing.T) {
	ctx := context.Background()
	sess := Bind(NewMemoryStore(), "s-1")
	est := sampleEstimate("US", 1500, "a", "b")
	require.NoError(t, sess.Save(ctx, est))

	_, _, cleared, err := sess.Reconcile(ctx, Matches(InputsOf(est)))
	require.NoError(t, err)
	assert.False(t, cleared)
	_, _, cleared, err = sess.Reconcile(ctx, DestinationChanged("US"))
	require.NoError(t, err)
	assert.False(t, cleared)
	_, ok, _ := sess.Load(ctx)
	assert.True(t, ok)

	old, reason, cleared, err := sess.Reconcile(ctx, DestinationChanged("CA"))
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Equal(t, ReasonDestinationChanged, reason)
	assert.Equal(t, est.ID, old.ID)

	_, ok, err = sess.Load(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_ReconcileClearsOnWeightChange(t *testing.T) {
	ctx := context.Background()
	sess := Bind(NewMemoryStore(), "s-1")
	require.NoError(t, sess.Save(ctx, sampleEstimate("US", 1500, "a", "b")))

	_, _, cleared, err := sess.Reconcile(ctx, SelectionChanged(1500, []string{"b", "a"}))
	require.NoError(t, err)
	assert.False(t, cleared)

	_, reason, cleared, err := sess.Reconcile(ctx, SelectionChanged(1700, []string{"a", "b"}))
	require.NoError(t, err)
	assert.True(t, cleared)
	assert.Equal(t, ReasonWeightChanged, reason)
}

func TestSession_ReconcileWithoutEstimate(t *testing.T) {
	_, _, cleared, err := Bind(NewMemoryStore(), "s-1").Reconcile(context.Background(), DestinationChanged("US"))
	require.NoError(t, err)
	assert.False(t, cleared)
}
