// store/store.go
package store

import (
	"context"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
)

// EstimateStore holds the last computed estimate per checkout session.
// It never recomputes; callers decide when an estimate is stale.
type EstimateStore interface {
	// Save replaces the session's estimate.
	Save(ctx context.Context, sessionID string, estimate models.ShipmentEstimate) error

	// Load returns the session's estimate. ok is false when there is none.
	Load(ctx context.Context, sessionID string) (estimate models.ShipmentEstimate, ok bool, err error)

	// Clear removes the session's estimate. Clearing nothing is not an error.
	Clear(ctx context.Context, sessionID string) error
}

// ItemIndex finds the sessions whose estimate includes a vault item. It may
// over-report; callers re-check the loaded estimate.
type ItemIndex interface {
	Sessions(ctx context.Context, itemID string) ([]string, error)
}

// ErrNoSession is returned for a blank session id.
var ErrNoSession = shiperrors.ErrMissingSession

// Invalidation reasons.
const (
	ReasonDestinationChanged = "destination_changed"
	ReasonWeightChanged      = "weight_changed"
	ReasonSelectionChanged   = "selection_changed"
	ReasonItemReweighed      = "item_reweighed"
	ReasonOrderSubmitted     = "order_submitted"
	ReasonDiscarded          = "discarded"
)

// Inputs are the values an estimate was computed from. An estimate whose
// inputs no longer match the session's current ones must not be reused.
type Inputs struct {
	Country          string
	TotalWeightGrams int64
	ItemIDs          []string
}

// InputsOf returns the inputs est was computed from.
func InputsOf(est models.ShipmentEstimate) Inputs {
	return Inputs{
		Country:          est.DestinationCountry,
		TotalWeightGrams: est.TotalWeightGrams,
		ItemIDs:          est.SelectedItemIDs,
	}
}

// StaleReason reports why est does not match current, or "" if it does.
func StaleReason(est models.ShipmentEstimate, current Inputs) string {
	switch {
	case est.DestinationCountry != current.Country:
		return ReasonDestinationChanged
	case est.TotalWeightGrams != current.TotalWeightGrams:
		return ReasonWeightChanged
	case !est.SameSelection(current.ItemIDs):
		return ReasonSelectionChanged
	default:
		return ""
	}
}

// Session is an EstimateStore bound to one checkout session.
type Session struct {
	store EstimateStore
	id    string
}

func Bind(s EstimateStore, sessionID string) *Session {
	return &Session{store: s, id: sessionID}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Save(ctx context.Context, est models.ShipmentEstimate) error {
	return s.store.Save(ctx, s.id, est)
}

func (s *Session) Load(ctx context.Context) (models.ShipmentEstimate, bool, error) {
	return s.store.Load(ctx, s.id)
}

func (s *Session) Clear(ctx context.Context) error {
	return s.store.Clear(ctx, s.id)
}

// Check inspects a stored estimate and returns a non-empty reason when it
// must not be reused.
type Check func(est models.ShipmentEstimate) string

// DestinationChanged flags estimates computed for another country.
func DestinationChanged(country string) Check {
	return func(est models.ShipmentEstimate) string {
		if est.DestinationCountry != country {
			return ReasonDestinationChanged
		}
		return ""
	}
}

// SelectionChanged flags estimates computed for another weight or item set.
func SelectionChanged(totalWeightGrams int64, itemIDs []string) Check {
	return func(est models.ShipmentEstimate) string {
		switch {
		case est.TotalWeightGrams != totalWeightGrams:
			return ReasonWeightChanged
		case !est.SameSelection(itemIDs):
			return ReasonSelectionChanged
		default:
			return ""
		}
	}
}

// Matches flags estimates that differ from current in any input.
func Matches(current Inputs) Check {
	return func(est models.ShipmentEstimate) string {
		return StaleReason(est, current)
	}
}

// Reconcile clears the stored estimate when check reports a reason. It
// returns the cleared estimate and the reason, or ok=false when nothing was
// cleared.
func (s *Session) Reconcile(ctx context.Context, check Check) (cleared models.ShipmentEstimate, reason string, ok bool, err error) {
	est, found, err := s.Load(ctx)
	if err != nil || !found {
		return models.ShipmentEstimate{}, "", false, err
	}
	reason = check(est)
	if reason == "" {
		return models.ShipmentEstimate{}, "", false, nil
	}
	if err := s.Clear(ctx); err != nil {
		return models.ShipmentEstimate{}, "", false, err
	}
	return est, reason, true, nil
}
