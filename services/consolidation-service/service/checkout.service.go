// service/checkout.service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Tanmoy095/VaultShip/pkg/logger"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/consistency"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/country"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/estimator"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/orderrequest"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/ratecard"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/selection"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/shiperrors"
	"github.com/Tanmoy095/VaultShip/services/consolidation-service/store"
	"github.com/Tanmoy095/VaultShip/shared/contracts"
)

// OrderSubmitter hands a finished order to the order service.
type OrderSubmitter interface {
	Submit(ctx context.Context, req contracts.ShipmentOrderRequest) (messageID string, err error)
}

// EventSink receives checkout events. Implementations must not block long
// and must not fail the caller.
type EventSink interface {
	EstimateCalculated(ctx context.Context, sessionID string, est models.ShipmentEstimate)
	EstimateInvalidated(ctx context.Context, sessionID string, est models.ShipmentEstimate, reason string)
	OrderSubmitted(ctx context.Context, sessionID, messageID string, order contracts.ShipmentOrderRequest)
}

// Dependencies wires the checkout service. Rates, Store and Estimator are
// required; the rest fall back to no-ops or defaults.
type Dependencies struct {
	Rates      ratecard.Source
	Store      store.EstimateStore
	Estimator  *estimator.CostEstimator
	Normalizer country.Normalizer
	Orders     OrderSubmitter
	Events     EventSink
	Log        *logger.Logger

	SessionTTL  time.Duration
	MaxSessions int
}

// CheckoutService orchestrates one user's consolidation checkout: choose a
// destination and items, calculate, check the address, submit. Everything
// with I/O lives here; the pricing packages stay pure.
type CheckoutService struct {
	rates      ratecard.Source
	store      store.EstimateStore
	estimator  *estimator.CostEstimator
	normalizer country.Normalizer
	validator  *consistency.Validator
	orders     OrderSubmitter
	events     EventSink
	log        *logger.Logger
	clock      func() time.Time

	sessionsMu sync.Mutex
	sessions   *expirable.LRU[string, *sessionState]
}

// sessionState is the in-process view of one checkout session.
type sessionState struct {
	mu sync.Mutex

	vaultID string
	country string // normalized; "" until chosen
	items   []models.VaultItem

	// generation increases whenever an input of the calculation changes.
	generation uint64
	inFlight   bool

	rates *ratecard.Cache
}

func (st *sessionState) totals() selection.Totals {
	return selection.Aggregate(st.items)
}

func NewCheckoutService(deps Dependencies) *CheckoutService {
	normalizer := deps.Normalizer
	if normalizer == nil {
		normalizer = country.Default()
	}
	est := deps.Estimator
	if est == nil {
		est = estimator.New(estimator.DefaultPlatformFeeRate)
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	size := deps.MaxSessions
	if size <= 0 {
		size = 10_000
	}
	return &CheckoutService{
		rates:      deps.Rates,
		store:      deps.Store,
		estimator:  est,
		normalizer: normalizer,
		validator:  consistency.NewValidator(normalizer),
		orders:     deps.Orders,
		events:     deps.Events,
		log:        logger.OrNop(deps.Log).With("component", "checkout"),
		clock:      time.Now,
		sessions:   expirable.NewLRU[string, *sessionState](size, nil, ttl),
	}
}

// session returns the state for id, creating it on first use. Every access
// refreshes the session's expiry.
func (s *CheckoutService) session(id string) (*sessionState, error) {
	if id == "" {
		return nil, shiperrors.ErrMissingSession
	}
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	st, ok := s.sessions.Get(id)
	if !ok {
		st = &sessionState{rates: ratecard.NewCache(s.rates, s.log)}
	}
	s.sessions.Add(id, st)
	return st, nil
}

func (s *CheckoutService) peekSession(id string) (*sessionState, bool) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	return s.sessions.Peek(id)
}

// SetDestination records the destination country. A change clears any
// estimate computed for the previous one.
func (s *CheckoutService) SetDestination(ctx context.Context, sessionID, destination string) (string, error) {
	st, err := s.session(sessionID)
	if err != nil {
		return "", err
	}
	code := s.normalizer.Normalize(destination)
	if code == "" {
		// Not a known country: keep the typed text as the rate card key.
		code = ratecard.Key(destination)
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if code != st.country {
		st.country = code
		st.generation++
	}
	if err := s.reconcile(ctx, sessionID, store.DestinationChanged(code)); err != nil {
		return "", err
	}
	return code, nil
}

// UpdateSelection replaces the session's vault items. A change of total
// weight or of the selected set clears the stored estimate.
func (s *CheckoutService) UpdateSelection(ctx context.Context, sessionID, vaultID string, items []models.VaultItem) (selection.Totals, error) {
	st, err := s.session(sessionID)
	if err != nil {
		return selection.Totals{}, err
	}
	totals := selection.Aggregate(items)

	st.mu.Lock()
	defer st.mu.Unlock()
	before := st.totals()
	if before.TotalWeightGrams != totals.TotalWeightGrams || !slices.Equal(before.ItemIDs, totals.ItemIDs) || st.vaultID != vaultID {
		st.generation++
	}
	st.vaultID = vaultID
	st.items = slices.Clone(items)
	if err := s.reconcile(ctx, sessionID, store.SelectionChanged(totals.TotalWeightGrams, totals.ItemIDs)); err != nil {
		return selection.Totals{}, err
	}
	return totals, nil
}

// CalculateRequest carries optional new inputs; zero fields keep the
// session's current destination and selection.
type CalculateRequest struct {
	VaultID     string
	Country     string
	Items       []models.VaultItem
	StorageCost int64
}

// Calculation is a saved estimate plus what the caller should show with it.
type Calculation struct {
	Estimate  models.ShipmentEstimate
	Selection selection.Totals
	// Warning is set when the weight exceeded every tier.
	Warning string
}

// Calculate prices the session's selection for its destination and saves
// the estimate. A second call while one is running is refused, and a result
// whose inputs changed while the rate table was loading is dropped.
func (s *CheckoutService) Calculate(ctx context.Context, sessionID string, req CalculateRequest) (Calculation, error) {
	if req.Country != "" {
		if _, err := s.SetDestination(ctx, sessionID, req.Country); err != nil {
			return Calculation{}, err
		}
	}
	if req.Items != nil {
		if _, err := s.UpdateSelection(ctx, sessionID, req.VaultID, req.Items); err != nil {
			return Calculation{}, err
		}
	}
	if req.StorageCost < 0 {
		return Calculation{}, shiperrors.ErrNegativeStorageCost
	}

	st, err := s.session(sessionID)
	if err != nil {
		return Calculation{}, err
	}

	st.mu.Lock()
	if st.inFlight {
		st.mu.Unlock()
		return Calculation{}, shiperrors.ErrCalculationInProgress
	}
	if st.country == "" {
		st.mu.Unlock()
		return Calculation{}, shiperrors.ErrEmptyCountry
	}
	gen, dest, vaultID, totals := st.generation, st.country, st.vaultID, st.totals()
	if totals.TotalCount == 0 {
		st.mu.Unlock()
		return Calculation{}, shiperrors.ErrEmptySelection
	}
	if totals.TotalWeightGrams == 0 {
		st.mu.Unlock()
		return Calculation{}, shiperrors.ErrZeroWeight
	}
	st.inFlight = true
	st.mu.Unlock()

	defer func() {
		st.mu.Lock()
		st.inFlight = false
		st.mu.Unlock()
	}()

	log := s.log.With("session_id", sessionID, "destination", dest)

	table, err := st.rates.Get(ctx, dest)
	if err != nil {
		log.Warn("rate table unavailable", "error", err)
		return Calculation{}, err
	}
	quote, err := s.estimator.EstimateTotals(totals, table, req.StorageCost)
	if err != nil {
		log.Warn("estimate failed", "error", err)
		return Calculation{}, err
	}

	est := models.ShipmentEstimate{
		ID:                 uuid.New(),
		VaultID:            vaultID,
		DestinationCountry: dest,
		SelectedItemIDs:    totals.ItemIDs,
		TotalWeightGrams:   totals.TotalWeightGrams,
		Resolution:         quote.Resolution,
		Breakdown:          quote.Breakdown,
		ComputedAt:         s.clock().UTC(),
	}

	st.mu.Lock()
	if st.generation != gen {
		st.mu.Unlock()
		log.Warn("discarding stale calculation", "started_generation", gen)
		return Calculation{}, shiperrors.ErrStaleCalculation
	}
	err = store.Bind(s.store, sessionID).Save(ctx, est)
	st.mu.Unlock()
	if err != nil {
		return Calculation{}, fmt.Errorf("save estimate: %w", err)
	}

	calc := Calculation{Estimate: est, Selection: totals}
	if est.Resolution.IsCapped {
		calc.Warning = fmt.Sprintf(
			"Total weight %.3f kg exceeds the largest rate tier; shipping is billed at the %s tier price.",
			models.GramsToKilograms(est.TotalWeightGrams), est.Resolution.TierKey)
		log.Warn("weight above largest tier", "grams", est.TotalWeightGrams, "tier", est.Resolution.TierKey)
	}
	log.Info("estimate saved",
		"estimate_id", est.ID,
		"grams", est.TotalWeightGrams,
		"tier", est.Resolution.TierKey,
		"total_cost", est.Breakdown.TotalCost,
	)
	s.emitCalculated(ctx, sessionID, est)
	return calc, nil
}

// CurrentEstimate returns the saved estimate if it still matches the
// session's destination and selection. A mismatching one is cleared.
func (s *CheckoutService) CurrentEstimate(ctx context.Context, sessionID string) (models.ShipmentEstimate, error) {
	if sessionID == "" {
		return models.ShipmentEstimate{}, shiperrors.ErrMissingSession
	}
	st, ok := s.peekSession(sessionID)
	if !ok {
		return s.loadCurrent(ctx, sessionID, nil)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return s.loadCurrent(ctx, sessionID, st)
}

// loadCurrent expects st.mu to be held. Only inputs this process has seen
// are checked: after a restart the stored estimate is trusted until the
// client sends its destination or selection again.
func (s *CheckoutService) loadCurrent(ctx context.Context, sessionID string, st *sessionState) (models.ShipmentEstimate, error) {
	if st != nil && st.country != "" {
		if err := s.reconcile(ctx, sessionID, store.DestinationChanged(st.country)); err != nil {
			return models.ShipmentEstimate{}, err
		}
	}
	if st != nil && len(st.items) > 0 {
		t := st.totals()
		if err := s.reconcile(ctx, sessionID, store.SelectionChanged(t.TotalWeightGrams, t.ItemIDs)); err != nil {
			return models.ShipmentEstimate{}, err
		}
	}

	est, ok, err := store.Bind(s.store, sessionID).Load(ctx)
	if err != nil {
		return models.ShipmentEstimate{}, fmt.Errorf("load estimate: %w", err)
	}
	if !ok {
		return models.ShipmentEstimate{}, shiperrors.ErrNoEstimate
	}
	return est, nil
}

// DiscardEstimate clears the session's estimate on request.
func (s *CheckoutService) DiscardEstimate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return shiperrors.ErrMissingSession
	}
	return s.clearWithReason(ctx, sessionID, store.ReasonDiscarded)
}

// ValidateAddress checks the chosen address against the saved estimate.
func (s *CheckoutService) ValidateAddress(ctx context.Context, sessionID string, address models.DeliveryAddress) (consistency.Result, error) {
	est, err := s.CurrentEstimate(ctx, sessionID)
	if err != nil {
		return consistency.Result{}, err
	}
	return s.validator.Validate(est, address), nil
}

// SubmitRequest is the final checkout step. VaultItemIDs is the selection
// as the client sees it; nil means the session's current selection.
type SubmitRequest struct {
	VaultItemIDs []string
	Address      models.DeliveryAddress
}

type SubmitResult struct {
	MessageID string
	Order     contracts.ShipmentOrderRequest
}

// SubmitOrder builds the order from the saved estimate and sends it. The
// estimate is cleared only after the order service accepted the message.
func (s *CheckoutService) SubmitOrder(ctx context.Context, sessionID string, req SubmitRequest) (SubmitResult, error) {
	if req.Address.ID == "" {
		return SubmitResult{}, shiperrors.ErrMissingAddress
	}
	if s.orders == nil {
		return SubmitResult{}, errors.New("order submission is not configured")
	}
	st, err := s.session(sessionID)
	if err != nil {
		return SubmitResult{}, err
	}
	// Held across submission so a double click cannot send two orders.
	st.mu.Lock()
	defer st.mu.Unlock()

	est, err := s.loadCurrent(ctx, sessionID, st)
	if err != nil {
		return SubmitResult{}, err
	}

	log := s.log.With("session_id", sessionID, "estimate_id", est.ID)

	if result := s.validator.Validate(est, req.Address); !result.OK {
		log.Info("order blocked by address mismatch",
			"estimate_country", result.EstimateCountry, "address_country", result.AddressCountry)
		return SubmitResult{}, result.Err()
	}

	ids := req.VaultItemIDs
	if ids == nil {
		ids = st.totals().ItemIDs
	}
	order, err := orderrequest.Build(est, ids, "")
	if err != nil {
		if errors.Is(err, shiperrors.ErrStaleness) {
			log.Error("estimate does not match selection at submit", "estimate_items", est.SelectedItemIDs, "submitted_items", ids)
			if clearErr := s.clearWithReason(ctx, sessionID, store.ReasonSelectionChanged); clearErr != nil {
				log.Error("failed to clear stale estimate", "error", clearErr)
			}
		}
		return SubmitResult{}, err
	}
	order, err = orderrequest.WithAddress(order, req.Address.ID)
	if err != nil {
		return SubmitResult{}, err
	}

	messageID, err := s.orders.Submit(ctx, order)
	if err != nil {
		return SubmitResult{}, err
	}

	if err := s.clearWithReason(ctx, sessionID, store.ReasonOrderSubmitted); err != nil {
		// The order is already on its way; a leftover estimate is harmless
		// and expires with the store TTL.
		log.Error("failed to clear estimate after submission", "error", err)
	}
	if s.events != nil {
		s.events.OrderSubmitted(ctx, sessionID, messageID, order)
	}
	return SubmitResult{MessageID: messageID, Order: order}, nil
}

// InvalidateItem applies a warehouse re-weigh: sessions holding the item get
// its new weight, and every estimate containing it is cleared. Only sessions
// that hold the item, in memory or in the store index, are loaded.
func (s *CheckoutService) InvalidateItem(ctx context.Context, itemID string, weightGrams int64) (int, error) {
	var candidates []string
	if idx, ok := s.store.(store.ItemIndex); ok {
		ids, err := idx.Sessions(ctx, itemID)
		if err != nil {
			return 0, err
		}
		candidates = ids
	}
	s.sessionsMu.Lock()
	keys := s.sessions.Keys()
	s.sessionsMu.Unlock()
	for _, sessionID := range keys {
		if st, ok := s.peekSession(sessionID); ok && st.reweigh(itemID, weightGrams) {
			candidates = append(candidates, sessionID)
		}
	}
	slices.Sort(candidates)
	candidates = slices.Compact(candidates)

	cleared := 0
	for _, sessionID := range candidates {
		est, ok, err := store.Bind(s.store, sessionID).Load(ctx)
		if err != nil {
			return cleared, err
		}
		if !ok || !est.Contains(itemID) {
			continue
		}
		if err := s.clearWithReason(ctx, sessionID, store.ReasonItemReweighed); err != nil {
			return cleared, err
		}
		cleared++
	}
	return cleared, nil
}

// reweigh records the item's new weight and reports whether the session holds
// the item. The generation moves only when a selected item's weight changed.
func (st *sessionState) reweigh(itemID string, weightGrams int64) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	held := false
	for i := range st.items {
		item := &st.items[i]
		if item.ID != itemID {
			continue
		}
		held = true
		if item.Weighed() && item.Grams() == weightGrams {
			continue
		}
		w := weightGrams
		item.WeightGrams = &w
		if item.Selected {
			st.generation++
		}
	}
	return held
}

// reconcile clears the stored estimate when check flags it.
func (s *CheckoutService) reconcile(ctx context.Context, sessionID string, check store.Check) error {
	old, reason, cleared, err := store.Bind(s.store, sessionID).Reconcile(ctx, check)
	if err != nil {
		return fmt.Errorf("reconcile estimate: %w", err)
	}
	if cleared {
		s.log.Info("estimate invalidated", "session_id", sessionID, "estimate_id", old.ID, "reason", reason)
		if s.events != nil {
			s.events.EstimateInvalidated(ctx, sessionID, old, reason)
		}
	}
	return nil
}

func (s *CheckoutService) clearWithReason(ctx context.Context, sessionID, reason string) error {
	return s.reconcile(ctx, sessionID, func(models.ShipmentEstimate) string { return reason })
}

func (s *CheckoutService) emitCalculated(ctx context.Context, sessionID string, est models.ShipmentEstimate) {
	if s.events != nil {
		s.events.EstimateCalculated(ctx, sessionID, est)
	}
}
