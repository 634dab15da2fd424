package store

import (
	"context"
	"slices"
	"sync"

	"github.com/Tanmoy095/VaultShip/services/consolidation-service/internal/models"
)

// MemoryStore keeps estimates in process memory. Used for tests and single
// instance deployments.
type MemoryStore struct {
	estimates map[string]models.ShipmentEstimate
	mu        sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		estimates: make(map[string]models.ShipmentEstimate),
	}
}

func (s *MemoryStore) Save(ctx context.Context, sessionID string, estimate models.ShipmentEstimate) error {
	// Check if the context is canceled or timed out
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	if sessionID == "" {
		return ErrNoSession
	}
	estimate.SelectedItemIDs = slices.Clone(estimate.SelectedItemIDs)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.estimates[sessionID] = estimate
	return nil
}

func (s *MemoryStore) Load(ctx context.Context, sessionID string) (models.ShipmentEstimate, bool, error) {
	select {
	case <-ctx.Done():
		return models.ShipmentEstimate{}, false, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	est, ok := s.estimates[sessionID]
	if !ok {
		return models.ShipmentEstimate{}, false, nil
	}
	est.SelectedItemIDs = slices.Clone(est.SelectedItemIDs)
	return est, true, nil
}

func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.estimates, sessionID)
	return nil
}

// Sessions returns the ids of sessions holding an estimate that contains
// the vault item.
func (s *MemoryStore) Sessions(ctx context.Context, itemID string) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for sessionID, est := range s.estimates {
		if est.Contains(itemID) {
			ids = append(ids, sessionID)
		}
	}
	slices.Sort(ids)
	return ids, nil
}
