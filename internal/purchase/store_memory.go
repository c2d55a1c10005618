package purchase

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps purchases in a map keyed by order id.
type InMemoryStore struct {
	mu        sync.RWMutex
	purchases map[string]Purchase
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{purchases: make(map[string]Purchase)}
}

func (s *InMemoryStore) Save(_ context.Context, purchase Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purchases[purchase.OrderID] = purchase
	return nil
}

func (s *InMemoryStore) GetByOrderID(_ context.Context, orderID string) (Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	purchase, ok := s.purchases[orderID]
	if !ok {
		return Purchase{}, ErrNotFound
	}
	return purchase, nil
}

func (s *InMemoryStore) ListBySession(_ context.Context, sessionID string) ([]Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var purchases []Purchase
	for _, purchase := range s.purchases {
		if purchase.SessionID == sessionID {
			purchases = append(purchases, purchase)
		}
	}
	sort.Slice(purchases, func(i, j int) bool {
		return purchases[i].CreatedAt.Before(purchases[j].CreatedAt)
	})
	return purchases, nil
}
