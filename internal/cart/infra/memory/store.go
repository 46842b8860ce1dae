package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// Store keeps one cart's line items in process memory, in insertion order.
type Store struct {
	mu    sync.Mutex
	order []string
	items map[string]domain.LineItem
}

func NewStore() *Store {
	return &Store{items: make(map[string]domain.LineItem)}
}

func (s *Store) Items(ctx context.Context) ([]domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.LineItem, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out, nil
}

func (s *Store) Add(ctx context.Context, item domain.LineItem) (domain.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[item.ProductID]; ok {
		existing.Quantity += item.Quantity
		s.items[item.ProductID] = existing
		return existing, nil
	}
	s.items[item.ProductID] = item
	s.order = append(s.order, item.ProductID)
	return item, nil
}

func (s *Store) Remove(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[productID]; !ok {
		return domain.ErrItemNotFound
	}
	delete(s.items, productID)
	for i, id := range s.order {
		if id == productID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) SetQuantity(ctx context.Context, productID string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[productID]
	if !ok {
		return domain.ErrItemNotFound
	}
	item.Quantity = quantity
	s.items[productID] = item
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = make(map[string]domain.LineItem)
	s.order = nil
	return nil
}
