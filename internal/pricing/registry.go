package pricing

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
)

// Session pairs a cart with the engine pricing it.
type Session struct {
	ID     string
	Cart   *cartapp.Service
	Engine *Engine
}

type SessionFactory func(sessionID string) *Session

// Registry hands out one Session per session ID. It is bounded: the least recently
// used session is evicted, losing its applied discounts but not its cart, which lives
// in the cart store.
type Registry struct {
	mu    sync.Mutex
	cache *lru.Cache
	build SessionFactory
}

func NewRegistry(capacity int, build SessionFactory) (*Registry, error) {
	cache, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("session registry: %w", err)
	}
	return &Registry{cache: cache, build: build}, nil
}

func (r *Registry) Get(sessionID string) *Session {
	if v, ok := r.cache.Get(sessionID); ok {
		return v.(*Session)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.cache.Get(sessionID); ok {
		return v.(*Session)
	}
	s := r.build(sessionID)
	r.cache.Add(sessionID, s)
	return s
}

func (r *Registry) Len() int { return r.cache.Len() }
