// Package memory implements in-memory adapters for development and
// testing.
package memory

import (
	"context"
	"sync"

	"weightlog/internal/domain"
)

// Store implements the store port over an in-process map.
type Store struct {
	mu     sync.Mutex
	values map[string]string
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{values: make(map[string]string)}
}

var _ domain.Store = (*Store)(nil)

// Get returns the stored value for key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]
	return v, ok, nil
}

// Set writes the value for key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
	return nil
}

// Gateway is an in-process purchase gateway. Purchases settle
// immediately unless a scripted error is configured, which makes it
// usable both for dev wiring and for exercising the billing flows in
// tests.
type Gateway struct {
	mu          sync.Mutex
	initialized bool
	active      map[string]bool

	// InitErr, PurchaseErr and ActiveErr, when set, are returned by the
	// corresponding call instead of succeeding.
	InitErr     error
	PurchaseErr error
	ActiveErr   error
}

// NewGateway creates a Gateway with no active purchases.
func NewGateway() *Gateway {
	return &Gateway{active: make(map[string]bool)}
}

var _ domain.PurchaseGateway = (*Gateway)(nil)

// Init establishes the fake SDK connection.
func (g *Gateway) Init(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.InitErr != nil {
		return g.InitErr
	}
	g.initialized = true
	return nil
}

// ActiveProductIDs lists products with an active purchase.
func (g *Gateway) ActiveProductIDs(ctx context.Context) ([]string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.ActiveErr != nil {
		return nil, g.ActiveErr
	}
	if !g.initialized {
		return nil, &domain.PurchaseError{Code: domain.PurchaseCodeNotInitialized, Message: "connection not initialized"}
	}
	ids := make([]string, 0, len(g.active))
	for id := range g.active {
		ids = append(ids, id)
	}
	return ids, nil
}

// Purchase marks the product as purchased.
func (g *Gateway) Purchase(ctx context.Context, productID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.PurchaseErr != nil {
		return g.PurchaseErr
	}
	if !g.initialized {
		return &domain.PurchaseError{Code: domain.PurchaseCodeNotInitialized, Message: "connection not initialized"}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	g.active[productID] = true
	return nil
}

// Grant marks a product as already purchased, as if restored.
func (g *Gateway) Grant(productID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.active[productID] = true
}
