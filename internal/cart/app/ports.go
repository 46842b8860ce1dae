package app

import (
	"context"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// CartStore holds the line items of one cart.
type CartStore interface {
	Items(ctx context.Context) ([]domain.LineItem, error)
	// Add merges into an existing line with the same product ID and returns the merged line.
	Add(ctx context.Context, item domain.LineItem) (domain.LineItem, error)
	Remove(ctx context.Context, productID string) error
	SetQuantity(ctx context.Context, productID string, quantity int) error
	Clear(ctx context.Context) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}
