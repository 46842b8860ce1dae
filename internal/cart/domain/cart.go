package domain

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront/pkg/money"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidQuantity = errors.New("quantity must be at least 1; remove the item instead")
	ErrItemNotFound    = errors.New("item not in cart")
	ErrOutOfStock      = errors.New("product is out of stock")
)

// Meta is display-only data carried with a line item.
type Meta struct {
	Name  string `json:"name,omitempty"`
	Image string `json:"image,omitempty"`
}

// LineItem is one product's presence in the cart. ProductID is unique within a cart.
type LineItem struct {
	ProductID string          `json:"productId"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
	Meta      Meta            `json:"meta"`
}

// LineTotal is UnitPrice * Quantity at minor-unit precision.
func (li LineItem) LineTotal() decimal.Decimal {
	return money.Line(li.UnitPrice, li.Quantity)
}

// Index keys items by product ID.
func Index(items []LineItem) map[string]LineItem {
	out := make(map[string]LineItem, len(items))
	for _, it := range items {
		out[it.ProductID] = it
	}
	return out
}

// ProductIDs returns the distinct product IDs in items, in order of first appearance.
func ProductIDs(items []LineItem) []string {
	seen := make(map[string]struct{}, len(items))
	ids := make([]string, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}
