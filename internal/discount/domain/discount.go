package domain

import (
	"strings"

	"github.com/shopspring/decimal"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
)

type Type string

const (
	TypePercentage Type = "percentage"
	TypeFixed      Type = "fixed"
)

// DiscountedItem is a per-product price override offered by one code.
type DiscountedItem struct {
	ProductID       string          `json:"productId"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
}

// Result is the server-validated outcome of applying one code to the cart.
// It is never mutated after creation; re-applying a code replaces it.
type Result struct {
	Code            string           `json:"code"`
	Type            Type             `json:"discountType"`
	Value           decimal.Decimal  `json:"discountValue"`
	DiscountAmount  decimal.Decimal  `json:"discountAmount"`
	NewSubtotal     decimal.Decimal  `json:"newSubtotal"`
	DiscountedItems []DiscountedItem `json:"discountedItems"`
}

// PriceFor returns the discounted price this result offers for productID.
func (r Result) PriceFor(productID string) (decimal.Decimal, bool) {
	for _, di := range r.DiscountedItems {
		if di.ProductID == productID {
			return di.DiscountedPrice, true
		}
	}
	return decimal.Decimal{}, false
}

// CheckAgainst verifies the result against the cart it was validated for.
func (r Result) CheckAgainst(items []cartdomain.LineItem, subtotal decimal.Decimal) error {
	if !money.NonNegative(r.DiscountAmount) || !money.NonNegative(r.NewSubtotal) {
		return Malformed("negative discount amounts")
	}
	if r.NewSubtotal.GreaterThan(subtotal) {
		return Malformed("new subtotal exceeds cart subtotal")
	}
	byID := cartdomain.Index(items)
	for _, di := range r.DiscountedItems {
		item, ok := byID[di.ProductID]
		if !ok {
			return Malformed("discounted item " + di.ProductID + " not in cart")
		}
		if di.DiscountedPrice.IsNegative() || di.DiscountedPrice.GreaterThan(item.UnitPrice) {
			return Malformed("discounted price out of range for " + di.ProductID)
		}
	}
	return nil
}

// NormalizeCode trims and upper-cases a coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidationRequest is what the remote validator receives.
type ValidationRequest struct {
	Code       string                `json:"code"`
	ProductIDs []string              `json:"productIds"`
	Subtotal   decimal.Decimal       `json:"subtotal"`
	Items      []cartdomain.LineItem `json:"items"`
}

const (
	TopicApplied = "discount.applied"
	TopicRemoved = "discount.removed"
)
