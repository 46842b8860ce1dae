package adapter

import (
	"context"

	checkoutdomain "github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/pricing"
)

// PricingReader exposes a pricing engine to checkout.
type PricingReader struct {
	engine *pricing.Engine
}

func NewPricingReader(engine *pricing.Engine) *PricingReader {
	return &PricingReader{engine: engine}
}

func (r *PricingReader) Handoff(ctx context.Context) (checkoutdomain.Handoff, error) {
	h, err := r.engine.Handoff(ctx)
	if err != nil {
		return checkoutdomain.Handoff{}, err
	}

	lines := make([]checkoutdomain.Line, 0, len(h.Items))
	for _, it := range h.Items {
		lines = append(lines, checkoutdomain.Line{
			ProductID: it.ProductID,
			Name:      it.Meta.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			LineTotal: it.LineTotal(),
		})
	}
	return checkoutdomain.Handoff{
		Lines:        lines,
		Subtotal:     h.Subtotal,
		Total:        h.Total,
		DiscountCode: h.DiscountCode,
	}, nil
}

func (r *PricingReader) Complete(ctx context.Context) error {
	return r.engine.Complete(ctx)
}
