// Package pricing owns the client-side view of what a cart costs: the subtotal, the set
// of server-validated discount results currently applied, and the payable total handed
// to checkout.
package pricing

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	cartdomain "github.com/dwikikusuma/storefront/internal/cart/domain"
	"github.com/dwikikusuma/storefront/internal/discount/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
)

const DefaultValidationTimeout = 5 * time.Second

// Outcomes reported to an Observer.
const (
	OutcomeApplied   = "applied"
	OutcomeRejected  = "rejected"
	OutcomeTransport = "transport_error"
	OutcomeInput     = "input_error"
	OutcomeStale     = "stale"
	OutcomeCartError = "cart_error"
)

// Cart is the line-item store the engine reads and mutates.
type Cart interface {
	GetItems(ctx context.Context) ([]cartdomain.LineItem, error)
	RemoveItem(ctx context.Context, productID string) error
	UpdateQuantity(ctx context.Context, productID string, quantity int) error
	Clear(ctx context.Context) error
}

// Validator asks the remote API whether a code applies to the cart.
type Validator interface {
	Validate(ctx context.Context, req domain.ValidationRequest) (domain.Result, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

// Observer is told the outcome of every ApplyDiscount call.
type Observer func(outcome string)

// CartSnapshot is derived on demand; it is never stored.
type CartSnapshot struct {
	Items            []cartdomain.LineItem `json:"items"`
	AppliedDiscounts []domain.Result       `json:"appliedDiscounts"`
	Subtotal         decimal.Decimal       `json:"subtotal"`
	Total            decimal.Decimal       `json:"total"`
}

// Handoff is what checkout receives. A single discount code reflects that only the
// last-applied result determines the total.
type Handoff struct {
	Items        []cartdomain.LineItem `json:"items"`
	Subtotal     decimal.Decimal       `json:"subtotal"`
	Total        decimal.Decimal       `json:"total"`
	DiscountCode string                `json:"discountCode,omitempty"`
}

type applied struct {
	result domain.Result
	order  uint64
}

// Engine is the pricing engine for one cart session. Applied discounts live only in
// the engine; a new engine starts with none, forcing re-validation.
type Engine struct {
	cart      Cart
	validator Validator
	publisher EventPublisher
	observe   Observer
	timeout   time.Duration
	log       *slog.Logger
	key       string

	mu      sync.Mutex
	applied map[string]applied
	// inflight holds the token of the newest outstanding request per code.
	inflight map[string]uint64
	tokens   uint64
	applies  uint64
}

type Option func(*Engine)

func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observe = o }
}

// WithPublisher emits discount events keyed by key (usually the cart ID).
func WithPublisher(p EventPublisher, key string) Option {
	return func(e *Engine) {
		e.publisher = p
		e.key = key
	}
}

func NewEngine(cart Cart, validator Validator, opts ...Option) *Engine {
	e := &Engine{
		cart:      cart,
		validator: validator,
		timeout:   DefaultValidationTimeout,
		log:       slog.Default(),
		applied:   make(map[string]applied),
		inflight:  make(map[string]uint64),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeSubtotal sums unitPrice*quantity over items at minor-unit precision.
func ComputeSubtotal(items []cartdomain.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	sum = money.Round(sum)
	if sum.IsNegative() {
		return decimal.Zero
	}
	return sum
}

// ComputeTotal reconciles applied results, ordered oldest first, against subtotal.
// Only the last-applied result's NewSubtotal counts; the outcome is kept within
// [0, subtotal].
func ComputeTotal(subtotal decimal.Decimal, appliedDiscounts []domain.Result) decimal.Decimal {
	if subtotal.IsNegative() {
		subtotal = decimal.Zero
	}
	if len(appliedDiscounts) == 0 {
		return subtotal
	}
	last := appliedDiscounts[len(appliedDiscounts)-1]
	return money.Clamp(money.Round(last.NewSubtotal), decimal.Zero, subtotal)
}

// ApplyDiscount validates code against the current cart and, on success, stores the
// result under the normalized code, replacing any earlier result for it.
//
// Overlapping calls for the same code resolve last-request-wins: a response for a
// request that has since been superseded is dropped and ErrStaleResponse returned.
// Failures never touch the applied set and are never retried here.
func (e *Engine) ApplyDiscount(ctx context.Context, code string) (domain.Result, error) {
	code = domain.NormalizeCode(code)
	if code == "" {
		e.report(OutcomeInput)
		return domain.Result{}, domain.InputError(domain.ReasonEmptyCode)
	}

	items, err := e.cart.GetItems(ctx)
	if err != nil {
		e.report(OutcomeCartError)
		return domain.Result{}, err
	}
	if len(items) == 0 {
		e.report(OutcomeInput)
		return domain.Result{}, domain.InputError(domain.ReasonEmptyCart)
	}
	subtotal := ComputeSubtotal(items)

	token := e.issue(code)

	vctx, cancel := context.WithTimeout(ctx, e.timeout)
	res, err := e.validator.Validate(vctx, domain.ValidationRequest{
		Code:       code,
		ProductIDs: cartdomain.ProductIDs(items),
		Subtotal:   subtotal,
		Items:      items,
	})
	cancel()

	if err == nil {
		res.Code = code
		err = res.CheckAgainst(items, subtotal)
	} else if _, ok := domain.KindOf(err); !ok {
		err = domain.TransportError(err)
	}

	e.mu.Lock()
	if e.inflight[code] != token {
		e.mu.Unlock()
		e.log.Debug("discarding stale discount response", slog.String("code", code), slog.Uint64("token", token))
		e.report(OutcomeStale)
		return domain.Result{}, domain.ErrStaleResponse
	}
	delete(e.inflight, code)
	if err != nil {
		e.mu.Unlock()
		e.reportErr(code, err)
		return domain.Result{}, err
	}
	e.applies++
	e.applied[code] = applied{result: res, order: e.applies}
	e.mu.Unlock()

	e.log.Info("discount applied",
		slog.String("code", code),
		slog.String("discount_amount", res.DiscountAmount.String()),
		slog.String("new_subtotal", res.NewSubtotal.String()))
	e.report(OutcomeApplied)
	e.publish(ctx, domain.TopicApplied, res)
	return res, nil
}

// RemoveDiscount drops the result for code, if any, and invalidates any request for
// it still in flight. It never fails.
func (e *Engine) RemoveDiscount(ctx context.Context, code string) {
	code = domain.NormalizeCode(code)

	e.mu.Lock()
	_, had := e.applied[code]
	delete(e.applied, code)
	delete(e.inflight, code)
	e.mu.Unlock()

	if had {
		e.publish(ctx, domain.TopicRemoved, map[string]string{"code": code})
	}
}

// ResetDiscounts drops every applied result, as after an order is placed.
func (e *Engine) ResetDiscounts() {
	e.mu.Lock()
	e.applied = make(map[string]applied)
	e.inflight = make(map[string]uint64)
	e.mu.Unlock()
}

// AppliedDiscounts returns the applied results, oldest application first.
func (e *Engine) AppliedDiscounts() []domain.Result {
	e.mu.Lock()
	entries := make([]applied, 0, len(e.applied))
	for _, a := range e.applied {
		entries = append(entries, a)
	}
	e.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].order < entries[j].order })
	out := make([]domain.Result, len(entries))
	for i, a := range entries {
		out[i] = a.result
	}
	return out
}

// EffectivePrice is the lowest discounted price any applied result offers for the
// product, or its unit price. It is for display: summing it over the cart need not
// equal the total.
func (e *Engine) EffectivePrice(ctx context.Context, productID string) (decimal.Decimal, error) {
	_, price, err := e.Prices(ctx, productID)
	return price, err
}

// Prices returns the product's unit price and effective price from one cart read.
func (e *Engine) Prices(ctx context.Context, productID string) (unit, effective decimal.Decimal, err error) {
	items, err := e.cart.GetItems(ctx)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, err
	}
	item, ok := cartdomain.Index(items)[productID]
	if !ok {
		return decimal.Decimal{}, decimal.Decimal{}, cartdomain.ErrItemNotFound
	}
	return item.UnitPrice, effectivePrice(item, e.AppliedDiscounts()), nil
}

func effectivePrice(item cartdomain.LineItem, results []domain.Result) decimal.Decimal {
	best := item.UnitPrice
	for _, r := range results {
		if p, ok := r.PriceFor(item.ProductID); ok && p.LessThan(best) {
			best = p
		}
	}
	return best
}

// RemoveItem deletes a line. Applied results stay as they are, possibly stale, until
// removed or re-validated.
func (e *Engine) RemoveItem(ctx context.Context, productID string) error {
	return e.cart.RemoveItem(ctx, productID)
}

// UpdateQuantity refuses quantities below 1.
func (e *Engine) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return cartdomain.ErrInvalidQuantity
	}
	return e.cart.UpdateQuantity(ctx, productID, quantity)
}

func (e *Engine) Subtotal(ctx context.Context) (decimal.Decimal, error) {
	items, err := e.cart.GetItems(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ComputeSubtotal(items), nil
}

func (e *Engine) Total(ctx context.Context) (decimal.Decimal, error) {
	subtotal, err := e.Subtotal(ctx)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ComputeTotal(subtotal, e.AppliedDiscounts()), nil
}

func (e *Engine) Snapshot(ctx context.Context) (CartSnapshot, error) {
	items, err := e.cart.GetItems(ctx)
	if err != nil {
		return CartSnapshot{}, err
	}
	results := e.AppliedDiscounts()
	subtotal := ComputeSubtotal(items)
	return CartSnapshot{
		Items:            items,
		AppliedDiscounts: results,
		Subtotal:         subtotal,
		Total:            ComputeTotal(subtotal, results),
	}, nil
}

func (e *Engine) Handoff(ctx context.Context) (Handoff, error) {
	snap, err := e.Snapshot(ctx)
	if err != nil {
		return Handoff{}, err
	}
	h := Handoff{Items: snap.Items, Subtotal: snap.Subtotal, Total: snap.Total}
	if n := len(snap.AppliedDiscounts); n > 0 {
		h.DiscountCode = snap.AppliedDiscounts[n-1].Code
	}
	return h, nil
}

// Complete clears the cart and the applied discounts once an order is placed.
func (e *Engine) Complete(ctx context.Context) error {
	if err := e.cart.Clear(ctx); err != nil {
		return err
	}
	e.ResetDiscounts()
	return nil
}

func (e *Engine) issue(code string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tokens++
	e.inflight[code] = e.tokens
	return e.tokens
}

func (e *Engine) reportErr(code string, err error) {
	kind, _ := domain.KindOf(err)
	switch kind {
	case domain.KindRejected:
		e.log.Info("discount rejected", slog.String("code", code), slog.Any("err", err))
		e.report(OutcomeRejected)
	default:
		e.log.Warn("discount validation failed", slog.String("code", code), slog.Any("err", err))
		e.report(OutcomeTransport)
	}
}

func (e *Engine) report(outcome string) {
	if e.observe != nil {
		e.observe(outcome)
	}
}

func (e *Engine) publish(ctx context.Context, topic string, payload any) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, topic, e.key, payload); err != nil {
		e.log.Warn("publish discount event failed", slog.String("topic", topic), slog.Any("err", err))
	}
}

// IsStale reports whether err is a superseded-response discard.
func IsStale(err error) bool {
	return errors.Is(err, domain.ErrStaleResponse)
}
