package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/pkg/money"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidInput    = errors.New("invalid input")
	ErrPaymentRejected = errors.New("payment verification failed")
)

// CartReader gives checkout the priced cart of one session and lets it close the
// session out once the order is placed.
type CartReader interface {
	Handoff(ctx context.Context) (domain.Handoff, error)
	Complete(ctx context.Context) error
}

// OrderGateway is the remote order API.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (domain.PaymentSession, error)
	VerifyPayment(ctx context.Context, orderID string, conf domain.PaymentConfirmation) (domain.Order, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
}

type Service struct {
	orders    OrderGateway
	publisher EventPublisher
	currency  string
	log       *slog.Logger
}

func NewService(orders OrderGateway, publisher EventPublisher, currency string, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		orders:    orders,
		publisher: publisher,
		currency:  strings.ToUpper(currency),
		log:       log,
	}
}

// Begin creates the remote order for the cart's current total and returns the
// session the payment SDK is opened with.
func (s *Service) Begin(ctx context.Context, cart CartReader, idempotencyKey string) (domain.PaymentSession, error) {
	h, err := cart.Handoff(ctx)
	if err != nil {
		return domain.PaymentSession{}, err
	}
	if len(h.Lines) == 0 {
		return domain.PaymentSession{}, ErrEmptyCart
	}
	if strings.TrimSpace(idempotencyKey) == "" {
		return domain.PaymentSession{}, fmt.Errorf("%w: idempotency key is required", ErrInvalidInput)
	}

	req := domain.OrderRequest{
		Currency:     s.currency,
		Items:        h.Lines,
		Subtotal:     h.Subtotal,
		Total:        h.Total,
		DiscountCode: h.DiscountCode,
	}
	session, err := s.orders.CreateOrder(ctx, req, idempotencyKey)
	if err != nil {
		return domain.PaymentSession{}, fmt.Errorf("create order: %w", err)
	}

	if session.Currency == "" {
		session.Currency = s.currency
	}
	if session.Amount.IsZero() {
		session.Amount = h.Total
	}
	if !session.Amount.Equal(h.Total) {
		s.log.Warn("order amount differs from cart total",
			slog.String("order_id", session.OrderID),
			slog.String("order_amount", session.Amount.String()),
			slog.String("cart_total", h.Total.String()),
		)
	}
	session.AmountMinor = money.MinorUnits(session.Amount)
	return session, nil
}

// Confirm verifies the payment and, on success, empties the cart and its discounts.
func (s *Service) Confirm(ctx context.Context, cart CartReader, cartID, orderID string, conf domain.PaymentConfirmation) (domain.Order, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" || conf.GatewayOrderID == "" || conf.GatewayPaymentID == "" || conf.Signature == "" {
		return domain.Order{}, fmt.Errorf("%w: order id and payment confirmation fields are required", ErrInvalidInput)
	}

	h, err := cart.Handoff(ctx)
	if err != nil {
		return domain.Order{}, err
	}

	order, err := s.orders.VerifyPayment(ctx, orderID, conf)
	if err != nil {
		return domain.Order{}, err
	}

	if err := cart.Complete(ctx); err != nil {
		s.log.Error("order placed but cart not cleared",
			slog.String("order_id", order.ID),
			slog.String("cart_id", cartID),
			slog.Any("err", err),
		)
	}

	if s.publisher != nil {
		evt := domain.OrderPlacedEvent{
			OrderID:      order.ID,
			CartID:       cartID,
			Total:        order.Total,
			DiscountCode: h.DiscountCode,
			Timestamp:    time.Now().UTC(),
		}
		if err := s.publisher.Publish(ctx, domain.TopicOrderPlaced, order.ID, evt); err != nil {
			s.log.Warn("publish order placed", slog.String("order_id", order.ID), slog.Any("err", err))
		}
	}
	return order, nil
}
