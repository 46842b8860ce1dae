package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Line struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// Handoff is the priced cart as checkout receives it.
type Handoff struct {
	Lines        []Line
	Subtotal     decimal.Decimal
	Total        decimal.Decimal
	DiscountCode string
}

type OrderRequest struct {
	Currency     string          `json:"currency"`
	Items        []Line          `json:"items"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	Total        decimal.Decimal `json:"total"`
	DiscountCode string          `json:"discountCode,omitempty"`
}

// PaymentSession is what the third-party payment SDK needs to collect payment.
type PaymentSession struct {
	OrderID        string          `json:"orderId"`
	GatewayOrderID string          `json:"gatewayOrderId"`
	GatewayKeyID   string          `json:"gatewayKeyId,omitempty"`
	Amount         decimal.Decimal `json:"amount"`
	AmountMinor    int64           `json:"amountMinor"`
	Currency       string          `json:"currency"`
}

type PaymentConfirmation struct {
	GatewayOrderID   string `json:"gatewayOrderId"`
	GatewayPaymentID string `json:"gatewayPaymentId"`
	Signature        string `json:"signature"`
}

type Order struct {
	ID       string          `json:"orderId"`
	Status   string          `json:"status"`
	Total    decimal.Decimal `json:"total"`
	PlacedAt time.Time       `json:"placedAt"`
}

const TopicOrderPlaced = "checkout.order.placed"

type OrderPlacedEvent struct {
	OrderID      string          `json:"orderId"`
	CartID       string          `json:"cartId"`
	Total        decimal.Decimal `json:"total"`
	DiscountCode string          `json:"discountCode,omitempty"`
	Timestamp    time.Time       `json:"timestamp"`
}
