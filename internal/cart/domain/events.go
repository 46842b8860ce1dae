package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicItemAdded       = "cart.item.added"
	TopicItemRemoved     = "cart.item.removed"
	TopicQuantityUpdated = "cart.item.quantity_updated"
	TopicCleared         = "cart.cleared"
)

type ItemAddedEvent struct {
	CartID    string          `json:"cartId"`
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Timestamp time.Time       `json:"timestamp"`
}

type ItemRemovedEvent struct {
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Timestamp time.Time `json:"timestamp"`
}

type QuantityUpdatedEvent struct {
	CartID    string    `json:"cartId"`
	ProductID string    `json:"productId"`
	Quantity  int       `json:"quantity"`
	Timestamp time.Time `json:"timestamp"`
}

type ClearedEvent struct {
	CartID    string    `json:"cartId"`
	Timestamp time.Time `json:"timestamp"`
}
