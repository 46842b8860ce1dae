package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
)

// Service is the only mutation path for a cart's line items.
type Service struct {
	cartID    string
	store     CartStore
	publisher EventPublisher
	log       *slog.Logger
}

func NewService(cartID string, store CartStore, publisher EventPublisher, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		cartID:    cartID,
		store:     store,
		publisher: publisher,
		log:       log.With("cart_id", cartID),
	}
}

func (s *Service) CartID() string { return s.cartID }

func (s *Service) GetItems(ctx context.Context) ([]domain.LineItem, error) {
	return s.store.Items(ctx)
}

func (s *Service) AddItem(ctx context.Context, productID string, unitPrice decimal.Decimal, quantity int, meta domain.Meta) (domain.LineItem, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" || quantity <= 0 || unitPrice.IsNegative() {
		return domain.LineItem{}, domain.ErrInvalidInput
	}

	item, err := s.store.Add(ctx, domain.LineItem{
		ProductID: productID,
		UnitPrice: unitPrice,
		Quantity:  quantity,
		Meta:      meta,
	})
	if err != nil {
		return domain.LineItem{}, err
	}

	s.publish(ctx, domain.TopicItemAdded, domain.ItemAddedEvent{
		CartID:    s.cartID,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Timestamp: time.Now().UTC(),
	})
	return item, nil
}

func (s *Service) RemoveItem(ctx context.Context, productID string) error {
	if err := s.store.Remove(ctx, productID); err != nil {
		return err
	}
	s.publish(ctx, domain.TopicItemRemoved, domain.ItemRemovedEvent{
		CartID:    s.cartID,
		ProductID: productID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

// UpdateQuantity sets an absolute quantity. Zero or less is refused; callers use RemoveItem.
func (s *Service) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return domain.ErrInvalidQuantity
	}
	if err := s.store.SetQuantity(ctx, productID, quantity); err != nil {
		return err
	}
	s.publish(ctx, domain.TopicQuantityUpdated, domain.QuantityUpdatedEvent{
		CartID:    s.cartID,
		ProductID: productID,
		Quantity:  quantity,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return err
	}
	s.publish(ctx, domain.TopicCleared, domain.ClearedEvent{
		CartID:    s.cartID,
		Timestamp: time.Now().UTC(),
	})
	return nil
}

func (s *Service) publish(ctx context.Context, topic string, payload any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, topic, s.cartID, payload); err != nil {
		s.log.Warn("publish cart event failed", slog.String("topic", topic), slog.Any("err", err))
	}
}
