package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
)

type OrderClient struct {
	client *resty.Client
}

type errorBody struct {
	Error string `json:"error"`
}

func NewOrderClient(baseURL string, timeout time.Duration) *OrderClient {
	return &OrderClient{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *OrderClient) CreateOrder(ctx context.Context, req domain.OrderRequest, idempotencyKey string) (domain.PaymentSession, error) {
	var out domain.PaymentSession
	var failure errorBody
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader(idempotency.Header, idempotencyKey).
		SetBody(req).
		SetResult(&out).
		SetError(&failure).
		Post("/orders")
	if err != nil {
		return domain.PaymentSession{}, err
	}
	if resp.IsError() {
		return domain.PaymentSession{}, statusError(resp.StatusCode(), failure.Error)
	}
	if out.OrderID == "" {
		return domain.PaymentSession{}, fmt.Errorf("order response missing orderId")
	}
	return out, nil
}

func (c *OrderClient) VerifyPayment(ctx context.Context, orderID string, conf domain.PaymentConfirmation) (domain.Order, error) {
	var out domain.Order
	var failure errorBody
	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", orderID).
		SetBody(conf).
		SetResult(&out).
		SetError(&failure).
		Post("/orders/{id}/verify-payment")
	if err != nil {
		return domain.Order{}, err
	}
	switch {
	case resp.StatusCode() == http.StatusBadRequest || resp.StatusCode() == http.StatusPaymentRequired:
		return domain.Order{}, fmt.Errorf("%w: %s", app.ErrPaymentRejected, reason(failure.Error, resp.StatusCode()))
	case resp.IsError():
		return domain.Order{}, statusError(resp.StatusCode(), failure.Error)
	}
	if out.ID == "" {
		out.ID = orderID
	}
	return out, nil
}

func statusError(status int, msg string) error {
	return fmt.Errorf("order api: %s", reason(msg, status))
}

func reason(msg string, status int) string {
	if msg != "" {
		return msg
	}
	return fmt.Sprintf("status %d", status)
}
