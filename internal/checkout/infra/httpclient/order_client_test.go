package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
)

func TestCreateOrder(t *testing.T) {
	var gotKey string
	var gotBody domain.OrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders", r.URL.Path)
		gotKey = r.Header.Get(idempotency.Header)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"orderId":"o-1","gatewayOrderId":"g-1","amount":1800,"currency":"INR"}`))
	}))
	defer srv.Close()

	c := NewOrderClient(srv.URL, time.Second)
	session, err := c.CreateOrder(context.Background(), domain.OrderRequest{
		Currency: "INR",
		Total:    decimal.NewFromInt(1800),
		Items:    []domain.Line{{ProductID: "P1", Quantity: 2}},
	}, "key-1")
	require.NoError(t, err)

	assert.Equal(t, "key-1", gotKey)
	assert.Equal(t, "o-1", session.OrderID)
	assert.True(t, session.Amount.Equal(decimal.NewFromInt(1800)))
	assert.Len(t, gotBody.Items, 1)
}

func TestCreateOrder_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"db down"}`))
	}))
	defer srv.Close()

	_, err := NewOrderClient(srv.URL, time.Second).CreateOrder(context.Background(), domain.OrderRequest{}, "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestVerifyPayment(t *testing.T) {
	t.Run("verified", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/orders/o-1/verify-payment", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"orderId":"o-1","status":"paid","total":1800}`))
		}))
		defer srv.Close()

		order, err := NewOrderClient(srv.URL, time.Second).VerifyPayment(context.Background(), "o-1",
			domain.PaymentConfirmation{GatewayOrderID: "g-1", GatewayPaymentID: "pay-1", Signature: "sig"})
		require.NoError(t, err)
		assert.Equal(t, "paid", order.Status)
	})

	t.Run("bad signature is a rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"signature mismatch"}`))
		}))
		defer srv.Close()

		_, err := NewOrderClient(srv.URL, time.Second).VerifyPayment(context.Background(), "o-1", domain.PaymentConfirmation{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, app.ErrPaymentRejected))
		assert.Contains(t, err.Error(), "signature mismatch")
	})
}
