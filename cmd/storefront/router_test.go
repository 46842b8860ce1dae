package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	cataloghttpclient "github.com/dwikikusuma/storefront/internal/catalog/infra/httpclient"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkouthttpclient "github.com/dwikikusuma/storefront/internal/checkout/infra/httpclient"
	discountdomain "github.com/dwikikusuma/storefront/internal/discount/domain"
	discounthttpclient "github.com/dwikikusuma/storefront/internal/discount/infra/httpclient"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/metrics"
)

// holdFirst parks the first validation of code SLOW until release is closed.
type holdFirst struct {
	once    sync.Once
	arrived chan struct{}
	release chan struct{}
}

func newHoldFirst() *holdFirst {
	return &holdFirst{arrived: make(chan struct{}), release: make(chan struct{})}
}

func (h *holdFirst) wait() {
	first := false
	h.once.Do(func() { first = true })
	if first {
		close(h.arrived)
		<-h.release
	}
}

// fakeAPI stands in for the commerce backend: catalog, discount validation and orders.
func fakeAPI(t *testing.T, hold *holdFirst) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, status int, v any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(v)
	}

	mux.HandleFunc("/products/", func(w http.ResponseWriter, r *http.Request) {
		switch strings.TrimPrefix(r.URL.Path, "/products/") {
		case "P1":
			writeJSON(w, http.StatusOK, map[string]any{"id": "P1", "name": "Tee", "price": 1000, "currency": "INR", "inStock": true})
		case "P2":
			writeJSON(w, http.StatusOK, map[string]any{"id": "P2", "name": "Cap", "price": 500, "currency": "INR", "inStock": false})
		default:
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		}
	})
	mux.HandleFunc("/discounts/validate", func(w http.ResponseWriter, r *http.Request) {
		var req discountdomain.ValidationRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Code == "SLOW" && hold != nil {
			hold.wait()
		}
		if req.Code != "SAVE10" && req.Code != "SLOW" {
			writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "Coupon expired"})
			return
		}
		ratio := decimal.NewFromFloat(0.9)
		items := []discountdomain.DiscountedItem{}
		for _, it := range req.Items {
			items = append(items, discountdomain.DiscountedItem{ProductID: it.ProductID, DiscountedPrice: it.UnitPrice.Mul(ratio)})
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "discount": discountdomain.Result{
			Code:            req.Code,
			Type:            discountdomain.TypePercentage,
			Value:           decimal.NewFromInt(10),
			DiscountAmount:  req.Subtotal.Sub(req.Subtotal.Mul(ratio)),
			NewSubtotal:     req.Subtotal.Mul(ratio),
			DiscountedItems: items,
		}})
	})
	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Total decimal.Decimal `json:"total"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, r.Header.Get("Idempotency-Key"))
		writeJSON(w, http.StatusOK, map[string]any{"orderId": "o-1", "gatewayOrderId": "g-1", "amount": req.Total, "currency": "INR"})
	})
	mux.HandleFunc("/orders/o-1/verify-payment", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"orderId": "o-1", "status": "paid", "total": 1800})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	return newTestRouterWith(t, nil)
}

func newTestRouterWith(t *testing.T, hold *holdFirst) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	api := fakeAPI(t, hold)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.NewServerMetrics(reg, "test")

	validator := discounthttpclient.NewValidator(discounthttpclient.Config{BaseURL: api.URL, Timeout: time.Second}, log)
	sessions, err := pricing.NewRegistry(16, func(id string) *pricing.Session {
		cart := cartapp.NewService(id, memory.NewStore(), events.Noop{}, log)
		return &pricing.Session{ID: id, Cart: cart, Engine: pricing.NewEngine(cart, validator,
			pricing.WithLogger(log), pricing.WithObserver(m.DiscountOutcome))}
	})
	require.NoError(t, err)

	return newRouter(routerDeps{
		log:      log,
		metrics:  m,
		gatherer: reg,
		sessions: sessions,
		catalog:  catalogapp.NewService(cataloghttpclient.NewProductClient(api.URL, time.Second)),
		checkout: checkoutapp.NewService(checkouthttpclient.NewOrderClient(api.URL, time.Second), events.Noop{}, "INR", log),
	})
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(session.Header, "s-1")
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &out)
	}
	return rec, out
}

func TestRouter_CartToOrder(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"productId":"P1","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "s-1", rec.Header().Get(session.Header))

	rec, body := do(t, r, http.MethodPost, "/api/v1/cart/discounts", `{"code":" save10 "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	summary := body["summary"].(map[string]any)
	assert.Equal(t, 2000.0, summary["subtotal"])
	assert.Equal(t, 1800.0, summary["total"])

	rec, body = do(t, r, http.MethodGet, "/api/v1/cart/items/P1/price", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 900.0, body["effectivePrice"])
	assert.Equal(t, 1000.0, body["unitPrice"])

	rec, body = do(t, r, http.MethodPost, "/api/v1/cart/discounts", `{"code":"OLD"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Coupon expired", body["error"])

	rec, body = do(t, r, http.MethodGet, "/api/v1/cart/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1800.0, body["total"], "a rejected code leaves the applied set alone")

	rec, body = do(t, r, http.MethodPost, "/api/v1/checkout", "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "o-1", body["orderId"])
	assert.Equal(t, 180000.0, body["amountMinor"])

	rec, _ = do(t, r, http.MethodPost, "/api/v1/checkout/o-1/confirm",
		`{"gatewayOrderId":"g-1","gatewayPaymentId":"pay-1","signature":"sig"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, body = do(t, r, http.MethodGet, "/api/v1/cart/summary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["items"])
	assert.Empty(t, body["appliedDiscounts"])
	assert.Equal(t, 0.0, body["total"])
}

func TestRouter_Errors(t *testing.T) {
	r := newTestRouter(t)

	t.Run("out of stock", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"productId":"P2"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("unknown product", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodGet, "/api/v1/products/NOPE", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("discount on empty cart", func(t *testing.T) {
		rec, body := do(t, r, http.MethodPost, "/api/v1/cart/discounts", `{"code":"SAVE10"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, discountdomain.ReasonEmptyCart, body["error"])
	})

	t.Run("checkout empty cart", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodPost, "/api/v1/checkout", "")
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("quantity floor", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"productId":"P1"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		rec, _ = do(t, r, http.MethodPatch, "/api/v1/cart/items/P1", `{"quantity":0}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		rec, body := do(t, r, http.MethodPost, "/api/v1/cart/discounts", `{"code":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ARGUMENT", body["code"])
	})

	t.Run("metrics exposed", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodGet, "/metrics", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "storefront_test_http_requests_total")
	})
}

func TestRouter_Removals(t *testing.T) {
	r := newTestRouter(t)

	rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"productId":"P1","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec, _ = do(t, r, http.MethodPost, "/api/v1/cart/discounts", `{"code":"SAVE10"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	t.Run("remove discount restores subtotal", func(t *testing.T) {
		rec, body := do(t, r, http.MethodDelete, "/api/v1/cart/discounts/save10", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Empty(t, body["appliedDiscounts"])
		assert.Equal(t, 2000.0, body["total"])
	})

	t.Run("remove unknown discount is a no-op", func(t *testing.T) {
		rec, body := do(t, r, http.MethodDelete, "/api/v1/cart/discounts/NOPE", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2000.0, body["total"])
	})

	t.Run("remove item", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodDelete, "/api/v1/cart/items/P1", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec, _ = do(t, r, http.MethodDelete, "/api/v1/cart/items/P1", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("clear cart", func(t *testing.T) {
		rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"productId":"P1"}`)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, _ = do(t, r, http.MethodDelete, "/api/v1/cart", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec, body := do(t, r, http.MethodGet, "/api/v1/cart", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, body["items"])
	})
}

func TestRouter_SupersededApplyAnswersWithSummary(t *testing.T) {
	hold := newHoldFirst()
	r := newTestRouterWith(t, hold)

	rec, _ := do(t, r, http.MethodPost, "/api/v1/cart/items", `{"productId":"P1","quantity":2}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	type result struct {
		rec  *httptest.ResponseRecorder
		body map[string]any
	}
	firstDone := make(chan result, 1)
	go func() {
		rec, body := do(t, r, http.MethodPost, "/api/v1/cart/discounts", `{"code":"SLOW"}`)
		firstDone <- result{rec, body}
	}()

	select {
	case <-hold.arrived:
	case <-time.After(time.Second):
		t.Fatal("first validation never reached the backend")
	}

	rec, body := do(t, r, http.MethodPost, "/api/v1/cart/discounts", `{"code":"SLOW"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Nil(t, body["stale"])
	close(hold.release)

	var first result
	select {
	case first = <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("first apply never returned")
	}
	require.Equal(t, http.StatusOK, first.rec.Code, first.rec.Body.String())
	assert.Equal(t, true, first.body["stale"])

	summary := first.body["summary"].(map[string]any)
	assert.Len(t, summary["appliedDiscounts"], 1)
	assert.Equal(t, 1800.0, summary["total"])
}
