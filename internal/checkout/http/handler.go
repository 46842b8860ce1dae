package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/storefront/internal/checkout/app"
	"github.com/dwikikusuma/storefront/internal/checkout/domain"
	"github.com/dwikikusuma/storefront/internal/checkout/infra/adapter"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/pkg/idempotency"
)

type Handler struct {
	svc *app.Service
}

func NewHandler(svc *app.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/checkout")
	g.POST("", h.Begin)
	g.POST("/:orderId/confirm", h.Confirm)
}

func (h *Handler) Begin(c *gin.Context) {
	s := session.From(c)
	key := idempotency.Key(c.Request)

	ps, err := h.svc.Begin(c.Request.Context(), adapter.NewPricingReader(s.Engine), key)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.Header(idempotency.Header, key)
	c.JSON(http.StatusCreated, ps)
}

func (h *Handler) Confirm(c *gin.Context) {
	var conf domain.PaymentConfirmation
	if err := c.ShouldBindJSON(&conf); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	s := session.From(c)
	order, err := h.svc.Confirm(c.Request.Context(), adapter.NewPricingReader(s.Engine), s.Cart.CartID(), c.Param("orderId"), conf)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}
