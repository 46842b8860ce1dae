package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/dwikikusuma/storefront/internal/session"
)

type Handler struct{}

func NewHandler() *Handler { return &Handler{} }

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/cart")
	g.GET("/summary", h.Summary)
	g.POST("/discounts", h.ApplyDiscount)
	g.DELETE("/discounts/:code", h.RemoveDiscount)
	g.GET("/items/:productId/price", h.EffectivePrice)
}

type applyRequest struct {
	Code string `json:"code"`
}

type applyResponse struct {
	Summary pricing.CartSnapshot `json:"summary"`
	// Stale marks a response superseded by a newer request for the same code.
	Stale bool `json:"stale,omitempty"`
}

type priceResponse struct {
	ProductID      string          `json:"productId"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	EffectivePrice decimal.Decimal `json:"effectivePrice"`
}

func (h *Handler) Summary(c *gin.Context) {
	snap, err := session.From(c).Engine.Snapshot(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// ApplyDiscount answers with the cart summary after the attempt. A stale attempt is
// not an error for the caller; the summary simply does not include it.
func (h *Handler) ApplyDiscount(c *gin.Context) {
	var req applyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}

	engine := session.From(c).Engine
	ctx := c.Request.Context()
	_, err := engine.ApplyDiscount(ctx, req.Code)
	stale := pricing.IsStale(err)
	if err != nil && !stale {
		_ = c.Error(err)
		return
	}

	snap, err := engine.Snapshot(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, applyResponse{Summary: snap, Stale: stale})
}

func (h *Handler) RemoveDiscount(c *gin.Context) {
	engine := session.From(c).Engine
	engine.RemoveDiscount(c.Request.Context(), c.Param("code"))

	snap, err := engine.Snapshot(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) EffectivePrice(c *gin.Context) {
	productID := c.Param("productId")
	unit, effective, err := session.From(c).Engine.Prices(c.Request.Context(), productID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, priceResponse{ProductID: productID, UnitPrice: unit, EffectivePrice: effective})
}
