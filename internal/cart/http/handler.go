package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/storefront/internal/cart/domain"
	catalogdomain "github.com/dwikikusuma/storefront/internal/catalog/domain"
	"github.com/dwikikusuma/storefront/internal/session"
)

// ProductLookup resolves the authoritative price of a product being added.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (catalogdomain.Product, error)
}

type Handler struct {
	products ProductLookup
}

func NewHandler(products ProductLookup) *Handler {
	return &Handler{products: products}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/cart")
	g.GET("", h.Get)
	g.DELETE("", h.Clear)
	g.POST("/items", h.AddItem)
	g.PATCH("/items/:productId", h.UpdateQuantity)
	g.DELETE("/items/:productId", h.RemoveItem)
}

type addItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) Get(c *gin.Context) {
	s := session.From(c)
	items, err := s.Cart.GetItems(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cartId": s.Cart.CartID(), "items": items})
}

func (h *Handler) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request.Context()
	p, err := h.products.GetProduct(ctx, req.ProductID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if !p.InStock {
		_ = c.Error(domain.ErrOutOfStock)
		return
	}

	item, err := session.From(c).Cart.AddItem(ctx, p.ID, p.Price, req.Quantity, domain.Meta{Name: p.Name, Image: p.Image})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) UpdateQuantity(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err).SetType(gin.ErrorTypeBind)
		return
	}
	if err := session.From(c).Engine.UpdateQuantity(c.Request.Context(), c.Param("productId"), req.Quantity); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) RemoveItem(c *gin.Context) {
	if err := session.From(c).Engine.RemoveItem(c.Request.Context(), c.Param("productId")); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) Clear(c *gin.Context) {
	if err := session.From(c).Engine.Complete(c.Request.Context()); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
