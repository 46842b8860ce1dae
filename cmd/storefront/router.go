package main

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	carthttp "github.com/dwikikusuma/storefront/internal/cart/http"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	cataloghttp "github.com/dwikikusuma/storefront/internal/catalog/http"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkouthttp "github.com/dwikikusuma/storefront/internal/checkout/http"
	"github.com/dwikikusuma/storefront/internal/pricing"
	pricinghttp "github.com/dwikikusuma/storefront/internal/pricing/http"
	"github.com/dwikikusuma/storefront/internal/session"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/metrics"
)

type routerDeps struct {
	log      *slog.Logger
	metrics  *metrics.ServerMetrics
	gatherer prometheus.Gatherer
	sessions *pricing.Registry
	catalog  *catalogapp.Service
	checkout *checkoutapp.Service
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logger.Requests(d.log), d.metrics.Middleware(), errorResponder(d.log))

	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/readyz", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(metrics.Handler(d.gatherer)))

	api := r.Group("/api/v1")
	cataloghttp.NewHandler(d.catalog).RegisterRoutes(api)

	withSession := api.Group("", session.Middleware(d.sessions))
	carthttp.NewHandler(d.catalog).RegisterRoutes(withSession)
	pricinghttp.NewHandler().RegisterRoutes(withSession)
	checkouthttp.NewHandler(d.checkout).RegisterRoutes(withSession)
	return r
}
