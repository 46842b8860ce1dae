package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	cartapp "github.com/dwikikusuma/storefront/internal/cart/app"
	"github.com/dwikikusuma/storefront/internal/cart/infra/memory"
	cartredis "github.com/dwikikusuma/storefront/internal/cart/infra/redis"
	catalogapp "github.com/dwikikusuma/storefront/internal/catalog/app"
	cataloghttpclient "github.com/dwikikusuma/storefront/internal/catalog/infra/httpclient"
	checkoutapp "github.com/dwikikusuma/storefront/internal/checkout/app"
	checkouthttpclient "github.com/dwikikusuma/storefront/internal/checkout/infra/httpclient"
	discounthttpclient "github.com/dwikikusuma/storefront/internal/discount/infra/httpclient"
	"github.com/dwikikusuma/storefront/internal/pricing"
	"github.com/dwikikusuma/storefront/pkg/config"
	"github.com/dwikikusuma/storefront/pkg/events"
	"github.com/dwikikusuma/storefront/pkg/logger"
	"github.com/dwikikusuma/storefront/pkg/metrics"
	"github.com/dwikikusuma/storefront/pkg/shutdown"
)

var configPath = flag.String("config", "", "optional config file path")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Service:   "storefront",
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: true,
	})

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cartredis.Open(ctx, cartredis.Config{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			log.Error("redis unavailable", slog.Any("err", err))
			os.Exit(1)
		}
		defer redisClient.Close()
	} else {
		log.Warn("REDIS_ADDR not set; carts are kept in memory")
	}

	publisher := events.New(cfg.KafkaBrokers, log)
	defer publisher.Close()

	m := metrics.NewServerMetrics(prometheus.DefaultRegisterer, "api")

	validator := discounthttpclient.NewValidator(discounthttpclient.Config{
		BaseURL:     cfg.APIBaseURL,
		Timeout:     cfg.DiscountTimeout,
		MaxFailures: cfg.BreakerFailures,
	}, log)

	sessions, err := pricing.NewRegistry(cfg.SessionCapacity, func(id string) *pricing.Session {
		var store cartapp.CartStore = memory.NewStore()
		if redisClient != nil {
			store = cartredis.NewCartStore(redisClient, id, cfg.CartTTL)
		}
		cart := cartapp.NewService(id, store, publisher, log)
		engine := pricing.NewEngine(cart, validator,
			pricing.WithTimeout(cfg.DiscountTimeout),
			pricing.WithLogger(log.With("session_id", id)),
			pricing.WithObserver(m.DiscountOutcome),
			pricing.WithPublisher(publisher, id),
		)
		return &pricing.Session{ID: id, Cart: cart, Engine: engine}
	})
	if err != nil {
		log.Error("session registry", slog.Any("err", err))
		os.Exit(1)
	}

	catalogSvc := catalogapp.NewService(cataloghttpclient.NewProductClient(cfg.APIBaseURL, cfg.DiscountTimeout))
	checkoutSvc := checkoutapp.NewService(
		checkouthttpclient.NewOrderClient(cfg.APIBaseURL, 15*time.Second),
		publisher,
		cfg.Currency,
		log,
	)

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(routerDeps{
		log:      log,
		metrics:  m,
		gatherer: prometheus.DefaultGatherer,
		sessions: sessions,
		catalog:  catalogSvc,
		checkout: checkoutSvc,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", addr))
		return shutdown.Serve(gctx, server, 10*time.Second)
	})

	if err := g.Wait(); err != nil {
		log.Error("http server error", slog.Any("err", err))
	}
	log.Info("bye")
}
