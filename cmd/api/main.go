package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/brandhaus/storefront-backend/api/routes"
	"github.com/brandhaus/storefront-backend/internal/catalog"
	"github.com/brandhaus/storefront-backend/internal/checkout"
	"github.com/brandhaus/storefront-backend/internal/clients"
	"github.com/brandhaus/storefront-backend/internal/coupons"
	"github.com/brandhaus/storefront-backend/internal/messages"
	"github.com/brandhaus/storefront-backend/internal/orders"
	"github.com/brandhaus/storefront-backend/internal/resellers"
	"github.com/brandhaus/storefront-backend/pkg/config"
	"github.com/brandhaus/storefront-backend/pkg/db"
	"github.com/brandhaus/storefront-backend/pkg/logger"
	"github.com/brandhaus/storefront-backend/pkg/metrics"
	"github.com/brandhaus/storefront-backend/pkg/migrate"
	"github.com/brandhaus/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	gdb := dbClient.DB()
	catalogRepo := catalog.NewRepository(gdb)
	ordersRepo := orders.NewRepository(gdb)
	clientsRepo := clients.NewRepository(gdb)
	couponsRepo := coupons.NewRepository(gdb)
	resellersRepo := resellers.NewRepository(gdb)
	messagesRepo := messages.NewRepository(gdb)

	catalogService, err := catalog.NewService(dbClient, catalogRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	couponsService, err := coupons.NewService(couponsRepo, redisClient, cfg.Coupons.CacheTTL, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create coupons service", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(
		dbClient, catalogRepo, ordersRepo, clientsRepo,
		couponsService, resellersRepo, checkoutMetrics, logg, nil,
		cfg.Pricing.DefaultWholesaleRateBps,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	restockApplier, err := resellers.NewRestockApplier(resellersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create restock applier", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(dbClient, ordersRepo, restockApplier, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	clientsService, err := clients.NewService(clientsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create clients service", err)
		os.Exit(1)
	}

	resellersService, err := resellers.NewService(
		dbClient, resellersRepo, catalogRepo, clientsRepo,
		cfg.Password, cfg.Pricing.PointsDivisor, logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create resellers service", err)
		os.Exit(1)
	}

	messagesService, err := messages.NewService(messagesRepo, resellersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create messages service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Cfg:         cfg,
			Logg:        logg,
			DBPinger:    dbClient,
			RedisPinger: redisClient,
			IdemStore:   redisClient,
			Registry:    registry,
			HTTPMetrics: httpMetrics,
			Catalog:     catalogService,
			Coupons:     couponsService,
			Checkout:    checkoutService,
			Orders:      ordersService,
			Clients:     clientsService,
			Resellers:   resellersService,
			Messages:    messagesService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
