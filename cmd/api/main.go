package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/sfconnect/sfconnect-backend/api/routes"
	"github.com/sfconnect/sfconnect-backend/internal/auth"
	"github.com/sfconnect/sfconnect-backend/internal/catalog"
	"github.com/sfconnect/sfconnect-backend/internal/grouporders"
	"github.com/sfconnect/sfconnect-backend/internal/orders"
	"github.com/sfconnect/sfconnect-backend/internal/ratings"
	"github.com/sfconnect/sfconnect-backend/internal/users"
	"github.com/sfconnect/sfconnect-backend/pkg/auth/session"
	"github.com/sfconnect/sfconnect-backend/pkg/config"
	"github.com/sfconnect/sfconnect-backend/pkg/db"
	"github.com/sfconnect/sfconnect-backend/pkg/logger"
	"github.com/sfconnect/sfconnect-backend/pkg/metrics"
	"github.com/sfconnect/sfconnect-backend/pkg/migrate"
	"github.com/sfconnect/sfconnect-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})
	ctx := context.Background()

	fatal := func(msg string, err error) {
		logg.Error(ctx, msg, err)
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		fatal("failed to load config", err)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		fatal("failed to bootstrap database", err)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(ctx, "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		fatal("failed to run dev migrations", err)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		fatal("failed to bootstrap redis", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(ctx, "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		fatal("failed to create session manager", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	marketplaceMetrics := metrics.NewMarketplaceMetrics(registry)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		fatal("failed to create auth service", err)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		SessionManager: sessionManager,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		fatal("failed to create register service", err)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		fatal("failed to create catalog service", err)
	}

	orderService, err := orders.NewService(
		orders.NewRepository(dbClient.DB()),
		dbClient,
		orders.NewInventoryReserver(),
		marketplaceMetrics,
		cfg.Orders,
	)
	if err != nil {
		fatal("failed to create order service", err)
	}

	groupOrderService, err := grouporders.NewService(
		grouporders.NewRepository(dbClient.DB()),
		dbClient,
		marketplaceMetrics,
		cfg.GroupOrders,
	)
	if err != nil {
		fatal("failed to create group order service", err)
	}

	ratingService, err := ratings.NewService(
		ratings.NewRepository(dbClient.DB()),
		dbClient,
		ratings.NewSupplierAggregateWriter(),
		marketplaceMetrics,
	)
	if err != nil {
		fatal("failed to create rating service", err)
	}

	router := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              dbClient,
		Redis:           redisClient,
		SessionManager:  sessionManager,
		AuthService:     authService,
		RegisterService: registerService,
		CatalogService:  catalogService,
		OrderService:    orderService,
		GroupService:    groupOrderService,
		RatingService:   ratingService,
		Gatherer:        registry,
	})

	if err := serve(logg, cfg, router); err != nil {
		fatal("api server stopped unexpectedly", err)
	}
}

// serve runs the HTTP server until it fails or a shutdown signal arrives,
// then drains in-flight requests with a grace period.
func serve(logg *logger.Logger, cfg *config.Config, handler http.Handler) error {
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
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-signalCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		graceCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(graceCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
		return nil
	}
}
