package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ridepool/internal/app"
	"ridepool/internal/config"
	"ridepool/internal/handler"
	"ridepool/internal/logger"
	"ridepool/internal/maps"
	internalRedis "ridepool/internal/redis"
	"ridepool/internal/repository/postgres"
	"ridepool/internal/service"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Env, "ridepool")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Warn("failed to initialize New Relic", zap.Error(err))
			nrApp = nil
		} else {
			log.Info("New Relic enabled", zap.String("app", cfg.NewRelic.AppName))
		}
	}

	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host))

	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("connected to Redis", zap.String("addr", cfg.Redis.Addr))

	server := wireServer(db, redisClient, nrApp, cfg, log)

	go func() {
		log.Info("starting server", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	if nrApp != nil {
		nrApp.Shutdown(5 * time.Second)
	}

	log.Info("server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, log *zap.Logger) *http.Server {
	// Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)

	// Routing provider, cached in Redis. The round tripper records external
	// segments when the request carries a New Relic transaction.
	httpClient := &http.Client{Transport: newrelic.NewRoundTripper(nil)}
	mapsClient := maps.NewClient(maps.Config{
		BaseURL:       cfg.Maps.BaseURL,
		APIKey:        cfg.Maps.APIKey,
		Timeout:       cfg.Maps.Timeout,
		MaxRetries:    cfg.Maps.MaxRetries,
		RetryInterval: cfg.Maps.RetryInterval,
	}, httpClient, log.Named("maps"))
	routing := internalRedis.NewCachedRoutingService(mapsClient, redisClient)

	// Repositories.
	driverRepo := postgres.NewDriverRepository(db)
	passengerRepo := postgres.NewPassengerRepository(db)
	routeRepo := postgres.NewTripRouteRepository(db)

	// Services.
	plannerCfg := service.PlannerConfig{
		MaxPassengers:       cfg.Planner.MaxPassengers,
		NearestDriversLimit: cfg.Planner.NearestDriversLimit,
	}
	planner := service.NewTripPlanner(routing, driverRepo, passengerRepo, plannerCfg, log.Named("planner"))
	finder := service.NewDriverFinder(routing, driverRepo, passengerRepo, plannerCfg.NearestDriversLimit, log.Named("finder"))
	notifier := service.NewNotificationService(log.Named("notifications"))
	routeService := service.NewTripRouteService(planner, routeRepo, lockStore, cfg.Planner.RouteLockTTL, notifier, log.Named("trip_routes"))
	driverService := service.NewDriverService(driverRepo, routing, log.Named("drivers"))
	passengerService := service.NewPassengerService(passengerRepo, routing)

	router := app.NewRouter(app.RouterDeps{
		DriverHandler:    handler.NewDriverHandler(driverService),
		PassengerHandler: handler.NewPassengerHandler(passengerService, finder),
		TripRouteHandler: handler.NewTripRouteHandler(routeService),
		RedisClient:      redisClient,
		NewRelicApp:      nrApp,
		Logger:           log.Named("http"),
		CORSOrigins:      cfg.Server.CORSOrigins,
	})

	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
