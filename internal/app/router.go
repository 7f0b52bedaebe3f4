package app

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ridepool/internal/handler"
	"ridepool/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DriverHandler    *handler.DriverHandler
	PassengerHandler *handler.PassengerHandler
	TripRouteHandler *handler.TripRouteHandler
	RedisClient      *redis.Client // optional; enables idempotency
	NewRelicApp      *newrelic.Application
	Logger           *zap.Logger
	CORSOrigins      []string
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(middleware.AccessLogMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(deps.CORSOrigins))

	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.NewRelicErrorsMiddleware())
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient, logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		drivers := v1.Group("/drivers")
		{
			drivers.POST("", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id", deps.DriverHandler.Get)
			drivers.PUT("/:id/location", deps.DriverHandler.UpdateLocation)
		}

		passengers := v1.Group("/passengers")
		{
			passengers.POST("", deps.PassengerHandler.Register)
			passengers.GET("", deps.PassengerHandler.GetAll)
			passengers.GET("/:id", deps.PassengerHandler.Get)
			passengers.GET("/:id/nearest-drivers", deps.PassengerHandler.NearestDrivers)
		}

		routes := v1.Group("/routes")
		{
			routes.POST("", deps.TripRouteHandler.Create)
			routes.GET("/:id", deps.TripRouteHandler.Get)
			routes.PUT("/:id", deps.TripRouteHandler.Update)
			routes.DELETE("/:id", deps.TripRouteHandler.Delete)
			routes.GET("/users/:userType/:id", deps.TripRouteHandler.ListByUser)
		}
	}

	return router
}
