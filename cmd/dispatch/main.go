package main

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mishwarapp/mishwar/internal/pkg/config"
	"github.com/mishwarapp/mishwar/internal/pkg/constants"
	"github.com/mishwarapp/mishwar/internal/pkg/database"
	"github.com/mishwarapp/mishwar/internal/pkg/health"
	"github.com/mishwarapp/mishwar/internal/pkg/logger"
	"github.com/mishwarapp/mishwar/internal/pkg/middleware"
	nsqpkg "github.com/mishwarapp/mishwar/internal/pkg/nsq"
	"github.com/mishwarapp/mishwar/internal/pkg/observability"
	"github.com/mishwarapp/mishwar/internal/pkg/payment"
	"github.com/mishwarapp/mishwar/internal/pkg/server"
	ws "github.com/mishwarapp/mishwar/internal/pkg/websocket"
	driverhandler "github.com/mishwarapp/mishwar/services/drivers/handler/http"
	driverrepo "github.com/mishwarapp/mishwar/services/drivers/repository"
	driverusecase "github.com/mishwarapp/mishwar/services/drivers/usecase"
	"github.com/mishwarapp/mishwar/services/pricing"
	"github.com/mishwarapp/mishwar/services/rides/gateway"
	ridehandler "github.com/mishwarapp/mishwar/services/rides/handler/http"
	ridensq "github.com/mishwarapp/mishwar/services/rides/handler/nsq"
	ridews "github.com/mishwarapp/mishwar/services/rides/handler/websocket"
	riderepo "github.com/mishwarapp/mishwar/services/rides/repository"
	rideusecase "github.com/mishwarapp/mishwar/services/rides/usecase"
)

func main() {
	appName := "dispatch-service"
	configPath := "config/dispatch.env"
	configs := config.InitConfig(configPath)

	zapLogger, err := logger.NewZapLoggerFromConfig(configs.Logger)
	if err != nil {
		log.Fatalf("Failed to create Zap logger: %v", err)
	}
	defer zapLogger.Close()
	logger.SetGlobalLogger(zapLogger)

	// Infrastructure clients
	postgresClient, err := database.NewPostgresClient(configs.Database)
	if err != nil {
		zapLogger.Fatal("Failed to connect to postgres", logger.Err(err))
	}

	redisClient, err := database.NewRedisClient(configs.Redis)
	if err != nil {
		zapLogger.Fatal("Failed to connect to redis", logger.Err(err))
	}

	producer, err := nsqpkg.NewProducer(configs.NSQ.NSQDAddress)
	if err != nil {
		zapLogger.Fatal("Failed to create NSQ producer", logger.Err(err))
	}

	stripeClient := payment.NewStripeClient(configs.Payment)
	wsManager := ws.NewManager(configs.JWT)
	pricingService := pricing.NewService(configs.Pricing)

	// Repositories
	driverRepo := driverrepo.NewDriverRepo(configs, postgresClient.GetDB())
	geoRepo := driverrepo.NewGeoRepo(redisClient)
	rideRepo := riderepo.NewRideRepo(configs, postgresClient.GetDB())

	// Gateway and use cases. The ride repository doubles as the active
	// ride finder for the driver service, and the driver use case is the
	// ride service's registry.
	rideGateway := gateway.NewRideGateway(configs, wsManager, producer, stripeClient)

	driverUC, err := driverusecase.NewDriverUC(configs, driverRepo, geoRepo, rideRepo, rideGateway)
	if err != nil {
		zapLogger.Fatal("Failed to create driver use case", logger.Err(err))
	}

	rideUC, err := rideusecase.NewRideUC(configs, rideRepo, rideGateway, driverUC, pricingService)
	if err != nil {
		zapLogger.Fatal("Failed to create ride use case", logger.Err(err))
	}

	// Broker consumers relay offers published by other instances to
	// drivers connected here.
	offerHandler := ridensq.NewOfferHandler(wsManager)
	offerConsumer, err := nsqpkg.NewConsumer(
		constants.TopicRideOffer,
		constants.ChannelDispatch,
		configs.NSQ.NSQDAddress,
		offerHandler.HandleRideOffer,
	)
	if err != nil {
		zapLogger.Fatal("Failed to create offer consumer", logger.Err(err))
	}
	if err := offerConsumer.ConnectToLookupd(configs.NSQ.LookupdAddresses); err != nil {
		zapLogger.Warn("Failed to connect offer consumer to lookupd", logger.Err(err))
	}

	statusConsumer, err := nsqpkg.NewConsumer(
		constants.TopicRideStatus,
		constants.ChannelDispatch,
		configs.NSQ.NSQDAddress,
		offerHandler.HandleRideStatus,
	)
	if err != nil {
		zapLogger.Fatal("Failed to create status consumer", logger.Err(err))
	}
	if err := statusConsumer.ConnectToLookupd(configs.NSQ.LookupdAddresses); err != nil {
		zapLogger.Warn("Failed to connect status consumer to lookupd", logger.Err(err))
	}

	// HTTP surface
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.PanicRecoveryMiddleware(zapLogger))
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.ZapEchoMiddleware(zapLogger))
	e.Use(observability.MetricsMiddleware())

	health.RegisterHealthEndpoints(e, appName, map[string]health.Checker{
		"postgres": health.CheckerFunc(postgresClient.Ping),
		"redis":    health.CheckerFunc(redisClient.Ping),
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	ridesHandler := ridehandler.NewRidesHandler(rideUC)
	driversHandler := driverhandler.NewDriversHandler(driverUC)
	wsHandler := ridews.NewWebSocketHandler(wsManager, rideUC, driverUC)

	auth := middleware.JWTAuthMiddleware(configs.JWT)
	driverOnly := middleware.RequireRole("driver")

	e.GET("/ws", wsHandler.HandleWebSocket)

	api := e.Group("/api/v1")
	api.POST("/drivers/register", driversHandler.RegisterDriver)

	// Rider endpoints
	rides := api.Group("/rides", auth)
	rides.POST("/estimate", ridesHandler.EstimateFare)
	rides.POST("/request", ridesHandler.RequestRide)
	rides.GET("", ridesHandler.ListRides)
	rides.GET("/upcoming", ridesHandler.ListUpcomingRides)
	rides.GET("/:id", ridesHandler.GetRide)
	rides.POST("/:id/cancel", ridesHandler.CancelRide)
	rides.PUT("/:id/dropoff", ridesHandler.UpdateDropoff)
	rides.GET("/:id/driver-location", ridesHandler.GetDriverLocation)

	// Driver endpoints
	rides.GET("/open", ridesHandler.ListOpenRides, driverOnly)
	rides.GET("/active", ridesHandler.ActiveRide, driverOnly)
	rides.POST("/:id/accept", ridesHandler.AcceptRide, driverOnly)
	rides.POST("/:id/start", ridesHandler.StartRide, driverOnly)
	rides.POST("/:id/complete", ridesHandler.CompleteRide, driverOnly)

	drivers := api.Group("/drivers", auth, driverOnly)
	drivers.GET("/me", driversHandler.GetDriver)
	drivers.POST("/availability", driversHandler.SetAvailability)
	drivers.POST("/location", driversHandler.UpdateLocation)

	// Component teardown in reverse registration order
	shutdownManager := server.NewShutdownManager(zapLogger)
	shutdownManager.Register(func(ctx context.Context) error {
		return postgresClient.Close()
	})
	shutdownManager.Register(func(ctx context.Context) error {
		return redisClient.Close()
	})
	shutdownManager.Register(func(ctx context.Context) error {
		producer.Stop()
		return nil
	})
	shutdownManager.Register(func(ctx context.Context) error {
		offerConsumer.Stop()
		statusConsumer.Stop()
		return nil
	})

	srv := server.NewGracefulServer(e, zapLogger, configs.Server.Port, configs.Server.ShutdownTimeout)
	if err := srv.Start(); err != nil {
		zapLogger.Error("Server stopped with error", logger.Err(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	shutdownManager.Shutdown(shutdownCtx)
}
