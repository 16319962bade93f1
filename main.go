// File: servicehub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"servicehub/config"
	"servicehub/cron"
	"servicehub/database"
	appointmentRepo "servicehub/database/repository/appointment"
	overrideRepo "servicehub/database/repository/override"
	"servicehub/handlers"
	"servicehub/middleware"
	"servicehub/routes"
	"servicehub/services/appointment"
	"servicehub/services/availability"
	"servicehub/services/invalidation"
	"servicehub/services/slotcache"
	"servicehub/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger := utils.GetLogger()
	defer func() { _ = logger.Sync() }()

	database.InitDB()
	utils.InitCache()
	queueRedis := utils.NewQueueClient()

	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	utils.StartHealthMonitor(rootCtx, 30*time.Second, []*redis.Client{utils.CacheClient, queueRedis}, database.MongoClient)

	if gin.Mode() == gin.DebugMode && config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// repositories.
	apptRepo := appointmentRepo.NewMongoAppointmentRepo()
	ovrRepo := overrideRepo.NewMongoOverrideRepo()
	if err := apptRepo.EnsureIndexes(); err != nil {
		logger.Fatal("main: failed to ensure appointment indexes", zap.Error(err))
	}
	if err := ovrRepo.EnsureIndexes(); err != nil {
		logger.Fatal("main: failed to ensure override indexes", zap.Error(err))
	}

	// slot generation.
	loc := cfg.Location()
	template, err := availability.NewDayTemplate(cfg.SlotTemplate, cfg.SlotDayStart, cfg.SlotDayEnd, cfg.FixedTimes())
	if err != nil {
		logger.Fatal("main: invalid slot template", zap.Error(err))
	}
	generator := availability.NewGenerator(template, loc)
	generator.DaysAhead = cfg.SlotDaysAhead

	var availabilitySvc availability.AvailabilityService = &availability.DefaultAvailabilityService{
		Generator:    generator,
		Reservations: apptRepo,
		Overrides:    ovrRepo,
		Logger:       logger.Named("availability"),
	}

	var store slotcache.Store
	switch cfg.SlotCacheBackend {
	case "redis":
		store = slotcache.NewRedisStore(utils.CacheClient, cfg.SlotCacheTTL)
	case "memory":
		store = slotcache.NewMemoryStore(cfg.SlotCacheSize, cfg.SlotCacheTTL)
	}
	if store != nil {
		availabilitySvc = &slotcache.CachedAvailabilityService{
			Next:   availabilitySvc,
			Store:  store,
			Logger: logger.Named("slotcache"),
		}
	}

	// invalidation: local cache first, then fan out to other instances.
	var notifiers invalidation.Fanout
	if store != nil {
		notifiers = append(notifiers, &invalidation.CacheNotifier{Store: store, Logger: logger.Named("invalidation")})
	}
	var listener *invalidation.Listener
	var amqpConn *amqp.Connection
	if cfg.RabbitMQEnabled {
		amqpConn, err = amqp.Dial(cfg.RabbitMQURL)
		if err != nil {
			logger.Fatal("main: failed to connect to RabbitMQ", zap.Error(err))
		}
		pubCh, err := amqpConn.Channel()
		if err != nil {
			logger.Fatal("main: failed to open RabbitMQ channel", zap.Error(err))
		}
		publisher, err := invalidation.NewPublisher(pubCh, cfg.RabbitMQExchange, logger.Named("rabbitmq"))
		if err != nil {
			logger.Fatal("main: failed to set up invalidation publisher", zap.Error(err))
		}
		notifiers = append(notifiers, publisher)

		// A shared redis store is already busted by the local notifier.
		if store != nil && cfg.SlotCacheBackend == "memory" {
			subCh, err := amqpConn.Channel()
			if err != nil {
				logger.Fatal("main: failed to open RabbitMQ channel", zap.Error(err))
			}
			listener = invalidation.NewListener(subCh, cfg.RabbitMQExchange, store, logger.Named("rabbitmq"))
			if err := listener.Start(rootCtx); err != nil {
				logger.Fatal("main: failed to start invalidation listener", zap.Error(err))
			}
		}
	}

	appointmentSvc := &appointment.DefaultAppointmentService{
		Repo:     apptRepo,
		Notifier: notifiers,
		Logger:   logger.Named("appointment"),
	}

	// background completion sweep.
	worker := cron.InitSweepWorker(appointmentSvc, logger.Named("sweep"))
	queue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisQueueDB,
	})
	scheduler, err := cron.StartSweepScheduler(queue, cfg.SweepSchedule, logger.Named("sweep"))
	if err != nil {
		logger.Fatal("main: failed to start sweep scheduler", zap.Error(err))
	}

	// handlers.
	var gate utils.ConfirmationGate = utils.NewRedisConfirmationGate(utils.CacheClient, cfg.CancelConfirmTTL)
	if cfg.SlotCacheBackend == "memory" {
		gate = utils.NewMemoryConfirmationGate(cfg.SlotCacheSize, cfg.CancelConfirmTTL)
	}
	handlerBundle := handlers.NewHandlerBundle(
		handlers.NewAvailabilityHandler(availabilitySvc, loc, cfg.FetchRetryAttempts, cfg.FetchRetryBaseDelay),
		handlers.NewAppointmentHandler(appointmentSvc, gate, cfg.CancelConfirmTTL),
		handlers.NewOverrideHandler(ovrRepo, notifiers, loc),
	)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(utils.ErrorHandler())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}

	<-scheduler.Stop().Done()
	worker.Shutdown()
	_ = queue.Close()
	stopBackground()
	if listener != nil {
		_ = listener.Stop()
	}
	if amqpConn != nil {
		_ = amqpConn.Close()
	}
	_ = queueRedis.Close()
	if err := database.Disconnect(ctx); err != nil {
		logger.Sugar().Errorf("main: mongo disconnect: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
