package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/internal/domain/repository"
	"travel-booking-service/internal/infrastructure/auth"
	"travel-booking-service/internal/infrastructure/cache"
	"travel-booking-service/internal/infrastructure/config"
	"travel-booking-service/internal/infrastructure/oauth"
	"travel-booking-service/internal/infrastructure/persistence"
	"travel-booking-service/internal/infrastructure/router"
	"travel-booking-service/internal/infrastructure/storage"
	"travel-booking-service/internal/interface/gmail"
	"travel-booking-service/internal/interface/handler"
	storeRepo "travel-booking-service/internal/interface/repository"
	"travel-booking-service/internal/job"
	"travel-booking-service/internal/usecase"
	"travel-booking-service/pkg/logger"
	"travel-booking-service/pkg/metrics"
	"travel-booking-service/templates"
)

func main() {
	log := logger.NewLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	log = logger.NewLoggerWithLevel(cfg.LogLevel)
	defer log.Sync()
	log.Info("Starting travel booking service", "version", cfg.AppVersion)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.NewMetrics("travel")

	// Document store
	var store repository.DocumentStore
	var mongoClient *mongo.Client
	switch cfg.StoreDriver {
	case config.StoreMongo:
		log.Info("Connecting to MongoDB")
		mongoClient, err = persistence.NewMongoClient(ctx, cfg.MongoURI, cfg.MongoUser, cfg.MongoPassword)
		if err != nil {
			log.Fatal("Failed to connect to MongoDB", "error", err)
		}
		store = storeRepo.NewMongoDocumentStore(persistence.GetDatabase(mongoClient, cfg.MongoDB), log)
	default:
		log.Warn("Using in-memory document store; data is lost on restart")
		store = storeRepo.NewMemoryDocumentStore()
	}

	checks := map[string]handler.Pinger{"store": store, "redis": nil, "postgres": nil}

	// Reference catalog
	var catalog usecase.ReferenceCatalog
	var gormDB *gorm.DB
	if cfg.PostgresDSN != "" {
		gormDB, err = persistence.NewPostgresDB(ctx, cfg.PostgresDSN, storeRepo.ReferenceModels()...)
		if err != nil {
			log.Fatal("Failed to connect to PostgreSQL", "error", err)
		}
		catalog = usecase.ReferenceCatalog{
			Airlines: storeRepo.NewGormAirlineRepository(gormDB),
			Airports: storeRepo.NewGormAirportRepository(gormDB),
		}
		checks["postgres"] = handler.PingFunc(func(ctx context.Context) error {
			return persistence.PingGorm(ctx, gormDB)
		})
	}

	// Response cache
	var responses cache.Store = cache.NewMemoryCache()
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = persistence.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("Failed to connect to Redis", "error", err)
		}
		redisCache := cache.NewRedisCache(redisClient, cfg.AppName+":")
		responses = redisCache
		checks["redis"] = redisCache
	}

	// Visa document storage
	var objects repository.ObjectStorage
	if cfg.S3Bucket != "" {
		s3Storage, err := storage.NewS3Storage(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			URLExpiry: cfg.S3URLExpiry,
		})
		if err != nil {
			log.Fatal("Failed to set up S3 storage", "error", err)
		}
		objects = s3Storage
	}

	// Outbound email
	var notifier repository.Notifier = gmail.NewLogNotifier(log)
	if cfg.GmailEnabled() {
		gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, cfg.GmailRefreshToken, "", log)
		gmailNotifier, err := gmail.NewGmailNotifier(ctx, gmailOAuth.GetTokenSource(ctx), cfg.GmailSender, log)
		if err != nil {
			log.Fatal("Failed to create Gmail notifier", "error", err)
		}
		notifier = gmailNotifier
	}

	// Notification templates
	kindRouter := router.NewKindRouter(log)
	kindRouter.Register(templates.NewBookingNotificationTemplate())
	kindRouter.Register(templates.NewVisaNotificationTemplate())
	kindRouter.Register(templates.NewPriceAlertNotificationTemplate())

	// Services
	users := usecase.NewUserService(store, log, m)
	notifications := usecase.NewNotificationService(store, users, kindRouter, notifier, log, m)
	notifications.SetBatchSize(cfg.NotificationBatchSize)
	notifications.SetStaleTimeout(cfg.NotificationStaleAfter)
	universities := usecase.NewUniversityService(store, log, m)
	bookings := usecase.NewBookingService(store, catalog, notifications, log, m)
	hotelBookings := usecase.NewHotelBookingService(store, notifications, log, m)
	visas := usecase.NewVisaApplicationService(store, objects, universities, notifications, log, m)
	alerts := usecase.NewPriceAlertService(store, notifications, log, m)
	offers := usecase.NewOfferService(store, log, m)

	// Auth
	var verifier auth.Verifier
	switch cfg.AuthProvider {
	case config.AuthGoogle:
		verifier = auth.NewGoogleVerifier(cfg.GoogleClientID)
	default:
		verifier = auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	}
	verifier = auth.WithAdminEmails(verifier, auth.NewAdminEmails(cfg.AdminEmails))

	engine := router.NewHTTPRouter(router.Handlers{
		Health:        handler.NewHealthHandler(cfg.AppName, checks),
		Bookings:      handler.NewBookingHandler(bookings, log),
		BookingStream: handler.NewBookingStreamHandler(bookings, cfg.AllowedOrigins, log),
		HotelBookings: handler.NewHotelBookingHandler(hotelBookings, log),
		Visas:         handler.NewVisaApplicationHandler(visas, log),
		Universities:  handler.NewUniversityHandler(universities, log),
		Offers:        handler.NewOfferHandler(offers, log),
		PriceAlerts:   handler.NewPriceAlertHandler(alerts, log),
		Users:         handler.NewUserHandler(users, log),
		Reference:     handler.NewReferenceHandler(catalog.Airlines, catalog.Airports, log),
	}, router.Options{
		Verifier: verifier,
		Admins:   users,
		Cache:    responses,
		CacheTTL: cfg.CacheTTL,
		Metrics:  m,
		Logger:   log,
		Mode:     cfg.GinMode,
	})

	// Scheduled jobs
	scheduler := job.NewScheduler(log, m)
	if cfg.JobsEnabled {
		if err := scheduler.Add(job.NotificationDispatch, cfg.NotificationSchedule, job.DispatchNotifications(notifications)); err != nil {
			log.Fatal("Failed to schedule notification dispatch", "error", err)
		}
		if err := scheduler.Add(job.Expiry, cfg.ExpirySchedule, job.ExpireListings(alerts, offers, entity.Now, log)); err != nil {
			log.Fatal("Failed to schedule expiry sweep", "error", err)
		}
		scheduler.Start()
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Info("Received signal", "signal", sig)

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", "error", err)
	}
	if err := scheduler.Stop(shutdownCtx); err != nil {
		log.Error("Scheduler shutdown error", "error", err)
	}

	cancel() // Cancel the context to stop all goroutines

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Redis close error", "error", err)
		}
	}
	if gormDB != nil {
		if sqlDB, err := gormDB.DB(); err == nil {
			sqlDB.Close()
		}
	}
	if mongoClient != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Error("MongoDB disconnect error", "error", err)
		}
	}

	log.Info("Travel booking service stopped")
}
