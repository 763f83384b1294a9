package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leavedesk/service-booking/internal/application"
	"github.com/leavedesk/service-booking/internal/calendar"
	"github.com/leavedesk/service-booking/internal/config"
	bookingDomain "github.com/leavedesk/service-booking/internal/domain/booking"
	bookingEvents "github.com/leavedesk/service-booking/internal/events"
	"github.com/leavedesk/service-booking/internal/handler"
	"github.com/leavedesk/service-booking/internal/notify"
	"github.com/leavedesk/service-booking/internal/repository"
	"github.com/leavedesk/service-booking/pkg/auth"
	"github.com/leavedesk/service-booking/pkg/cache"
	"github.com/leavedesk/service-booking/pkg/database"
	"github.com/leavedesk/service-booking/pkg/health"
	"github.com/leavedesk/service-booking/pkg/kafka"
	"github.com/leavedesk/service-booking/pkg/logger"
	"github.com/leavedesk/service-booking/pkg/middleware"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, "service-booking")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("timezone", cfg.Timezone),
	)

	cal, err := calendar.Load(cfg.Timezone)
	if err != nil {
		log.Fatal("failed to load timezone", zap.Error(err))
	}

	// Connect to database
	dbConfig := database.PostgresConfig{
		Host:     cfg.DBConfig.Host,
		Port:     cfg.DBConfig.Port,
		User:     cfg.DBConfig.User,
		Password: cfg.DBConfig.Password,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.SSLMode,
	}
	db, err := database.Connect(dbConfig, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}

	// Run database migrations
	if cfg.AppEnv == "development" {
		if err := db.AutoMigrate(&repository.BookingModel{}, &repository.HistoryModel{}, &repository.MemberModel{}); err != nil {
			log.Fatal("failed to run auto-migration", zap.Error(err))
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		dbURL := dbConfig.DatabaseURL()
		if err := database.RunMigrations(dbURL, "migrations", log); err != nil {
			log.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	healthHandler := health.NewHandler(db, "service-booking")

	// Date lock: Redis when configured, otherwise single-instance mode
	var dateLock application.DateLock = repository.NoopDateLock{}
	if cfg.RedisConfig.Addr != "" {
		redisClient, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Addr:          cfg.RedisConfig.Addr,
			Password:      cfg.RedisConfig.Password,
			DB:            cfg.RedisConfig.DB,
			MaxRetries:    5,
			RetryInterval: 2 * time.Second,
		}, log)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = redisClient.Close() }()

		dateLock = repository.NewRedisDateLock(redisClient, log)
		healthHandler.AddChecker("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		log.Warn("REDIS_ADDR not set, capacity checks are best-effort: concurrent requests for the same day can both pass")
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(
		cfg.JWTConfig.Secret,
		cfg.JWTConfig.Issuer,
		15*time.Minute,
	)

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	bookingRepo := repository.NewGormBookingRepository(db)
	historyRepo := repository.NewGormHistoryRepository(db)
	memberRepo := repository.NewGormMemberRepository(db)

	// Initialize domain services
	validator := bookingDomain.NewValidator(bookingRepo, cal)
	auditLogger := application.NewAuditLogger(historyRepo, log)

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo,
		memberRepo,
		validator,
		cal,
		dateLock,
		auditLogger,
		kafkaProducer,
		log,
	)
	historyService := application.NewHistoryService(historyRepo, log)
	memberService := application.NewMemberService(memberRepo, log)

	// Start the LINE notification consumer when a channel token is configured
	if cfg.LineConfig.ChannelAccessToken != "" {
		groupID := cfg.KafkaConfig.GroupPrefix + "booking-notifier"
		notificationConsumer := bookingEvents.NewNotificationConsumer(
			cfg.KafkaConfig.Brokers,
			groupID,
			notify.NewLineClient(cfg.LineConfig.APIBaseURL, cfg.LineConfig.ChannelAccessToken),
			log,
		)
		defer func() { _ = notificationConsumer.Close() }()

		go func() {
			log.Info("starting booking notification consumer")
			if err := notificationConsumer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("booking notification consumer error", zap.Error(err))
			}
		}()
	} else {
		log.Info("LINE_CHANNEL_ACCESS_TOKEN not set, booking notifications disabled")
	}

	// Initialize HTTP handlers
	bookingHandler := handler.NewBookingHandler(bookingService)
	historyHandler := handler.NewHistoryHandler(historyService)
	memberHandler := handler.NewMemberHandler(memberService)
	adminBookingHandler := handler.NewAdminBookingHandler(bookingService, historyService)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	healthHandler.RegisterRoutes(router)

	// Register routes
	bookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	historyHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	memberHandler.RegisterRoutes(&router.RouterGroup, jwtManager)
	adminBookingHandler.RegisterRoutes(&router.RouterGroup, jwtManager)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down service-booking...")

	// Cancel the consumer context
	cancel()

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}

	log.Info("service-booking stopped")
}
