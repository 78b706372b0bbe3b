package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	fbapp "firebase.google.com/go/v4"

	"dinereserve/internal/adapter/api"
	"dinereserve/internal/adapter/api/handler"
	apimiddleware "dinereserve/internal/adapter/api/middleware"
	"dinereserve/internal/adapter/api/router"
	"dinereserve/internal/adapter/repository"
	"dinereserve/internal/infrastructure/cache"
	"dinereserve/internal/infrastructure/firebase"
	"dinereserve/internal/infrastructure/metrics"
	"dinereserve/internal/infrastructure/queue"
	"dinereserve/internal/infrastructure/ratelimit"
	"dinereserve/internal/infrastructure/storage"
	"dinereserve/internal/usecase"
	"dinereserve/pkg/config"
	"dinereserve/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log().Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opt option.ClientOption
	if cfg.ServiceAccountJSON != "" {
		logger.Info("Using Firebase service account from environment variable")
		opt = option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON))
	} else {
		serviceAccountPath := cfg.ServiceAccountPath
		if serviceAccountPath == "" {
			serviceAccountPath = "./firebase-service-account.json"
		}
		if _, err := os.Stat(serviceAccountPath); os.IsNotExist(err) {
			logger.Log().Fatal().Str("path", serviceAccountPath).Msg("Service account file does not exist")
		}
		logger.Info("Using Firebase service account from file: %s", serviceAccountPath)
		opt = option.WithCredentialsFile(serviceAccountPath)
	}

	firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opt)
	if err != nil {
		logger.Log().Fatal().Err(err).Msg("Failed to initialize Firebase")
	}

	authClient, err := firebaseApp.Auth(ctx)
	if err != nil {
		logger.Log().Fatal().Err(err).Msg("Failed to initialize Firebase Auth")
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opt)
	if err != nil {
		logger.Log().Fatal().Err(err).Msg("Failed to create Firestore client")
	}
	defer firestoreClient.Close()

	var proofStorage handler.ProofStorage
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opt)
		if err != nil {
			logger.Log().Fatal().Err(err).Msg("Failed to initialize Cloud Storage")
		}
		defer storageClient.Close()
		proofStorage = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set, payment proof uploads disabled")
	}

	var ratingGate usecase.RefreshGate
	if cfg.RedisAddr != "" {
		redisClient := cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis ping failed, rating refresh gate will retry per request: %v", err)
		}
		ratingGate = cache.NewRefreshThrottle(redisClient, "dinereserve:rating-refresh:", cfg.RatingRefreshInterval)
	} else {
		logger.Warn("REDIS_ADDR not set, ratings refresh on every read")
	}

	var publisher usecase.NotificationPublisher
	if cfg.RabbitMQURL != "" {
		amqpPublisher := queue.NewPublisher(cfg.RabbitMQURL)
		defer amqpPublisher.Close()
		publisher = amqpPublisher
	}

	reservationRepo := repository.NewFirestoreReservationRepository(firestoreClient)
	restaurantRepo := repository.NewFirestoreRestaurantRepository(firestoreClient)
	reviewRepo := repository.NewFirestoreReviewRepository(firestoreClient)
	notificationRepo := repository.NewFirestoreNotificationRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)

	firebaseAuthClient := firebase.NewFirebaseAuthClient(authClient)

	dispatcher := usecase.NewNotificationDispatcher(notificationRepo, publisher, cfg.NotificationWorkers, cfg.NotificationQueueSize)
	ratings := usecase.NewRatingAggregator(reviewRepo, restaurantRepo, ratingGate)
	store := usecase.NewReservationStore(reservationRepo)

	reservationUseCase := usecase.NewReservationUseCase(store, restaurantRepo, userRepo, dispatcher)
	reviewUseCase := usecase.NewReviewUseCase(reviewRepo, restaurantRepo, userRepo, ratings, dispatcher)

	handler.Setup(reservationUseCase, reviewUseCase, dispatcher, proofStorage)
	handler.SetupHealthHandler(firebaseAuthClient)

	limiter := ratelimit.NewRateLimiter(
		ratelimit.Policy{PerMinute: 60, Burst: 20},
		map[string]ratelimit.Policy{
			router.ActionSubmitReservation: {PerMinute: cfg.ReservationRateLimitPerMin, Burst: cfg.ReservationRateLimitPerMin},
		},
	)
	limiter.StartCleanupRoutine(ctx)

	e := echo.New()
	e.HideBanner = true

	e.Use(apimiddleware.RequestObserver())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(firebaseAuthClient)
	adminMiddleware := apimiddleware.NewAdminMiddleware(userRepo)

	router.Setup(e, authMiddleware, adminMiddleware, limiter)

	if cfg.MetricsEnabled {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(metrics.InitRegistry())))
	}

	go func() {
		logger.Info("Starting server on port %s...", cfg.ServerPort)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log().Fatal().Err(err).Msg("Server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown: %v", err)
	}
	if err := dispatcher.Close(); err != nil {
		logger.Error("Notification outbox drain: %v", err)
	}
}
