package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"talkk-backend/internal/cache"
	"talkk-backend/internal/config"
	"talkk-backend/internal/handlers"
	"talkk-backend/internal/jobs"
	"talkk-backend/internal/middleware"
	"talkk-backend/internal/push"
	"talkk-backend/internal/repository"
	"talkk-backend/internal/services"
	"talkk-backend/internal/sms"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const feedCacheTTL = 5 * time.Minute

func Run() {
	// Load configuration
	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logger
	setupLogger(cfg.Log.Level)

	// Connect to database
	db, err := pgxpool.New(context.Background(), cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Test database connection
	if err := db.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Database connection established")

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping Redis")
	}
	log.Info().Msg("Redis connection established")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	verificationRepo := repository.NewVerificationRepository(db)
	broadcastRepo := repository.NewBroadcastRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	moderationRepo := repository.NewModerationRepository(db)

	// Initialize infrastructure clients
	feedCache := cache.NewBroadcastCache(rdb, feedCacheTTL)
	eventQueue := jobs.NewQueue(rdb)
	pushClient := push.NewClient(cfg.Push.Endpoint, cfg.Push.Timeout)
	smsSender := sms.NewHTTPSender(cfg.SMS.Endpoint, cfg.SMS.APIKey, cfg.SMS.Sender)

	// Initialize services
	authService := services.NewAuthService(userRepo, verificationRepo, smsSender, cfg.JWT.Secret, cfg.JWT.ExpDays)
	userService := services.NewUserService(userRepo, moderationRepo, eventQueue)
	broadcastService := services.NewBroadcastService(
		broadcastRepo,
		conversationRepo,
		messageRepo,
		userRepo,
		moderationRepo,
		feedCache,
		eventQueue,
	)
	conversationService := services.NewConversationService(
		conversationRepo,
		messageRepo,
		userRepo,
		moderationRepo,
		eventQueue,
	)
	walletService := services.NewWalletService(userRepo)
	audioService, err := services.NewAudioService(
		cfg.AWS.Region,
		cfg.AWS.S3Bucket,
		cfg.AWS.AccessKey,
		cfg.AWS.SecretKey,
		cfg.AWS.Endpoint,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create audio service")
	}
	sweepService := services.NewSweepService(
		broadcastRepo,
		verificationRepo,
		feedCache,
		cfg.Jobs.SweepInterval,
		cfg.Jobs.CleanupInterval,
	)
	dispatcher := jobs.NewDispatcher(rdb, userRepo, pushClient)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	broadcastHandler := handlers.NewBroadcastHandler(broadcastService, audioService)
	conversationHandler := handlers.NewConversationHandler(conversationService, audioService)
	walletHandler := handlers.NewWalletHandler(walletService)

	// Setup router
	r := chi.NewRouter()

	// Middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(corsMiddleware)

	// Routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/auth/request_code", authHandler.RequestCode)
		r.Post("/auth/verify_code", authHandler.VerifyCode)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authService, userRepo))

			r.Get("/users/me", userHandler.Me)
			r.Put("/users/me", userHandler.UpdateMe)
			r.Post("/users/me/push_token", userHandler.RegisterPushToken)
			r.Post("/users/{user_id}/block", userHandler.Block)
			r.Delete("/users/{user_id}/block", userHandler.Unblock)
			r.Post("/users/{user_id}/report", userHandler.Report)

			r.Get("/broadcasts", broadcastHandler.List)
			r.Post("/broadcasts", broadcastHandler.Create)
			r.Post("/broadcasts/upload", broadcastHandler.Upload)
			r.Delete("/broadcasts/{broadcast_id}", broadcastHandler.Deactivate)
			r.Post("/broadcasts/{broadcast_id}/reply", broadcastHandler.Reply)

			r.Get("/conversations", conversationHandler.List)
			r.Post("/conversations/upload", conversationHandler.Upload)
			r.Get("/conversations/{conversation_id}/messages", conversationHandler.History)
			r.Post("/conversations/{conversation_id}/messages", conversationHandler.SendMessage)
			r.Put("/conversations/{conversation_id}/favorite", conversationHandler.Favorite)
			r.Delete("/conversations/{conversation_id}", conversationHandler.Delete)

			r.Get("/wallet", walletHandler.Balance)
			r.Get("/wallet/transactions", walletHandler.Transactions)
		})
	})

	// Start background workers
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	go dispatcher.Start(workerCtx)
	sweepService.Start(workerCtx)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("host", cfg.Server.Host).
			Int("port", cfg.Server.Port).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop background workers first so no new pushes are queued mid-shutdown
	stopWorkers()
	sweepService.Stop()

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// setupLogger configures zerolog logger
func setupLogger(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
