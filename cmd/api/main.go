// cmd/api/main.go
// Bootstraps the matching service: config, database, redis, HTTP server
// and the nightly scheduler.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hjarta-app/hjarta-backend/internal/auth"
	"github.com/hjarta-app/hjarta-backend/internal/common/database"
	"github.com/hjarta-app/hjarta-backend/internal/common/logger"
	"github.com/hjarta-app/hjarta-backend/internal/common/utils"
	"github.com/hjarta-app/hjarta-backend/internal/config"
	"github.com/hjarta-app/hjarta-backend/internal/matching"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		panic("configuration invalid: " + err.Error())
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer log.Sync()

	log.Info("starting hjarta matching service",
		zap.String("environment", cfg.Environment),
		zap.String("port", cfg.Port))

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	if err := runMigrations(db); err != nil {
		log.Fatal("migrations failed", zap.Error(err))
	}

	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer redisClient.Close()

	clock, err := matching.NewClock(cfg.MatchTimezone)
	if err != nil {
		log.Fatal("failed to load match timezone", zap.Error(err))
	}

	var photos matching.PhotoResolver
	if cfg.PhotoS3Bucket != "" {
		photos, err = matching.NewS3PhotoResolver(cfg.AWSRegion, cfg.PhotoS3Bucket, matching.PhotoURLTTL(cfg.PoolTTL), log)
		if err != nil {
			log.Fatal("failed to initialize photo resolver", zap.Error(err))
		}
	} else {
		photos = matching.NewNoopPhotoResolver()
	}

	repo := matching.NewPostgresRepository(db)
	seen := matching.NewSeenCache(redisClient, repo, cfg.RepeatLookback, log)
	builder := matching.NewBuilder(
		repo,
		matching.NewScorer(),
		matching.NewTemplateIcebreakers(),
		photos,
		seen,
		clock,
		matching.BuilderConfig{
			RequestedBatchSize: cfg.RequestedBatchSize,
			SimilarRatio:       cfg.SimilarRatio,
			FreeTierLimit:      cfg.FreeTierDailyLimit,
			PoolTTL:            cfg.PoolTTL,
		},
		log,
	)
	matchingService := matching.NewService(repo, builder, seen, clock, cfg.OnboardingHoldoff, log)

	authService := auth.NewService(cfg.JWTSecret, cfg.AccessTokenExpiry)
	authMiddleware := auth.NewMiddleware(authService)

	router := mux.NewRouter()
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(); err != nil {
			utils.RespondWithError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	matchingHandlers := matching.NewHandlers(matchingService, log)
	matching.RegisterRoutes(router, matchingHandlers, authMiddleware)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := matching.NewScheduler(matchingService, clock, cfg.GenerateHour, cfg.CleanupHour, log)
	scheduler.Start(ctx)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("http server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}
