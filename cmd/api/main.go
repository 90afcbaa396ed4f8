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
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/catalog_api/internal/cache"
	"github.com/GTDGit/catalog_api/internal/config"
	"github.com/GTDGit/catalog_api/internal/database"
	"github.com/GTDGit/catalog_api/internal/handler"
	"github.com/GTDGit/catalog_api/internal/middleware"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/worker"
)

// main is the application entrypoint for the catalog API.
func main() {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Setup logger
	setupLogger(cfg.Env)
	log.Info().Str("env", cfg.Env).Str("db_driver", cfg.DB.Driver).Msg("starting catalog api")

	// 3. Connect database
	db, err := database.Connect(&cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		fmt.Fprintf(os.Stderr, "database connection failed: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	// 3a. Run migrations
	if err := database.Migrate(db); err != nil {
		log.Error().Err(err).Msg("migration failed")
		fmt.Fprintf(os.Stderr, "migration failed: %v\n", err)
		os.Exit(1)
	}
	log.Info().Msg("migrations completed successfully")

	// 3b. Listing event sink: Redis stream when configured, the log otherwise
	var sink cache.EventSink = cache.LogSink{}
	if cfg.Redis.Host != "" {
		redisClient, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			log.Error().Err(err).Msg("redis connection failed")
			fmt.Fprintf(os.Stderr, "redis connection failed: %v\n", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		sink = cache.NewRedisStreamSink(redisClient, cfg.Redis.Stream)
		log.Info().Str("stream", cfg.Redis.Stream).Msg("redis connected successfully")
	}
	eventLog := cache.NewEventLog(cfg.Worker.EventBufferSize)

	// 4. Initialize repositories
	userRepo := repository.NewUserRepository(db)
	conditionRepo := repository.NewConditionRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	listingRepo := repository.NewListingRepository(db)
	variantRepo := repository.NewVariantRepository(db)
	skuRepo := repository.NewSKURepository(db)

	// 5. Initialize services
	taxonomySvc := service.NewTaxonomyService(categoryRepo)
	listingSvc := service.NewListingService(db, listingRepo, categoryRepo, userRepo, eventLog)
	variantSvc := service.NewVariantService(db, listingRepo, variantRepo)
	skuSvc := service.NewSKUService(db, listingRepo, variantRepo, skuRepo, conditionRepo)
	projectorSvc := service.NewProjectorService(db, listingRepo, skuRepo)

	// 6. Initialize handlers
	handlers := &handler.Handlers{
		Health:   handler.NewHealthHandler(db),
		Taxonomy: handler.NewTaxonomyHandler(taxonomySvc),
		Listing:  handler.NewListingHandler(listingSvc),
		Variant:  handler.NewVariantHandler(variantSvc, listingSvc),
		SKU:      handler.NewSKUHandler(skuSvc, projectorSvc, listingSvc),
	}

	// 7. Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 8. Initialize middleware
	limiter := middleware.NewInvalidAuthRateLimiter(ctx, 5, time.Minute)
	jwtMw := middleware.NewJWTMiddleware(cfg.JWTSecret, limiter)

	// 9. Setup router
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware(cfg.CORSOrigins))
	router.Use(middleware.LoggingMiddleware())
	handler.SetupRoutes(router, handlers, jwtMw.Handle(), middleware.UserSyncMiddleware(userRepo))

	// 10. Start workers
	eventWorkerDone := make(chan struct{})
	go func() {
		defer close(eventWorkerDone)
		worker.NewEventWorker(eventLog, sink, cfg.Worker.EventFlushInterval).Start(ctx)
	}()

	// 11. Start HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// 12. Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// 13. Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// 14. Cancel context to stop workers; the event worker flushes what is buffered
	cancel()
	<-eventWorkerDone
	log.Info().Msg("Server exited")
}

func setupLogger(env string) {
	if env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
}
