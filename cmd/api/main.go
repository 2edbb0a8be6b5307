package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"match-coach/internal/config"
	"match-coach/internal/db"
	apihttp "match-coach/internal/http"
	"match-coach/internal/llm"
	"match-coach/internal/repository"
	"match-coach/internal/service"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Contexto de usuario: Redis si esta configurado, mapa en proceso si no.
	contextStore := service.NewMemoryContextStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed, using in-memory context store", zap.Error(err))
		} else {
			contextStore = service.NewRedisContextStore(redisClient)
		}
		cancel()
	}

	var (
		connectionRepo repository.ConnectionRepository
		snapshotter    service.MetricSnapshotter
	)
	if cfg.DatabaseURL != "" {
		pool, err := db.NewPool(ctx, cfg)
		if err != nil {
			logger.Fatal("db connect", zap.Error(err))
		}
		defer pool.Close()
		connectionRepo = repository.NewPgConnectionRepository(pool)
		snapshotter = repository.NewPgMetricRepository(pool)
	} else {
		logger.Warn("database not configured, connections and metric snapshots disabled")
	}

	executor := llm.NewHTTPExecutor(cfg.Providers(), logger)

	ledger := service.NewLearningLedger(contextStore, snapshotter, logger)
	ledger.Restore(ctx)

	sessionFactory := service.NewSessionContextFactory(contextStore)
	personalizer := service.NewPromptPersonalizer(ledger)
	basePrompts := service.TemplateBasePrompts{}
	parser := service.ResponseParser{}
	results := service.NewMemoryResultStore()
	orchestrator := service.NewPromptOrchestrator(contextStore, basePrompts, personalizer, ledger, executor, parser, results, logger)
	extractor := service.NewScreenshotExtractor(executor, executor, cfg.VisionProvider, logger)

	var jwtSvc *service.JWTService
	if cfg.JWTSecret != "" {
		jwtSvc = service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	} else {
		logger.Warn("jwt secret not configured, api is unauthenticated")
	}

	promptHandler := apihttp.NewPromptHandler(logger, sessionFactory, orchestrator, connectionRepo)
	contextHandler := apihttp.NewContextHandler(logger, contextStore, orchestrator)
	screenshotHandler := apihttp.NewScreenshotHandler(logger, extractor, connectionRepo)
	connectionHandler := apihttp.NewConnectionHandler(logger, connectionRepo)
	router := apihttp.NewRouter(logger, jwtSvc, promptHandler, contextHandler, screenshotHandler, connectionHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
