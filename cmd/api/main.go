package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/campus-buddy/backend/internal/api"
	"github.com/campus-buddy/backend/internal/assistant"
	"github.com/campus-buddy/backend/internal/auth"
	"github.com/campus-buddy/backend/internal/cache/redis"
	"github.com/campus-buddy/backend/internal/catalog"
	"github.com/campus-buddy/backend/internal/chatbot"
	"github.com/campus-buddy/backend/internal/complaints"
	"github.com/campus-buddy/backend/internal/faq"
	"github.com/campus-buddy/backend/internal/metrics"
	"github.com/campus-buddy/backend/internal/nlp"
	"github.com/campus-buddy/backend/internal/storage/attachments"
	"github.com/campus-buddy/backend/internal/storage/sqlite"
	"github.com/campus-buddy/backend/pkg/circuitbreaker"
	"github.com/campus-buddy/backend/pkg/config"
	appLogger "github.com/campus-buddy/backend/pkg/logger"
)

const serviceName = "campus-buddy-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(serviceName, cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Campus Buddy API Server")

	metrics.Init()
	ctx := context.Background()

	cat, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		appLogger.Fatal("Failed to load catalog", zap.Error(err))
	}

	analyzer := nlp.NewAnalyzer(nlp.Options{
		Polarity:    cfg.NLP.Polarity,
		Linguistic:  cfg.NLP.Linguistic,
		KeywordsTop: cfg.NLP.KeywordsTop,
	})

	matcher := faq.NewMatcher(cat.Flatten())
	appLogger.Info("FAQ corpus loaded", zap.Int("questions", matcher.Len()))

	adapter, err := assistant.New(ctx, cfg.Assistant)
	if err != nil {
		appLogger.Fatal("Failed to create assistant", zap.Error(err))
	}

	historyTTL := time.Duration(cfg.Redis.HistoryTTL) * time.Second
	var history chatbot.Store = chatbot.NewMemoryStore(chatbot.WithIdleTTL(historyTTL))
	if cfg.Redis.Host != "" {
		redisClient, err := redis.NewClient(
			cfg.Redis.Host,
			cfg.Redis.Port,
			cfg.Redis.Password,
			cfg.Redis.DB,
			historyTTL,
		)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
		history = chatbot.NewBreakerStore(redisClient, circuitbreaker.New("chat-history", circuitbreaker.Config{
			FailureThreshold: 3,
			Timeout:          30 * time.Second,
			Logger:           appLogger.GetLogger(),
		}))
	}

	dispatcher := chatbot.NewDispatcher(matcher, adapter, history)

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(ctx); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var store attachments.Store
	switch cfg.Attachments.Backend {
	case "s3":
		store, err = attachments.NewS3Store(ctx, cfg.Attachments.S3Bucket, cfg.Attachments.S3Prefix, cfg.Attachments.MaxBytes)
	default:
		store, err = attachments.NewLocalStore(cfg.Attachments.Dir, cfg.Attachments.MaxBytes)
	}
	if err != nil {
		appLogger.Fatal("Failed to create attachment store", zap.Error(err))
	}

	accounts, err := auth.NewAccounts(cfg.Auth.Accounts)
	if err != nil {
		appLogger.Fatal("Failed to load accounts", zap.Error(err))
	}
	tokens := auth.NewJWTManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLMin)*time.Minute)
	if cfg.Auth.JWTSecret == "change-me" && !cfg.Server.Development {
		appLogger.Warn("Using the default JWT secret; set auth.jwtSecret")
	}

	service := complaints.NewService(sqliteClient, store, analyzer, cat)

	app, stop := api.New(api.Deps{
		Config:     cfg,
		Catalog:    cat,
		Analyzer:   analyzer,
		Dispatcher: dispatcher,
		Complaints: service,
		Accounts:   accounts,
		Tokens:     tokens,
		DB:         sqliteClient,
		RequestLog: true,
	})
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting",
		zap.String("address", addr),
		zap.String("assistant", adapter.Provider()),
	)

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		appLogger.Error("Server shutdown failed", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
