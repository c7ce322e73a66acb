package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/lifesync/internal/config"
	"github.com/BuzzLyutic/lifesync/internal/handler"
	"github.com/BuzzLyutic/lifesync/internal/repo"
	"github.com/BuzzLyutic/lifesync/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := newLogger(cfg.LogEnv)
	defer logger.Sync()

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to Database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping the Database", zap.Error(err))
	}
	logger.Info("Successfully connected to the Database!")

	tasks := repo.NewTaskRepo(pool)
	posts := repo.NewPostRepo(pool)
	statuses := service.NewStatusService(repo.NewStatusRepo(pool), cfg.StatusTTL, service.SystemClock)

	if cfg.FeedOwnerToken == "" {
		logger.Warn("FEED_OWNER_TOKEN not set, public feed follows the most recently active owner")
	}

	router := handler.NewRouter(handler.Services{
		Auth:   service.NewAuthenticator(cfg.ServerPassword),
		Sync:   service.NewSyncService(tasks, repo.NewClientRepo(pool), service.SystemClock),
		Tasks:  service.NewTaskService(tasks, service.SystemClock),
		Status: statuses,
		Posts:  service.NewPostService(posts, service.SystemClock),
		Feed:   service.NewFeedService(repo.NewFeedRepo(pool), tasks, posts, statuses, cfg.FeedOwnerToken, cfg.FeedLimit),
		Ping:   pool.Ping,
	}, logger)

	srv := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped successfully!")
}

func newLogger(env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	return logger
}
