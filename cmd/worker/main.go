// Package main runs the background job worker (reminder and resend emails).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gatherly/backend/config"
	"github.com/gatherly/backend/internal/emaillogs"
	"github.com/gatherly/backend/internal/worker"
	"github.com/gatherly/backend/pkg/database"
	"github.com/gatherly/backend/pkg/mailer"
	"github.com/gatherly/backend/pkg/queue"
	"github.com/gatherly/backend/pkg/redis"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	var mail mailer.EmailClient
	if cfg.Email.APIKey != "" {
		mail = mailer.NewSendGridClient(cfg.Email.APIKey, cfg.Email.FromAddress, cfg.Email.FromName)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, emails will be logged instead of sent")
		mail = mailer.NewLogMailer(logger)
	}

	logRepo := emaillogs.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewEmailProcessor(mail, logRepo, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
