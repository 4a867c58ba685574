// Package main runs the background job worker (invitation email delivery).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/auditorio-asientos/backend/config"
	"github.com/auditorio-asientos/backend/internal/invitations"
	"github.com/auditorio-asientos/backend/internal/registros"
	"github.com/auditorio-asientos/backend/internal/worker"
	"github.com/auditorio-asientos/backend/pkg/database"
	"github.com/auditorio-asientos/backend/pkg/queue"
	"github.com/auditorio-asientos/backend/pkg/redis"
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

	registroRepo := registros.NewRepository(pool)
	campaignRepo := invitations.NewRepository(pool)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	mailer := worker.NewMailer(cfg.Mail, logger)
	processor := worker.NewInvitationProcessor(registroRepo, campaignRepo, mailer, jobQueue, cfg.Server.PublicBaseURL, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started", zap.String("mail_provider", cfg.Mail.Provider))

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
