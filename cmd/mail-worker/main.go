package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"reviewhub/internal/config"
	"reviewhub/internal/logger"
	"reviewhub/internal/mail"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	l, err := logger.New(cfg.IsDevelopment(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("could not build logger: %v", err)
	}
	defer l.Sync() //nolint:errcheck

	srv := newServer(cfg, l)
	mux := mail.NewServeMux(
		mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword),
		cfg.MailFrom,
		l,
	)

	if err := srv.Start(mux); err != nil {
		l.Fatal("mail worker did not start", zap.Error(err))
	}
	l.Info("mail worker started",
		zap.String("redis", cfg.RedisAddr),
		zap.String("smtp", cfg.SMTPAddr()),
		zap.Int("concurrency", cfg.MailWorkerConcurrency))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("shutting down mail worker")
	srv.Shutdown()
}

func newServer(cfg *config.Config, l *zap.Logger) *asynq.Server {
	return asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: cfg.MailWorkerConcurrency,
			Queues:      map[string]int{mail.QueueMail: 1},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				l.Error("mail task failed", zap.String("type", task.Type()), zap.Error(err))
			}),
			Logger: l.Sugar(),
		},
	)
}
