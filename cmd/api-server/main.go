package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"reviewhub/database"
	"reviewhub/internal/cache"
	"reviewhub/internal/config"
	"reviewhub/internal/logger"
	"reviewhub/internal/mail"
	"reviewhub/internal/microservices/http-api/handler"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/repository"
	"reviewhub/internal/microservices/http-api/router"
	"reviewhub/internal/microservices/http-api/service"
	"reviewhub/internal/microservices/http-api/token"
	"reviewhub/internal/microservices/http-api/validators"
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

	if err := run(cfg, l); err != nil {
		l.Fatal("api server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, l *zap.Logger) error {
	if err := validators.SetUsernamePattern(cfg.UsernamePattern); err != nil {
		return err
	}

	db, err := database.ConnectDB(cfg, l)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	userCache := cache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, l)
	defer userCache.Close()

	queue := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer queue.Close()

	signer, err := token.NewSigner(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}

	engine, err := buildEngine(cfg, l, db, userCache, queue, signer)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		l.Info("api server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.GoEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		l.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

func buildEngine(cfg *config.Config, l *zap.Logger, db *gorm.DB, userCache *cache.Client, queue *asynq.Client, signer *token.Signer) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// repositories
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	genreRepo := repository.NewGenreRepository(db)
	titleRepo := repository.NewTitleRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	// services
	authService := service.NewAuthService(userRepo, signer, mail.NewQueueDispatcher(queue), l)
	userService := service.NewUserService(userRepo, userCache, cfg.UserCacheTTL, l)
	categoryService := service.NewCategoryService(categoryRepo)
	genreService := service.NewGenreService(genreRepo)
	titleService := service.NewTitleService(titleRepo, categoryRepo, genreRepo)
	reviewService := service.NewReviewService(reviewRepo, titleRepo)
	commentService := service.NewCommentService(commentRepo, reviewRepo)

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	checks := map[string]handler.Check{
		"database": sqlDB.PingContext,
		"cache":    userCache.Ping,
	}

	return router.New(router.Options{
		Logger:         l,
		Tokens:         signer,
		Users:          userService,
		AuthLimiter:    middleware.NewIPRateLimiter(cfg.AuthRateLimit, cfg.AuthRateBurst),
		TrustedProxies: cfg.TrustedProxies,
	}, router.Handlers{
		Auth:       handler.NewAuthHandler(authService, l),
		Users:      handler.NewUserHandler(userService, l),
		Categories: handler.NewCategoryHandler(categoryService, l),
		Genres:     handler.NewGenreHandler(genreService, l),
		Titles:     handler.NewTitleHandler(titleService, l),
		Reviews:    handler.NewReviewHandler(reviewService, l),
		Comments:   handler.NewCommentHandler(commentService, l),
		Health:     handler.NewHealthHandler(checks, l),
	})
}
