// Package router assembles the gin engine: global middleware, the /health
// probe and the versioned API.
package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/handler"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/models"
)

const APIPrefix = "/api/v1"

type Handlers struct {
	Auth       *handler.AuthHandler
	Users      *handler.UserHandler
	Categories *handler.VocabularyHandler[models.Category]
	Genres     *handler.VocabularyHandler[models.Genre]
	Titles     *handler.TitleHandler
	Reviews    *handler.ReviewHandler
	Comments   *handler.CommentHandler
	Health     *handler.HealthHandler
}

type Options struct {
	Logger         *zap.Logger
	Tokens         middleware.TokenParser
	Users          middleware.UserLoader
	AuthLimiter    *middleware.IPRateLimiter // nil disables rate limiting on /auth
	TrustedProxies []string
}

func New(opts Options, h Handlers) (*gin.Engine, error) {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, err
	}
	r.Use(middleware.RequestLogger(opts.Logger), middleware.Recovery(opts.Logger))

	h.Health.RegisterRoutes(r)

	api := r.Group(APIPrefix, middleware.AuthMiddleware(opts.Tokens, opts.Users, opts.Logger))

	var authMW []gin.HandlerFunc
	if opts.AuthLimiter != nil {
		authMW = append(authMW, opts.AuthLimiter.Middleware())
	}
	h.Auth.RegisterRoutes(api.Group("/auth"), authMW...)
	h.Users.RegisterRoutes(api.Group("/users"))
	h.Categories.RegisterRoutes(api.Group("/categories"))
	h.Genres.RegisterRoutes(api.Group("/genres"))

	titles := api.Group("/titles")
	h.Titles.RegisterRoutes(titles)
	h.Reviews.RegisterRoutes(titles)
	h.Comments.RegisterRoutes(titles)

	return r, nil
}
