package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/service"
)

type AuthHandler struct {
	authService service.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: authService, logger: logger}
}

// RegisterRoutes mounts the public signup flow. Extra middleware such as a
// rate limiter is applied in front of both endpoints.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, mw ...gin.HandlerFunc) {
	rg.POST("/signup", slices.Concat(mw, []gin.HandlerFunc{h.Signup})...)
	rg.POST("/token", slices.Concat(mw, []gin.HandlerFunc{h.Token})...)
}

// Signup registers a user or re-sends a fresh code for an existing
// (username, email) pair.
// POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !bindValid(c, h.logger, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.authService.Signup(ctx, req.Username, req.Email)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSignupResponse(user))
}

// Token exchanges a confirmation code for an access token.
// POST /auth/token
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenRequest
	if !bindValid(c, h.logger, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	token, err := h.authService.GetToken(ctx, req.Username, req.ConfirmationCode)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}
