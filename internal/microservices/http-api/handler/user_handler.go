package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/service"
)

type UserHandler struct {
	svc    service.UserService
	logger *zap.Logger
}

func NewUserHandler(svc service.UserService, logger *zap.Logger) *UserHandler {
	return &UserHandler{svc: svc, logger: logger}
}

func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// self-service, registered before /:username so "me" never reaches the lookup
	me := rg.Group("/me", middleware.Authenticated())
	{
		me.GET("", h.GetMe)
		me.PATCH("", h.UpdateMe)
	}

	admin := rg.Group("", middleware.AdminOnly())
	{
		admin.GET("", h.List)
		admin.POST("", h.Create)
		admin.GET("/:username", h.Get)
		admin.PATCH("/:username", h.Update)
		admin.DELETE("/:username", h.Delete)
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.GetMe(ctx, middleware.RequesterFrom(c).UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	var req dto.UserUpdateRequest
	if !bindValid(c, h.logger, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.UpdateMe(ctx, middleware.RequesterFrom(c).UserID, req.ToUpdate())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

// List supports ?search=<exact username>.
func (h *UserHandler) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	users, total, err := h.svc.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(users, func(u models.User) dto.UserResponse {
		return dto.ToUserResponse(&u)
	}, total, page, pageSize))
}

func (h *UserHandler) Create(c *gin.Context) {
	var req dto.UserCreateRequest
	if !bindValid(c, h.logger, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.Create(ctx, req.ToInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToUserResponse(user))
}

func (h *UserHandler) Get(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) Update(c *gin.Context) {
	var req dto.UserUpdateRequest
	if !bindValid(c, h.logger, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.Update(ctx, c.Param("username"), req.ToUpdate())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserResponse(user))
}

func (h *UserHandler) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("username")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
