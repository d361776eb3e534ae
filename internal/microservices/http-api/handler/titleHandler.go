package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"
)

type TitleHandler struct {
	svc    service.TitleService
	logger *zap.Logger
}

func NewTitleHandler(svc service.TitleService, logger *zap.Logger) *TitleHandler {
	return &TitleHandler{svc: svc, logger: logger}
}

func (h *TitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	titles := rg.Group("", middleware.AdminOrReadOnly())
	{
		titles.GET("", h.List)
		titles.POST("", h.Create)
		titles.GET("/:title_id", h.Get)
		titles.PATCH("/:title_id", h.Update)
		titles.DELETE("/:title_id", h.Delete)
	}
}

// List filters by name, search, genre, category (slugs) and year.
// GET /titles
func (h *TitleHandler) List(c *gin.Context) {
	var q dto.TitleQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondError(c, h.logger, apperr.Validation("invalid filter: %s", err.Error()))
		return
	}
	page, pageSize := pageParams(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	list, total, err := h.svc.List(ctx, q.ToFilter(), page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(list, dto.ToTitleResponse, total, page, pageSize))
}

func (h *TitleHandler) Get(c *gin.Context) {
	id, ok := pathID(c, h.logger, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.svc.Get(ctx, id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTitleResponse(*title))
}

func (h *TitleHandler) Create(c *gin.Context) {
	var req dto.TitleRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if err := req.ValidateCreate(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.svc.Create(ctx, req.ToInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTitleResponse(*title))
}

func (h *TitleHandler) Update(c *gin.Context) {
	id, ok := pathID(c, h.logger, "title_id")
	if !ok {
		return
	}
	var req dto.TitleRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if err := req.ValidatePatch(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	title, err := h.svc.Update(ctx, id, req.ToInput())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTitleResponse(*title))
}

// Delete removes the title together with its reviews and their comments.
func (h *TitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, h.logger, "title_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
