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

// VocabularyHandler serves /categories and /genres.
type VocabularyHandler[T models.Vocabulary] struct {
	svc    service.VocabularyService[T]
	build  func(dto.VocabularyRequest) T
	view   func(T) dto.VocabularyResponse
	logger *zap.Logger
}

func NewCategoryHandler(svc service.VocabularyService[models.Category], logger *zap.Logger) *VocabularyHandler[models.Category] {
	return &VocabularyHandler[models.Category]{
		svc:    svc,
		build:  dto.VocabularyRequest.ToCategory,
		view:   dto.FromCategory,
		logger: logger,
	}
}

func NewGenreHandler(svc service.VocabularyService[models.Genre], logger *zap.Logger) *VocabularyHandler[models.Genre] {
	return &VocabularyHandler[models.Genre]{
		svc:    svc,
		build:  dto.VocabularyRequest.ToGenre,
		view:   dto.FromGenre,
		logger: logger,
	}
}

func (h *VocabularyHandler[T]) RegisterRoutes(rg *gin.RouterGroup) {
	rg.Use(middleware.AdminOrReadOnly())
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.DELETE("/:slug", h.Delete)
}

// List supports ?search=<name substring>.
func (h *VocabularyHandler[T]) List(c *gin.Context) {
	page, pageSize := pageParams(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	items, total, err := h.svc.List(ctx, c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(items, h.view, total, page, pageSize))
}

func (h *VocabularyHandler[T]) Create(c *gin.Context) {
	var req dto.VocabularyRequest
	if !bindValid(c, h.logger, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	item := h.build(req)
	if err := h.svc.Create(ctx, &item); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, h.view(item))
}

func (h *VocabularyHandler[T]) Delete(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, c.Param("slug")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
