package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"
)

type ReviewHandler struct {
	svc    service.ReviewService
	logger *zap.Logger
}

func NewReviewHandler(svc service.ReviewService, logger *zap.Logger) *ReviewHandler {
	return &ReviewHandler{svc: svc, logger: logger}
}

// RegisterRoutes expects the /titles group. Ownership checks on single
// reviews happen in the service, after the review is loaded.
func (h *ReviewHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reviews := rg.Group("/:title_id/reviews", middleware.AuthenticatedOrReadOnly())
	{
		reviews.GET("", h.List)
		reviews.POST("", h.Create)
		reviews.GET("/:review_id", h.Get)
		reviews.PATCH("/:review_id", h.Update)
		reviews.DELETE("/:review_id", h.Delete)
	}
}

// List returns reviews of a title, newest first.
// GET /titles/:title_id/reviews
func (h *ReviewHandler) List(c *gin.Context) {
	titleID, ok := pathID(c, h.logger, "title_id")
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, total, err := h.svc.List(ctx, titleID, page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(reviews, dto.ToReviewResponse, total, page, pageSize))
}

func (h *ReviewHandler) Get(c *gin.Context) {
	titleID, ok := pathID(c, h.logger, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, h.logger, "review_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.svc.Get(ctx, titleID, reviewID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewResponse(*review))
}

// Create posts the caller's review; a second review of the same title is a 400.
// POST /titles/:title_id/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	titleID, ok := pathID(c, h.logger, "title_id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if err := req.ValidateCreate(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.svc.Create(ctx, middleware.RequesterFrom(c), titleID, *req.Text, *req.Score)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToReviewResponse(*review))
}

func (h *ReviewHandler) Update(c *gin.Context) {
	titleID, ok := pathID(c, h.logger, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, h.logger, "review_id")
	if !ok {
		return
	}
	var req dto.ReviewRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if err := req.ValidatePatch(); err != nil {
		respondError(c, h.logger, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.svc.Update(ctx, middleware.RequesterFrom(c), titleID, reviewID, req.ToPatch())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToReviewResponse(*review))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	titleID, ok := pathID(c, h.logger, "title_id")
	if !ok {
		return
	}
	reviewID, ok := pathID(c, h.logger, "review_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, middleware.RequesterFrom(c), titleID, reviewID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
