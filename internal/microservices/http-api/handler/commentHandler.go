package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/dto"
	"reviewhub/internal/microservices/http-api/middleware"
	"reviewhub/internal/microservices/http-api/service"
)

type CommentHandler struct {
	commentService service.CommentService
	logger         *zap.Logger
}

func NewCommentHandler(commentService service.CommentService, logger *zap.Logger) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
		logger:         logger,
	}
}

// RegisterRoutes registers comment routes under the /titles group
func (h *CommentHandler) RegisterRoutes(router *gin.RouterGroup) {
	comments := router.Group("/:title_id/reviews/:review_id/comments", middleware.AuthenticatedOrReadOnly())
	{
		comments.GET("", h.List)
		comments.POST("", h.Create)
		comments.GET("/:comment_id", h.Get)
		comments.PATCH("/:comment_id", h.Update)
		comments.DELETE("/:comment_id", h.Delete)
	}
}

// parents reads title_id and review_id.
func (h *CommentHandler) parents(c *gin.Context) (titleID, reviewID int64, ok bool) {
	if titleID, ok = pathID(c, h.logger, "title_id"); !ok {
		return 0, 0, false
	}
	if reviewID, ok = pathID(c, h.logger, "review_id"); !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

// List returns the comments of a review, newest first
// GET /titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) List(c *gin.Context) {
	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	page, pageSize := pageParams(c)
	ctx, cancel := requestContext(c)
	defer cancel()

	comments, total, err := h.commentService.List(ctx, titleID, reviewID, page, pageSize)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginated(comments, dto.ToCommentResponse, total, page, pageSize))
}

func (h *CommentHandler) Get(c *gin.Context) {
	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, h.logger, "comment_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Get(ctx, titleID, reviewID, commentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentResponse(*comment))
}

// Create creates a new comment on a review
// POST /titles/:title_id/reviews/:review_id/comments
func (h *CommentHandler) Create(c *gin.Context) {
	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindValid(c, h.logger, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Create(ctx, middleware.RequesterFrom(c), titleID, reviewID, req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCommentResponse(*comment))
}

// Update edits a comment (author or moderator)
func (h *CommentHandler) Update(c *gin.Context) {
	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, h.logger, "comment_id")
	if !ok {
		return
	}
	var req dto.CommentRequest
	if !bindValid(c, h.logger, &req) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	comment, err := h.commentService.Update(ctx, middleware.RequesterFrom(c), titleID, reviewID, commentID, req.Text)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCommentResponse(*comment))
}

func (h *CommentHandler) Delete(c *gin.Context) {
	titleID, reviewID, ok := h.parents(c)
	if !ok {
		return
	}
	commentID, ok := pathID(c, h.logger, "comment_id")
	if !ok {
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.commentService.Delete(ctx, middleware.RequesterFrom(c), titleID, reviewID, commentID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
