package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/dto"
)

const requestTimeout = 5 * time.Second

type validatable interface {
	Validate() error
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// respondError writes {"error", "code"} for err. Unexpected errors are logged
// and hidden behind a generic message.
func respondError(c *gin.Context, l *zap.Logger, err error) {
	status, code := apperr.Status(err)
	if status == http.StatusInternalServerError {
		l.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err), "code": code})
}

// bindJSON decodes the body into dst. It writes the 400 itself and reports
// whether the handler may continue.
func bindJSON(c *gin.Context, l *zap.Logger, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, l, apperr.Validation("malformed request body: %s", err.Error()))
		return false
	}
	return true
}

func bindValid(c *gin.Context, l *zap.Logger, dst validatable) bool {
	if !bindJSON(c, l, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		respondError(c, l, err)
		return false
	}
	return true
}

// pathID parses a numeric path parameter. An id that cannot exist is a 404.
func pathID(c *gin.Context, l *zap.Logger, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, l, apperr.NotFound("%s %q not found", name, c.Param(name)))
		return 0, false
	}
	return id, true
}

// pageParams reads page and page_size; bad values fall back to the defaults.
func pageParams(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = dto.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= dto.MaxPageSize {
			pageSize = parsed
		}
	}
	return page, pageSize
}
