package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewhub/internal/microservices/http-api/apperr"
	"reviewhub/internal/microservices/http-api/models"
	"reviewhub/internal/microservices/http-api/permissions"
	"reviewhub/internal/microservices/http-api/token"
)

type stubParser map[string]string // token -> user id

func (p stubParser) Parse(s string) (*token.Claims, error) {
	if id, ok := p[s]; ok {
		return &token.Claims{UserID: id}, nil
	}
	return nil, token.ErrInvalidToken
}

type stubUsers map[string]*models.User

func (u stubUsers) Authenticate(_ context.Context, id string) (*models.User, error) {
	if user, ok := u[id]; ok {
		return user, nil
	}
	return nil, apperr.Unauthorized("user no longer exists")
}

func newEngine(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	auth := AuthMiddleware(
		stubParser{"alice-token": "u1", "mod-token": "m1", "admin-token": "a1", "ghost-token": "gone"},
		stubUsers{
			"u1": {ID: "u1", Username: "alice", Role: permissions.RoleUser},
			"m1": {ID: "m1", Username: "mod", Role: permissions.RoleModerator},
			"a1": {ID: "a1", Username: "root", Role: permissions.RoleUser, IsStaff: true},
		},
		zap.NewNop(),
	)
	chain := append([]gin.HandlerFunc{auth}, handlers...)
	chain = append(chain, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": RequesterFrom(c).Username})
	})
	r.Handle(http.MethodGet, "/x", chain...)
	r.Handle(http.MethodPost, "/x", chain...)
	return r
}

func do(r http.Handler, method, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/x", nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newEngine()

	w := do(r, http.MethodGet, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":""}`, w.Body.String())

	w = do(r, http.MethodGet, "alice-token")
	assert.JSONEq(t, `{"username":"alice"}`, w.Body.String())

	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "forged").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "ghost-token").Code)

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Token abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAllow(t *testing.T) {
	tests := []struct {
		name   string
		gate   gin.HandlerFunc
		method string
		bearer string
		want   int
	}{
		{"read-only open to anonymous", AdminOrReadOnly(), http.MethodGet, "", http.StatusOK},
		{"anonymous write", AdminOrReadOnly(), http.MethodPost, "", http.StatusUnauthorized},
		{"user write", AdminOrReadOnly(), http.MethodPost, "alice-token", http.StatusForbidden},
		{"moderator is not admin", AdminOrReadOnly(), http.MethodPost, "mod-token", http.StatusForbidden},
		{"staff counts as admin", AdminOrReadOnly(), http.MethodPost, "admin-token", http.StatusOK},
		{"admin only blocks reads too", AdminOnly(), http.MethodGet, "alice-token", http.StatusForbidden},
		{"authenticated", Authenticated(), http.MethodGet, "alice-token", http.StatusOK},
		{"authenticated anonymous", Authenticated(), http.MethodGet, "", http.StatusUnauthorized},
		{"auth or read-only write", AuthenticatedOrReadOnly(), http.MethodPost, "alice-token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(newEngine(tt.gate), tt.method, tt.bearer)
			assert.Equal(t, tt.want, w.Code)
			if tt.want >= 400 {
				var body map[string]string
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.NotEmpty(t, body["error"])
				assert.NotEmpty(t, body["code"])
			}
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewIPRateLimiter(0.001, 2).Middleware())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()), Recovery(zap.NewNop()))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/boom", func(c *gin.Context) { panic(errors.New("boom")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
