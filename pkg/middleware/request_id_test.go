package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/code-100-precent/LingQfight/pkg/constants"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestIDRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/api/player/data", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c))
	})
	return r
}

func serveWithID(r *gin.Engine, id string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/player/data", nil)
	if id != "" {
		req.Header.Set(RequestIDHeader, id)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDMiddleware_ReusesInboundID(t *testing.T) {
	w := serveWithID(requestIDRouter(), "verify-run-42")

	assert.Equal(t, "verify-run-42", w.Header().Get(RequestIDHeader))
	assert.Equal(t, "verify-run-42", w.Body.String(), "handler sees the same id")
}

func TestRequestIDMiddleware_GeneratesUUID(t *testing.T) {
	r := requestIDRouter()
	first := serveWithID(r, "").Header().Get(RequestIDHeader)
	second := serveWithID(r, "").Header().Get(RequestIDHeader)

	_, err := uuid.Parse(first)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestRequestIDMiddleware_ReplacesMalformedID(t *testing.T) {
	r := requestIDRouter()

	for _, bad := range []string{strings.Repeat("x", maxRequestIDLen+1), "has space", "玩家"} {
		got := serveWithID(r, bad).Header().Get(RequestIDHeader)
		assert.NotEqual(t, bad, got)
		_, err := uuid.Parse(got)
		assert.NoError(t, err, "replacement for %q", bad)
	}
}

func TestGetRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetRequestID(c))

	c.Set(constants.RequestIDField, 12345)
	assert.Empty(t, GetRequestID(c), "non-string values are ignored")

	c.Set(constants.RequestIDField, "abc")
	assert.Equal(t, "abc", GetRequestID(c))
}
