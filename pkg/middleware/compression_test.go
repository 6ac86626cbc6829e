package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCompressedEngine(config *CompressionConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CompressionMiddleware(config))
	payload := strings.Repeat("青龙刀,", 200)
	r.GET("/api/player/data", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"weapons": payload})
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.String(http.StatusOK, payload)
	})
	return r
}

func TestDefaultCompressionConfig(t *testing.T) {
	config := DefaultCompressionConfig()
	assert.Contains(t, config.ExcludePaths, "/metrics")
}

func TestCompressionMiddleware_GzipsJSON(t *testing.T) {
	r := newCompressedEngine(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/player/data", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "gzip", w.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "青龙刀")
}

func TestCompressionMiddleware_ExcludedPath(t *testing.T) {
	r := newCompressedEngine(DefaultCompressionConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
	assert.Contains(t, w.Body.String(), "青龙刀")
}

func TestCompressionMiddleware_WithoutAcceptEncoding(t *testing.T) {
	r := newCompressedEngine(&CompressionConfig{Level: 9})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/player/data", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Content-Encoding"))
}
