package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecoveryMiddleware_NoPanic(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zap.InfoLevel)

	r := gin.New()
	r.Use(RecoveryMiddleware(zap.New(core)))
	r.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, recorded.All())
}

func TestRecoveryMiddleware_PanicValues(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for name, v := range map[string]any{"string": "test panic", "error": assert.AnError, "int": 42} {
		t.Run(name, func(t *testing.T) {
			core, recorded := observer.New(zap.ErrorLevel)
			r := gin.New()
			r.Use(RequestIDMiddleware(), RecoveryMiddleware(zap.New(core)))
			r.POST("/test", func(c *gin.Context) {
				panic(v)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/test", nil)
			req.Header.Set(RequestIDHeader, "rid-1")
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.JSONEq(t, `{"detail":"Internal server error"}`, w.Body.String())

			logs := recorded.All()
			require.Len(t, logs, 1)
			assert.Equal(t, "Panic recovered", logs[0].Message)
			fields := logs[0].ContextMap()
			assert.Equal(t, "/test", fields["path"])
			assert.Equal(t, "POST", fields["method"])
			assert.Equal(t, "rid-1", fields["request_id"])
			assert.Contains(t, fields, "error")
			assert.Contains(t, fields, "stack")
		})
	}
}
