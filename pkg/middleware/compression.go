package middleware

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

// CompressionConfig represents compression middleware configuration
type CompressionConfig struct {
	// Compression level (1-9, default: 6)
	Level int
	// Exclude paths from compression
	ExcludePaths []string
}

// DefaultCompressionConfig returns default compression configuration
func DefaultCompressionConfig() *CompressionConfig {
	return &CompressionConfig{
		Level:        gzip.DefaultCompression,
		ExcludePaths: []string{"/metrics"},
	}
}

// CompressionMiddleware creates compression middleware
func CompressionMiddleware(config *CompressionConfig) gin.HandlerFunc {
	if config == nil {
		config = DefaultCompressionConfig()
	}
	if len(config.ExcludePaths) == 0 {
		return gzip.Gzip(config.Level)
	}
	return gzip.Gzip(config.Level, gzip.WithExcludedPaths(config.ExcludePaths))
}
