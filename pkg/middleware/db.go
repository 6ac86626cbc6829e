package middleware

import (
	"github.com/code-100-precent/LingQfight/pkg/constants"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// InjectDB 注入数据库实例到 Gin 上下文
func InjectDB(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.DbField, db)
		c.Next()
	}
}

// GetDB returns the injected handle, or nil when InjectDB did not run
func GetDB(c *gin.Context) *gorm.DB {
	if v, ok := c.Get(constants.DbField); ok {
		if db, ok := v.(*gorm.DB); ok {
			return db
		}
	}
	return nil
}
