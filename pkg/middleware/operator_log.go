package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/code-100-precent/LingQfight/pkg/constants"
	"github.com/gin-gonic/gin"
	"github.com/mssola/user_agent"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OperationLogConfig selects which requests land in the audit trail
type OperationLogConfig struct {
	// Whether to enable operation logging
	Enabled bool
	// Operations maps an audited route path to its description
	Operations map[string]string
}

// DefaultOperationLogConfig audits the mutating routes under apiPrefix: register, update and reset
func DefaultOperationLogConfig(apiPrefix string) *OperationLogConfig {
	prefix := "/" + strings.Trim(apiPrefix, "/")
	if apiPrefix == "" {
		prefix = "/api"
	}
	if prefix == "/" {
		prefix = ""
	}
	return &OperationLogConfig{
		Enabled: true,
		Operations: map[string]string{
			prefix + "/auth/register": "Register account",
			prefix + "/player/update": "Update player data",
			prefix + "/player/reset":  "Reset player data",
		},
	}
}

// ShouldLogOperation reports whether a write request hits an audited route
func (config *OperationLogConfig) ShouldLogOperation(method, path string) bool {
	if config == nil || !config.Enabled {
		return false
	}
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
	default:
		return false
	}
	_, ok := config.Operations[path]
	return ok
}

// GetOperationDescription gets operation description
func (config *OperationLogConfig) GetOperationDescription(method, path string) string {
	if desc, exists := config.Operations[path]; exists {
		return desc
	}

	// Default description based on HTTP method
	switch method {
	case http.MethodDelete:
		return "Delete operation"
	case http.MethodPost:
		return "Create operation"
	case http.MethodPut:
		return "Update operation"
	case http.MethodPatch:
		return "Partial update operation"
	default:
		return "User operation"
	}
}

// Operator is the account a handler resolved as the acting caller
type Operator struct {
	ID       uint
	Username string
}

// SetOperator records the acting caller for the audit trail
func SetOperator(c *gin.Context, id uint, username string) {
	c.Set(constants.OperatorField, &Operator{ID: id, Username: username})
}

// GetOperator returns the caller set by SetOperator, or nil
func GetOperator(c *gin.Context) *Operator {
	if v, ok := c.Get(constants.OperatorField); ok {
		if op, ok := v.(*Operator); ok {
			return op
		}
	}
	return nil
}

// OperationLog is one audited request
type OperationLog struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	OperatorID      uint      `gorm:"index;not null" json:"operator_id"`
	Username        string    `gorm:"size:128;not null" json:"username"`
	Action          string    `gorm:"size:64;not null" json:"action"`
	Method          string    `gorm:"size:16;not null" json:"method"`
	Path            string    `gorm:"size:255;not null" json:"path"`
	Status          int       `gorm:"not null" json:"status"`
	IPAddress       string    `gorm:"size:64" json:"ip_address"`
	UserAgent       string    `gorm:"size:512" json:"user_agent"`
	Browser         string    `gorm:"size:128" json:"browser"`
	OperatingSystem string    `gorm:"size:128" json:"operating_system"`
	Device          string    `gorm:"size:64" json:"device"`
	RequestID       string    `gorm:"size:128" json:"request_id"`
	CreatedAt       time.Time `json:"created_at"`
}

// TableName specifies table name
func (OperationLog) TableName() string {
	return "operation_logs"
}

// newOperationLog describes the finished request c on behalf of op
func newOperationLog(c *gin.Context, op *Operator, action string) *OperationLog {
	rawUA := c.Request.UserAgent()
	ua := user_agent.New(rawUA)
	browser, version := ua.Browser()
	if version != "" {
		browser += " " + version
	}
	device := ua.Platform()
	if ua.Mobile() {
		device = "mobile"
	}

	return &OperationLog{
		OperatorID:      op.ID,
		Username:        op.Username,
		Action:          action,
		Method:          c.Request.Method,
		Path:            c.Request.URL.Path,
		Status:          c.Writer.Status(),
		IPAddress:       c.ClientIP(),
		UserAgent:       rawUA,
		Browser:         browser,
		OperatingSystem: ua.OS(),
		Device:          device,
		RequestID:       GetRequestID(c),
		CreatedAt:       time.Now(),
	}
}

// OperationLogMiddleware writes an audit entry after each audited request whose handler resolved an operator.
// Rejected attempts (403) are audited too; a request whose caller is unknown is not. A nil db only logs.
func OperationLogMiddleware(db *gorm.DB, config *OperationLogConfig, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		method := c.Request.Method
		path := c.Request.URL.Path
		if !config.ShouldLogOperation(method, path) {
			return
		}
		op := GetOperator(c)
		if op == nil {
			return
		}

		entry := newOperationLog(c, op, config.GetOperationDescription(method, path))
		logger.Info("operation",
			zap.String("action", entry.Action),
			zap.String("operator", entry.Username),
			zap.String("method", entry.Method),
			zap.String("path", entry.Path),
			zap.Int("status", entry.Status),
			zap.String("browser", entry.Browser),
			zap.String("os", entry.OperatingSystem),
			zap.String("request_id", entry.RequestID))

		if db == nil {
			return
		}
		if err := db.WithContext(c.Request.Context()).Create(entry).Error; err != nil {
			// the response is already written; the audit failure must not change it
			logger.Warn("record operation log failed", zap.Error(err), zap.String("path", path))
		}
	}
}
