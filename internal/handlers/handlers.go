package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/code-100-precent/LingQfight/internal/models"
	"github.com/code-100-precent/LingQfight/pkg/logger"
	"github.com/code-100-precent/LingQfight/pkg/middleware"
	"github.com/code-100-precent/LingQfight/pkg/utils/response"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Handlers struct {
	db        *gorm.DB
	apiPrefix string
	log       *zap.Logger
}

func NewHandlers(db *gorm.DB, apiPrefix string) *Handlers {
	if apiPrefix == "" {
		apiPrefix = "/api"
	}
	return &Handlers{
		db:        db,
		apiPrefix: "/" + strings.Trim(apiPrefix, "/"),
		log:       logger.Lg.Named("handlers"),
	}
}

func (h *Handlers) Register(engine *gin.Engine) {
	engine.GET("/health", h.handleHealth)

	r := engine.Group(h.apiPrefix)

	// Register Global Singleton DB
	r.Use(middleware.InjectDB(h.db))

	auth := r.Group("/auth")
	auth.POST("/login", h.handleLogin)
	auth.POST("/register", h.handleRegister)

	player := r.Group("/player")
	player.GET("/data", h.handlePlayerData)
	player.PUT("/update", h.handlePlayerUpdate)
	player.POST("/reset", h.handlePlayerReset)

	r.GET("/docs", h.handleDocs)
}

func (h *Handlers) handleHealth(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		response.Fail(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}
	response.Success(c, gin.H{"status": "ok"})
}

func (h *Handlers) getDB(c *gin.Context) *gorm.DB {
	if db := middleware.GetDB(c); db != nil {
		return db.WithContext(c.Request.Context())
	}
	return h.db.WithContext(c.Request.Context())
}

// lookupCaller resolves the acting username; it writes 401 and returns nil when the account is unknown
func (h *Handlers) lookupCaller(c *gin.Context, db *gorm.DB, username string) *models.Account {
	if username == "" {
		response.Fail(c, http.StatusUnauthorized, "caller username is required")
		return nil
	}
	account, err := models.GetAccountByUsername(db, username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Fail(c, http.StatusUnauthorized, "unknown user: "+username)
		return nil
	}
	if err != nil {
		h.internalError(c, "lookup caller failed", err)
		return nil
	}
	middleware.SetOperator(c, account.ID, account.Username)
	return account
}

// accountIDQuery reads ?account_id=; it writes 422 and returns false when missing or not a positive integer
func accountIDQuery(c *gin.Context) (uint, bool) {
	raw, ok := c.GetQuery("account_id")
	if !ok || raw == "" {
		response.Fail(c, http.StatusUnprocessableEntity, "account_id is required")
		return 0, false
	}
	id, err := cast.ToUintE(raw)
	if err != nil || id == 0 {
		response.Fail(c, http.StatusUnprocessableEntity, "account_id must be a positive integer")
		return 0, false
	}
	return id, true
}

func (h *Handlers) internalError(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
	_ = c.Error(err)
	response.Fail(c, http.StatusInternalServerError, msg)
}
