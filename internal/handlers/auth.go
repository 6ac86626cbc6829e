package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/code-100-precent/LingQfight/internal/models"
	"github.com/code-100-precent/LingQfight/pkg/qfight"
	"github.com/code-100-precent/LingQfight/pkg/utils/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const invalidCredentials = "invalid username or password"

// handleLogin POST /auth/login
func (h *Handlers) handleLogin(c *gin.Context) {
	var form qfight.LoginRequest
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	db := h.getDB(c)
	account, err := models.GetAccountByUsername(db, form.Username)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Fail(c, http.StatusUnauthorized, invalidCredentials)
		return
	}
	if err != nil {
		h.internalError(c, "lookup account failed", err)
		return
	}
	if !account.CheckPassword(form.Password) {
		h.log.Info("login rejected", zap.String("username", form.Username))
		response.Fail(c, http.StatusUnauthorized, invalidCredentials)
		return
	}

	data := qfight.LoginData{
		AccountID: int64(account.ID),
		Username:  account.Username,
		Role:      account.Role,
	}
	if player, err := models.GetPlayerByAccountID(db, account.ID); err == nil {
		data.PlayerID = int64(player.ID)
		data.PlayerName = player.Name
	}
	response.Success(c, data)
}

// handleRegister POST /auth/register, admin only
func (h *Handlers) handleRegister(c *gin.Context) {
	var form qfight.RegisterPayload
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	db := h.getDB(c)
	caller := h.lookupCaller(c, db, form.Username)
	if caller == nil {
		return
	}
	if !caller.IsAdmin() {
		response.Fail(c, http.StatusForbidden, "only admins can register accounts")
		return
	}

	req := form.Req
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		response.Fail(c, http.StatusUnprocessableEntity, "username and password are required")
		return
	}

	account, player, err := models.CreateAccount(db, req.Username, req.Password, req.Role, req.PlayerName, caller.Username)
	switch {
	case errors.Is(err, models.ErrUsernameTaken):
		response.Fail(c, http.StatusBadRequest, "username already exists")
		return
	case errors.Is(err, models.ErrInvalidRole):
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.internalError(c, "create account failed", err)
		return
	}

	h.log.Info("account registered",
		zap.String("username", account.Username),
		zap.String("role", account.Role),
		zap.String("by", caller.Username))
	response.Success(c, qfight.RegisterData{AccountID: int64(account.ID), PlayerID: int64(player.ID)})
}
