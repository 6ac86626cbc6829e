package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/code-100-precent/LingQfight/internal/models"
	"github.com/code-100-precent/LingQfight/pkg/qfight"
	"github.com/code-100-precent/LingQfight/pkg/utils/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// handlePlayerData GET /player/data?account_id=
func (h *Handlers) handlePlayerData(c *gin.Context) {
	accountID, ok := accountIDQuery(c)
	if !ok {
		return
	}
	player := h.findPlayer(c, h.getDB(c), accountID)
	if player == nil {
		return
	}
	response.Success(c, player.ToData())
}

// handlePlayerUpdate PUT /player/update; players may only change their own account, admins any
func (h *Handlers) handlePlayerUpdate(c *gin.Context) {
	var form qfight.UpdatePayload
	if err := c.ShouldBindJSON(&form); err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if form.Req.AccountID <= 0 {
		response.Fail(c, http.StatusUnprocessableEntity, "req.account_id must be a positive integer")
		return
	}

	db := h.getDB(c)
	caller := h.lookupCaller(c, db, form.Username)
	if caller == nil {
		return
	}
	target := uint(form.Req.AccountID)
	if caller.ID != target && !caller.IsAdmin() {
		h.log.Warn("update rejected",
			zap.String("caller", caller.Username),
			zap.Uint("target", target))
		response.Fail(c, http.StatusForbidden, "permission denied")
		return
	}

	player := h.findPlayer(c, db, target)
	if player == nil {
		return
	}
	if err := models.ApplyUpdate(db, player, form.Req, caller.Username); err != nil {
		h.internalError(c, "update player failed", err)
		return
	}
	response.Success(c, player.ToData())
}

// handlePlayerReset POST /player/reset?account_id=; the body is the admin username as a JSON string
func (h *Handlers) handlePlayerReset(c *gin.Context) {
	accountID, ok := accountIDQuery(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, "unreadable request body")
		return
	}
	username, err := parseCallerBody(raw)
	if err != nil {
		response.Fail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	db := h.getDB(c)
	caller := h.lookupCaller(c, db, username)
	if caller == nil {
		return
	}
	if !caller.IsAdmin() {
		response.Fail(c, http.StatusForbidden, "only admins can reset player data")
		return
	}

	player := h.findPlayer(c, db, accountID)
	if player == nil {
		return
	}
	if err := models.ResetPlayer(db, player, caller.Username); err != nil {
		h.internalError(c, "reset player failed", err)
		return
	}
	h.log.Info("player reset", zap.Uint("account_id", accountID), zap.String("by", caller.Username))
	response.Success(c, player.ToData())
}

// parseCallerBody accepts "admin_test" and, for older clients, {"username":"admin_test"}
func parseCallerBody(raw []byte) (string, error) {
	var username string
	if err := json.Unmarshal(raw, &username); err == nil {
		return username, nil
	}
	var obj struct {
		Username string `json:"username"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.Username == "" {
		return "", errors.New("request body must be the caller username as a JSON string")
	}
	return obj.Username, nil
}

// findPlayer resolves the target account and then its player row, writing 404 when either is missing
func (h *Handlers) findPlayer(c *gin.Context, db *gorm.DB, accountID uint) *models.Player {
	if _, err := models.GetAccountByID(db, accountID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, http.StatusNotFound, "account not found")
		} else {
			h.internalError(c, "lookup account failed", err)
		}
		return nil
	}

	player, err := models.GetPlayerByAccountID(db, accountID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Fail(c, http.StatusNotFound, "player not found")
		return nil
	}
	if err != nil {
		h.internalError(c, "lookup player failed", err)
		return nil
	}
	return player
}
