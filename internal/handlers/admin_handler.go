package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.depttimeline/internal/admin"
	sessionmodels "io.winapps.depttimeline/internal/models/admin_session"
)

// AdminHandler opens, unlocks and dismisses admin sessions
type AdminHandler struct {
	sessions *admin.Sessions
	logger   *zap.SugaredLogger
}

func NewAdminHandler(sessions *admin.Sessions, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{sessions: sessions, logger: logger}
}

// OpenSession starts a locked session with a fresh attempt counter
func (h *AdminHandler) OpenSession(c *gin.Context) {
	id, gate := h.sessions.Open()
	c.JSON(http.StatusCreated, sessionmodels.SessionResponse{
		SessionID:         id,
		State:             string(gate.State()),
		RemainingAttempts: gate.Remaining(),
	})
}

// UnlockSession submits a PIN for the session
func (h *AdminHandler) UnlockSession(c *gin.Context) {
	id := c.Param("id")
	gate, err := h.sessions.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Admin session not found"})
		return
	}

	var req sessionmodels.UnlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	err = gate.Submit(req.PIN)
	resp := sessionmodels.SessionResponse{
		SessionID:         id,
		State:             string(gate.State()),
		RemainingAttempts: gate.Remaining(),
	}

	var invalid *admin.ErrInvalidPIN
	switch {
	case err == nil:
		resp.Message = "Unlocked"
		c.JSON(http.StatusOK, resp)
	case errors.Is(err, admin.ErrLockedOut):
		h.logger.Warnw("Admin session locked out", "request_id", c.GetString("request_id"), "client_ip", c.ClientIP())
		c.JSON(http.StatusLocked, gin.H{"error": "Too many attempts. Access locked.", "remainingAttempts": 0})
	case errors.Is(err, admin.ErrPINTooShort):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "remainingAttempts": resp.RemainingAttempts})
	case errors.As(err, &invalid):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid PIN", "remainingAttempts": invalid.Remaining})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unlock"})
	}
}

// CloseSession dismisses the admin view; reopening starts over
func (h *AdminHandler) CloseSession(c *gin.Context) {
	h.sessions.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"message": "Session closed"})
}
