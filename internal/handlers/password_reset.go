package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"ferretcontrol/internal/security"

	"github.com/gin-gonic/gin"
)

const resetAck = "If an account with that email exists, a verification code has been sent."

type PasswordResetHandler struct {
	resets *security.PasswordResets
}

func NewPasswordResetHandler(resets *security.PasswordResets) *PasswordResetHandler {
	return &PasswordResetHandler{resets: resets}
}

type resetRequest struct {
	Email string `json:"email"`
}

func (h *PasswordResetHandler) Request(c *gin.Context) {
	var req resetRequest
	_ = c.ShouldBindJSON(&req)
	email := strings.TrimSpace(req.Email)
	if email == "" {
		respondError(c, http.StatusBadRequest, "Email is required")
		return
	}

	if err := h.resets.Request(c.Request.Context(), email); err != nil {
		if errors.Is(err, security.ErrMailDelivery) {
			slog.Error("reset code delivery failed", "error", err)
			respondError(c, http.StatusInternalServerError, "Failed to send email")
			return
		}
		slog.Error("reset code request failed", "error", err)
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": resetAck})
}

type resetConfirm struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"new_password"`
}

func (h *PasswordResetHandler) Confirm(c *gin.Context) {
	var req resetConfirm
	_ = c.ShouldBindJSON(&req)
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	if req.Email == "" || req.Code == "" || req.NewPassword == "" {
		respondError(c, http.StatusBadRequest, "All fields are required")
		return
	}

	err := h.resets.Confirm(c.Request.Context(), req.Email, req.Code, req.NewPassword)
	switch {
	case errors.Is(err, security.ErrInvalidResetCode):
		respondError(c, http.StatusBadRequest, "Invalid or expired code")
	case err != nil:
		slog.Error("password reset confirm failed", "error", err)
		respondError(c, http.StatusInternalServerError, "internal error")
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Password has been reset successfully"})
	}
}
