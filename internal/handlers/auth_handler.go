package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/auth"
	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
)

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login exchanges email and password for an access token.
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		slog.Warn("Invalid login data", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid data"})
		return
	}

	user, err := h.store.GetUserByEmail(c.Request.Context(), input.Email)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			slog.Warn("Login failed: user not found", "email", input.Email)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		internalError(c, "Login lookup failed", err)
		return
	}
	if !auth.CheckPassword(user.HashedPassword, input.Password) {
		slog.Warn("Login failed: invalid password", "email", input.Email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, err := h.issuer.CreateToken(user.UserID, user.Role)
	if err != nil {
		internalError(c, "Failed to issue token", err)
		return
	}
	slog.Info("User logged in successfully", "user_id", user.UserID)
	c.JSON(http.StatusOK, gin.H{"access_token": token})
}
