package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/auth"
	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// CreateUserInput defines the structure for creating a user from the admin panel.
type CreateUserInput struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	FullName string `json:"full_name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
	Role     string `json:"role"`
}

// UpdateUserInput defines the structure for updating a user. Omitted fields
// keep their current value.
type UpdateUserInput struct {
	Username *string `json:"username" binding:"omitempty,min=1"`
	Email    *string `json:"email" binding:"omitempty,email"`
	FullName *string `json:"full_name"`
}

func (h *Handler) userResponse(ctx context.Context, user *models.User) (UserResponse, error) {
	accounts, _, err := h.store.ListAccountsByUser(ctx, user.UserID)
	if err != nil {
		return UserResponse{}, err
	}
	return newUserResponse(user, accounts), nil
}

// CreateUserHandler creates a new user. Admin only.
func (h *Handler) CreateUserHandler(c *gin.Context) {
	var input CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Role != "" && !models.ValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role"})
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		internalError(c, "Failed to hash password", err)
		return
	}

	user, err := h.store.CreateUser(c.Request.Context(), ledger.NewUser{
		Username:       input.Username,
		Email:          input.Email,
		FullName:       input.FullName,
		HashedPassword: hash,
		Role:           input.Role,
	})
	if err != nil {
		if errors.Is(err, ledger.ErrUserExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		internalError(c, "Failed to create user", err)
		return
	}

	slog.Info("User created", "by", currentUserID(c), "user_id", user.UserID)
	c.JSON(http.StatusCreated, newUserResponse(user, nil))
}

// ListUsersHandler returns a paginated list of all users. Admin only.
func (h *Handler) ListUsersHandler(c *gin.Context) {
	ctx := c.Request.Context()
	page := newPageRequest(c)
	users, total, err := h.store.ListUsers(ctx, page.Scope())
	if err != nil {
		internalError(c, "Could not fetch users", err)
		return
	}

	responseData := make([]UserResponse, 0, len(users))
	for i := range users {
		resp, err := h.userResponse(ctx, &users[i])
		if err != nil {
			internalError(c, "Could not fetch user accounts", err)
			return
		}
		responseData = append(responseData, resp)
	}
	c.JSON(http.StatusOK, page.Response(responseData, total))
}

// GetUserHandler retrieves a single user by ID. Admin only.
func (h *Handler) GetUserHandler(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	h.respondUser(c, id)
}

// MeHandler returns the authenticated user's own profile.
func (h *Handler) MeHandler(c *gin.Context) {
	h.respondUser(c, currentUserID(c))
}

func (h *Handler) respondUser(c *gin.Context, userID int64) {
	ctx := c.Request.Context()
	user, err := h.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		internalError(c, "Could not fetch user", err)
		return
	}
	resp, err := h.userResponse(ctx, user)
	if err != nil {
		internalError(c, "Could not fetch user accounts", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateUserHandler updates any user. Admin only.
func (h *Handler) UpdateUserHandler(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		return
	}
	h.updateUser(c, id)
}

// UpdateMeHandler updates the authenticated user's own profile.
func (h *Handler) UpdateMeHandler(c *gin.Context) {
	h.updateUser(c, currentUserID(c))
}

func (h *Handler) updateUser(c *gin.Context, userID int64) {
	var input UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	user, err := h.store.UpdateUser(ctx, userID, ledger.UserUpdate{
		Username: input.Username,
		Email:    input.Email,
		FullName: input.FullName,
	})
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	case errors.Is(err, ledger.ErrUserExists):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		internalError(c, "Failed to update user", err)
		return
	}

	h.users.Invalidate(ctx, userID)
	slog.Info("User updated", "by", currentUserID(c), "user_id", userID)

	resp, err := h.userResponse(ctx, user)
	if err != nil {
		internalError(c, "Could not fetch user accounts", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// DeleteUserHandler deletes a user together with accounts and transactions.
// Admin only.
func (h *Handler) DeleteUserHandler(c *gin.Context) {
	id, ok := paramID(c, "user_id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		internalError(c, "Failed to delete user", err)
		return
	}

	h.users.Invalidate(ctx, id)
	slog.Info("User deleted", "by", currentUserID(c), "user_id", id)
	c.Status(http.StatusNoContent)
}
