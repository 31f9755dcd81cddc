package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/auth"
	"github.com/Siellph/DimaTech-Ltd-test/internal/cache"
	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// Context keys set by AuthMiddleware.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
)

// UserLookup loads the user named in a token.
type UserLookup interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// AuthMiddleware проверяет Bearer-токен и кладёт в контекст id и роль
// пользователя. Роль берётся из БД (через кэш), а не из токена, чтобы
// удалённый или понижённый пользователь сразу терял доступ.
func AuthMiddleware(issuer *auth.TokenIssuer, users UserLookup, userCache *cache.Users) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handleAuthError(c, "Missing or invalid Authorization header. Unauthorized.")
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
			handleAuthError(c, "Missing or invalid Authorization header. Unauthorized.")
			return
		}

		claims, err := issuer.ParseToken(parts[1])
		if err != nil {
			handleAuthError(c, "Invalid or expired token")
			return
		}

		ctx := c.Request.Context()
		if data, ok := userCache.Get(ctx, claims.UserID); ok {
			setContextAndProceed(c, data)
			return
		}

		user, err := users.GetUser(ctx, claims.UserID)
		if err != nil {
			slog.Warn("User from token not found", "user_id", claims.UserID, "error", err)
			handleAuthError(c, "Invalid or expired token")
			return
		}

		data := &cache.UserData{UserID: user.UserID, Username: user.Username, Role: user.Role}
		userCache.Set(ctx, data)
		setContextAndProceed(c, data)
	}
}

func setContextAndProceed(c *gin.Context, data *cache.UserData) {
	c.Set(ContextUserID, data.UserID)
	c.Set(ContextRole, data.Role)
	c.Next()
}

// RequireRole rejects requests whose principal does not have role. Admins pass
// every role check.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		current := c.GetString(ContextRole)
		if current == role || current == models.RoleAdmin {
			c.Next()
			return
		}
		slog.Warn("Access denied", "user_id", c.GetInt64(ContextUserID), "role", current, "required", role)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied. Only " + role + " user"})
	}
}

func handleAuthError(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
}
