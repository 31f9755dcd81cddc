package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/handlers"
)

// SetupRoutes инициализирует все маршруты приложения под префиксом /api/v1.
// authRequired проверяет токен и кладёт пользователя в контекст.
func SetupRoutes(r *gin.Engine, h *handlers.Handler, authRequired gin.HandlerFunc) {
	v1 := r.Group("/api/v1")

	// --- Публичные маршруты ---
	RegisterAuthRoutes(v1, h)
	RegisterWebhookRoutes(v1, h)

	// --- Защищенная группа маршрутов ---
	protected := v1.Group("")
	protected.Use(authRequired)
	RegisterAPIRoutes(protected, h)
}
