package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/handlers"
)

// RegisterAuthRoutes регистрирует публичные маршруты для аутентификации.
func RegisterAuthRoutes(rg *gin.RouterGroup, h *handlers.Handler) {
	rg.POST("/auth/login", h.Login)
}

// RegisterWebhookRoutes регистрирует вебхук платёжной системы. Запросы
// аутентифицируются подписью в теле, а не токеном.
func RegisterWebhookRoutes(rg *gin.RouterGroup, h *handlers.Handler) {
	rg.POST("/transaction/webhook/payment", h.PaymentWebhook)
}
