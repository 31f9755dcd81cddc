package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/handlers"
	"github.com/Siellph/DimaTech-Ltd-test/internal/middleware"
	"github.com/Siellph/DimaTech-Ltd-test/models"
)

// RegisterAPIRoutes регистрирует все маршруты API, требующие аутентификации.
func RegisterAPIRoutes(api *gin.RouterGroup, h *handlers.Handler) {
	// --- ПОЛЬЗОВАТЕЛИ ---
	user := api.Group("/user")
	{
		user.GET("/me", h.MeHandler)
		user.PATCH("/me/update", h.UpdateMeHandler)

		admin := user.Group("")
		admin.Use(middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("", h.ListUsersHandler)
			admin.POST("", h.CreateUserHandler)
			admin.GET("/:user_id", h.GetUserHandler)
			admin.PATCH("/update/:user_id", h.UpdateUserHandler)
			admin.DELETE("/:user_id", h.DeleteUserHandler)
		}
	}

	// --- СЧЕТА ---
	account := api.Group("/account")
	{
		account.GET("/my", h.ListMyAccounts)
		account.POST("/my", h.CreateMyAccount)
		account.GET("/my/:account_id", h.GetMyAccount)
		account.PATCH("/my/:account_id/update", h.UpdateMyAccount)
	}

	// --- ТРАНЗАКЦИИ ---
	transaction := api.Group("/transaction")
	{
		transaction.GET("/my", h.ListMyTransactions)
		transaction.GET("/my/:account_id", h.ListAccountTransactions)
	}
}
