package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Siellph/DimaTech-Ltd-test/internal/auth"
	"github.com/Siellph/DimaTech-Ltd-test/internal/cache"
	"github.com/Siellph/DimaTech-Ltd-test/internal/ledger"
	"github.com/Siellph/DimaTech-Ltd-test/internal/middleware"
	"github.com/Siellph/DimaTech-Ltd-test/internal/signature"
)

// Handler holds the dependencies shared by all API handlers.
type Handler struct {
	store    *ledger.Store
	engine   *ledger.Engine
	verifier *signature.Verifier
	issuer   *auth.TokenIssuer
	users    *cache.Users
}

func New(store *ledger.Store, engine *ledger.Engine, verifier *signature.Verifier, issuer *auth.TokenIssuer, users *cache.Users) *Handler {
	return &Handler{
		store:    store,
		engine:   engine,
		verifier: verifier,
		issuer:   issuer,
		users:    users,
	}
}

// currentUserID returns the id put into the context by AuthMiddleware.
func currentUserID(c *gin.Context) int64 {
	return c.GetInt64(middleware.ContextUserID)
}

// paramID парсит числовой параметр пути; при ошибке отвечает 400.
func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func internalError(c *gin.Context, msg string, err error) {
	slog.Error(msg, "error", err, "path", c.FullPath())
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}
