package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/hucha-app/hucha-api/handlers"
	"github.com/hucha-app/hucha-api/middleware"
	"github.com/hucha-app/hucha-api/models"
	"github.com/hucha-app/hucha-api/services"
)

// SetupAuthRoutes sets up public authentication routes.
func SetupAuthRoutes(rg *gin.RouterGroup, session *services.Session) {
	authHandler := &handlers.AuthHandler{Session: session}

	rg.POST("/auth/login", authHandler.Login)
}

// SetupStateRoutes sets up authenticated state and mutation routes.
func SetupStateRoutes(rg *gin.RouterGroup, session *services.Session) {
	stateHandler := &handlers.StateHandler{Session: session}
	taskHandler := &handlers.TaskHandler{Session: session}
	categoryHandler := &handlers.CategoryHandler{Session: session}
	walletHandler := &handlers.WalletHandler{Session: session}

	rg.GET("/state", stateHandler.GetState)

	// Kids act on their own tasks
	rg.PUT("/tasks/:id/completion", taskHandler.UpdateCompletion)
	rg.PUT("/tasks/:id/score", taskHandler.SaveScore)

	// Admin-only mutations
	admin := rg.Group("/")
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/tasks", taskHandler.CreateTask)
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.POST("/wallet/movements", walletHandler.CreateMovement)
	}
}
