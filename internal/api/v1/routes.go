package v1

import (
	"github.com/gofiber/fiber/v2"

	"monstager/internal/api/v1/handlers"
	"monstager/internal/auth"
	"monstager/internal/middleware"
)

// RegisterRoutes wires the API surface. Paths follow the client contract
// directly, without a version prefix.
func RegisterRoutes(app *fiber.App, authHandler *handlers.AuthHandler, taskHandler *handlers.TaskHandler, issuer *auth.TokenIssuer) {
	authRoutes := app.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Post("/login", authHandler.Login)
	authRoutes.Post("/refresh", authHandler.Refresh)
	authRoutes.Get("/profile", middleware.RequireAuth(issuer), authHandler.Profile)
	authRoutes.Post("/request-password-reset", authHandler.RequestPasswordReset)
	authRoutes.Post("/reset-password", authHandler.ResetPassword)

	taskRoutes := app.Group("/tasks", middleware.RequireAuth(issuer))
	taskRoutes.Get("/", taskHandler.List)
	taskRoutes.Post("/", taskHandler.Create)
	taskRoutes.Get("/:id", taskHandler.Get)
	taskRoutes.Put("/:id", taskHandler.Update)
	taskRoutes.Delete("/:id", taskHandler.Delete)
}
