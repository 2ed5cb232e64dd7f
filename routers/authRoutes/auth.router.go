package authRoutes

import (
	authControllers "techlearn/controllers/auth"
	"techlearn/middleware"
	authValidators "techlearn/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(app *fiber.App) {
	authGroup := app.Group("/auth")

	authGroup.Post("/register", authValidators.Register(), authControllers.Register)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/logout", middleware.JWTMiddleware, middleware.SessionMiddleware, authControllers.Logout)
	authGroup.Get("/me", middleware.JWTMiddleware, middleware.SessionMiddleware, authControllers.Me)
}
