package routers

import (
	"techlearn/middleware"
	authRoutes "techlearn/routers/authRoutes"
	courseRoutes "techlearn/routers/courseRoutes"
	userProfileRoutes "techlearn/routers/userRoutes"
	"techlearn/services"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes registers every route group of the API.
func SetupRoutes(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "OK", services.App.Sessions.Stats())
	})

	authRoutes.SetupAuthRoutes(app)
	courseRoutes.SetupCourseRoutes(app)
	userProfileRoutes.SetupUserRoutes(app)
}
