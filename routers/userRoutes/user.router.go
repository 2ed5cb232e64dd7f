package userProfileRoutes

import (
	courseControllers "techlearn/controllers/course"
	userProfileController "techlearn/controllers/userControllers"
	"techlearn/middleware"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	userGroup := app.Group("/user", middleware.JWTMiddleware, middleware.SessionMiddleware)

	userGroup.Get("/profile", userProfileController.GetProfile)
	userGroup.Get("/enrollments", courseControllers.GetUserEnrollmentsList)
}
