package userController

import (
	"errors"

	"techlearn/identity"
	"techlearn/middleware"
	"techlearn/services"

	"github.com/gofiber/fiber/v2"
)

// GetProfile returns the account of the logged in user with a learning summary.
func GetProfile(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if user exists
	account, err := services.App.Accounts.Profile(c.UserContext(), s.Identity.Current().Email)
	if errors.Is(err, identity.ErrAccountNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if err != nil {
		services.App.Log.Error("Failed to fetch account", "device", s.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch profile!", nil)
	}

	completed := 0
	enrolled := s.Progress.EnrolledCourses()
	for _, id := range enrolled {
		if s.Certificates.IsCourseComplete(id) {
			completed++
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", fiber.Map{
		"email":             account.Email,
		"member_since":      account.CreatedAt,
		"last_login":        account.LastLogin,
		"enrolled_courses":  len(enrolled),
		"completed_courses": completed,
	})
}
