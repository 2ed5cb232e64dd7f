package authController

import (
	"errors"

	"techlearn/identity"
	"techlearn/middleware"
	"techlearn/models"
	"techlearn/services"
	authValidator "techlearn/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.Credentials)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please fill in all fields.", nil)
	}

	user, err := services.App.Accounts.Register(c.UserContext(), reqData.Email, reqData.Password)
	if errors.Is(err, identity.ErrAccountExists) {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "An account with this email already exists. Please log in.", nil)
	}
	if err != nil {
		services.App.Log.Error("Failed to register account", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register user!", nil)
	}

	return startSession(c, user, fiber.StatusCreated, "User registered successfully.")
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.Credentials)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please fill in all fields.", nil)
	}

	user, err := services.App.Accounts.Authenticate(c.UserContext(), reqData.Email, reqData.Password)
	switch {
	case errors.Is(err, identity.ErrAccountNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No account found with this email. Please register first.", nil)
	case errors.Is(err, identity.ErrInvalidCredentials):
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid email or password!", nil)
	case err != nil:
		services.App.Log.Error("Failed to authenticate account", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
	}

	return startSession(c, user, fiber.StatusOK, "Login successful.")
}

// startSession logs user in on the requesting device and issues its token.
func startSession(c *fiber.Ctx, user models.User, status int, message string) error {
	deviceID := middleware.DeviceID(c)
	s := services.App.Sessions.Open(c.UserContext(), deviceID)

	if err := s.Identity.Login(c.UserContext(), user); err != nil {
		if s.Identity.Current() == nil {
			services.App.Log.Error("Failed to store current user", "device", deviceID, "error", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to login!", nil)
		}
		// Logged in with whatever progress could be read
		services.App.Log.Warn("Progress loaded with errors", "device", deviceID, "error", err)
	}

	token, err := middleware.GenerateJWT(user.Key(), deviceID)
	if err != nil {
		services.App.Log.Error("Failed to sign token", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	return middleware.JsonResponse(c, status, true, message, fiber.Map{
		"token":     token,
		"device_id": deviceID,
		"user":      s.Identity.Current(),
	})
}

func Logout(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if err := s.Identity.Logout(c.UserContext()); err != nil {
		services.App.Log.Warn("Failed to clear current user record", "device", s.ID, "error", err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully.", nil)
}

func Me(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User fetched successfully.", fiber.Map{
		"user":             s.Identity.Current(),
		"enrolled_courses": s.Progress.EnrolledCourses(),
		"selected_course":  s.SelectedCourse(),
	})
}
