package authValidator

import (
	"strings"

	"techlearn/middleware"
	"techlearn/validators"

	"github.com/gofiber/fiber/v2"
)

// Credentials is the validated body of register and login requests.
type Credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func credentials() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(Credentials)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Email = strings.TrimSpace(reqData.Email)

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		// Pass validated credentials to the next handler
		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

// Register validator middleware
func Register() fiber.Handler {
	return credentials()
}

// Login validator middleware
func Login() fiber.Handler {
	return credentials()
}
