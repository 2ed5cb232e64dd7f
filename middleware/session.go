package middleware

import (
	"strings"

	"techlearn/services"
	"techlearn/session"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// DeviceHeader carries the device id of clients that are not logged in yet.
const DeviceHeader = "X-Device-ID"

// DeviceID returns the device id sent by the client, or a new one when it is missing
// or malformed.
func DeviceID(c *fiber.Ctx) string {
	id := strings.TrimSpace(c.Get(DeviceHeader))
	if _, err := uuid.Parse(id); err != nil {
		return session.NewDeviceID()
	}
	return strings.ToLower(id)
}

// SessionMiddleware resolves the device session of the token and checks that the
// device is still logged in as the token's user. Must run after JWTMiddleware.
func SessionMiddleware(c *fiber.Ctx) error {
	deviceID, _ := c.Locals("deviceId").(string)
	email, _ := c.Locals("email").(string)
	if deviceID == "" || email == "" {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	s := services.App.Sessions.Open(c.UserContext(), deviceID)
	current := s.Identity.Current()
	if current == nil || current.Email != email {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Session expired, please login again!", nil)
	}

	c.Locals("session", s)
	return c.Next()
}

// CurrentSession returns the session stored by SessionMiddleware.
func CurrentSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals("session").(*session.Session)
	return s
}
