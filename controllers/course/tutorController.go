package controllers

import (
	"errors"

	"techlearn/middleware"
	"techlearn/services"
	"techlearn/tutor"
	courseValidator "techlearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

// AskTutor forwards a question about the module to the tutor service.
func AskTutor(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTutor").(*courseValidator.AskTutor)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	courseID := middleware.CourseParam(c)
	crs, _ := services.App.Catalog.Course(courseID)
	m, ok := services.App.Catalog.Module(courseID, moduleParam(c))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	reply, err := services.App.Tutor.Ask(c.UserContext(), crs, m, reqData.History, reqData.Message, nil)
	if errors.Is(err, tutor.ErrEmptyMessage) {
		return middleware.ValidationErrorResponse(c, map[string]string{"message": "Message must not be blank!"})
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, tutor.FallbackReply, fiber.Map{
			"reply": tutor.FallbackReply,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reply fetched successfully.", fiber.Map{
		"reply": reply,
	})
}
