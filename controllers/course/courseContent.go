package controllers

import (
	"strings"

	"techlearn/middleware"
	"techlearn/services"
	"techlearn/tutor"

	"github.com/gofiber/fiber/v2"
)

func moduleParam(c *fiber.Ctx) string {
	return strings.TrimSpace(c.Params("module_id"))
}

// GetModuleContent returns a module lesson with the user's state in it.
func GetModuleContent(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	courseID := middleware.CourseParam(c)

	m, ok := services.App.Catalog.Module(courseID, moduleParam(c))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module fetched successfully.", fiber.Map{
		"module":             m,
		"exercise_completed": s.Progress.ProgressFor(courseID)[m.ID],
		"quiz":               s.Progress.QuizProgressFor(courseID)[m.ID],
		"tutor_greeting":     tutor.Greeting(m),
	})
}

// MarkExerciseComplete marks the module exercise as done. Completion never reverts.
func MarkExerciseComplete(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	courseID := middleware.CourseParam(c)

	m, ok := services.App.Catalog.Module(courseID, moduleParam(c))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	if err := s.Progress.CompleteExercise(c.UserContext(), courseID, m.ID); err != nil {
		services.App.Log.Error("Failed to complete exercise", "device", s.ID, "course", courseID, "module", m.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exercise marked as completed.", fiber.Map{
		"modules":            s.Progress.ProgressFor(courseID),
		"completion_percent": s.Progress.CompletionPercent(courseID),
	})
}
