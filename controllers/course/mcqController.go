package controllers

import (
	"errors"

	"techlearn/catalog"
	"techlearn/middleware"
	"techlearn/services"
	courseValidator "techlearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SubmitQuizAnswers grades a module quiz and records the score. A resubmission
// replaces the previous score.
func SubmitQuizAnswers(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	courseID := middleware.CourseParam(c)

	reqData, ok := c.Locals("validatedQuiz").(*courseValidator.SubmitQuiz)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	m, ok := services.App.Catalog.Module(courseID, moduleParam(c))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	score, err := catalog.Grade(m.Quiz, reqData.Answers)
	if errors.Is(err, catalog.ErrIncompleteAnswers) {
		return middleware.ValidationErrorResponse(c, map[string]string{
			"answers": "Please answer all questions before submitting!",
		})
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid answers!", nil)
	}

	if err := s.Progress.CompleteQuiz(c.UserContext(), courseID, m.ID, score); err != nil {
		services.App.Log.Error("Failed to save quiz result", "device", s.ID, "course", courseID, "module", m.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save quiz result!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted successfully.", fiber.Map{
		"score":   score,
		"total":   len(m.Quiz.Questions),
		"quizzes": s.Progress.QuizProgressFor(courseID),
	})
}
