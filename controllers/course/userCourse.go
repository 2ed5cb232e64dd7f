package controllers

import (
	"techlearn/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetUserProgress returns exercise and quiz progress of the selected course.
func GetUserProgress(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	courseID := middleware.CourseParam(c)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully.", fiber.Map{
		"course_id":              courseID,
		"modules":                s.Progress.ProgressFor(courseID),
		"quizzes":                s.Progress.QuizProgressFor(courseID),
		"completion_percent":     s.Progress.CompletionPercent(courseID),
		"completed":              s.Certificates.IsCourseComplete(courseID),
		"certificates_generated": s.Progress.CertificateCount(courseID),
		"certificates_remaining": s.Certificates.Remaining(courseID),
	})
}
