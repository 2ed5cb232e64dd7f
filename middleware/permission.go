package middleware

import (
	"strings"

	"techlearn/services"

	"github.com/gofiber/fiber/v2"
)

// CourseParam returns the course id route parameter.
func CourseParam(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Params("course_id")); id != "" {
		return id
	}
	return strings.TrimSpace(c.Params("id"))
}

// RequireEnrollment lets the request through only when the course exists and the
// session user is enrolled in it. Must run after SessionMiddleware.
func RequireEnrollment(c *fiber.Ctx) error {
	s := CurrentSession(c)
	if s == nil {
		return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := CourseParam(c)
	if _, ok := services.App.Catalog.Course(courseID); !ok {
		return JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !s.Progress.IsEnrolled(courseID) {
		return JsonResponse(c, fiber.StatusForbidden, false, "You are not enrolled in this course!", nil)
	}

	s.SelectCourse(courseID)
	return c.Next()
}

// RequireExerciseComplete guards module quizzes: the module exercise must be done
// first. Must run after RequireEnrollment.
func RequireExerciseComplete(c *fiber.Ctx) error {
	s := CurrentSession(c)
	courseID := CourseParam(c)
	moduleID := strings.TrimSpace(c.Params("module_id"))

	if _, ok := services.App.Catalog.Module(courseID, moduleID); !ok {
		return JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}
	if !s.Progress.ProgressFor(courseID)[moduleID] {
		return JsonResponse(c, fiber.StatusForbidden, false, "Complete the module exercise before taking the quiz!", nil)
	}
	return c.Next()
}
