package controllers

import (
	"techlearn/middleware"
	"techlearn/services"

	"github.com/gofiber/fiber/v2"
)

func EnrollInCourse(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Check if course exists
	courseID := middleware.CourseParam(c)
	if _, ok := services.App.Catalog.Course(courseID); !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if s.Progress.IsEnrolled(courseID) {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled in this course.", fiber.Map{
			"enrolled_courses": s.Progress.EnrolledCourses(),
		})
	}

	if err := s.Progress.Enroll(c.UserContext(), courseID); err != nil {
		services.App.Log.Error("Failed to enroll", "device", s.ID, "course", courseID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}
	s.SelectCourse(courseID)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", fiber.Map{
		"enrolled_courses": s.Progress.EnrolledCourses(),
	})
}

// EnrollmentItem is one enrolled course with the user's standing in it.
type EnrollmentItem struct {
	CourseID              string `json:"course_id"`
	Title                 string `json:"title"`
	Category              string `json:"category"`
	Instructor            string `json:"instructor"`
	CompletionPercent     int    `json:"completion_percent"`
	Completed             bool   `json:"completed"`
	CertificatesRemaining int    `json:"certificates_remaining"`
}

// GetUserEnrollmentsList lists the courses the user is enrolled in, in catalog order.
func GetUserEnrollmentsList(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	items := make([]EnrollmentItem, 0)
	for _, crs := range services.App.Catalog.All() {
		if !s.Progress.IsEnrolled(crs.ID) {
			continue
		}
		items = append(items, EnrollmentItem{
			CourseID:              crs.ID,
			Title:                 crs.Title,
			Category:              crs.Category,
			Instructor:            crs.Instructor,
			CompletionPercent:     s.Progress.CompletionPercent(crs.ID),
			Completed:             s.Certificates.IsCourseComplete(crs.ID),
			CertificatesRemaining: s.Certificates.Remaining(crs.ID),
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully.", fiber.Map{
		"enrollments": items,
		"total":       len(items),
	})
}
