package controllers

import (
	"techlearn/catalog"
	"techlearn/middleware"
	"techlearn/models/course"
	"techlearn/services"

	"github.com/gofiber/fiber/v2"
)

// GetAllCourses lists the catalog narrowed by the category and instructor filters.
func GetAllCourses(c *fiber.Ctx) error {
	return listCourses(c, validatedFilter(c))
}

// BrowseCourses lists the catalog like GetAllCourses and keeps the applied
// filter on the caller's session.
func BrowseCourses(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)
	if s == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	filter := validatedFilter(c)
	s.SetFilter(*filter)
	return listCourses(c, filter)
}

func validatedFilter(c *fiber.Ctx) *catalog.Filter {
	if filter, ok := c.Locals("validatedFilter").(*catalog.Filter); ok {
		return filter
	}
	return &catalog.Filter{}
}

func listCourses(c *fiber.Ctx, filter *catalog.Filter) error {
	courses := filter.Apply(services.App.Catalog)
	summaries := make([]course.Summary, 0, len(courses))
	for _, crs := range courses {
		summaries = append(summaries, crs.Summary())
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully.", fiber.Map{
		"courses": summaries,
		"filter":  filter,
		"total":   len(summaries),
	})
}

// GetCourseFilters returns the distinct categories and instructors of the catalog.
func GetCourseFilters(c *fiber.Ctx) error {
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Filters fetched successfully.", fiber.Map{
		"categories":  services.App.Catalog.Categories(),
		"instructors": services.App.Catalog.Instructors(),
	})
}

func GetCourseDetails(c *fiber.Ctx) error {
	crs, ok := services.App.Catalog.Course(middleware.CourseParam(c))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully.", crs)
}
