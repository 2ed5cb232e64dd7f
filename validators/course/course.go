package courseValidator

import (
	"strings"

	"techlearn/catalog"
	"techlearn/certificate"
	"techlearn/middleware"
	"techlearn/tutor"
	"techlearn/validators"

	"github.com/gofiber/fiber/v2"
)

// CourseList validates the category and instructor filters of the course list.
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(catalog.Filter)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}
		reqData.Category = strings.TrimSpace(reqData.Category)
		reqData.Instructor = strings.TrimSpace(reqData.Instructor)

		c.Locals("validatedFilter", reqData)
		return c.Next()
	}
}

// CourseID checks that the course route parameter is present.
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if middleware.CourseParam(c) == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}
		return c.Next()
	}
}

// SubmitQuiz is the body of a quiz submission: the chosen option index per question id.
type SubmitQuiz struct {
	Answers map[string]int `json:"answers" validate:"required,min=1,dive,gte=0"`
}

func SubmitQuizAnswers() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(SubmitQuiz)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

// GenerateCertificate is the body of a certificate request.
type GenerateCertificate struct {
	StudentName string `json:"student_name" validate:"required,notblank,max=120"`
	Template    string `json:"template" validate:"omitempty,oneof=modern classic"`
	Email       bool   `json:"email"`
}

func GenerateCertificateRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(GenerateCertificate)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.StudentName = strings.TrimSpace(reqData.StudentName)
		reqData.Template = strings.ToLower(strings.TrimSpace(reqData.Template))

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCertificate", reqData)
		return c.Next()
	}
}

// DownloadCertificate validates the template query of a certificate download.
func DownloadCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tpl, err := certificate.ParseTemplate(c.Query("template"))
		if err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"template": "Template must be one of: modern, classic!",
			})
		}

		c.Locals("validatedTemplate", tpl)
		return c.Next()
	}
}

// AskTutor is the body of a tutor question with the conversation so far.
type AskTutor struct {
	Message string         `json:"message" validate:"required,notblank,max=4000"`
	History []tutor.Message `json:"history" validate:"max=50,dive"`
}

func AskTutorRequest() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AskTutor)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if errors := validators.Struct(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTutor", reqData)
		return c.Next()
	}
}
