package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"techlearn/certificate"
	"techlearn/middleware"
	"techlearn/services"
	"techlearn/utils"
	courseValidator "techlearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

const exportTimeout = 30 * time.Second

// GenerateCertificate issues a certificate for a completed course and keeps it on the
// session for download.
func GenerateCertificate(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)

	reqData, ok := c.Locals("validatedCertificate").(*courseValidator.GenerateCertificate)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
	}

	crs, ok := services.App.Catalog.Course(middleware.CourseParam(c))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	info, err := s.Certificates.Generate(c.UserContext(), crs, reqData.StudentName)
	switch {
	case errors.Is(err, certificate.ErrStudentNameRequired):
		return middleware.ValidationErrorResponse(c, map[string]string{"student_name": "Please enter your name."})
	case errors.Is(err, certificate.ErrCourseIncomplete):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please complete all modules before generating a certificate!", nil)
	case errors.Is(err, certificate.ErrGenerationLimitReached):
		return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false,
			fmt.Sprintf("You can only generate %d certificates per course!", s.Certificates.Limit()), nil)
	case err != nil:
		services.App.Log.Error("Failed to generate certificate", "device", s.ID, "course", crs.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate certificate!", nil)
	}
	s.SetCertificate(info)

	if reqData.Email {
		tpl, _ := certificate.ParseTemplate(reqData.Template)
		to := s.Identity.Current().Email
		snapshot := *info
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
			defer cancel()
			pdf, err := services.App.Exporter.ExportPDF(ctx, snapshot, tpl)
			if err != nil {
				services.App.Log.Warn("Failed to export certificate for email", "to", to, "error", err)
				return
			}
			utils.SendCertificateEmail(services.App.Mailer, services.App.Log, to, snapshot, pdf)
		}()
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Certificate generated successfully.", fiber.Map{
		"certificate": info,
		"remaining":   s.Certificates.Remaining(crs.ID),
	})
}

// DownloadCertificate renders the last certificate generated on the device as a PDF.
func DownloadCertificate(c *fiber.Ctx) error {
	s := middleware.CurrentSession(c)

	crs, ok := services.App.Catalog.Course(middleware.CourseParam(c))
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	info := s.Certificate()
	if info == nil || info.CourseTitle != crs.Title {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No certificate generated for this course yet!", nil)
	}

	tpl, ok := c.Locals("validatedTemplate").(certificate.Template)
	if !ok {
		tpl = certificate.TemplateModern
	}

	pdf, err := services.App.Exporter.ExportPDF(c.UserContext(), *info, tpl)
	if err != nil {
		services.App.Log.Error("Failed to export certificate", "device", s.ID, "course", crs.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate PDF. Please try again.", nil)
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", certificate.FileName(crs.Title)))
	return c.Status(fiber.StatusOK).Send(pdf)
}
