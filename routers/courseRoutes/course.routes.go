package courseRoutes

import (
	controllers "techlearn/controllers/course"
	"techlearn/middleware"
	validators "techlearn/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	userGroup := app.Group("/course")

	// Everything but the public catalog needs a logged in device
	auth := []fiber.Handler{middleware.JWTMiddleware, middleware.SessionMiddleware}

	// Catalog browsing (public)
	userGroup.Get("/list", validators.CourseList(), controllers.GetAllCourses)
	userGroup.Get("/filters", controllers.GetCourseFilters)

	// Catalog browsing that keeps the filter on the session
	userGroup.Get("/browse", with(auth, validators.CourseList(), controllers.BrowseCourses)...)

	userGroup.Get("/:id", validators.CourseID(), controllers.GetCourseDetails)

	enrolled := with(auth, middleware.RequireEnrollment)
	module := with(enrolled, middleware.RequireExerciseComplete)

	// Enrollment
	userGroup.Post("/:id/enroll", with(auth, validators.CourseID(), controllers.EnrollInCourse)...)

	// Progress tracking
	userGroup.Get("/:course_id/progress", with(enrolled, controllers.GetUserProgress)...)

	// Module content and exercise completion
	userGroup.Get("/:course_id/module/:module_id", with(enrolled, controllers.GetModuleContent)...)
	userGroup.Post("/:course_id/module/:module_id/exercise/complete", with(enrolled, controllers.MarkExerciseComplete)...)

	// Quiz submission, unlocked by the module exercise
	userGroup.Post("/:course_id/module/:module_id/quiz/submit", with(module, validators.SubmitQuizAnswers(), controllers.SubmitQuizAnswers)...)

	// AI tutor
	userGroup.Post("/:course_id/module/:module_id/tutor", with(enrolled, validators.AskTutorRequest(), controllers.AskTutor)...)

	// Certificates
	userGroup.Post("/:course_id/certificate", with(enrolled, validators.GenerateCertificateRequest(), controllers.GenerateCertificate)...)
	userGroup.Get("/:course_id/certificate/download", with(enrolled, validators.DownloadCertificate(), controllers.DownloadCertificate)...)
}

// with returns a new chain of base followed by handlers.
func with(base []fiber.Handler, handlers ...fiber.Handler) []fiber.Handler {
	chain := make([]fiber.Handler, 0, len(base)+len(handlers))
	chain = append(chain, base...)
	return append(chain, handlers...)
}
