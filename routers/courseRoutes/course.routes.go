package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	active := middleware.RequireRole()

	userGroup := app.Group("/course", middleware.JWTMiddleware)

	// Course listing and details (published courses)
	userGroup.Get("/list", validators.CourseList(), controllers.GetAllCourses)
	userGroup.Get("/:id", validators.IDParams("id"), controllers.GetCourseDetails)

	// Enrollment
	userGroup.Post("/:id/enroll", active, validators.EnrollCourse(), controllers.EnrollInCourse)

	// Content viewing (for enrolled users)
	userGroup.Get("/:id/content", validators.IDParams("id"), controllers.GetCourseContent)

	// Lesson completion
	userGroup.Post("/:course_id/lesson/:lesson_id/complete", active, validators.CompleteLesson(), controllers.CompleteLesson)

	// Quiz
	userGroup.Get("/:course_id/quiz", validators.IDParams("course_id"), controllers.GetQuiz)
	userGroup.Post("/:course_id/quiz/:quiz_id/submit", active, validators.SubmitQuiz(), controllers.SubmitQuizAttempt)
	userGroup.Get("/:course_id/quiz/:quiz_id/attempts", validators.IDParams("course_id", "quiz_id"), controllers.GetQuizAttempts)

	// Progress tracking
	userGroup.Get("/:course_id/progress", validators.IDParams("course_id"), controllers.GetUserProgress)

	// User enrollments and certificates
	userEnrollGroup := app.Group("/user", middleware.JWTMiddleware)
	userEnrollGroup.Get("/enrollments", validators.List(), controllers.GetEnrollments)
	userEnrollGroup.Get("/certificates", controllers.GetUserCertificates)

	// Public certificate verification
	app.Get("/certificate/verify/:number", validators.VerifyCertificate(), controllers.VerifyCertificate)
}
