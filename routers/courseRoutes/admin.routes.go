package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lms/controllers/course"
	"lms/middleware"
	"lms/models"
	validators "lms/validators/course"
)

// SetupAdminCourseRoutes sets up course authoring and admin routes
func SetupAdminCourseRoutes(app *fiber.App) {
	author := middleware.RequireRole(models.RoleFacilitator, models.RoleAdmin)
	admin := middleware.RequireRole(models.RoleAdmin)

	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, author)

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Get("/list", validators.List(), controllers.AdminGetAllCourses)
	adminGroup.Get("/:id", validators.IDParams("id"), controllers.AdminGetCourseDetails)
	adminGroup.Put("/:id", validators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", validators.IDParams("id"), controllers.AdminDeleteCourse)
	adminGroup.Post("/:id/publish", validators.PublishCourse(), controllers.AdminPublishCourse)
	adminGroup.Post("/:id/thumbnail", validators.IDParams("id"), controllers.AdminUploadThumbnail)

	// Module Management
	adminGroup.Post("/:id/module", validators.CreateModule(), controllers.AdminCreateModule)
	adminGroup.Get("/:id/modules", validators.IDParams("id"), controllers.AdminListModules)
	adminGroup.Put("/:course_id/module/:module_id", validators.UpdateModule(), controllers.AdminUpdateModule)
	adminGroup.Delete("/:course_id/module/:module_id", validators.IDParams("course_id", "module_id"), controllers.AdminDeleteModule)

	// Lesson Management
	adminGroup.Post("/:course_id/module/:module_id/lesson", validators.CreateLesson(), controllers.AdminCreateLesson)

	lessonGroup := app.Group("/admin/lesson", middleware.JWTMiddleware, author)
	lessonGroup.Put("/:lesson_id", validators.UpdateLesson(), controllers.AdminUpdateLesson)
	lessonGroup.Delete("/:lesson_id", validators.IDParams("lesson_id"), controllers.AdminDeleteLesson)
	lessonGroup.Post("/:lesson_id/publish", validators.PublishLesson(), controllers.AdminPublishLesson)

	// Quiz Management
	adminGroup.Put("/:id/quiz", validators.UpsertQuiz(), controllers.AdminUpsertQuiz)
	adminGroup.Get("/:id/quiz", validators.IDParams("id"), controllers.AdminGetQuiz)
	adminGroup.Delete("/:id/quiz", validators.IDParams("id"), controllers.AdminDeleteQuiz)

	// Enrollment & Progress Tracking
	adminGroup.Get("/:id/enrollments", validators.IDParams("id"), validators.List(), controllers.AdminGetCourseEnrollments)

	studentGroup := app.Group("/admin/student", middleware.JWTMiddleware, admin)
	studentGroup.Get("/:user_id/progress", validators.IDParams("user_id"), controllers.AdminGetStudentProgress)

	// Certificate Management
	certGroup := app.Group("/admin/certificates", middleware.JWTMiddleware, admin)
	certGroup.Get("/pending", validators.List(), controllers.AdminGetPendingCertificates)
	certGroup.Post("/retry", controllers.AdminRetryCertificates)
	certGroup.Post("/enrollment/:enrollment_id/issue", validators.IDParams("enrollment_id"), controllers.AdminIssueCertificate)

	// Dashboard
	dashGroup := app.Group("/admin/dashboard", middleware.JWTMiddleware, admin)
	dashGroup.Get("/stats", controllers.AdminDashboardStats)
}
