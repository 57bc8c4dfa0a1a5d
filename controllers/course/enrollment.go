package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"
	validators "lms/validators/course"
)

func EnrollInCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	enrollment, course, err := progressService.Enroll(c.UserContext(), user.ID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

type enrollmentView struct {
	courseModels.Enrollment
	CourseTitle       string `json:"course_title"`
	CertificateStatus string `json:"certificate_status"`
}

// GetEnrollments lists the caller's enrollments with their certificate status
func GetEnrollments(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	page := c.Locals("pagination").(*validators.Pagination)

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND is_deleted = ?", userID, false)

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := db.Scopes(utils.Paginate(page.Page, page.Limit)).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	courseIDs := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		courseIDs = append(courseIDs, e.CourseID)
	}
	var courses []courseModels.Course
	if len(courseIDs) > 0 {
		database.Database.Db.Unscoped().Select("id", "title").Where("id IN ?", courseIDs).Find(&courses)
	}
	titles := make(map[uint]string, len(courses))
	for _, co := range courses {
		titles[co.ID] = co.Title
	}

	out := make([]enrollmentView, 0, len(enrollments))
	for i := range enrollments {
		status, _, err := certificateService.Status(c.UserContext(), &enrollments[i])
		if err != nil {
			return serviceError(c, err)
		}
		out = append(out, enrollmentView{
			Enrollment:        enrollments[i],
			CourseTitle:       titles[enrollments[i].CourseID],
			CertificateStatus: status,
		})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": out,
		"pagination":  utils.Pagination{Total: total, Page: page.Page, Limit: page.Limit},
	})
}

// GetUserProgress returns the caller's progress in one course
func GetUserProgress(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(int)

	enrollment, err := progressService.Enrollment(c.UserContext(), userID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	total, err := courseModels.CountCourseLessons(database.Database.Db, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	status, cert, err := certificateService.Status(c.UserContext(), enrollment)
	if err != nil {
		return serviceError(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"completed_lessons":  enrollment.LessonIDs(),
		"total_lessons":      total,
		"progress_percent":   enrollment.Progress,
		"quiz_score":         enrollment.QuizScore,
		"quiz_passed":        enrollment.HasPassedQuiz(),
		"quiz_attempts":      enrollment.QuizAttempts,
		"completed":          enrollment.Completed,
		"completed_at":       enrollment.CompletedAt,
		"status":             enrollment.Status,
		"certificate_status": status,
		"certificate":        cert,
	})
}
