package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services/certificate"
	"lms/utils"
	validators "lms/validators/course"
)

type enrollmentWithUser struct {
	courseModels.Enrollment
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email"`
}

// AdminGetCourseEnrollments gets the enrolled students of a course. The
// completed query flag narrows it to students who finished.
func AdminGetCourseEnrollments(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	page := c.Locals("pagination").(*validators.Pagination)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	filter := func(db *gorm.DB) *gorm.DB {
		db = db.Where("enrollments.course_id = ? AND enrollments.is_deleted = ? AND enrollments.deleted_at IS NULL", course.ID, false)
		if c.QueryBool("completed") {
			db = db.Where("enrollments.completed = ?", true)
		}
		return db
	}

	var total int64
	if err := database.Database.Db.Table("enrollments").Scopes(filter).Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	enrollments := []enrollmentWithUser{}
	if err := database.Database.Db.Table("enrollments").
		Select("enrollments.*, users.name AS user_name, users.email AS user_email").
		Joins("LEFT JOIN users ON users.id = enrollments.user_id").
		Scopes(filter, utils.Paginate(page.Page, page.Limit)).
		Order("enrollments.created_at desc").
		Scan(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": enrollments,
		"pagination":  utils.Pagination{Total: total, Page: page.Page, Limit: page.Limit},
	})
}

// AdminGetStudentProgress gets every enrollment of one student
func AdminGetStudentProgress(c *fiber.Ctx) error {
	studentID := c.Locals("targetUserID").(int)

	var student models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", studentID, false).First(&student).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Student not found!", nil)
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", student.ID, false).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch progress!", nil)
	}

	type progressRow struct {
		courseModels.Enrollment
		CertificateStatus string `json:"certificate_status"`
	}
	rows := make([]progressRow, 0, len(enrollments))
	for i := range enrollments {
		status, _, err := certificateService.Status(c.UserContext(), &enrollments[i])
		if err != nil {
			return serviceError(c, err)
		}
		rows = append(rows, progressRow{Enrollment: enrollments[i], CertificateStatus: status})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Student progress fetched successfully!", fiber.Map{
		"student":     student,
		"enrollments": rows,
	})
}

// AdminGetPendingCertificates lists completed enrollments still waiting for a
// certificate
func AdminGetPendingCertificates(c *fiber.Ctx) error {
	page := c.Locals("pagination").(*validators.Pagination)

	ids, err := certificateService.PendingEnrollments(c.UserContext(), page.Limit)
	if err != nil {
		return serviceError(c, err)
	}

	enrollments := []courseModels.Enrollment{}
	if len(ids) > 0 {
		database.Database.Db.Where("id IN ?", ids).Order("completed_at asc").Find(&enrollments)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending certificates fetched successfully!", fiber.Map{
		"status":      certificate.StatusPending,
		"enrollments": enrollments,
	})
}

// AdminDashboardStats gets dashboard statistics
func AdminDashboardStats(c *fiber.Ctx) error {
	db := database.Database.Db
	today := now.BeginningOfDay()
	month := now.BeginningOfMonth()

	var totalCourses, publishedCourses, totalEnrollments, completedEnrollments int64
	var issuedCertificates, issuedThisMonth, completedToday, attemptsToday int64

	counts := []struct {
		query *gorm.DB
		dest  *int64
	}{
		{db.Model(&courseModels.Course{}).Where("is_deleted = ?", false), &totalCourses},
		{db.Model(&courseModels.Course{}).Where("is_deleted = ? AND is_published = ?", false, true), &publishedCourses},
		{db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false), &totalEnrollments},
		{db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND completed = ?", false, true), &completedEnrollments},
		{db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND completed = ? AND completed_at >= ?", false, true, today), &completedToday},
		{db.Model(&courseModels.Certificate{}), &issuedCertificates},
		{db.Model(&courseModels.Certificate{}).Where("issued_at >= ?", month), &issuedThisMonth},
		{db.Model(&courseModels.QuizAttempt{}).Where("submitted_at >= ?", today), &attemptsToday},
	}
	for _, q := range counts {
		if err := q.query.Count(q.dest).Error; err != nil {
			log.Error().Err(err).Msg("dashboard stats count failed")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard stats!", nil)
		}
	}

	pending, err := certificateService.PendingEnrollments(c.UserContext(), 1000)
	if err != nil {
		return serviceError(c, err)
	}

	type RecentEnrollment struct {
		UserName   string    `json:"user_name"`
		CourseName string    `json:"course_name"`
		EnrolledAt time.Time `json:"enrolled_at"`
	}

	recent := []RecentEnrollment{}
	if err := db.Table("enrollments").
		Select("users.name AS user_name, courses.title AS course_name, enrollments.created_at AS enrolled_at").
		Joins("LEFT JOIN users ON users.id = enrollments.user_id").
		Joins("LEFT JOIN courses ON courses.id = enrollments.course_id").
		Where("enrollments.is_deleted = ?", false).
		Order("enrollments.created_at desc").
		Limit(5).
		Scan(&recent).Error; err != nil {
		log.Error().Err(err).Msg("dashboard recent enrollments failed")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch dashboard stats!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched successfully!", fiber.Map{
		"stats": fiber.Map{
			"total_courses":           totalCourses,
			"published_courses":       publishedCourses,
			"total_enrollments":       totalEnrollments,
			"completed_enrollments":   completedEnrollments,
			"completed_today":         completedToday,
			"quiz_attempts_today":     attemptsToday,
			"issued_certificates":     issuedCertificates,
			"certificates_this_month": issuedThisMonth,
			"pending_certificates":    len(pending),
		},
		"recent_enrollments": recent,
	})
}
