package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/utils"
	validators "lms/validators/course"
)

// GetAllCourses lists published courses
func GetAllCourses(c *fiber.Ctx) error {
	reqData := c.Locals("validatedCourseList").(*validators.CourseListRequest)

	db := database.Database.Db.Model(&courseModels.Course{}).
		Where("is_deleted = ? AND is_published = ?", false, true)
	if reqData.Search != "" {
		like := "%" + reqData.Search + "%"
		db = db.Where("title LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	var courses []courseModels.Course
	if err := db.Scopes(utils.Paginate(reqData.Page, reqData.Limit)).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"pagination": utils.Pagination{Total: total, Page: reqData.Page, Limit: reqData.Limit},
	})
}
