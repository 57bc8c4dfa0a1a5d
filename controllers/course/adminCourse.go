package controllers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/storage"
	"lms/utils"
	validators "lms/validators/course"
)

// managedCourse loads a course the caller is allowed to author.
func managedCourse(c *fiber.Ctx, courseID uint) (*courseModels.Course, error) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	if !canManage(user.Role, user.ID, course.FacilitatorID) {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! You do not manage this course.", nil)
	}
	return &course, nil
}

// AdminCreateCourse creates a new course owned by the caller
func AdminCreateCourse(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData := c.Locals("validatedCourse").(*validators.CourseRequest)

	course := courseModels.Course{
		Title:         reqData.Title,
		Description:   reqData.Description,
		Author:        reqData.Author,
		FacilitatorID: user.ID,
		Duration:      reqData.Duration,
		ThumbnailURL:  reqData.ThumbnailURL,
		Status:        "DRAFT",
	}
	if course.Author == "" {
		course.Author = user.Name
	}

	if err := database.Database.Db.Create(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// AdminUpdateCourse updates an existing course
func AdminUpdateCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	reqData := c.Locals("validatedCourseUpdate").(*validators.CourseUpdateRequest)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.Author != nil {
		updates["author"] = *reqData.Author
	}
	if reqData.Duration != nil {
		updates["duration"] = *reqData.Duration
	}
	if reqData.ThumbnailURL != nil {
		updates["thumbnail_url"] = *reqData.ThumbnailURL
	}
	if reqData.Status != nil {
		updates["status"] = *reqData.Status
	}

	if len(updates) > 0 {
		if err := database.Database.Db.Model(course).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
		database.Database.Db.First(course, course.ID)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AdminDeleteCourse soft deletes a course
func AdminDeleteCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	if err := database.Database.Db.Model(course).Updates(map[string]interface{}{
		"is_deleted":   true,
		"is_published": false,
	}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}

// AdminGetAllCourses lists the courses the caller manages
func AdminGetAllCourses(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	page := c.Locals("pagination").(*validators.Pagination)

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)
	if user.Role != models.RoleAdmin {
		db = db.Where("facilitator_id = ?", user.ID)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	var courses []courseModels.Course
	if err := db.Scopes(utils.Paginate(page.Page, page.Limit)).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses":    courses,
		"pagination": utils.Pagination{Total: total, Page: page.Page, Limit: page.Limit},
	})
}

// AdminGetCourseDetails gets a single course with its modules, lessons and quiz
func AdminGetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	db := database.Database.Db

	var modules []courseModels.Module
	db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&modules)

	var lessons []courseModels.Lesson
	db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc, id asc").Find(&lessons)

	var enrollmentCount int64
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&enrollmentCount)

	var quizCount int64
	db.Model(&courseModels.Quiz{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&quizCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":           course,
		"modules":          groupLessons(modules, lessons),
		"lesson_count":     len(lessons),
		"enrollment_count": enrollmentCount,
		"has_quiz":         quizCount > 0,
	})
}

// AdminPublishCourse publishes or unpublishes a course
func AdminPublishCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	publishStatus := c.Locals("publishStatus").(bool)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	course.IsPublished = publishStatus
	if publishStatus {
		course.Status = "ACTIVE"
	}

	if err := database.Database.Db.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	message := "Course unpublished successfully!"
	if publishStatus {
		message = "Course published successfully!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

// AdminUploadThumbnail stores a course thumbnail and saves its URL
func AdminUploadThumbnail(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	file, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail file is required!", nil)
	}
	if file.Size > 5*1024*1024 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail must be at most 5MB!", nil)
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), 30*time.Second)
	defer cancel()

	url, err := storage.SaveUploadedFile(ctx, fileStorage, file, "thumbnails")
	if err != nil {
		return serviceError(c, err)
	}

	if err := database.Database.Db.Model(course).Update("thumbnail_url", url).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}
	course.ThumbnailURL = url

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded successfully!", course)
}
