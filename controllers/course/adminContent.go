package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	validators "lms/validators/course"
)

// managedLesson loads a lesson whose course the caller may author.
func managedLesson(c *fiber.Ctx, lessonID uint) (*courseModels.Lesson, error) {
	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", lessonID, false).First(&lesson).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}
	course, err := managedCourse(c, lesson.CourseID)
	if course == nil {
		return nil, err
	}
	return &lesson, nil
}

// AdminCreateLesson adds a lesson to a module
func AdminCreateLesson(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)
	moduleID := c.Locals("moduleID").(int)
	reqData := c.Locals("validatedLesson").(*validators.LessonRequest)

	course, err := managedCourse(c, uint(courseID))
	if course == nil {
		return err
	}

	var module courseModels.Module
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ?", moduleID, course.ID, false).First(&module).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	lesson := courseModels.Lesson{
		CourseID:    course.ID,
		ModuleID:    module.ID,
		Title:       reqData.Title,
		Description: reqData.Description,
		ContentType: reqData.ContentType,
		TextContent: reqData.TextContent,
		VideoURL:    reqData.VideoURL,
		ImageURL:    reqData.ImageURL,
		OrderIndex:  reqData.OrderIndex,
	}

	if err := database.Database.Db.Create(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// AdminUpdateLesson updates a lesson
func AdminUpdateLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(int)
	reqData := c.Locals("validatedLessonUpdate").(*validators.LessonUpdateRequest)

	lesson, err := managedLesson(c, uint(lessonID))
	if lesson == nil {
		return err
	}

	if reqData.Title != nil {
		lesson.Title = *reqData.Title
	}
	if reqData.Description != nil {
		lesson.Description = *reqData.Description
	}
	if reqData.TextContent != nil {
		lesson.TextContent = *reqData.TextContent
	}
	if reqData.VideoURL != nil {
		lesson.VideoURL = *reqData.VideoURL
	}
	if reqData.ImageURL != nil {
		lesson.ImageURL = *reqData.ImageURL
	}
	if reqData.OrderIndex != nil {
		lesson.OrderIndex = *reqData.OrderIndex
	}

	if err := database.Database.Db.Save(lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// AdminDeleteLesson soft deletes a lesson. Completed sets keep the id, but
// the lesson no longer counts towards the course total.
func AdminDeleteLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(int)

	lesson, err := managedLesson(c, uint(lessonID))
	if lesson == nil {
		return err
	}

	if err := database.Database.Db.Model(lesson).Update("is_deleted", true).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// AdminPublishLesson publishes or unpublishes a lesson
func AdminPublishLesson(c *fiber.Ctx) error {
	lessonID := c.Locals("lessonID").(int)
	publishStatus := c.Locals("publishStatus").(bool)

	lesson, err := managedLesson(c, uint(lessonID))
	if lesson == nil {
		return err
	}

	lesson.IsPublished = publishStatus
	if err := database.Database.Db.Save(lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	message := "Lesson unpublished successfully!"
	if publishStatus {
		message = "Lesson published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, lesson)
}
