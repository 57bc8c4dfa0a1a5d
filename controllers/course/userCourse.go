package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
)

type moduleWithLessons struct {
	courseModels.Module
	Lessons []courseModels.Lesson `json:"lessons"`
}

func groupLessons(modules []courseModels.Module, lessons []courseModels.Lesson) []moduleWithLessons {
	byModule := make(map[uint][]courseModels.Lesson, len(modules))
	for _, l := range lessons {
		byModule[l.ModuleID] = append(byModule[l.ModuleID], l)
	}
	out := make([]moduleWithLessons, 0, len(modules))
	for _, m := range modules {
		ls := byModule[m.ID]
		if ls == nil {
			ls = []courseModels.Lesson{}
		}
		out = append(out, moduleWithLessons{Module: m, Lessons: ls})
	}
	return out
}

// GetCourseDetails returns a published course with its outline
func GetCourseDetails(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var modules []courseModels.Module
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&modules)

	// outline only, content is served to enrolled students
	var lessons []courseModels.Lesson
	database.Database.Db.Select("id", "course_id", "module_id", "title", "content_type", "order_index").
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Order("order_index asc, id asc").Find(&lessons)

	var quizCount int64
	database.Database.Db.Model(&courseModels.Quiz{}).Where("course_id = ? AND is_deleted = ?", courseID, false).Count(&quizCount)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", fiber.Map{
		"course":        course,
		"modules":       groupLessons(modules, lessons),
		"total_lessons": len(lessons),
		"has_quiz":      quizCount > 0,
	})
}
