package controllers

import (
	"github.com/gofiber/fiber/v2"

	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
)

// GetCourseContent returns the published lessons of a course to an
// enrolled student, flagged with what the student already completed
func GetCourseContent(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(int)

	enrollment, err := progressService.Enrollment(c.UserContext(), userID, uint(courseID))
	if err != nil {
		return serviceError(c, err)
	}

	var modules []courseModels.Module
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("order_index asc").Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course content!", nil)
	}

	var lessons []courseModels.Lesson
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Order("order_index asc, id asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course content!", nil)
	}

	completed := make(map[uint]bool)
	for _, id := range enrollment.LessonIDs() {
		completed[id] = true
	}

	type lessonView struct {
		courseModels.Lesson
		IsCompleted bool `json:"is_completed"`
	}
	type moduleView struct {
		courseModels.Module
		Lessons []lessonView `json:"lessons"`
	}

	grouped := groupLessons(modules, lessons)
	out := make([]moduleView, 0, len(grouped))
	for _, m := range grouped {
		mv := moduleView{Module: m.Module, Lessons: make([]lessonView, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			mv.Lessons = append(mv.Lessons, lessonView{Lesson: l, IsCompleted: completed[l.ID]})
		}
		out = append(out, mv)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course content fetched successfully!", fiber.Map{
		"modules":    out,
		"enrollment": enrollment,
	})
}

// CompleteLesson marks a lesson as completed for the caller
func CompleteLesson(c *fiber.Ctx) error {
	userID := c.Locals("userId").(uint)
	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	result, err := progressService.SubmitLessonProgress(c.UserContext(), userID, uint(courseID), uint(lessonID))
	if err != nil {
		return serviceError(c, err)
	}

	message := "Lesson marked as completed!"
	if result.Completed {
		message = "Course completed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}
