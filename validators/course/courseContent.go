package courseValidator

import (
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

// CompleteLesson validates the lesson completion route. The lesson is
// checked against the course later, after enrollment.
func CompleteLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		lessonID, ok := paramID(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		c.Locals("courseID", courseID)
		c.Locals("lessonID", lessonID)
		return c.Next()
	}
}

// CourseList validates the public course listing query
func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := &CourseListRequest{Page: 1, Limit: 10}
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		if errors := fieldErrors(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourseList", reqData)
		return c.Next()
	}
}

type CourseListRequest struct {
	Page   int    `query:"page" validate:"min=1"`
	Limit  int    `query:"limit" validate:"min=1,max=100"`
	Search string `query:"search" validate:"max=100"`
}
