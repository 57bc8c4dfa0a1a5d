package courseValidator

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

var unsafeName = regexp.MustCompile(`[<>{}]`)

// ============ Course Validators ============

type CourseRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=200"`
	Description  string `json:"description" validate:"max=5000"`
	Author       string `json:"author" validate:"max=100"`
	Duration     int64  `json:"duration" validate:"gte=0"`
	ThumbnailURL string `json:"thumbnail_url" validate:"omitempty,url"`
}

type CourseUpdateRequest struct {
	Title        *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description  *string `json:"description" validate:"omitempty,max=5000"`
	Author       *string `json:"author" validate:"omitempty,max=100"`
	Duration     *int64  `json:"duration" validate:"omitempty,gte=0"`
	ThumbnailURL *string `json:"thumbnail_url" validate:"omitempty,url"`
	Status       *string `json:"status" validate:"omitempty,oneof=DRAFT ACTIVE INACTIVE"`
}

// CreateCourseAdmin validates course creation request
func CreateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)
		reqData.Author = strings.TrimSpace(reqData.Author)

		errors := fieldErrors(reqData)
		if unsafeName.MatchString(reqData.Author) {
			errors["author"] = "Author name contains invalid characters!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// UpdateCourseAdmin validates course update request
func UpdateCourseAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(CourseUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		trim(reqData.Title, reqData.Description, reqData.Author)

		errors := fieldErrors(reqData)
		if reqData.Author != nil && unsafeName.MatchString(*reqData.Author) {
			errors["author"] = "Author name contains invalid characters!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// PublishCourse validates course publish/unpublish request
func PublishCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(struct {
			IsPublished *bool `json:"is_published"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.IsPublished == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"is_published": "is published is required!"})
		}

		c.Locals("courseID", courseID)
		c.Locals("publishStatus", *reqData.IsPublished)
		return c.Next()
	}
}

// ============ Module Validators ============

type ModuleRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=2000"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

type ModuleUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	OrderIndex  *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// CreateModule validates module creation request
func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		reqData := new(ModuleRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if errors := fieldErrors(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// UpdateModule validates module update request
func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		moduleID, ok := paramID(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}

		reqData := new(ModuleUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		trim(reqData.Title, reqData.Description)

		if errors := fieldErrors(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		c.Locals("validatedModuleUpdate", reqData)
		return c.Next()
	}
}

// ============ Lesson Validators ============

type LessonRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"max=2000"`
	ContentType string `json:"content_type" validate:"oneof=TEXT VIDEO IMAGE"`
	TextContent string `json:"text_content" validate:"required_if=ContentType TEXT"`
	VideoURL    string `json:"video_url" validate:"required_if=ContentType VIDEO,omitempty,url"`
	ImageURL    string `json:"image_url" validate:"required_if=ContentType IMAGE,omitempty,url"`
	OrderIndex  int    `json:"order_index" validate:"gte=0"`
}

type LessonUpdateRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	TextContent *string `json:"text_content"`
	VideoURL    *string `json:"video_url" validate:"omitempty,url"`
	ImageURL    *string `json:"image_url" validate:"omitempty,url"`
	OrderIndex  *int    `json:"order_index" validate:"omitempty,gte=0"`
}

// CreateLesson validates lesson creation request
func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok := paramID(c, "course_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}
		moduleID, ok := paramID(c, "module_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
		}

		reqData := new(LessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.ContentType = strings.ToUpper(strings.TrimSpace(reqData.ContentType))
		if reqData.ContentType == "" {
			reqData.ContentType = "TEXT"
		}

		if errors := fieldErrors(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("courseID", courseID)
		c.Locals("moduleID", moduleID)
		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// UpdateLesson validates lesson update request
func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := paramID(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(LessonUpdateRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		trim(reqData.Title, reqData.Description)

		if errors := fieldErrors(reqData); len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("lessonID", lessonID)
		c.Locals("validatedLessonUpdate", reqData)
		return c.Next()
	}
}

// PublishLesson validates lesson publish/unpublish request
func PublishLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		lessonID, ok := paramID(c, "lesson_id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
		}

		reqData := new(struct {
			IsPublished *bool `json:"is_published"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.IsPublished == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"is_published": "is published is required!"})
		}

		c.Locals("lessonID", lessonID)
		c.Locals("publishStatus", *reqData.IsPublished)
		return c.Next()
	}
}

func trim(fields ...*string) {
	for _, f := range fields {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
}
