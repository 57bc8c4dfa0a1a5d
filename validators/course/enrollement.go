package courseValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseIDStr := strings.TrimSpace(c.Params("id"))
		if courseIDStr == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course ID is required!", nil)
		}

		courseID, ok := paramID(c, "id")
		if !ok {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
		}

		c.Locals("courseID", courseID)
		return c.Next()
	}
}

// VerifyCertificate validates the public certificate number lookup
func VerifyCertificate() fiber.Handler {
	return func(c *fiber.Ctx) error {
		number := strings.TrimSpace(c.Params("number"))
		if number == "" || len(number) > 64 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid certificate number!", nil)
		}

		c.Locals("certificateNumber", number)
		return c.Next()
	}
}
