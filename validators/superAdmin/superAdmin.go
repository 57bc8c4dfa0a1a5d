package superAdminValidator

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"

	"lms/middleware"
	"lms/models"
)

// Helper to validate email format
func isValidEmail(email string) bool {
	re := regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return re.MatchString(email)
}

// Helper to validate mobile number format
func isValidMobile(mobile string) bool {
	re := regexp.MustCompile(`^\d{10}$`)
	return re.MatchString(mobile)
}

type UserListRequest struct {
	Page  *int   `query:"page"`
	Limit *int   `query:"limit"`
	Role  string `query:"role"`
}

func List() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(UserListRequest)
		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		if reqData.Page == nil || *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}
		if reqData.Limit == nil || *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}

		reqData.Role = strings.ToUpper(strings.TrimSpace(reqData.Role))
		if reqData.Role != "" && !validRole(reqData.Role) {
			errors["role"] = "Role must be STUDENT, FACILITATOR or ADMIN!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validateUserList", reqData)
		return c.Next()
	}
}

type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// CreateUser validates an account created by an administrator
func CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateUserRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Email = strings.ToLower(strings.TrimSpace(reqData.Email))
		reqData.Mobile = strings.TrimSpace(reqData.Mobile)
		reqData.Role = strings.ToUpper(strings.TrimSpace(reqData.Role))

		if len(reqData.Name) < 3 {
			errors["name"] = "Name must be at least 3 characters long!"
		}

		if reqData.Email == "" || !isValidEmail(reqData.Email) {
			errors["email"] = "Invalid email!"
		}

		// Mobile is optional
		if reqData.Mobile != "" && !isValidMobile(reqData.Mobile) {
			errors["mobile"] = "Invalid mobile number!"
		}

		if len(strings.TrimSpace(reqData.Password)) < 8 {
			errors["password"] = "Password must be at least 8 characters long!"
		}

		if reqData.Role == "" {
			reqData.Role = models.RoleStudent
		} else if !validRole(reqData.Role) {
			errors["role"] = "Role must be STUDENT, FACILITATOR or ADMIN!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

func validRole(role string) bool {
	switch role {
	case models.RoleStudent, models.RoleFacilitator, models.RoleAdmin:
		return true
	}
	return false
}

// BlockUser validates the block/unblock request
func BlockUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := c.ParamsInt("user_id")
		if err != nil || userID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid User ID!", nil)
		}

		reqData := new(struct {
			IsBlocked *bool `json:"is_blocked"`
		})
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if reqData.IsBlocked == nil {
			return middleware.ValidationErrorResponse(c, map[string]string{"is_blocked": "is blocked is required!"})
		}

		c.Locals("targetUserID", userID)
		c.Locals("blockStatus", *reqData.IsBlocked)
		return c.Next()
	}
}
