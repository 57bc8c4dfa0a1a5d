package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/database"
	"lms/models"
)

// RequireRole loads the caller and rejects anyone who holds none of roles.
// The loaded user is stored in Locals("user") for the handlers behind it.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized: User ID not found", nil)
		}

		var user models.User
		err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		if user.IsBlocked {
			return JsonResponse(c, fiber.StatusForbidden, false, "Your account is blocked!", nil)
		}
		if len(roles) > 0 && !user.HasRole(roles...) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireRole.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals("user").(models.User)
	return user, ok
}
