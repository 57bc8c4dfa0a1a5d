package superAdminRoutes

import (
	"github.com/gofiber/fiber/v2"

	superAdminController "lms/controllers/superAdmin"
	"lms/middleware"
	"lms/models"
	superAdminValidator "lms/validators/superAdmin"
)

func SetupSuperAdminRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/user", middleware.JWTMiddleware, middleware.RequireRole(models.RoleAdmin))

	adminGroup.Get("/list", superAdminValidator.List(), superAdminController.UserList)
	adminGroup.Post("/create", superAdminValidator.CreateUser(), superAdminController.CreateUser)
	adminGroup.Patch("/:user_id/block", superAdminValidator.BlockUser(), superAdminController.SetUserBlocked)
}
