package superAdminController

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/utils"
	superAdminValidator "lms/validators/superAdmin"
)

func UserList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validateUserList").(*superAdminValidator.UserListRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db.Model(&models.User{}).Where("is_deleted = ?", false)
	if reqData.Role != "" {
		db = db.Where("role = ?", reqData.Role)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	var users []models.User
	if err := db.Scopes(utils.Paginate(*reqData.Page, *reqData.Limit)).Order("created_at desc").Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch user list!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "User List.", fiber.Map{
		"users":      users,
		"pagination": utils.Pagination{Total: total, Page: *reqData.Page, Limit: *reqData.Limit},
	})
}

// CreateUser registers a student, facilitator or admin account
func CreateUser(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*superAdminValidator.CreateUserRequest)

	db := database.Database.Db

	// Check if email already exists
	if err := db.Where("email = ?", reqData.Email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	// Check if mobile already exists
	if reqData.Mobile != "" {
		if err := db.Where("mobile = ?", reqData.Mobile).First(&models.User{}).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Mobile number is already registered!", nil)
		}
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Error().Err(err).Msg("hashing password")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Mobile:   reqData.Mobile,
		Password: string(hashedPassword),
		Role:     reqData.Role,
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Error().Err(err).Str("email", reqData.Email).Msg("saving user")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}

	utils.SendAccountCreatedEmail(newUser.Email, newUser.Name, newUser.Role)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully.", newUser)
}

// SetUserBlocked blocks or unblocks an account
func SetUserBlocked(c *fiber.Ctx) error {
	targetID := c.Locals("targetUserID").(int)
	blocked := c.Locals("blockStatus").(bool)

	caller, _ := middleware.CurrentUser(c)
	if uint(targetID) == caller.ID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot block yourself!", nil)
	}

	res := database.Database.Db.Model(&models.User{}).
		Where("id = ? AND is_deleted = ?", targetID, false).
		Update("is_blocked", blocked)
	if res.Error != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	message := "User unblocked successfully."
	if blocked {
		message = "User blocked successfully."
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, nil)
}
