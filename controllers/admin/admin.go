package adminController

import (
	"strings"

	"innerspark/config"
	"innerspark/database"
	"innerspark/logger"
	"innerspark/metrics"
	"innerspark/middleware"
	"innerspark/models"
	adminValidator "innerspark/validators/admin"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// CreateUser provisions staff, admin and developer accounts. They skip email verification.
func CreateUser(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*adminValidator.CreateUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	email := strings.ToLower(strings.TrimSpace(reqData.Email))
	if err := db.Where("email = ?", email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	user := models.User{
		Name:            strings.TrimSpace(reqData.Name),
		Email:           email,
		Role:            reqData.Role,
		Password:        string(hashed),
		IsActive:        true,
		IsEmailVerified: true,
	}
	if err := db.Create(&user).Error; err != nil {
		logger.Log.Error("error creating user", "email", email, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully.", user)
}

// SetUserStatus activates or deactivates an account. Deactivated users are
// signed out by the client's account-status poll.
func SetUserStatus(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedStatus").(*adminValidator.UserStatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	targetID := c.Locals("targetUserID").(uint)
	admin := c.Locals("user").(*models.User)

	if targetID == admin.ID && !*reqData.IsActive {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot deactivate your own account!", nil)
	}

	db := database.Database.Db
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", targetID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if err := db.Model(&user).Update("is_active", *reqData.IsActive).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}
	user.IsActive = *reqData.IsActive

	logger.Log.Info("user status changed", "user", user.ID, "active", user.IsActive, "by", admin.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User status updated.", user)
}

func DeveloperMetrics(c *fiber.Ctx) error {
	sqlDB, _ := database.Database.Db.DB()
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Metrics fetched.", metrics.Default.Snapshot(sqlDB, 10))
}
