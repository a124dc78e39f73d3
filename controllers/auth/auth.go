package authController

import (
	"errors"
	"strings"
	"time"

	"innerspark/config"
	"innerspark/database"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	"innerspark/revocation"
	"innerspark/utils"
	"innerspark/validators"
	authValidator "innerspark/validators/auth"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Login lockout policy
const (
	maxFailedLogins  = 5
	failedLoginReset = 15 * time.Minute
	lockoutDuration  = 15 * time.Minute
	otpTTL           = 10 * time.Minute
	otpResendAfter   = time.Minute
)

// Account states reported to the polling client
const (
	StateActive       = "active"
	StateInactive     = "inactive"
	StateRequireEmail = "require_email"
)

func Signup(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.SignupRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	email := strings.ToLower(strings.TrimSpace(reqData.Email))

	// Check if email already exists
	if err := db.Where("email = ?", email).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Email is already registered!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		logger.Log.Error("error hashing password", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Name:     strings.TrimSpace(reqData.Name),
		Email:    email,
		Mobile:   reqData.Mobile,
		Role:     models.RoleStudent,
		Password: string(hashedPassword),
		IsActive: true,
	}
	if err := db.Create(&newUser).Error; err != nil {
		logger.Log.Error("error saving user", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	token, err := middleware.GenerateJWT(&newUser)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	if _, err := issueOTP(db, &newUser); err != nil {
		logger.Log.Warn("verification email not sent", "user", newUser.ID, "error", err)
	}
	utils.SendWelcomeEmail(newUser.Email, newUser.Name)

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", fiber.Map{
		"user":  newUser,
		"token": token,
	})
}

func Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	email := strings.ToLower(strings.TrimSpace(reqData.Email))

	var user models.User
	if err := db.Where("email = ? AND is_deleted = ?", email, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	now := time.Now()
	if user.IsBlocked(now) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Your account is temporarily blocked. Try again later.", nil)
	}

	if user.LastFailedLogin != nil && now.Sub(*user.LastFailedLogin) > failedLoginReset {
		user.FailedLoginAttempts = 0
		user.LastFailedLogin = nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		user.FailedLoginAttempts++
		user.LastFailedLogin = &now
		if user.FailedLoginAttempts >= maxFailedLogins {
			until := now.Add(lockoutDuration)
			user.BlockedUntil = &until
			user.FailedLoginAttempts = 0
			logger.Log.Warn("login blocked", "user", user.ID, "until", until)
		}
		if err := db.Save(&user).Error; err != nil {
			logger.Log.Error("error recording failed login", "user", user.ID, "error", err)
		}
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials!", nil)
	}

	if !user.IsActive {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your account is inactive!", nil)
	}

	user.FailedLoginAttempts = 0
	user.LastFailedLogin = nil
	user.BlockedUntil = nil
	user.LastLogin = &now
	if err := db.Save(&user).Error; err != nil {
		logger.Log.Error("error updating last login", "user", user.ID, "error", err)
	}

	device := utils.ClientDevice(c.Get(fiber.HeaderUserAgent))
	db.Create(&models.LoginTracking{
		UserID:    user.ID,
		IPAddress: c.IP(),
		Device:    device,
		Timestamp: now,
	})

	token, err := middleware.GenerateJWT(&user)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	utils.SendLoginNotificationEmail(user.Email, user.Name, c.IP(), device, now.Format("02 Jan 2006 15:04 MST"))

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Logout revokes the presented token until its natural expiry.
func Logout(c *fiber.Ctx) error {
	jti, _ := c.Locals("jti").(string)
	exp, _ := c.Locals("tokenExp").(time.Time)
	if jti == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Token cannot be revoked!", nil)
	}

	if err := revocation.Default.Revoke(c.UserContext(), jti, time.Until(exp)); err != nil {
		logger.Log.Error("error revoking token", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to logout!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Logged out successfully.", nil)
}

func Me(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully.", user)
}

// AccountStatus is the payload polled by signed-in clients
type AccountStatus struct {
	State   string `json:"state"`
	Message string `json:"message"`
}

// StatusOf maps a user to its account state
func StatusOf(user *models.User) AccountStatus {
	switch {
	case !user.IsActive || user.IsDeleted:
		return AccountStatus{State: StateInactive, Message: "Your account has been deactivated. Contact support."}
	case !user.IsEmailVerified:
		return AccountStatus{State: StateRequireEmail, Message: "Please verify your email address to continue."}
	}
	return AccountStatus{State: StateActive, Message: "Your account is active."}
}

func Status(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Account status fetched.", StatusOf(user))
}

func SendVerificationEmail(c *fiber.Ctx) error {
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	if user.IsEmailVerified {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Email is already verified!", nil)
	}

	db := database.Database.Db
	var recent models.OTP
	err = db.Where("user_id = ? AND purpose = ? AND is_used = ? AND created_at > ?",
		user.ID, models.OTPPurposeEmailVerification, false, time.Now().Add(-otpResendAfter)).
		First(&recent).Error
	if err == nil {
		return middleware.JsonResponse(c, fiber.StatusTooManyRequests, false, "Please wait a minute before requesting another code.", nil)
	}

	if _, err := issueOTP(db, user); err != nil {
		logger.Log.Error("error sending verification email", "user", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send verification code!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Verification code sent to your email.", nil)
}

func VerifyEmail(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedOTP").(*authValidator.VerifyEmailRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	user, err := currentUser(c)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db
	var otp models.OTP
	err = db.Where("user_id = ? AND purpose = ? AND code = ? AND is_used = ? AND expires_at > ? AND is_deleted = ?",
		user.ID, models.OTPPurposeEmailVerification, reqData.Code, false, time.Now(), false).
		Order("id desc").First(&otp).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid or expired code!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&otp).Update("is_used", true).Error; err != nil {
			return err
		}
		return tx.Model(user).Update("is_email_verified", true).Error
	})
	if err != nil {
		logger.Log.Error("error verifying email", "user", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to verify email!", nil)
	}

	user.IsEmailVerified = true
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Email verified successfully.", StatusOf(user))
}

func LoginHistoryList(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	page, ok := c.Locals("validatedLoginHistory").(*validators.Pagination)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request!", nil)
	}
	offset := page.Normalize()

	db := database.Database.Db.Model(&models.LoginTracking{}).Where("user_id = ? AND is_deleted = ?", userID, false)

	var total int64
	db.Count(&total)

	var history []models.LoginTracking
	if err := db.Order("timestamp desc").Offset(offset).Limit(page.Limit).Find(&history).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch login history!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login history fetched successfully.", fiber.Map{
		"history": history,
		"total":   total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}

func currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil, errors.New("no user in context")
	}
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func issueOTP(db *gorm.DB, user *models.User) (*models.OTP, error) {
	otp := models.OTP{
		UserID:    user.ID,
		Email:     user.Email,
		Code:      utils.GenerateOTP(),
		Purpose:   models.OTPPurposeEmailVerification,
		ExpiresAt: time.Now().Add(otpTTL),
	}
	if err := db.Create(&otp).Error; err != nil {
		return nil, err
	}
	if err := utils.SendOTPEmail(otp.Code, user.Email); err != nil {
		return nil, err
	}
	return &otp, nil
}
