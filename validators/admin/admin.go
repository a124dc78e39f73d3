package adminValidator

import (
	"innerspark/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=STUDENT STAFF ADMIN DEVELOPER"`
}

type UserStatusRequest struct {
	IsActive *bool `json:"isActive" validate:"required"`
}

func CreateUser() fiber.Handler {
	return validators.Body[CreateUserRequest]("validatedUser")
}

func UserStatus() fiber.Handler {
	return validators.Body[UserStatusRequest]("validatedStatus")
}

func UserID() fiber.Handler {
	return validators.ParamID("id", "targetUserID", "User")
}
