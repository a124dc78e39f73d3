package authValidator

import (
	"innerspark/validators"

	"github.com/gofiber/fiber/v2"
)

type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Mobile   string `json:"mobile" validate:"omitempty,numeric,min=8,max=15"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type VerifyEmailRequest struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// Signup validator middleware
func Signup() fiber.Handler {
	return validators.Body[SignupRequest]("validatedUser")
}

// Login validator middleware
func Login() fiber.Handler {
	return validators.Body[LoginRequest]("validatedUser")
}

func VerifyEmail() fiber.Handler {
	return validators.Body[VerifyEmailRequest]("validatedOTP")
}

// LoginHistoryList validates page/limit
func LoginHistoryList() fiber.Handler {
	return validators.Query[validators.Pagination]("validatedLoginHistory")
}
