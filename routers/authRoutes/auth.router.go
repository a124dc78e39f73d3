package authRoutes

import (
	authControllers "innerspark/controllers/auth"
	"innerspark/middleware"
	authValidators "innerspark/validators/auth"

	"github.com/gofiber/fiber/v2"
)

func SetupAuthRoutes(api fiber.Router) {
	authGroup := api.Group("/auth")

	authGroup.Post("/signup", authValidators.Signup(), authControllers.Signup)
	authGroup.Post("/login", authValidators.Login(), authControllers.Login)
	authGroup.Post("/logout", middleware.JWTMiddleware, authControllers.Logout)
	authGroup.Get("/me", middleware.JWTMiddleware, authControllers.Me)
	authGroup.Get("/status", middleware.JWTMiddleware, authControllers.Status)
	authGroup.Get("/login-history", middleware.JWTMiddleware, authValidators.LoginHistoryList(), authControllers.LoginHistoryList)
	authGroup.Post("/verify-email/send", middleware.JWTMiddleware, authControllers.SendVerificationEmail)
	authGroup.Post("/verify-email", middleware.JWTMiddleware, authValidators.VerifyEmail(), authControllers.VerifyEmail)
}
