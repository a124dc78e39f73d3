package paymentRoutes

import (
	controller "innerspark/controllers/payment"
	"innerspark/middleware"
	validator "innerspark/validators/payment"

	"github.com/gofiber/fiber/v2"
)

func SetupPaymentRoutes(api fiber.Router) {
	payments := api.Group("/payments")

	// called by the gateway, authenticated by signature
	payments.Post("/notification", controller.Notification)

	payments.Post("/checkout", middleware.JWTMiddleware, validator.Checkout(), controller.Checkout)
	payments.Get("/", middleware.JWTMiddleware, validator.PaymentList(), controller.ListPayments)
	payments.Post("/:orderId/verify", middleware.JWTMiddleware, validator.OrderID(), controller.Verify)
}
