package paymentValidator

import (
	"strings"

	"innerspark/middleware"
	"innerspark/validators"

	"github.com/gofiber/fiber/v2"
)

type CheckoutRequest struct {
	CourseID uint `json:"courseId" validate:"required"`
}

func Checkout() fiber.Handler {
	return validators.Body[CheckoutRequest]("validatedCheckout")
}

// OrderID checks the :orderId param
func OrderID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		orderID := strings.TrimSpace(c.Params("orderId"))
		if orderID == "" || len(orderID) > 64 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid order ID!", nil)
		}
		c.Locals("orderID", orderID)
		return c.Next()
	}
}

func PaymentList() fiber.Handler {
	return validators.Query[validators.Pagination]("validatedList")
}
