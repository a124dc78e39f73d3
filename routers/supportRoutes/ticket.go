package supportRoutes

import (
	controller "innerspark/controllers/support"
	"innerspark/middleware"
	"innerspark/models"
	validator "innerspark/validators/support"

	"github.com/gofiber/fiber/v2"
)

func SetupSupportRoutes(api fiber.Router) {
	support := api.Group("/support", middleware.JWTMiddleware)

	support.Post("/tickets", validator.CreateSupportTicket(), controller.CreateSupportTicket)
	support.Get("/tickets", validator.TicketList(), controller.TicketList)
	support.Post("/tickets/:id/reply", validator.TicketID(), validator.ReplyTicket(), controller.ReplyTicket)
	support.Post("/tickets/:id/close", validator.TicketID(), controller.CloseTicket)

	admin := api.Group("/admin/support", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleAdmin, models.RoleDeveloper))
	admin.Get("/tickets", validator.TicketList(), controller.AdminTicketList)
	admin.Get("/stats", controller.AdminTicketStats)
}
