package adminRoutes

import (
	controller "innerspark/controllers/admin"
	"innerspark/middleware"
	"innerspark/models"
	validator "innerspark/validators/admin"

	"github.com/gofiber/fiber/v2"
)

func SetupAdminRoutes(api fiber.Router) {
	users := api.Group("/admin/users", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleAdmin))
	users.Post("/", validator.CreateUser(), controller.CreateUser)
	users.Post("/:id/status", validator.UserID(), validator.UserStatus(), controller.SetUserStatus)

	api.Get("/developer/metrics", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleDeveloper, models.RoleAdmin), controller.DeveloperMetrics)
}
