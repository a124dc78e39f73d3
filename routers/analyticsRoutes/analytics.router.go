package analyticsRoutes

import (
	controller "innerspark/controllers/analytics"
	"innerspark/middleware"
	"innerspark/models"
	validator "innerspark/validators/analytics"
	courseValidator "innerspark/validators/course"

	"github.com/gofiber/fiber/v2"
)

func SetupAnalyticsRoutes(api fiber.Router) {
	api.Post("/analytics/track", middleware.OptionalJWT, validator.Track(), controller.Track)
	api.Get("/analytics/courses/:id", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleStaff, models.RoleAdmin),
		courseValidator.CourseID(), controller.CourseStats)

	api.Get("/broadcasts", middleware.JWTMiddleware, controller.ActiveBroadcasts)

	admin := api.Group("/admin")
	admin.Get("/dashboard/stats", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleAdmin), validator.Stats(), controller.DashboardStats)
	admin.Post("/broadcasts", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleAdmin), validator.CreateBroadcast(), controller.CreateBroadcast)
}
