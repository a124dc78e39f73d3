package courseRoutes

import (
	controllers "innerspark/controllers/course"
	"innerspark/middleware"
	"innerspark/models"
	courseValidators "innerspark/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up module review and enrollment oversight
func SetupAdminCourseRoutes(api fiber.Router) {
	adminGroup := api.Group("/admin")
	admin := middleware.RequireRoles(models.RoleAdmin)

	// Module review
	adminGroup.Get("/modules/pending", middleware.JWTMiddleware, admin, courseValidators.ListQuery(), controllers.PendingModules)
	adminGroup.Post("/modules/:id/approve", middleware.JWTMiddleware, admin, courseValidators.ModuleID(), controllers.ApproveModule)
	adminGroup.Post("/modules/:id/reject", middleware.JWTMiddleware, admin, courseValidators.ModuleID(), courseValidators.RejectModule(), controllers.RejectModule)

	// Enrollments, visible to the owning staff member as well
	adminGroup.Get("/courses/:id/enrollments", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleStaff, models.RoleAdmin),
		courseValidators.CourseID(), courseValidators.ListQuery(), controllers.CourseEnrollments)
}
