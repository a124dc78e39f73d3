package courseRoutes

import (
	controllers "innerspark/controllers/course"
	"innerspark/middleware"
	"innerspark/models"
	"innerspark/validators"
	courseValidators "innerspark/validators/course"
	examValidators "innerspark/validators/exam"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up catalog, content, exam and certificate routes
func SetupCourseRoutes(api fiber.Router) {
	staff := middleware.RequireRoles(models.RoleStaff, models.RoleAdmin)

	courseGroup := api.Group("/courses")

	// Catalog and authoring
	courseGroup.Get("/", controllers.Catalog)
	courseGroup.Get("/mine", middleware.JWTMiddleware, staff, controllers.MyCourses)
	courseGroup.Post("/", middleware.JWTMiddleware, staff, courseValidators.CreateCourse(), controllers.CreateCourse)
	courseGroup.Get("/:id", middleware.OptionalJWT, courseValidators.CourseID(), controllers.GetCourse)
	courseGroup.Put("/:id", middleware.JWTMiddleware, staff, courseValidators.CourseID(), courseValidators.UpdateCourse(), controllers.UpdateCourse)
	courseGroup.Post("/:id/publish", middleware.JWTMiddleware, staff, courseValidators.CourseID(), courseValidators.PublishCourse(), controllers.PublishCourse)
	courseGroup.Get("/:id/preview", middleware.OptionalJWT, courseValidators.CourseID(), controllers.GetPreviews)
	courseGroup.Post("/:id/thumbnail", middleware.JWTMiddleware, staff, courseValidators.CourseID(), controllers.UploadThumbnail)
	courseGroup.Get("/:id/thumbnail", courseValidators.CourseID(), controllers.GetThumbnail)
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, courseValidators.CourseID(), controllers.EnrollFree)

	// Modules
	courseGroup.Post("/:id/modules", middleware.JWTMiddleware, staff, courseValidators.CourseID(), courseValidators.CreateModule(), controllers.CreateModule)

	moduleGroup := api.Group("/modules")
	moduleGroup.Put("/:id", middleware.JWTMiddleware, staff, courseValidators.ModuleID(), courseValidators.UpdateModule(), controllers.UpdateModule)
	moduleGroup.Post("/:id/file", middleware.JWTMiddleware, staff, courseValidators.ModuleID(), controllers.UploadModuleFile)
	moduleGroup.Post("/:id/complete", middleware.JWTMiddleware, courseValidators.ModuleID(), controllers.CompleteModule)

	// Gated file delivery
	api.Get("/secure-files/:moduleId", middleware.OptionalJWT, validators.ParamID("moduleId", "moduleID", "Module"), controllers.SecureFile)

	// Enrollments
	api.Get("/enrollments", middleware.JWTMiddleware, controllers.MyEnrollments)

	// Exams
	courseGroup.Post("/:id/exams", middleware.JWTMiddleware, staff, courseValidators.CourseID(), examValidators.CreateExam(), controllers.CreateExam)

	examGroup := api.Group("/exams")
	examGroup.Post("/:id/questions", middleware.JWTMiddleware, staff, examValidators.ExamID(), examValidators.AddQuestions(), controllers.AddQuestions)
	examGroup.Post("/:id/start", middleware.JWTMiddleware, examValidators.ExamID(), controllers.StartExam)

	api.Post("/exam-attempts/:id/submit", middleware.JWTMiddleware, examValidators.AttemptID(), examValidators.Submit(), controllers.SubmitAttempt)

	// Certificates
	certGroup := api.Group("/certificates")
	certGroup.Get("/", middleware.JWTMiddleware, controllers.MyCertificates)
	certGroup.Get("/verify/:number", controllers.VerifyCertificate)
	certGroup.Get("/:number/image", middleware.JWTMiddleware, controllers.CertificateImage)
}
