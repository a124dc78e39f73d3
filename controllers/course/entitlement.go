package courseController

import (
	"errors"
	"time"

	"innerspark/access"
	"innerspark/database"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// ResolveEntitlement decides full access for a user on a course.
// Admins and the owning staff member always have it; students need an enrollment that has not expired.
func ResolveEntitlement(db *gorm.DB, user *models.User, course *courseModels.Course, at time.Time) access.Entitlement {
	if user == nil || !user.IsActive {
		return access.Entitlement{}
	}
	if canManage(user, course) {
		return access.Entitlement{HasFullAccess: true}
	}

	var enrollment courseModels.Enrollment
	err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, course.ID, false).
		Order("id desc").First(&enrollment).Error
	if err != nil {
		return access.Entitlement{}
	}
	if enrollment.IsExpiredAt(at) {
		return access.Entitlement{IsExpired: true}
	}
	return access.Entitlement{HasFullAccess: true}
}

// canManage reports whether user may edit the course and see unapproved content
func canManage(user *models.User, course *courseModels.Course) bool {
	if user == nil {
		return false
	}
	return user.Role == models.RoleAdmin || (user.Role == models.RoleStaff && course.StaffID == user.ID)
}

// optionalUser loads the caller when the request carries a valid token
func optionalUser(c *fiber.Ctx) *models.User {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return nil
	}
	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

func loadCourse(db *gorm.DB, id uint) (*courseModels.Course, error) {
	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&course).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

// visibleTo hides unpublished courses from everyone but their managers
func visibleTo(course *courseModels.Course, user *models.User) bool {
	return course.Status == courseModels.CoursePublished || canManage(user, course)
}

func notFoundOr500(c *fiber.Ctx, err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, what+" not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch "+what+"!", nil)
}
