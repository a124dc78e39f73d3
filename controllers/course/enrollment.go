package courseController

import (
	"encoding/json"
	"errors"
	"time"

	"innerspark/database"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/validators"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GrantEnrollment gives userID access to course. It is idempotent: an enrollment that is still
// valid is returned as-is, an expired one is renewed for a new access window.
func GrantEnrollment(tx *gorm.DB, userID uint, course *courseModels.Course, paymentID *uint, at time.Time) (*courseModels.Enrollment, bool, error) {
	var expiresAt *time.Time
	if course.AccessDays > 0 {
		t := at.AddDate(0, 0, course.AccessDays)
		expiresAt = &t
	}

	var total int64
	if err := tx.Model(&courseModels.Module{}).
		Where("course_id = ? AND is_deleted = ? AND approval_status = ?", course.ID, false, courseModels.ApprovalApproved).
		Count(&total).Error; err != nil {
		return nil, false, err
	}

	var existing courseModels.Enrollment
	err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, course.ID, false).
		Order("id desc").First(&existing).Error
	switch {
	case err == nil && !existing.IsExpiredAt(at):
		return &existing, false, nil
	case err == nil:
		existing.Status = courseModels.EnrollmentActive
		existing.ExpiresAt = expiresAt
		existing.ReminderSent = false
		existing.PaymentID = paymentID
		existing.TotalModules = int(total)
		if err := tx.Save(&existing).Error; err != nil {
			return nil, false, err
		}
		return &existing, true, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, false, err
	}

	enrollment := courseModels.Enrollment{
		UserID:       userID,
		CourseID:     course.ID,
		PaymentID:    paymentID,
		Status:       courseModels.EnrollmentActive,
		TotalModules: int(total),
		ExpiresAt:    expiresAt,
	}
	if err := tx.Create(&enrollment).Error; err != nil {
		return nil, false, err
	}
	return &enrollment, true, nil
}

// EnrollmentView pairs an enrollment with its course
type EnrollmentView struct {
	courseModels.Enrollment
	Course    CourseView `json:"course"`
	IsExpired bool       `json:"isExpired"`
}

func MyEnrollments(c *fiber.Ctx) error {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("user_id = ? AND is_deleted = ?", userID, false).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	views, err := enrollmentViews(db, enrollments)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", views)
}

// CourseEnrollments lists the students of a course for its owner or an admin
func CourseEnrollments(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	courseID := c.Locals("courseID").(uint)
	page, _ := c.Locals("validatedList").(*validators.Pagination)
	if page == nil {
		page = &validators.Pagination{}
	}
	offset := page.Normalize()

	db := database.Database.Db
	course, err := loadCourse(db, courseID)
	if err != nil {
		return notFoundOr500(c, err, "Course")
	}
	if !canManage(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	type studentEnrollment struct {
		courseModels.Enrollment
		StudentName  string `json:"studentName"`
		StudentEmail string `json:"studentEmail"`
	}

	q := db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", course.ID, false)
	var total int64
	q.Count(&total)

	var enrollments []courseModels.Enrollment
	if err := q.Order("created_at desc").Offset(offset).Limit(page.Limit).Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]studentEnrollment, len(enrollments))
	for i, e := range enrollments {
		result[i] = studentEnrollment{Enrollment: e}
		var student models.User
		if err := db.Select("name", "email").Where("id = ?", e.UserID).First(&student).Error; err == nil {
			result[i].StudentName = student.Name
			result[i].StudentEmail = student.Email
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"total":       total,
		"page":        page.Page,
		"limit":       page.Limit,
	})
}

func enrollmentViews(db *gorm.DB, enrollments []courseModels.Enrollment) ([]EnrollmentView, error) {
	ids := make([]uint, 0, len(enrollments))
	for _, e := range enrollments {
		ids = append(ids, e.CourseID)
	}
	var courses []courseModels.Course
	if len(ids) > 0 {
		if err := db.Where("id IN ?", ids).Find(&courses).Error; err != nil {
			return nil, err
		}
	}
	byID := make(map[uint]*courseModels.Course, len(courses))
	for i := range courses {
		byID[courses[i].ID] = &courses[i]
	}

	now := time.Now()
	views := make([]EnrollmentView, 0, len(enrollments))
	for _, e := range enrollments {
		course, ok := byID[e.CourseID]
		if !ok {
			continue
		}
		views = append(views, EnrollmentView{Enrollment: e, Course: courseView(course), IsExpired: e.IsExpiredAt(now)})
	}
	return views, nil
}

// recordEvent stores an analytics event; failures are logged and otherwise ignored.
func recordEvent(db *gorm.DB, courseID uint, userID *uint, eventType string, metadata map[string]interface{}) {
	var meta datatypes.JSON
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err == nil {
			meta = datatypes.JSON(b)
		}
	}
	ev := models.AnalyticsEvent{CourseID: courseID, UserID: userID, Type: eventType, Metadata: meta}
	if err := db.Create(&ev).Error; err != nil {
		logger.Log.Warn("analytics event not stored", "type", eventType, "error", err)
	}
}
