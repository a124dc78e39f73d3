package analyticsController

import (
	"encoding/json"
	"time"

	"innerspark/database"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"
	analyticsValidator "innerspark/validators/analytics"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
	"gorm.io/datatypes"
)

// Track stores a client-side engagement event. Clients never wait on it, so storage
// problems are logged and the request is still accepted.
func Track(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedEvent").(*analyticsValidator.TrackRequest)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid event"})
	}

	ev := models.AnalyticsEvent{CourseID: reqData.CourseID, Type: reqData.Type}
	if id, ok := middleware.CurrentUserID(c); ok {
		ev.UserID = &id
	}
	if reqData.Metadata != nil {
		if b, err := json.Marshal(reqData.Metadata); err == nil {
			ev.Metadata = datatypes.JSON(b)
		}
	}
	if err := database.Database.Db.Create(&ev).Error; err != nil {
		logger.Log.Warn("analytics event not stored", "type", ev.Type, "course", ev.CourseID, "error", err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"accepted": true})
}

type typeCount struct {
	Type  string
	Count int64
}

// CourseStats summarises engagement for one course, for its owner or an admin.
func CourseStats(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	user := c.Locals("user").(*models.User)
	db := database.Database.Db

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if user.Role != models.RoleAdmin && course.StaffID != user.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not manage this course!", nil)
	}

	var rows []typeCount
	if err := db.Model(&models.AnalyticsEvent{}).Select("type, COUNT(*) AS count").
		Where("course_id = ?", course.ID).Group("type").Scan(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch stats!", nil)
	}
	events := make(map[string]int64, len(rows))
	for _, r := range rows {
		events[r.Type] = r.Count
	}

	var enrollments, active, completed int64
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ?", course.ID, false).Count(&enrollments)
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ? AND status = ?", course.ID, false, courseModels.EnrollmentActive).Count(&active)
	db.Model(&courseModels.Enrollment{}).Where("course_id = ? AND is_deleted = ? AND status = ?", course.ID, false, courseModels.EnrollmentCompleted).Count(&completed)

	var revenue int64
	db.Model(&models.Payment{}).Select("COALESCE(SUM(amount), 0)").
		Where("course_id = ? AND status = ?", course.ID, models.PaymentPaid).Scan(&revenue)

	var conversion float64
	if views := events[models.EventCourseView]; views > 0 {
		conversion = float64(enrollments) / float64(views)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course stats fetched.", fiber.Map{
		"courseId":       course.ID,
		"events":         events,
		"enrollments":    enrollments,
		"activeLearners": active,
		"completions":    completed,
		"revenue":        revenue,
		"conversionRate": conversion,
	})
}

// periodStart returns the beginning of the reporting window containing at.
func periodStart(period string, at time.Time) time.Time {
	n := now.With(at)
	switch period {
	case "day":
		return n.BeginningOfDay()
	case "week":
		return n.BeginningOfWeek()
	case "year":
		return n.BeginningOfYear()
	default:
		return n.BeginningOfMonth()
	}
}

type keyCount struct {
	Label string
	Count int64
}

func groupCount(model interface{}, column string, where string, args ...interface{}) map[string]int64 {
	var rows []keyCount
	database.Database.Db.Model(model).Select(column+" AS label, COUNT(*) AS count").
		Where(where, args...).Group(column).Scan(&rows)
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Label] = r.Count
	}
	return out
}

// DashboardStats is the admin overview for the selected period (default month).
func DashboardStats(c *fiber.Ctx) error {
	period := "month"
	if q, ok := c.Locals("validatedStats").(*analyticsValidator.StatsQuery); ok && q.Period != "" {
		period = q.Period
	}
	at := time.Now()
	start := periodStart(period, at)
	db := database.Database.Db

	var newUsers, newEnrollments, openTickets, pendingModules, paidOrders int64
	db.Model(&models.User{}).Where("is_deleted = ? AND created_at >= ?", false, start).Count(&newUsers)
	db.Model(&courseModels.Enrollment{}).Where("is_deleted = ? AND created_at >= ?", false, start).Count(&newEnrollments)
	db.Model(&models.SupportTicket{}).Where("is_deleted = ? AND status = ?", false, models.TicketOpen).Count(&openTickets)
	db.Model(&courseModels.Module{}).Where("is_deleted = ? AND approval_status = ?", false, courseModels.ApprovalPending).Count(&pendingModules)
	db.Model(&models.Payment{}).Where("status = ? AND paid_at >= ?", models.PaymentPaid, start).Count(&paidOrders)

	var revenue int64
	db.Model(&models.Payment{}).Select("COALESCE(SUM(amount), 0)").
		Where("status = ? AND paid_at >= ?", models.PaymentPaid, start).Scan(&revenue)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched.", fiber.Map{
		"period":          period,
		"periodStart":     start,
		"usersByRole":     groupCount(&models.User{}, "role", "is_deleted = ?", false),
		"coursesByStatus": groupCount(&courseModels.Course{}, "status", "is_deleted = ?", false),
		"newUsers":        newUsers,
		"newEnrollments":  newEnrollments,
		"paidOrders":      paidOrders,
		"revenue":         revenue,
		"openTickets":     openTickets,
		"pendingModules":  pendingModules,
	})
}
