package utils

import (
	"time"

	"innerspark/database"
	"innerspark/logger"
	"innerspark/models"
	courseModels "innerspark/models/course"

	"github.com/jinzhu/now"
	"github.com/robfig/cron/v3"
)

// PendingPaymentTTL is how long an unpaid checkout stays open
const PendingPaymentTTL = 24 * time.Hour

var schedLog = logger.Log

// InitializeSchedulers registers the background jobs and starts the cron runner.
// The returned cron must be stopped on shutdown.
func InitializeSchedulers() *cron.Cron {
	schedLog = logger.Log.With("component", "scheduler")
	c := cron.New()

	// every minute: exam deadlines are short
	c.AddFunc("* * * * *", func() { ExpireExamAttempts(time.Now()) })

	// hourly: access windows and abandoned checkouts
	c.AddFunc("5 * * * *", func() {
		ExpireEnrollments(time.Now())
		ExpirePendingPayments(time.Now())
	})

	// daily at 9 AM
	c.AddFunc("0 9 * * *", func() { SendExpiryReminders(time.Now()) })

	c.Start()
	schedLog.Info("schedulers started", "jobs", len(c.Entries()))
	return c
}

// ExpireEnrollments marks enrollments whose access window has closed as EXPIRED
func ExpireEnrollments(at time.Time) int64 {
	result := database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("status = ? AND expires_at IS NOT NULL AND expires_at <= ?", courseModels.EnrollmentActive, at).
		Update("status", courseModels.EnrollmentExpired)
	if result.Error != nil {
		schedLog.Error("error expiring enrollments", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		schedLog.Info("enrollments expired", "count", result.RowsAffected)
	}
	return result.RowsAffected
}

// SendExpiryReminders emails students whose access ends within the next two days,
// measured in whole days from the start of today.
func SendExpiryReminders(at time.Time) int {
	db := database.Database.Db
	from := at
	until := now.With(at).BeginningOfDay().AddDate(0, 0, 3)

	var enrollments []courseModels.Enrollment
	if err := db.
		Where("status = ? AND reminder_sent = ? AND expires_at IS NOT NULL", courseModels.EnrollmentActive, false).
		Where("expires_at > ? AND expires_at < ?", from, until).
		Find(&enrollments).Error; err != nil {
		schedLog.Error("error fetching expiring enrollments", "error", err)
		return 0
	}

	sent := 0
	for _, e := range enrollments {
		var user models.User
		if err := db.Where("id = ?", e.UserID).First(&user).Error; err != nil {
			schedLog.Warn("enrollment user missing", "enrollment", e.ID, "error", err)
			continue
		}
		var course courseModels.Course
		if err := db.Where("id = ?", e.CourseID).First(&course).Error; err != nil {
			schedLog.Warn("enrollment course missing", "enrollment", e.ID, "error", err)
			continue
		}

		SendEnrollmentExpiryReminder(user.Email, user.Name, course.Title, e.ExpiresAt)
		db.Model(&e).Update("reminder_sent", true)
		sent++
	}
	if sent > 0 {
		schedLog.Info("expiry reminders sent", "count", sent)
	}
	return sent
}

// ExpirePendingPayments closes checkouts that were never paid
func ExpirePendingPayments(at time.Time) int64 {
	result := database.Database.Db.Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", models.PaymentPending, at.Add(-PendingPaymentTTL)).
		Update("status", models.PaymentExpired)
	if result.Error != nil {
		schedLog.Error("error expiring payments", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		schedLog.Info("pending payments expired", "count", result.RowsAffected)
	}
	return result.RowsAffected
}

// ExpireExamAttempts closes in-progress attempts past their deadline; they score zero.
func ExpireExamAttempts(at time.Time) int64 {
	result := database.Database.Db.Model(&courseModels.ExamAttempt{}).
		Where("status = ? AND deadline < ?", courseModels.AttemptInProgress, at.Add(-SubmissionGrace)).
		Updates(map[string]interface{}{"status": courseModels.AttemptExpired, "score": 0, "passed": false})
	if result.Error != nil {
		schedLog.Error("error expiring exam attempts", "error", result.Error)
		return 0
	}
	if result.RowsAffected > 0 {
		schedLog.Info("exam attempts expired", "count", result.RowsAffected)
	}
	return result.RowsAffected
}

// SubmissionGrace absorbs network latency on exam submissions
const SubmissionGrace = 30 * time.Second
