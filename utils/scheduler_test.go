package utils_test

import (
	"testing"
	"time"

	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/testutil"
	"innerspark/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestExpireEnrollments(t *testing.T) {
	db := testutil.Setup(t)
	staff := testutil.CreateUser(t, models.RoleStaff)
	course := testutil.CreateCourse(t, staff, 0, 30)
	at := time.Now()
	past, future := at.Add(-time.Hour), at.Add(time.Hour)

	gone := testutil.Enroll(t, testutil.CreateUser(t, models.RoleStudent), course, &past)
	live := testutil.Enroll(t, testutil.CreateUser(t, models.RoleStudent), course, &future)
	forever := testutil.Enroll(t, testutil.CreateUser(t, models.RoleStudent), course, nil)

	assert.Equal(t, int64(1), utils.ExpireEnrollments(at))
	assert.Zero(t, utils.ExpireEnrollments(at))

	for id, want := range map[uint]string{
		gone.ID:    courseModels.EnrollmentExpired,
		live.ID:    courseModels.EnrollmentActive,
		forever.ID: courseModels.EnrollmentActive,
	} {
		var e courseModels.Enrollment
		require.NoError(t, db.First(&e, id).Error)
		assert.Equal(t, want, e.Status, "enrollment %d", id)
	}
}

func TestSendExpiryRemindersOnce(t *testing.T) {
	db := testutil.Setup(t)
	staff := testutil.CreateUser(t, models.RoleStaff)
	course := testutil.CreateCourse(t, staff, 0, 30)
	at := time.Date(2026, 4, 10, 10, 0, 0, 0, time.Local)
	soon, later := at.Add(30*time.Hour), at.AddDate(0, 0, 5)

	testutil.Enroll(t, testutil.CreateUser(t, models.RoleStudent), course, &soon)
	testutil.Enroll(t, testutil.CreateUser(t, models.RoleStudent), course, &later)

	assert.Equal(t, 1, utils.SendExpiryReminders(at))
	assert.Zero(t, utils.SendExpiryReminders(at))

	var flagged int64
	db.Model(&courseModels.Enrollment{}).Where("reminder_sent = ?", true).Count(&flagged)
	assert.Equal(t, int64(1), flagged)
}

func TestExpirePendingPayments(t *testing.T) {
	db := testutil.Setup(t)
	at := time.Now()
	old := models.Payment{Model: gorm.Model{CreatedAt: at.Add(-utils.PendingPaymentTTL - time.Minute)}, OrderID: "IS-OLD", UserID: 1, CourseID: 1, Amount: 10, Status: models.PaymentPending}
	fresh := models.Payment{OrderID: "IS-FRESH", UserID: 1, CourseID: 1, Amount: 10, Status: models.PaymentPending}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Create(&fresh).Error)

	assert.Equal(t, int64(1), utils.ExpirePendingPayments(at))

	require.NoError(t, db.First(&old, old.ID).Error)
	require.NoError(t, db.First(&fresh, fresh.ID).Error)
	assert.Equal(t, models.PaymentExpired, old.Status)
	assert.Equal(t, models.PaymentPending, fresh.Status)
}

func TestExpireExamAttemptsHonoursGrace(t *testing.T) {
	db := testutil.Setup(t)
	at := time.Now()
	late := courseModels.ExamAttempt{ExamID: 1, UserID: 1, Status: courseModels.AttemptInProgress, StartedAt: at.Add(-time.Hour), Deadline: at.Add(-utils.SubmissionGrace - time.Second)}
	grace := courseModels.ExamAttempt{ExamID: 1, UserID: 2, Status: courseModels.AttemptInProgress, StartedAt: at.Add(-time.Hour), Deadline: at.Add(-time.Second)}
	require.NoError(t, db.Create(&late).Error)
	require.NoError(t, db.Create(&grace).Error)

	assert.Equal(t, int64(1), utils.ExpireExamAttempts(at))

	require.NoError(t, db.First(&late, late.ID).Error)
	require.NoError(t, db.First(&grace, grace.ID).Error)
	assert.Equal(t, courseModels.AttemptExpired, late.Status)
	assert.False(t, late.Passed)
	assert.Equal(t, courseModels.AttemptInProgress, grace.Status)
}
