package paymentController_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	paymentController "innerspark/controllers/payment"
	"innerspark/database"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/payment"
	"innerspark/routers/paymentRoutes"
	"innerspark/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	checkouts int
	status    *payment.TransactionStatus
}

func (g *fakeGateway) CreateCheckout(_ context.Context, req payment.CheckoutRequest) (*payment.Checkout, error) {
	g.checkouts++
	return &payment.Checkout{Token: "snap-" + req.OrderID, RedirectURL: "https://pay.example/" + req.OrderID}, nil
}

func (g *fakeGateway) CheckStatus(_ context.Context, orderID string) (*payment.TransactionStatus, error) {
	if g.status == nil {
		return nil, fmt.Errorf("no status for %s", orderID)
	}
	return g.status, nil
}

func newApp() *fiber.App {
	app := fiber.New()
	paymentRoutes.SetupPaymentRoutes(app.Group("/api"))
	return app
}

type fixture struct {
	app     *fiber.App
	student *models.User
	course  *courseModels.Course
}

func setup(t *testing.T) fixture {
	testutil.Setup(t)
	staff := testutil.CreateUser(t, models.RoleStaff)
	return fixture{
		app:     newApp(),
		student: testutil.CreateUser(t, models.RoleStudent),
		course:  testutil.CreateCourse(t, staff, 150000, 90),
	}
}

func (f fixture) pendingPayment(t *testing.T) *models.Payment {
	t.Helper()
	p := &models.Payment{
		OrderID:   "IS-TEST-" + fmt.Sprint(time.Now().UnixNano()),
		UserID:    f.student.ID,
		CourseID:  f.course.ID,
		Amount:    f.course.Price,
		Status:    models.PaymentPending,
		Provider:  "midtrans",
		SnapToken: "snap",
	}
	require.NoError(t, database.Database.Db.Create(p).Error)
	return p
}

func notification(orderID, txStatus, statusCode string) payment.Notification {
	n := payment.Notification{
		OrderID:           orderID,
		TransactionStatus: txStatus,
		TransactionID:     "tx-" + orderID,
		StatusCode:        statusCode,
		GrossAmount:       "150000.00",
		FraudStatus:       "accept",
	}
	n.SignatureKey = payment.Signature(n.OrderID, n.StatusCode, n.GrossAmount, testutil.ServerKey)
	return n
}

func countEnrollments(t *testing.T, userID, courseID uint) int64 {
	var n int64
	require.NoError(t, database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ?", userID, courseID).Count(&n).Error)
	return n
}

func TestNotificationSettlementGrantsEnrollment(t *testing.T) {
	f := setup(t)
	p := f.pendingPayment(t)
	n := notification(p.OrderID, "settlement", "200")

	for i := 0; i < 2; i++ {
		status, body := testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/notification", n, ""))
		require.Equal(t, fiber.StatusOK, status, string(body))
	}

	require.NoError(t, database.Database.Db.First(p, p.ID).Error)
	assert.Equal(t, models.PaymentPaid, p.Status)
	assert.NotNil(t, p.PaidAt)
	assert.Equal(t, n.TransactionID, p.GatewayReference)

	assert.Equal(t, int64(1), countEnrollments(t, f.student.ID, f.course.ID))
	var e courseModels.Enrollment
	require.NoError(t, database.Database.Db.Where("user_id = ?", f.student.ID).First(&e).Error)
	require.NotNil(t, e.PaymentID)
	assert.Equal(t, p.ID, *e.PaymentID)
	require.NotNil(t, e.ExpiresAt)

	var events []models.PaymentGatewayEvent
	require.NoError(t, database.Database.Db.Where("order_id = ?", p.OrderID).Find(&events).Error)
	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, models.GatewayEventProcessed, ev.Status)
	}
}

func TestNotificationRejectsBadSignature(t *testing.T) {
	f := setup(t)
	p := f.pendingPayment(t)
	n := notification(p.OrderID, "settlement", "200")
	n.GrossAmount = "1.00"

	status, _ := testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/notification", n, ""))
	assert.Equal(t, fiber.StatusForbidden, status)

	require.NoError(t, database.Database.Db.First(p, p.ID).Error)
	assert.Equal(t, models.PaymentPending, p.Status)
	assert.Zero(t, countEnrollments(t, f.student.ID, f.course.ID))

	var ev models.PaymentGatewayEvent
	require.NoError(t, database.Database.Db.Where("order_id = ?", p.OrderID).First(&ev).Error)
	assert.Equal(t, models.GatewayEventFailed, ev.Status)
}

func TestNotificationUnknownOrderIsAcknowledged(t *testing.T) {
	f := setup(t)
	status, _ := testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/notification", notification("IS-NOPE", "settlement", "200"), ""))
	assert.Equal(t, fiber.StatusOK, status)
}

func TestApplyStatusTransitions(t *testing.T) {
	f := setup(t)
	db := database.Database.Db
	p := f.pendingPayment(t)
	now := time.Now()

	require.NoError(t, paymentController.ApplyStatus(db, p, models.PaymentPaid, "tx-1", now))
	assert.Equal(t, models.PaymentPaid, p.Status)

	// a late failure notification cannot undo a settled payment
	require.NoError(t, paymentController.ApplyStatus(db, p, models.PaymentFailed, "tx-1", now))
	require.NoError(t, db.First(p, p.ID).Error)
	assert.Equal(t, models.PaymentPaid, p.Status)

	require.NoError(t, paymentController.ApplyStatus(db, p, models.PaymentRefunded, "tx-1", now))
	require.NoError(t, db.First(p, p.ID).Error)
	assert.Equal(t, models.PaymentRefunded, p.Status)

	var e courseModels.Enrollment
	require.NoError(t, db.Where("payment_id = ?", p.ID).First(&e).Error)
	assert.Equal(t, courseModels.EnrollmentExpired, e.Status)
}

func TestCheckout(t *testing.T) {
	f := setup(t)
	token := testutil.Token(t, f.student)
	body := map[string]interface{}{"courseId": f.course.ID}

	status, _ := testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/checkout", body, token))
	assert.Equal(t, fiber.StatusServiceUnavailable, status)

	gw := &fakeGateway{}
	payment.Default = gw

	status, raw := testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/checkout", body, token))
	require.Equal(t, fiber.StatusCreated, status, string(raw))
	var first struct {
		OrderID string `json:"orderId"`
		Token   string `json:"token"`
	}
	testutil.DecodeEnvelope(t, raw, &first)
	assert.Equal(t, "snap-"+first.OrderID, first.Token)

	status, raw = testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/checkout", body, token))
	require.Equal(t, fiber.StatusOK, status)
	var second struct {
		OrderID string `json:"orderId"`
	}
	testutil.DecodeEnvelope(t, raw, &second)
	assert.Equal(t, first.OrderID, second.OrderID)
	assert.Equal(t, 1, gw.checkouts)

	testutil.Enroll(t, f.student, f.course, nil)
	status, _ = testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/checkout", body, token))
	assert.Equal(t, fiber.StatusConflict, status)
}

func TestCheckoutRejectsFreeCourse(t *testing.T) {
	f := setup(t)
	payment.Default = &fakeGateway{}
	staff := testutil.CreateUser(t, models.RoleStaff)
	free := testutil.CreateCourse(t, staff, 0, 0)

	status, _ := testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/checkout",
		map[string]interface{}{"courseId": free.ID}, testutil.Token(t, f.student)))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestVerifyPollsGateway(t *testing.T) {
	f := setup(t)
	p := f.pendingPayment(t)
	payment.Default = &fakeGateway{status: &payment.TransactionStatus{
		OrderID:           p.OrderID,
		TransactionID:     "tx-verify",
		TransactionStatus: "settlement",
		FraudStatus:       "accept",
		StatusCode:        "200",
	}}

	status, raw := testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/"+p.OrderID+"/verify", nil, testutil.Token(t, f.student)))
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var out struct {
		HasFullAccess bool `json:"hasFullAccess"`
	}
	testutil.DecodeEnvelope(t, raw, &out)
	assert.True(t, out.HasFullAccess)
	assert.Equal(t, int64(1), countEnrollments(t, f.student.ID, f.course.ID))

	other := testutil.CreateUser(t, models.RoleStudent)
	status, _ = testutil.Do(t, f.app, testutil.Request("POST", "/api/payments/"+p.OrderID+"/verify", nil, testutil.Token(t, other)))
	assert.Equal(t, fiber.StatusNotFound, status)
}
