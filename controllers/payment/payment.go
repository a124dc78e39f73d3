package paymentController

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"innerspark/config"
	courseController "innerspark/controllers/course"
	"innerspark/database"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/payment"
	"innerspark/utils"
	"innerspark/validators"
	paymentValidator "innerspark/validators/payment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func payLog() *logger.Logger {
	return logger.Log.With("component", "payments")
}

// Checkout opens a hosted payment page for a paid course. An open checkout for the same course
// is reused instead of creating a second order.
func Checkout(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCheckout").(*paymentValidator.CheckoutRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	userID, _ := middleware.CurrentUserID(c)

	db := database.Database.Db
	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	var course courseModels.Course
	if err := db.Where("id = ? AND is_deleted = ? AND status = ?", reqData.CourseID, false, courseModels.CoursePublished).
		First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if course.IsFree() {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This course is free, enroll directly!", nil)
	}
	if courseController.ResolveEntitlement(db, &user, &course, time.Now()).HasFullAccess {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "You already have access to this course!", nil)
	}
	if payment.Default == nil {
		return middleware.JsonResponse(c, fiber.StatusServiceUnavailable, false, "Online payment is currently unavailable!", nil)
	}

	var open models.Payment
	err := db.Where("user_id = ? AND course_id = ? AND status = ? AND amount = ? AND snap_token <> '' AND created_at > ?",
		user.ID, course.ID, models.PaymentPending, course.Price, time.Now().Add(-utils.PendingPaymentTTL)).
		Order("id desc").First(&open).Error
	if err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout already open.", checkoutResponse(&open))
	}

	p := models.Payment{
		OrderID:  "IS-" + strings.ToUpper(uuid.NewString()),
		UserID:   user.ID,
		CourseID: course.ID,
		Amount:   course.Price,
		Status:   models.PaymentPending,
		Provider: "midtrans",
	}
	if err := db.Create(&p).Error; err != nil {
		payLog().Error("error creating payment", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start checkout!", nil)
	}

	checkout, err := payment.Default.CreateCheckout(c.UserContext(), payment.CheckoutRequest{
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		ItemID:        "course-" + strconv.FormatUint(uint64(course.ID), 10),
		ItemName:      course.Title,
		CustomerName:  user.Name,
		CustomerEmail: user.Email,
	})
	if err != nil {
		payLog().Error("gateway checkout failed", "order", p.OrderID, "error", err)
		now := time.Now()
		db.Model(&p).Updates(map[string]interface{}{"status": models.PaymentFailed, "failed_at": &now})
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment provider is unavailable, please try again!", nil)
	}

	p.SnapToken = checkout.Token
	p.RedirectURL = checkout.RedirectURL
	if err := db.Model(&p).Updates(map[string]interface{}{"snap_token": p.SnapToken, "redirect_url": p.RedirectURL}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save checkout!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Checkout created.", checkoutResponse(&p))
}

func checkoutResponse(p *models.Payment) fiber.Map {
	return fiber.Map{
		"orderId":     p.OrderID,
		"token":       p.SnapToken,
		"redirectUrl": p.RedirectURL,
		"amount":      p.Amount,
		"status":      p.Status,
	}
}

// Notification receives the gateway webhook. Every delivery is logged; the signature is
// verified before anything changes. Unknown orders are acknowledged so the gateway stops retrying.
func Notification(c *fiber.Ctx) error {
	var notif payment.Notification
	if err := json.Unmarshal(c.Body(), &notif); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid payload!", nil)
	}

	db := database.Database.Db
	event := models.PaymentGatewayEvent{
		Provider:          "midtrans",
		OrderID:           notif.OrderID,
		TransactionStatus: notif.TransactionStatus,
		Payload:           datatypes.JSON(append([]byte(nil), c.Body()...)),
		Status:            models.GatewayEventReceived,
	}
	if err := db.Create(&event).Error; err != nil {
		payLog().Warn("gateway event not logged", "order", notif.OrderID, "error", err)
	}

	if err := payment.VerifySignature(notif, config.AppConfig.MidtransServerKey); err != nil {
		finishEvent(db, &event, models.GatewayEventFailed, err.Error(), nil)
		payLog().Warn("rejected notification", "order", notif.OrderID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Invalid signature!", nil)
	}

	var p models.Payment
	if err := db.Where("order_id = ?", notif.OrderID).First(&p).Error; err != nil {
		finishEvent(db, &event, models.GatewayEventProcessed, "payment not found", nil)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Ignored: unknown order.", nil)
	}

	status, known := payment.MapStatus(notif.TransactionStatus, notif.FraudStatus)
	if !known {
		finishEvent(db, &event, models.GatewayEventProcessed, "unhandled transaction status", &p.ID)
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Ignored: unhandled status.", nil)
	}

	if err := ApplyStatus(db, &p, status, notif.TransactionID, time.Now()); err != nil {
		finishEvent(db, &event, models.GatewayEventFailed, err.Error(), &p.ID)
		payLog().Error("error applying payment status", "order", p.OrderID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process notification!", nil)
	}

	finishEvent(db, &event, models.GatewayEventProcessed, "", &p.ID)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Notification processed.", fiber.Map{
		"orderId": p.OrderID,
		"status":  p.Status,
	})
}

func finishEvent(db *gorm.DB, event *models.PaymentGatewayEvent, status, errMsg string, paymentID *uint) {
	if event.ID == 0 {
		return
	}
	now := time.Now()
	db.Model(event).Updates(map[string]interface{}{
		"status":       status,
		"error":        errMsg,
		"payment_id":   paymentID,
		"processed_at": &now,
	})
}

// ApplyStatus moves a payment to status and grants the enrollment when it becomes PAID.
// Settled payments only move on to REFUNDED; repeated notifications change nothing.
func ApplyStatus(db *gorm.DB, p *models.Payment, status, gatewayRef string, at time.Time) error {
	if p.Status == status {
		return nil
	}
	if payment.IsFinal(p.Status) && status != models.PaymentRefunded {
		return nil
	}

	var course courseModels.Course
	var granted *courseModels.Enrollment
	var newlyGranted bool

	err := db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": status}
		if gatewayRef != "" {
			updates["gateway_reference"] = gatewayRef
		}
		switch status {
		case models.PaymentPaid:
			updates["paid_at"] = &at
		case models.PaymentFailed, models.PaymentExpired:
			updates["failed_at"] = &at
		case models.PaymentCanceled:
			updates["canceled_at"] = &at
		case models.PaymentRefunded:
			updates["refunded_at"] = &at
		}
		if err := tx.Model(p).Updates(updates).Error; err != nil {
			return err
		}

		switch status {
		case models.PaymentPaid:
			if err := tx.Where("id = ?", p.CourseID).First(&course).Error; err != nil {
				return err
			}
			var err error
			granted, newlyGranted, err = courseController.GrantEnrollment(tx, p.UserID, &course, &p.ID, at)
			return err
		case models.PaymentRefunded:
			// a refund withdraws the access the payment bought
			return tx.Model(&courseModels.Enrollment{}).
				Where("payment_id = ? AND is_deleted = ?", p.ID, false).
				Updates(map[string]interface{}{"status": courseModels.EnrollmentExpired, "expires_at": &at}).Error
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.Status = status

	if status == models.PaymentPaid {
		var user models.User
		if err := db.Where("id = ?", p.UserID).First(&user).Error; err == nil {
			utils.SendPaymentReceiptEmail(user.Email, user.Name, course.Title, p.OrderID, p.Amount)
			if newlyGranted {
				utils.SendEnrollmentEmail(user.Email, user.Name, course.Title, granted.ExpiresAt)
			}
		}
	}
	return nil
}

// Verify asks the gateway for the current state of the caller's order, for clients returning
// from the hosted page before the webhook has arrived.
func Verify(c *fiber.Ctx) error {
	orderID := c.Locals("orderID").(string)
	userID, _ := middleware.CurrentUserID(c)

	db := database.Database.Db
	var p models.Payment
	if err := db.Where("order_id = ? AND user_id = ?", orderID, userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Payment not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payment!", nil)
	}

	if p.Status == models.PaymentPending && payment.Default != nil {
		st, err := payment.Default.CheckStatus(c.UserContext(), p.OrderID)
		if err != nil {
			payLog().Warn("status check failed", "order", p.OrderID, "error", err)
		} else if status, ok := payment.MapStatus(st.TransactionStatus, st.FraudStatus); ok {
			if err := ApplyStatus(db, &p, status, st.TransactionID, time.Now()); err != nil {
				payLog().Error("error applying verified status", "order", p.OrderID, "error", err)
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update payment!", nil)
			}
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment status fetched.", fiber.Map{
		"payment":       p,
		"hasFullAccess": p.Status == models.PaymentPaid,
	})
}

func ListPayments(c *fiber.Ctx) error {
	userID, _ := middleware.CurrentUserID(c)
	page, _ := c.Locals("validatedList").(*validators.Pagination)
	if page == nil {
		page = &validators.Pagination{}
	}
	offset := page.Normalize()

	q := database.Database.Db.Model(&models.Payment{}).Where("user_id = ?", userID)
	var total int64
	q.Count(&total)

	var payments []models.Payment
	if err := q.Order("created_at desc").Offset(offset).Limit(page.Limit).Find(&payments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch payments!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Payments fetched successfully!", fiber.Map{
		"payments": payments,
		"total":    total,
		"page":     page.Page,
		"limit":    page.Limit,
	})
}

