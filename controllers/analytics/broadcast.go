package analyticsController

import (
	"time"

	"innerspark/database"
	"innerspark/middleware"
	"innerspark/models"
	analyticsValidator "innerspark/validators/analytics"

	"github.com/gofiber/fiber/v2"
)

func CreateBroadcast(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBroadcast").(*analyticsValidator.CreateBroadcastRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	user := c.Locals("user").(*models.User)

	b := models.Broadcast{
		Title:     reqData.Title,
		Body:      reqData.Body,
		Audience:  "ALL",
		CreatedBy: user.ID,
		StartsAt:  time.Now(),
		EndsAt:    reqData.EndsAt,
	}
	if reqData.Audience != "" {
		b.Audience = reqData.Audience
	}
	if reqData.StartsAt != nil {
		b.StartsAt = *reqData.StartsAt
	}
	if b.EndsAt != nil && !b.EndsAt.After(b.StartsAt) {
		return middleware.ValidationErrorResponse(c, map[string]string{"endsAt": "Ends at must be after starts at!"})
	}

	if err := database.Database.Db.Create(&b).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create broadcast!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Broadcast created.", b)
}

// ActiveBroadcasts lists announcements addressed to everyone or to the caller's role
// whose window contains the current time.
func ActiveBroadcasts(c *fiber.Ctx) error {
	role := middleware.CurrentRole(c)
	at := time.Now()

	var list []models.Broadcast
	err := database.Database.Db.
		Where("is_deleted = ? AND audience IN ? AND starts_at <= ?", false, []string{"ALL", role}, at).
		Where("ends_at IS NULL OR ends_at > ?", at).
		Order("starts_at desc").Find(&list).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch broadcasts!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Broadcasts fetched.", list)
}
