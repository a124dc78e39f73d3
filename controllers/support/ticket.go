package supportController

import (
	"errors"
	"strings"

	"innerspark/database"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	"innerspark/utils"
	supportValidator "innerspark/validators/support"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func isStaffReply(role string) bool {
	return role == models.RoleAdmin || role == models.RoleDeveloper
}

func CreateSupportTicket(c *fiber.Ctx) error {
	userId, ok := middleware.CurrentUserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userId, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	reqData, ok := c.Locals("validatedTicket").(*supportValidator.CreateTicketRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ticket := models.SupportTicket{
		UserID:   userId,
		CourseID: reqData.CourseID,
		Title:    strings.TrimSpace(reqData.Title),
		Status:   models.TicketOpen,
		Priority: "MEDIUM",
		Category: "GENERAL",
	}
	if reqData.Priority != "" {
		ticket.Priority = reqData.Priority
	}
	if reqData.Category != "" {
		ticket.Category = reqData.Category
	}

	err := database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&ticket).Error; err != nil {
			return err
		}
		first := models.TicketMessage{
			TicketID: ticket.ID,
			SenderID: userId,
			Sender:   models.SenderUser,
			Text:     reqData.Message,
		}
		if err := tx.Create(&first).Error; err != nil {
			return err
		}
		ticket.Messages = []models.TicketMessage{first}
		return nil
	})
	if err != nil {
		logger.Log.Error("error creating ticket", "user", userId, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create support ticket!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Support ticket created successfully!", ticket)
}

func TicketList(c *fiber.Ctx) error {
	userId, ok := middleware.CurrentUserID(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedTicketList").(*supportValidator.TicketListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request!", nil)
	}
	page := reqData.Pagination()
	offset := page.Normalize()

	db := database.Database.Db.Model(&models.SupportTicket{}).Where("user_id = ? AND is_deleted = ?", userId, false)
	if reqData.Status != "" {
		db = db.Where("status = ?", reqData.Status)
	}

	var total int64
	db.Count(&total)

	var tickets []models.SupportTicket
	if err := db.Preload("Messages", func(q *gorm.DB) *gorm.DB { return q.Order("created_at ASC") }).
		Order("updated_at DESC").Offset(offset).Limit(page.Limit).Find(&tickets).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch tickets!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tickets fetched successfully!", fiber.Map{
		"tickets": tickets,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

// loadTicket returns the ticket if the caller owns it or is support staff.
func loadTicket(c *fiber.Ctx) (*models.SupportTicket, string, error) {
	userId, _ := middleware.CurrentUserID(c)
	role := middleware.CurrentRole(c)
	ticketID := c.Locals("ticketID").(uint)

	var ticket models.SupportTicket
	err := database.Database.Db.Where("id = ? AND is_deleted = ?", ticketID, false).First(&ticket).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, role, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
		}
		return nil, role, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch ticket!", nil)
	}
	if ticket.UserID != userId && !isStaffReply(role) {
		return nil, role, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Ticket not found!", nil)
	}
	return &ticket, role, nil
}

// ReplyTicket appends to the thread. A reply from support marks the ticket ANSWERED and mails
// the owner; a reply from the owner reopens it.
func ReplyTicket(c *fiber.Ctx) error {
	ticket, role, err := loadTicket(c)
	if ticket == nil {
		return err
	}
	if ticket.Status == models.TicketClosed {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Ticket is closed!", nil)
	}

	reqData, ok := c.Locals("validatedReply").(*supportValidator.ReplyRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	userId, _ := middleware.CurrentUserID(c)

	msg := models.TicketMessage{TicketID: ticket.ID, SenderID: userId, Sender: models.SenderUser, Text: reqData.Message}
	status := models.TicketOpen
	if isStaffReply(role) && ticket.UserID != userId {
		msg.Sender = models.SenderAdmin
		status = models.TicketAnswered
	}

	err = database.Database.Db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&msg).Error; err != nil {
			return err
		}
		return tx.Model(ticket).Update("status", status).Error
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to send reply!", nil)
	}

	if msg.Sender == models.SenderAdmin {
		var owner models.User
		if err := database.Database.Db.Where("id = ?", ticket.UserID).First(&owner).Error; err == nil {
			utils.SendTicketReplyEmail(owner.Email, owner.Name, ticket.Title)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reply sent.", fiber.Map{
		"ticketId": ticket.ID,
		"status":   status,
		"message":  msg,
	})
}

func CloseTicket(c *fiber.Ctx) error {
	ticket, _, err := loadTicket(c)
	if ticket == nil {
		return err
	}
	if ticket.Status == models.TicketClosed {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Ticket already closed.", ticket)
	}
	if err := database.Database.Db.Model(ticket).Update("status", models.TicketClosed).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to close ticket!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ticket closed.", ticket)
}

func AdminTicketList(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTicketList").(*supportValidator.TicketListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := reqData.Pagination()
	offset := page.Normalize()

	db := database.Database.Db.Model(&models.SupportTicket{}).Where("is_deleted = ?", false)
	if reqData.Status != "" {
		db = db.Where("status = ?", reqData.Status)
	}

	var total int64
	db.Count(&total)

	var tickets []models.SupportTicket
	if err := db.Offset(offset).Limit(page.Limit).Order("created_at DESC").Find(&tickets).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch tickets!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tickets fetched successfully!", fiber.Map{
		"tickets": tickets,
		"pagination": fiber.Map{
			"page":  page.Page,
			"limit": page.Limit,
			"total": total,
		},
	})
}

type statusCount struct {
	Status string
	Count  int64
}

func AdminTicketStats(c *fiber.Ctx) error {
	var rows []statusCount
	if err := database.Database.Db.Model(&models.SupportTicket{}).
		Select("status, COUNT(*) AS count").
		Where("is_deleted = ?", false).
		Group("status").Scan(&rows).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch ticket stats!", nil)
	}

	stats := fiber.Map{models.TicketOpen: int64(0), models.TicketAnswered: int64(0), models.TicketClosed: int64(0)}
	var total int64
	for _, r := range rows {
		stats[r.Status] = r.Count
		total += r.Count
	}
	stats["total"] = total
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Ticket stats fetched.", stats)
}
