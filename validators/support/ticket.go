package supportValidator

import (
	"innerspark/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateTicketRequest struct {
	Title    string `json:"title" validate:"required,min=5,max=200"`
	Message  string `json:"message" validate:"required,min=5,max=5000"`
	Category string `json:"category" validate:"omitempty,oneof=GENERAL TECHNICAL BILLING COURSE"`
	Priority string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	CourseID *uint  `json:"courseId"`
}

type ReplyRequest struct {
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

type TicketListQuery struct {
	Page   int    `query:"page" json:"page" validate:"omitempty,min=1"`
	Limit  int    `query:"limit" json:"limit" validate:"omitempty,min=1,max=100"`
	Status string `query:"status" json:"status" validate:"omitempty,oneof=OPEN ANSWERED CLOSED"`
}

// Pagination converts the query to the shared page/limit form
func (q *TicketListQuery) Pagination() validators.Pagination {
	return validators.Pagination{Page: q.Page, Limit: q.Limit}
}

func CreateSupportTicket() fiber.Handler {
	return validators.Body[CreateTicketRequest]("validatedTicket")
}

func ReplyTicket() fiber.Handler {
	return validators.Body[ReplyRequest]("validatedReply")
}

func TicketID() fiber.Handler {
	return validators.ParamID("id", "ticketID", "Ticket")
}

func TicketList() fiber.Handler {
	return validators.Query[TicketListQuery]("validatedTicketList")
}
