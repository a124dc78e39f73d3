package analyticsValidator

import (
	"time"

	"innerspark/validators"

	"github.com/gofiber/fiber/v2"
)

// TrackRequest is the fire-and-forget event the client posts
type TrackRequest struct {
	CourseID uint                   `json:"courseID" validate:"required"`
	Type     string                 `json:"type" validate:"required,max=60"`
	Metadata map[string]interface{} `json:"metadata"`
}

type CreateBroadcastRequest struct {
	Title    string     `json:"title" validate:"required,min=3,max=200"`
	Body     string     `json:"body" validate:"required,min=3"`
	Audience string     `json:"audience" validate:"omitempty,oneof=ALL STUDENT STAFF ADMIN DEVELOPER"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

type StatsQuery struct {
	Period string `query:"period" json:"period" validate:"omitempty,oneof=day week month year"`
}

func Track() fiber.Handler {
	return validators.Body[TrackRequest]("validatedEvent")
}

func CreateBroadcast() fiber.Handler {
	return validators.Body[CreateBroadcastRequest]("validatedBroadcast")
}

func Stats() fiber.Handler {
	return validators.Query[StatsQuery]("validatedStats")
}
