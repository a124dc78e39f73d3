package courseValidator

import (
	"innerspark/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateCourseRequest struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description" validate:"required,min=5"`
	Category    string `json:"category" validate:"required,max=60"`
	Price       int64  `json:"price" validate:"min=0"`
	MentorName  string `json:"mentorName" validate:"omitempty,max=100"`
	AccessDays  int    `json:"accessDays" validate:"min=0,max=3650"`
}

// UpdateCourseRequest only touches the fields that are present
type UpdateCourseRequest struct {
	Title       *string `json:"title" validate:"omitempty,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,min=5"`
	Category    *string `json:"category" validate:"omitempty,max=60"`
	Price       *int64  `json:"price" validate:"omitempty,min=0"`
	MentorName  *string `json:"mentorName" validate:"omitempty,max=100"`
	AccessDays  *int    `json:"accessDays" validate:"omitempty,min=0,max=3650"`
}

type PublishRequest struct {
	Status string `json:"status" validate:"required,oneof=DRAFT PUBLISHED ARCHIVED"`
}

type CreateModuleRequest struct {
	Title           string `json:"title" validate:"required,min=2,max=200"`
	Description     string `json:"description" validate:"omitempty,max=2000"`
	ContentType     string `json:"contentType" validate:"required,oneof=rich-content video pdf"`
	Body            string `json:"body"`
	PreviewDuration int    `json:"previewDuration" validate:"min=0,max=3600"`
	OrderIndex      int    `json:"orderIndex" validate:"min=0"`
}

type UpdateModuleRequest struct {
	Title           *string `json:"title" validate:"omitempty,min=2,max=200"`
	Description     *string `json:"description" validate:"omitempty,max=2000"`
	Body            *string `json:"body"`
	PreviewDuration *int    `json:"previewDuration" validate:"omitempty,min=0,max=3600"`
	OrderIndex      *int    `json:"orderIndex" validate:"omitempty,min=0"`
}

type RejectModuleRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

func CourseID() fiber.Handler {
	return validators.ParamID("id", "courseID", "Course")
}

func ModuleID() fiber.Handler {
	return validators.ParamID("id", "moduleID", "Module")
}

func CreateCourse() fiber.Handler {
	return validators.Body[CreateCourseRequest]("validatedCourse")
}

func UpdateCourse() fiber.Handler {
	return validators.Body[UpdateCourseRequest]("validatedCourse")
}

func PublishCourse() fiber.Handler {
	return validators.Body[PublishRequest]("validatedPublish")
}

func CreateModule() fiber.Handler {
	return validators.Body[CreateModuleRequest]("validatedModule")
}

func UpdateModule() fiber.Handler {
	return validators.Body[UpdateModuleRequest]("validatedModule")
}

func RejectModule() fiber.Handler {
	return validators.Body[RejectModuleRequest]("validatedReject")
}

// ListQuery validates page/limit for admin lists
func ListQuery() fiber.Handler {
	return validators.Query[validators.Pagination]("validatedList")
}
