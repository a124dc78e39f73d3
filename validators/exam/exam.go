package examValidator

import (
	"innerspark/validators"

	"github.com/gofiber/fiber/v2"
)

type CreateExamRequest struct {
	Title           string `json:"title" validate:"required,min=3,max=200"`
	DurationMinutes int    `json:"durationMinutes" validate:"required,min=1,max=600"`
	PassScore       int    `json:"passScore" validate:"required,min=1,max=100"`
	MaxAttempts     int    `json:"maxAttempts" validate:"min=0,max=100"`
}

type QuestionRequest struct {
	Prompt       string   `json:"prompt" validate:"required,min=3"`
	Options      []string `json:"options" validate:"required,min=2,max=8,dive,required"`
	CorrectIndex int      `json:"correctIndex" validate:"min=0"`
	OrderIndex   int      `json:"orderIndex" validate:"min=0"`
}

type AddQuestionsRequest struct {
	Questions []QuestionRequest `json:"questions" validate:"required,min=1,max=200,dive"`
}

type Answer struct {
	QuestionID uint `json:"questionId" validate:"required"`
	Choice     int  `json:"choice" validate:"min=0"`
}

type SubmitRequest struct {
	Answers []Answer `json:"answers" validate:"omitempty,dive"`
}

func ExamID() fiber.Handler {
	return validators.ParamID("id", "examID", "Exam")
}

func AttemptID() fiber.Handler {
	return validators.ParamID("id", "attemptID", "Attempt")
}

func CreateExam() fiber.Handler {
	return validators.Body[CreateExamRequest]("validatedExam")
}

func AddQuestions() fiber.Handler {
	return validators.Body[AddQuestionsRequest]("validatedQuestions")
}

func Submit() fiber.Handler {
	return validators.Body[SubmitRequest]("validatedSubmission")
}
