package courseController

import (
	"encoding/json"
	"strconv"
	"time"

	"innerspark/config"
	"innerspark/database"
	"innerspark/graphics"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/utils"
	examValidator "innerspark/validators/exam"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func loadExam(db *gorm.DB, id uint) (*courseModels.Exam, *courseModels.Course, error) {
	var exam courseModels.Exam
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&exam).Error; err != nil {
		return nil, nil, err
	}
	course, err := loadCourse(db, exam.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return &exam, course, nil
}

func CreateExam(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedExam").(*examValidator.CreateExamRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	course, err := loadCourse(db, courseID)
	if err != nil {
		return notFoundOr500(c, err, "Course")
	}
	if !canManage(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	exam := courseModels.Exam{
		CourseID:        course.ID,
		Title:           reqData.Title,
		DurationMinutes: reqData.DurationMinutes,
		PassScore:       reqData.PassScore,
		MaxAttempts:     reqData.MaxAttempts,
	}
	if err := db.Create(&exam).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create exam!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam created successfully!", exam)
}

func AddQuestions(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	examID := c.Locals("examID").(uint)
	reqData, ok := c.Locals("validatedQuestions").(*examValidator.AddQuestionsRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	errs := map[string]string{}
	for i, q := range reqData.Questions {
		if q.CorrectIndex >= len(q.Options) {
			errs["questions["+strconv.Itoa(i)+"].correctIndex"] = "Correct index must point at one of the options!"
		}
	}
	if len(errs) > 0 {
		return middleware.ValidationErrorResponse(c, errs)
	}

	db := database.Database.Db
	exam, course, err := loadExam(db, examID)
	if err != nil {
		return notFoundOr500(c, err, "Exam")
	}
	if !canManage(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	questions := make([]courseModels.ExamQuestion, len(reqData.Questions))
	for i, q := range reqData.Questions {
		opts, _ := json.Marshal(q.Options)
		questions[i] = courseModels.ExamQuestion{
			ExamID:       exam.ID,
			Prompt:       q.Prompt,
			Options:      datatypes.JSON(opts),
			CorrectIndex: q.CorrectIndex,
			OrderIndex:   q.OrderIndex,
		}
	}
	if err := db.Create(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add questions!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Questions added successfully!", questions)
}

// StartExam opens a timed attempt, or resumes the caller's running one.
func StartExam(c *fiber.Ctx) error {
	examID := c.Locals("examID").(uint)
	user := optionalUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db
	exam, course, err := loadExam(db, examID)
	if err != nil {
		return notFoundOr500(c, err, "Exam")
	}
	now := time.Now()
	if !ResolveEntitlement(db, user, course, now).HasFullAccess {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	var questions []courseModels.ExamQuestion
	if err := db.Where("exam_id = ?", exam.ID).Order("order_index asc, id asc").Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch questions!", nil)
	}
	if len(questions) == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This exam has no questions yet!", nil)
	}

	var running courseModels.ExamAttempt
	err = db.Where("exam_id = ? AND user_id = ? AND status = ? AND deadline > ?", exam.ID, user.ID, courseModels.AttemptInProgress, now).
		First(&running).Error
	if err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam resumed!", fiber.Map{
			"attempt":   running,
			"questions": questions,
		})
	}

	if exam.MaxAttempts > 0 {
		var used int64
		db.Model(&courseModels.ExamAttempt{}).Where("exam_id = ? AND user_id = ?", exam.ID, user.ID).Count(&used)
		if used >= int64(exam.MaxAttempts) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "You have used all your attempts for this exam!", nil)
		}
	}

	attempt := courseModels.ExamAttempt{
		ExamID:    exam.ID,
		UserID:    user.ID,
		Status:    courseModels.AttemptInProgress,
		StartedAt: now,
		Deadline:  now.Add(time.Duration(exam.DurationMinutes) * time.Minute),
	}
	if err := db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start exam!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Exam started!", fiber.Map{
		"attempt":   attempt,
		"questions": questions,
	})
}

// SubmitAttempt grades an attempt. Late submissions beyond the grace period are refused and the
// attempt expires. Passing issues a certificate once per course.
func SubmitAttempt(c *fiber.Ctx) error {
	attemptID := c.Locals("attemptID").(uint)
	reqData, ok := c.Locals("validatedSubmission").(*examValidator.SubmitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	user := optionalUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db
	var attempt courseModels.ExamAttempt
	if err := db.Where("id = ? AND user_id = ?", attemptID, user.ID).First(&attempt).Error; err != nil {
		return notFoundOr500(c, err, "Attempt")
	}
	if attempt.Status != courseModels.AttemptInProgress {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "This attempt is already closed!", nil)
	}

	now := time.Now()
	if now.After(attempt.Deadline.Add(utils.SubmissionGrace)) {
		db.Model(&attempt).Updates(map[string]interface{}{"status": courseModels.AttemptExpired, "score": 0, "passed": false})
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Time is up for this attempt!", nil)
	}

	exam, course, err := loadExam(db, attempt.ExamID)
	if err != nil {
		return notFoundOr500(c, err, "Exam")
	}

	var questions []courseModels.ExamQuestion
	if err := db.Where("exam_id = ?", exam.ID).Find(&questions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to grade exam!", nil)
	}

	score := Grade(questions, reqData.Answers)
	passed := score >= float64(exam.PassScore)
	answers, _ := json.Marshal(reqData.Answers)

	attempt.Status = courseModels.AttemptSubmitted
	attempt.SubmittedAt = &now
	attempt.Answers = datatypes.JSON(answers)
	attempt.Score = score
	attempt.Passed = passed

	var cert *courseModels.Certificate
	var issued bool
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&attempt).Error; err != nil {
			return err
		}
		if !passed {
			return nil
		}
		var err error
		cert, issued, err = issueCertificate(tx, user, course, &attempt, now)
		return err
	})
	if err != nil {
		logger.Log.Error("error submitting attempt", "attempt", attempt.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit exam!", nil)
	}

	if issued {
		go mailCertificate(user, cert)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Exam submitted!", fiber.Map{
		"attempt":     attempt,
		"certificate": cert,
	})
}

// Grade returns the percentage of questions answered correctly. Unknown or repeated question ids
// are ignored; unanswered questions count as wrong.
func Grade(questions []courseModels.ExamQuestion, answers []examValidator.Answer) float64 {
	if len(questions) == 0 {
		return 0
	}
	byID := make(map[uint]int, len(answers))
	for _, a := range answers {
		if _, seen := byID[a.QuestionID]; !seen {
			byID[a.QuestionID] = a.Choice
		}
	}
	correct := 0
	for _, q := range questions {
		if choice, ok := byID[q.ID]; ok && choice == q.CorrectIndex {
			correct++
		}
	}
	return float64(correct) * 100 / float64(len(questions))
}

func issueCertificate(tx *gorm.DB, user *models.User, course *courseModels.Course, attempt *courseModels.ExamAttempt, at time.Time) (*courseModels.Certificate, bool, error) {
	var existing courseModels.Certificate
	if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, course.ID, false).First(&existing).Error; err == nil {
		return &existing, false, nil
	}

	cert := courseModels.Certificate{
		UserID:            user.ID,
		CourseID:          course.ID,
		ExamAttemptID:     attempt.ID,
		CertificateNumber: utils.GenerateCertificateNumber(at.Year()),
		HolderName:        user.Name,
		CourseTitle:       course.Title,
		Score:             attempt.Score,
		IssuedAt:          at,
	}
	if err := tx.Create(&cert).Error; err != nil {
		return nil, false, err
	}
	return &cert, true, nil
}

func mailCertificate(user *models.User, cert *courseModels.Certificate) {
	png, err := graphics.RenderCertificate(certificateData(cert))
	if err != nil {
		logger.Log.Error("certificate render failed", "certificate", cert.CertificateNumber, "error", err)
	}
	utils.SendCertificateEmail(user.Email, user.Name, cert.CourseTitle, cert.CertificateNumber, png)
}

func certificateData(cert *courseModels.Certificate) graphics.CertificateData {
	issuer := "InnerSpark Academy"
	if config.AppConfig != nil && config.AppConfig.CertificateIssuer != "" {
		issuer = config.AppConfig.CertificateIssuer
	}
	return graphics.CertificateData{
		HolderName:  cert.HolderName,
		CourseTitle: cert.CourseTitle,
		Number:      cert.CertificateNumber,
		Issuer:      issuer,
		Score:       cert.Score,
		IssuedAt:    cert.IssuedAt,
	}
}
