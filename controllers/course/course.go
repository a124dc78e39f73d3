package courseController

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"innerspark/database"
	"innerspark/graphics"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/storage"
	"innerspark/utils"
	courseValidator "innerspark/validators/course"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const maxThumbnailSize = 10 << 20

// Catalog returns every published course. Filtering and sorting happen on the client.
func Catalog(c *fiber.Ctx) error {
	var courses []courseModels.Course
	if err := database.Database.Db.
		Where("status = ? AND is_deleted = ?", courseModels.CoursePublished, false).
		Order("created_at desc, id desc").
		Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	views := make([]CourseView, len(courses))
	for i := range courses {
		views[i] = courseView(&courses[i])
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", views)
}

// MyCourses lists the courses a staff member owns; admins see all.
func MyCourses(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)

	q := database.Database.Db.Where("is_deleted = ?", false)
	if user.Role != models.RoleAdmin {
		q = q.Where("staff_id = ?", user.ID)
	}
	var courses []courseModels.Course
	if err := q.Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}
	views := make([]CourseView, len(courses))
	for i := range courses {
		views[i] = courseView(&courses[i])
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", views)
}

// CourseDetail is the entitlement-bearing course response
type CourseDetail struct {
	Course        CourseView    `json:"course"`
	Content       []ContentView `json:"content"`
	HasFullAccess bool          `json:"hasFullAccess"`
	IsExpired     bool          `json:"isExpired"`
}

func GetCourse(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	db := database.Database.Db
	user := optionalUser(c)
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "User not found"})
	}

	course, err := loadCourse(db, courseID)
	if err != nil || !visibleTo(course, user) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}

	ent := ResolveEntitlement(db, user, course, time.Now())
	manager := canManage(user, course)

	q := db.Where("course_id = ? AND is_deleted = ?", course.ID, false)
	if !manager {
		q = q.Where("approval_status = ?", courseModels.ApprovalApproved)
	}
	var modules []courseModels.Module
	if err := q.Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch content"})
	}

	completed := map[uint]bool{}
	var completions []courseModels.ModuleCompletion
	db.Where("user_id = ? AND course_id = ?", user.ID, course.ID).Find(&completions)
	for _, mc := range completions {
		completed[mc.ModuleID] = true
	}

	content := make([]ContentView, len(modules))
	for i := range modules {
		content[i] = contentView(&modules[i], ent.HasFullAccess, manager, completed[modules[i].ID])
	}

	if user.Role == models.RoleStudent {
		recordEvent(db, course.ID, &user.ID, models.EventCourseView, nil)
	}

	return c.JSON(CourseDetail{
		Course:        courseView(course),
		Content:       content,
		HasFullAccess: ent.HasFullAccess,
		IsExpired:     ent.IsExpired,
	})
}

// PreviewItem is one previewable video
type PreviewItem struct {
	ID              uint   `json:"_id"`
	FileURL         string `json:"fileUrl"`
	Title           string `json:"title"`
	PreviewDuration int    `json:"previewDuration"`
}

// GetPreviews lists the approved videos of a published course that offer a preview.
func GetPreviews(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	db := database.Database.Db

	course, err := loadCourse(db, courseID)
	if err != nil || !visibleTo(course, optionalUser(c)) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Course not found"})
	}

	var modules []courseModels.Module
	if err := db.Where("course_id = ? AND is_deleted = ? AND content_type = ? AND approval_status = ? AND preview_duration > 0 AND file_key <> ''",
		course.ID, false, courseModels.ContentVideo, courseModels.ApprovalApproved).
		Order("order_index asc, id asc").Find(&modules).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to fetch previews"})
	}

	previews := make([]PreviewItem, 0, len(modules))
	for _, m := range modules {
		previews = append(previews, PreviewItem{
			ID:              m.ID,
			FileURL:         m.FileURL(),
			Title:           m.Title,
			PreviewDuration: m.PreviewDuration,
		})
	}
	return c.JSON(fiber.Map{"previews": previews})
}

func CreateCourse(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CreateCourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	mentor := reqData.MentorName
	if mentor == "" {
		mentor = user.Name
	}
	course := courseModels.Course{
		Title:       reqData.Title,
		Description: reqData.Description,
		Category:    reqData.Category,
		Price:       reqData.Price,
		MentorName:  mentor,
		StaffID:     user.ID,
		AccessDays:  reqData.AccessDays,
		Status:      courseModels.CourseDraft,
	}
	if err := database.Database.Db.Create(&course).Error; err != nil {
		logger.Log.Error("error creating course", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", courseView(&course))
}

func UpdateCourse(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedCourse").(*courseValidator.UpdateCourseRequest)
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

	updates := map[string]interface{}{}
	if reqData.Title != nil {
		updates["title"] = *reqData.Title
	}
	if reqData.Description != nil {
		updates["description"] = *reqData.Description
	}
	if reqData.Category != nil {
		updates["category"] = *reqData.Category
	}
	if reqData.Price != nil {
		updates["price"] = *reqData.Price
	}
	if reqData.MentorName != nil {
		updates["mentor_name"] = *reqData.MentorName
	}
	if reqData.AccessDays != nil {
		updates["access_days"] = *reqData.AccessDays
	}
	if len(updates) > 0 {
		if err := db.Model(course).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", courseView(course))
}

// PublishCourse moves a course between DRAFT, PUBLISHED and ARCHIVED.
func PublishCourse(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedPublish").(*courseValidator.PublishRequest)
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

	if reqData.Status == courseModels.CoursePublished {
		var approved int64
		db.Model(&courseModels.Module{}).
			Where("course_id = ? AND is_deleted = ? AND approval_status = ?", course.ID, false, courseModels.ApprovalApproved).
			Count(&approved)
		if approved == 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "A course needs at least one approved module before it can be published!", nil)
		}
	}

	if err := db.Model(course).Update("status", reqData.Status).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course status!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course status updated!", courseView(course))
}

func UploadThumbnail(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	courseID := c.Locals("courseID").(uint)

	db := database.Database.Db
	course, err := loadCourse(db, courseID)
	if err != nil {
		return notFoundOr500(c, err, "Course")
	}
	if !canManage(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	fh, err := c.FormFile("thumbnail")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Thumbnail file is required!", nil)
	}
	if fh.Size > maxThumbnailSize {
		return middleware.JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, "Thumbnail must be under 10 MB!", nil)
	}
	f, err := fh.Open()
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read thumbnail!", nil)
	}
	defer f.Close()
	raw, err := io.ReadAll(f)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read thumbnail!", nil)
	}
	if err := utils.DetectImage(raw); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnsupportedMediaType, false, "Thumbnail must be a JPEG, PNG or GIF image!", nil)
	}

	thumb, err := graphics.Thumbnail(bytes.NewReader(raw))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnprocessableEntity, false, "Could not process image!", nil)
	}

	key := fmt.Sprintf("thumbnails/%d/%s.jpg", course.ID, uuid.NewString())
	if err := storage.Default.Save(c.UserContext(), key, bytes.NewReader(thumb), "image/jpeg"); err != nil {
		logger.Log.Error("error saving thumbnail", "course", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save thumbnail!", nil)
	}

	old := course.ThumbnailKey
	if err := db.Model(course).Update("thumbnail_key", key).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save thumbnail!", nil)
	}
	if old != "" {
		if err := storage.Default.Delete(c.UserContext(), old); err != nil {
			logger.Log.Warn("old thumbnail not deleted", "key", old, "error", err)
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Thumbnail uploaded!", courseView(course))
}

func GetThumbnail(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	course, err := loadCourse(database.Database.Db, courseID)
	if err != nil || course.ThumbnailKey == "" {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Thumbnail not found!", nil)
	}

	rc, err := storage.Default.Open(c.UserContext(), course.ThumbnailKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Thumbnail not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to load thumbnail!", nil)
	}
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	c.Type("jpg")
	return c.SendStream(rc)
}

// EnrollFree enrolls the caller in a course that costs nothing
func EnrollFree(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(uint)
	user := optionalUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db
	course, err := loadCourse(db, courseID)
	if err != nil || course.Status != courseModels.CoursePublished {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.IsFree() {
		return middleware.JsonResponse(c, fiber.StatusPaymentRequired, false, "This course requires payment!", nil)
	}

	var enrollment *courseModels.Enrollment
	var created bool
	err = db.Transaction(func(tx *gorm.DB) error {
		var err error
		enrollment, created, err = GrantEnrollment(tx, user.ID, course, nil, time.Now())
		return err
	})
	if err != nil {
		logger.Log.Error("error enrolling", "user", user.ID, "course", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll!", nil)
	}
	if !created {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled!", enrollment)
	}

	utils.SendEnrollmentEmail(user.Email, user.Name, course.Title, enrollment.ExpiresAt)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled successfully!", enrollment)
}
