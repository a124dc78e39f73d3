package courseController

import (
	"fmt"
	"time"

	"innerspark/database"
	"innerspark/logger"
	"innerspark/middleware"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/storage"
	"innerspark/utils"
	"innerspark/validators"
	courseValidator "innerspark/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func loadModule(db *gorm.DB, id uint) (*courseModels.Module, *courseModels.Course, error) {
	var module courseModels.Module
	if err := db.Where("id = ? AND is_deleted = ?", id, false).First(&module).Error; err != nil {
		return nil, nil, err
	}
	course, err := loadCourse(db, module.CourseID)
	if err != nil {
		return nil, nil, err
	}
	return &module, course, nil
}

// initialApproval is APPROVED for admin-authored content and PENDING for staff
func initialApproval(user *models.User) string {
	if user.Role == models.RoleAdmin {
		return courseModels.ApprovalApproved
	}
	return courseModels.ApprovalPending
}

func CreateModule(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	courseID := c.Locals("courseID").(uint)
	reqData, ok := c.Locals("validatedModule").(*courseValidator.CreateModuleRequest)
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

	module := courseModels.Module{
		CourseID:       course.ID,
		Title:          reqData.Title,
		Description:    reqData.Description,
		ContentType:    reqData.ContentType,
		OrderIndex:     reqData.OrderIndex,
		ApprovalStatus: initialApproval(user),
		CreatedBy:      user.ID,
	}
	// previews only exist for video
	if reqData.ContentType == courseModels.ContentVideo {
		module.PreviewDuration = reqData.PreviewDuration
	}
	if reqData.ContentType == courseModels.ContentRich {
		module.Body = reqData.Body
	}

	if err := db.Create(&module).Error; err != nil {
		logger.Log.Error("error creating module", "course", course.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", contentView(&module, true, true, false))
}

func UpdateModule(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	moduleID := c.Locals("moduleID").(uint)
	reqData, ok := c.Locals("validatedModule").(*courseValidator.UpdateModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	module, course, err := loadModule(db, moduleID)
	if err != nil {
		return notFoundOr500(c, err, "Module")
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
	if reqData.OrderIndex != nil {
		updates["order_index"] = *reqData.OrderIndex
	}
	if reqData.PreviewDuration != nil && module.ContentType == courseModels.ContentVideo {
		updates["preview_duration"] = *reqData.PreviewDuration
	}
	if reqData.Body != nil && module.ContentType == courseModels.ContentRich {
		updates["body"] = *reqData.Body
		// changed content goes back through review
		updates["approval_status"] = initialApproval(user)
		updates["rejection_reason"] = ""
	}
	if len(updates) > 0 {
		if err := db.Model(module).Updates(updates).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", contentView(module, true, true, false))
}

// UploadModuleFile stores the video or PDF behind a module. The type is sniffed from the bytes.
func UploadModuleFile(c *fiber.Ctx) error {
	user, _ := c.Locals("user").(*models.User)
	moduleID := c.Locals("moduleID").(uint)

	db := database.Database.Db
	module, course, err := loadModule(db, moduleID)
	if err != nil {
		return notFoundOr500(c, err, "Module")
	}
	if !canManage(user, course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "File is required!", nil)
	}

	upload, err := utils.OpenUpload(fh, module.ContentType, fmt.Sprintf("modules/%d", course.ID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnsupportedMediaType, false, err.Error(), nil)
	}
	defer upload.Closer.Close()

	if err := storage.Default.Save(c.UserContext(), upload.Key, upload.Reader, upload.MimeType); err != nil {
		logger.Log.Error("error storing module file", "module", module.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to store file!", nil)
	}

	old := module.FileKey
	updates := map[string]interface{}{
		"file_key":         upload.Key,
		"file_metadata":    encodeFileMeta(upload.Meta),
		"approval_status":  initialApproval(user),
		"rejection_reason": "",
	}
	if err := db.Model(module).Updates(updates).Error; err != nil {
		_ = storage.Default.Delete(c.UserContext(), upload.Key)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save module!", nil)
	}
	if old != "" && old != upload.Key {
		if err := storage.Default.Delete(c.UserContext(), old); err != nil {
			logger.Log.Warn("old module file not deleted", "key", old, "error", err)
		}
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "File uploaded successfully!", contentView(module, true, true, false))
}

// CompleteModule marks a module done for the caller and recomputes enrollment progress.
func CompleteModule(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)
	user := optionalUser(c)
	if user == nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	db := database.Database.Db
	module, course, err := loadModule(db, moduleID)
	if err != nil || module.ApprovalStatus != courseModels.ApprovalApproved {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found!", nil)
	}

	now := time.Now()
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, course.ID, false).
		Order("id desc").First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}
	if enrollment.IsExpiredAt(now) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Your access to this course has expired!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		completion := courseModels.ModuleCompletion{UserID: user.ID, CourseID: course.ID, ModuleID: module.ID}
		if err := tx.Where(completion).FirstOrCreate(&completion).Error; err != nil {
			return err
		}
		return refreshProgress(tx, &enrollment, now)
	})
	if err != nil {
		logger.Log.Error("error completing module", "module", module.ID, "user", user.ID, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark module complete!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module marked as complete!", enrollment)
}

func refreshProgress(tx *gorm.DB, enrollment *courseModels.Enrollment, at time.Time) error {
	var total, done int64
	if err := tx.Model(&courseModels.Module{}).
		Where("course_id = ? AND is_deleted = ? AND approval_status = ?", enrollment.CourseID, false, courseModels.ApprovalApproved).
		Count(&total).Error; err != nil {
		return err
	}
	if err := tx.Model(&courseModels.ModuleCompletion{}).
		Joins("JOIN modules ON modules.id = module_completions.module_id").
		Where("module_completions.user_id = ? AND module_completions.course_id = ?", enrollment.UserID, enrollment.CourseID).
		Where("modules.is_deleted = ? AND modules.approval_status = ? AND modules.deleted_at IS NULL", false, courseModels.ApprovalApproved).
		Where("module_completions.deleted_at IS NULL").
		Count(&done).Error; err != nil {
		return err
	}

	enrollment.TotalModules = int(total)
	enrollment.CompletedModules = int(done)
	if total > 0 {
		enrollment.Progress = float64(done) * 100 / float64(total)
	}
	if total > 0 && done >= total && enrollment.Status != courseModels.EnrollmentCompleted {
		enrollment.Status = courseModels.EnrollmentCompleted
		enrollment.CompletedAt = &at
	}
	return tx.Save(enrollment).Error
}

// PendingModules is the admin review queue
func PendingModules(c *fiber.Ctx) error {
	page, _ := c.Locals("validatedList").(*validators.Pagination)
	if page == nil {
		page = &validators.Pagination{}
	}
	offset := page.Normalize()

	q := database.Database.Db.Model(&courseModels.Module{}).
		Where("approval_status = ? AND is_deleted = ?", courseModels.ApprovalPending, false)
	var total int64
	q.Count(&total)

	var modules []courseModels.Module
	if err := q.Order("updated_at asc").Offset(offset).Limit(page.Limit).Find(&modules).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	views := make([]ContentView, len(modules))
	for i := range modules {
		views[i] = contentView(&modules[i], true, true, false)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Pending modules fetched successfully!", fiber.Map{
		"modules": views,
		"total":   total,
		"page":    page.Page,
		"limit":   page.Limit,
	})
}

func ApproveModule(c *fiber.Ctx) error {
	return reviewModule(c, courseModels.ApprovalApproved, "")
}

func RejectModule(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedReject").(*courseValidator.RejectModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	return reviewModule(c, courseModels.ApprovalRejected, reqData.Reason)
}

func reviewModule(c *fiber.Ctx, status, reason string) error {
	moduleID := c.Locals("moduleID").(uint)
	db := database.Database.Db

	module, _, err := loadModule(db, moduleID)
	if err != nil {
		return notFoundOr500(c, err, "Module")
	}
	if module.ContentType != courseModels.ContentRich && module.FileKey == "" && status == courseModels.ApprovalApproved {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Module has no file uploaded yet!", nil)
	}

	if err := db.Model(module).Updates(map[string]interface{}{
		"approval_status":  status,
		"rejection_reason": reason,
	}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to review module!", nil)
	}

	var author models.User
	if err := db.Where("id = ?", module.CreatedBy).First(&author).Error; err == nil {
		utils.SendModuleReviewedEmail(author.Email, author.Name, module.Title, status, reason)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module "+status+"!", contentView(module, true, true, false))
}
