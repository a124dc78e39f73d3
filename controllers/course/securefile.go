package courseController

import (
	"errors"
	"strconv"
	"time"

	"innerspark/database"
	"innerspark/logger"
	"innerspark/models"
	courseModels "innerspark/models/course"
	"innerspark/storage"

	"github.com/gofiber/fiber/v2"
)

func denySecureFile(c *fiber.Ctx, status int, message string) error {
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(status).JSON(fiber.Map{"message": message})
}

// SecureFile streams a module's binary to a caller with full access, or to anyone signed in
// when the module is a previewable video. Preview responses carry X-Access and
// X-Preview-Duration; the client player enforces the cut-off.
func SecureFile(c *fiber.Ctx) error {
	moduleID := c.Locals("moduleID").(uint)
	user := optionalUser(c)
	if user == nil {
		return denySecureFile(c, fiber.StatusUnauthorized, "Authentication required")
	}

	db := database.Database.Db
	module, course, err := loadModule(db, moduleID)
	if err != nil || module.FileKey == "" {
		return denySecureFile(c, fiber.StatusNotFound, "File not found")
	}

	manager := canManage(user, course)
	ent := ResolveEntitlement(db, user, course, time.Now())
	approved := module.ApprovalStatus == courseModels.ApprovalApproved

	full := ent.HasFullAccess && (approved || manager)
	preview := !full && module.IsPreviewable() && course.Status == courseModels.CoursePublished
	if !full && !preview {
		return denySecureFile(c, fiber.StatusForbidden, "You do not have access to this content")
	}

	rc, err := storage.Default.Open(c.UserContext(), module.FileKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return denySecureFile(c, fiber.StatusNotFound, "File not found")
		}
		logger.Log.Error("error opening module file", "module", module.ID, "error", err)
		return denySecureFile(c, fiber.StatusInternalServerError, "Failed to load file")
	}

	meta := decodeFileMeta(module.FileMetadata)
	contentType := fiber.MIMEOctetStream
	size := -1
	if meta != nil {
		if meta.MimeType != "" {
			contentType = meta.MimeType
		}
		if meta.Size > 0 {
			size = int(meta.Size)
		}
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	c.Set(fiber.HeaderContentDisposition, "inline")
	c.Set(fiber.HeaderXContentTypeOptions, "nosniff")
	c.Set(fiber.HeaderContentType, contentType)
	if preview {
		c.Set("X-Access", "preview")
		c.Set("X-Preview-Duration", strconv.Itoa(module.PreviewDuration))
	} else {
		c.Set("X-Access", "full")
	}

	if user.Role == models.RoleStudent {
		eventType := models.EventContentOpened
		if preview {
			eventType = models.EventPreviewStarted
		}
		recordEvent(db, course.ID, &user.ID, eventType, map[string]interface{}{"moduleId": module.ID})
	}

	return c.Status(fiber.StatusOK).SendStream(rc, size)
}
