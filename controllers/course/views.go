package courseController

import (
	"encoding/json"
	"fmt"
	"time"

	"innerspark/logger"
	courseModels "innerspark/models/course"
	"innerspark/utils"

	"gorm.io/datatypes"
)

// CourseView is the public shape of a course
type CourseView struct {
	ID           uint      `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	Price        int64     `json:"price"`
	MentorName   string    `json:"mentorName"`
	StaffID      uint      `json:"staffId"`
	AccessDays   int       `json:"accessDays"`
	Status       string    `json:"status"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

func courseView(c *courseModels.Course) CourseView {
	v := CourseView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Category:    c.Category,
		Price:       c.Price,
		MentorName:  c.MentorName,
		StaffID:     c.StaffID,
		AccessDays:  c.AccessDays,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt,
	}
	if c.ThumbnailKey != "" {
		v.ThumbnailURL = fmt.Sprintf("/api/courses/%d/thumbnail", c.ID)
	}
	return v
}

// ContentView is one module as listed in the course detail
type ContentView struct {
	ID              uint                   `json:"_id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	ContentType     string                 `json:"contentType"`
	FileURL         string                 `json:"fileUrl,omitempty"`
	FileMetadata    *courseModels.FileMeta `json:"fileMetadata,omitempty"`
	PreviewDuration int                    `json:"previewDuration"`
	OrderIndex      int                    `json:"orderIndex"`
	Body            string                 `json:"body,omitempty"`
	ApprovalStatus  string                 `json:"approvalStatus,omitempty"`
	RejectionReason string                 `json:"rejectionReason,omitempty"`
	Completed       bool                   `json:"completed"`
}

// contentView renders a module for a viewer. File URLs and bodies are only exposed when the
// viewer could actually open them; the secure endpoint enforces the same rule.
func contentView(m *courseModels.Module, fullAccess, manager, completed bool) ContentView {
	v := ContentView{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		ContentType:     m.ContentType,
		PreviewDuration: m.PreviewDuration,
		OrderIndex:      m.OrderIndex,
		Completed:       completed,
	}
	if m.ContentType != courseModels.ContentVideo {
		v.PreviewDuration = 0
	}
	if fullAccess || m.IsPreviewable() {
		v.FileURL = m.FileURL()
		v.FileMetadata = decodeFileMeta(m.FileMetadata)
	}
	if fullAccess && m.ContentType == courseModels.ContentRich && m.Body != "" {
		html, err := utils.RenderMarkdown(m.Body)
		if err != nil {
			logger.Log.Warn("markdown render failed", "module", m.ID, "error", err)
		} else {
			v.Body = html
		}
	}
	if manager {
		v.ApprovalStatus = m.ApprovalStatus
		v.RejectionReason = m.RejectionReason
	}
	return v
}

func decodeFileMeta(raw datatypes.JSON) *courseModels.FileMeta {
	if len(raw) == 0 {
		return nil
	}
	var meta courseModels.FileMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil
	}
	return &meta
}

func encodeFileMeta(meta courseModels.FileMeta) datatypes.JSON {
	b, _ := json.Marshal(meta)
	return datatypes.JSON(b)
}
