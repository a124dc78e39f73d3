package course

import (
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Content types
const (
	ContentRich  = "rich-content"
	ContentVideo = "video"
	ContentPDF   = "pdf"
)

// Approval status values
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Module is a single content item of a course: a video, a PDF or a rich-content page.
type Module struct {
	gorm.Model
	CourseID        uint           `gorm:"index;not null" json:"courseId"`
	Title           string         `json:"title"`
	Description     string         `json:"description"`
	ContentType     string         `gorm:"type:varchar(20);not null" json:"contentType"`
	Body            string         `gorm:"type:text" json:"-"` // markdown, rich-content only
	FileKey         string         `json:"-"`
	FileMetadata    datatypes.JSON `json:"fileMetadata"`
	PreviewDuration int            `gorm:"default:0" json:"previewDuration"` // seconds, video only
	OrderIndex      int            `gorm:"default:0" json:"orderIndex"`
	ApprovalStatus  string         `gorm:"type:varchar(20);default:'PENDING'" json:"approvalStatus"`
	RejectionReason string         `json:"rejectionReason,omitempty"`
	CreatedBy       uint           `json:"createdBy"`
	IsDeleted       bool           `gorm:"default:false" json:"-"`
}

// FileMeta is the decoded form of Module.FileMetadata
type FileMeta struct {
	OriginalName string `json:"originalName"`
	Size         int64  `json:"size"`
	MimeType     string `json:"mimeType"`
}

// FileURL is the secure endpoint the module's binary is served from.
func (m *Module) FileURL() string {
	if m.FileKey == "" {
		return ""
	}
	return fmt.Sprintf("/api/secure-files/%d", m.ID)
}

// IsPreviewable reports whether non-entitled users may watch part of the module.
func (m *Module) IsPreviewable() bool {
	return m.ContentType == ContentVideo && m.PreviewDuration > 0 && m.ApprovalStatus == ApprovalApproved
}

// ModuleCompletion tracks a user's completion of a module
type ModuleCompletion struct {
	gorm.Model
	UserID   uint `gorm:"index;not null" json:"userId"`
	CourseID uint `gorm:"index;not null" json:"courseId"`
	ModuleID uint `gorm:"index;not null" json:"moduleId"`
}
