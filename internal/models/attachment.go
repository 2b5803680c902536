package models

import "time"

// Attachment links an uploaded file to a project and optionally to one of
// its tasks. Only the linkage is tracked here; the bytes live in the file
// store under StoredName. Removing the row triggers best-effort removal
// of the backing file, never the other way around.
type Attachment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	TaskID      *uint     `gorm:"index" json:"task_id,omitempty"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	StoredName  string    `gorm:"uniqueIndex;size:64;not null" json:"-"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  uint      `gorm:"index" json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func (Attachment) TableName() string { return "attachments" }
