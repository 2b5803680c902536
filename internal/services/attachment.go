package services

import (
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/storage"
	"github.com/taskhive/taskhive/pkg/logger"
	"gorm.io/gorm"
)

type AttachmentService struct {
	db    *gorm.DB
	store storage.FileStore
}

func NewAttachmentService(db *gorm.DB, store storage.FileStore) *AttachmentService {
	return &AttachmentService{db: db, store: store}
}

// Upload streams the file into the store under a random name and records
// the attachment row. When taskID is set, the task must belong to the
// project. The stored file is removed again if the row cannot be written.
func (s *AttachmentService) Upload(projectID uint, taskID *uint, uploadedBy uint, fileName, contentType string, r io.Reader) (*models.Attachment, error) {
	if taskID != nil {
		var task models.Task
		if err := s.db.Where("project_id = ?", projectID).First(&task, *taskID).Error; err != nil {
			return nil, err
		}
	}

	storedName := strings.ReplaceAll(uuid.New().String(), "-", "")
	size, err := s.store.Save(storedName, r)
	if err != nil {
		return nil, err
	}

	attachment := models.Attachment{
		ProjectID:   projectID,
		TaskID:      taskID,
		FileName:    fileName,
		StoredName:  storedName,
		ContentType: contentType,
		Size:        size,
		UploadedBy:  uploadedBy,
	}
	if err := s.db.Create(&attachment).Error; err != nil {
		if rmErr := s.store.Remove(storedName); rmErr != nil {
			logger.Warn().Err(rmErr).Str("stored_name", storedName).
				Msg("failed to remove orphaned upload")
		}
		return nil, err
	}
	return &attachment, nil
}

// Open returns the attachment row and a reader over its bytes. The caller
// closes the reader.
func (s *AttachmentService) Open(projectID, attachmentID uint) (*models.Attachment, io.ReadCloser, error) {
	var attachment models.Attachment
	if err := s.db.Where("project_id = ?", projectID).First(&attachment, attachmentID).Error; err != nil {
		return nil, nil, err
	}

	rc, err := s.store.Open(attachment.StoredName)
	if err != nil {
		return nil, nil, err
	}
	return &attachment, rc, nil
}

// Delete removes the attachment row and then the backing file. File
// removal is best effort; a leftover file is only leaked space.
func (s *AttachmentService) Delete(projectID, attachmentID uint) error {
	var attachment models.Attachment
	if err := s.db.Where("project_id = ?", projectID).First(&attachment, attachmentID).Error; err != nil {
		return err
	}

	if err := s.db.Delete(&attachment).Error; err != nil {
		return err
	}

	if err := s.store.Remove(attachment.StoredName); err != nil {
		logger.Warn().Err(err).Str("stored_name", attachment.StoredName).
			Msg("failed to remove attachment file")
	}
	return nil
}

// List returns a project's attachments, optionally restricted to one task.
func (s *AttachmentService) List(projectID uint, taskID *uint) ([]models.Attachment, error) {
	query := s.db.Where("project_id = ?", projectID)
	if taskID != nil {
		query = query.Where("task_id = ?", *taskID)
	}

	var attachments []models.Attachment
	err := query.Order("created_at DESC").Find(&attachments).Error
	return attachments, err
}

// Get returns one attachment of a project.
func (s *AttachmentService) Get(projectID, attachmentID uint) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := s.db.Where("project_id = ?", projectID).First(&attachment, attachmentID).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}
