package services

import (
	"time"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/pkg/logger"
	"gorm.io/gorm"
)

type TaskService struct {
	db    *gorm.DB
	queue TaskQueue
}

func NewTaskService(db *gorm.DB, queue TaskQueue) *TaskService {
	return &TaskService{db: db, queue: queue}
}

type CreateTaskRequest struct {
	Name        string    `json:"name" binding:"required,max=100"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"start_at" binding:"required"`
	EndAt       time.Time `json:"end_at" binding:"required"`
	AssigneeIDs []uint    `json:"assignee_ids"`
}

type UpdateTaskRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=100"`
	Description *string    `json:"description"`
	StartAt     *time.Time `json:"start_at"`
	EndAt       *time.Time `json:"end_at"`
	AssigneeIDs *[]uint    `json:"assignee_ids"`
}

// Create adds a task to a project. The time window must satisfy
// StartAt <= EndAt and every assignee must be a current project member.
func (s *TaskService) Create(projectID uint, req *CreateTaskRequest) (*models.Task, error) {
	if req.StartAt.After(req.EndAt) {
		return nil, ErrInvalidTimeRange
	}

	var task *models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		assignees, err := loadAssignees(tx, projectID, req.AssigneeIDs)
		if err != nil {
			return err
		}

		t := models.Task{
			ProjectID:   projectID,
			Name:        req.Name,
			Description: req.Description,
			StartAt:     req.StartAt,
			EndAt:       req.EndAt,
			Status:      models.TaskStatusNotStarted,
			Assignees:   assignees,
		}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		task = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Update patches the provided fields. The resulting time window, merged
// from old and new values, must still be valid.
func (s *TaskService) Update(projectID, taskID uint, req *UpdateTaskRequest) (*models.Task, error) {
	var task models.Task
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", projectID).First(&task, taskID).Error; err != nil {
			return err
		}

		startAt := task.StartAt
		endAt := task.EndAt
		if req.StartAt != nil {
			startAt = *req.StartAt
		}
		if req.EndAt != nil {
			endAt = *req.EndAt
		}
		if startAt.After(endAt) {
			return ErrInvalidTimeRange
		}

		updates := map[string]interface{}{
			"start_at": startAt,
			"end_at":   endAt,
		}
		if req.Name != nil {
			updates["name"] = *req.Name
		}
		if req.Description != nil {
			updates["description"] = *req.Description
		}
		if err := tx.Model(&task).Updates(updates).Error; err != nil {
			return err
		}

		if req.AssigneeIDs != nil {
			assignees, err := loadAssignees(tx, projectID, *req.AssigneeIDs)
			if err != nil {
				return err
			}
			if err := tx.Model(&task).Association("Assignees").Replace(assignees); err != nil {
				return err
			}
			task.Assignees = assignees
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// ChangeStatus moves a task to one of the fixed status values. Any
// transition between valid statuses is allowed, including backwards.
func (s *TaskService) ChangeStatus(projectID, taskID uint, status string) error {
	if !models.ValidTaskStatus(status) {
		return ErrInvalidStatus
	}

	result := s.db.Model(&models.Task{}).
		Where("id = ? AND project_id = ?", taskID, projectID).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the task, its assignee links and its attachments. Files
// backing the attachments are cleaned up after the commit.
func (s *TaskService) Delete(projectID, taskID uint) error {
	var storedNames []string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var task models.Task
		if err := tx.Where("project_id = ?", projectID).First(&task, taskID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Attachment{}).
			Where("task_id = ?", task.ID).
			Pluck("stored_name", &storedNames).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", task.ID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&task).Association("Assignees").Clear(); err != nil {
			return err
		}
		return tx.Delete(&task).Error
	})
	if err != nil {
		return err
	}

	if len(storedNames) > 0 && s.queue != nil {
		if err := s.queue.EnqueueFileCleanup(storedNames); err != nil {
			logger.Warn().Err(err).Int("files", len(storedNames)).
				Msg("Failed to enqueue attachment file cleanup")
		}
	}
	return nil
}

// List returns a project's tasks, newest first, optionally filtered by
// status.
func (s *TaskService) List(projectID uint, status string) ([]models.Task, error) {
	if status != "" && !models.ValidTaskStatus(status) {
		return nil, ErrInvalidStatus
	}

	query := s.db.Where("project_id = ?", projectID).Preload("Assignees")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var tasks []models.Task
	err := query.Order("created_at DESC").Find(&tasks).Error
	return tasks, err
}

// Get returns one task of a project with assignees preloaded.
func (s *TaskService) Get(projectID, taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.Where("project_id = ?", projectID).
		Preload("Assignees").
		First(&task, taskID).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// loadAssignees resolves user IDs to users, failing with
// ErrAssigneeNotMember if any of them is not a member of the project.
func loadAssignees(tx *gorm.DB, projectID uint, ids []uint) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var count int64
	if err := tx.Model(&models.Membership{}).
		Where("project_id = ? AND user_id IN ?", projectID, ids).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count != int64(len(uniqueIDs(ids))) {
		return nil, ErrAssigneeNotMember
	}

	var users []models.User
	if err := tx.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
