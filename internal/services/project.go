package services

import (
	"errors"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/permissions"
	"github.com/taskhive/taskhive/internal/utils"
	"github.com/taskhive/taskhive/pkg/logger"
	"gorm.io/gorm"
)

// inviteCodeAttempts bounds the regenerate-and-retry loop on invite code
// collisions.
const inviteCodeAttempts = 5

type ProjectService struct {
	db          *gorm.DB
	memberships *MembershipService
	queue       TaskQueue
	inviteCode  func() (string, error)
}

func NewProjectService(db *gorm.DB, memberships *MembershipService, queue TaskQueue) *ProjectService {
	return &ProjectService{
		db:          db,
		memberships: memberships,
		queue:       queue,
		inviteCode:  utils.GenerateInviteCode,
	}
}

type CreateProjectRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// Create makes a new project with its creator enrolled at the creator
// level and a blank profile, all in one transaction. The invite code is
// regenerated on the rare unique-index collision.
func (s *ProjectService) Create(creatorID uint, req *CreateProjectRequest) (*models.Project, error) {
	var project *models.Project

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var lastErr error
		for i := 0; i < inviteCodeAttempts; i++ {
			code, err := s.inviteCode()
			if err != nil {
				return err
			}

			candidate := models.Project{
				Name:       req.Name,
				CreatorID:  creatorID,
				InviteCode: code,
			}
			// A unique violation aborts the whole transaction on
			// postgres, so each insert runs under a savepoint.
			if err := tx.SavePoint("invite_code").Error; err != nil {
				return err
			}
			lastErr = tx.Create(&candidate).Error
			if lastErr == nil {
				project = &candidate
				break
			}
			if !errors.Is(lastErr, gorm.ErrDuplicatedKey) {
				return lastErr
			}
			if err := tx.RollbackTo("invite_code").Error; err != nil {
				return err
			}
		}
		if project == nil {
			return lastErr
		}

		membership := models.Membership{
			ProjectID: project.ID,
			UserID:    creatorID,
			Level:     string(permissions.LevelCreator),
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		profile := models.MemberProfile{
			ProjectID: project.ID,
			UserID:    creatorID,
		}
		return tx.Create(&profile).Error
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// JoinByInviteCode resolves an invite code to its project and enrolls the
// user at the lowest level. An unknown code returns ErrInvalidInviteCode;
// joining a project one already belongs to returns the project unchanged.
func (s *ProjectService) JoinByInviteCode(userID uint, code string) (*models.Project, error) {
	var project models.Project
	err := s.db.Where("invite_code = ?", code).First(&project).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidInviteCode
	}
	if err != nil {
		return nil, err
	}

	if err := s.memberships.Join(project.ID, userID); err != nil {
		return nil, err
	}
	return &project, nil
}

type RenameProjectRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// Rename changes the project name. Authorization is the caller's job.
func (s *ProjectService) Rename(projectID uint, req *RenameProjectRequest) error {
	result := s.db.Model(&models.Project{}).
		Where("id = ?", projectID).
		Update("name", req.Name)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes the project and everything hanging off it in one
// transaction: tasks and their assignee links, attachments, memberships
// and profiles. Attachment files on disk are cleaned up asynchronously
// after the commit.
func (s *ProjectService) Delete(projectID uint) error {
	var storedNames []string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var project models.Project
		if err := tx.First(&project, projectID).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Attachment{}).
			Where("project_id = ?", projectID).
			Pluck("stored_name", &storedNames).Error; err != nil {
			return err
		}

		if err := tx.Exec(
			"DELETE FROM task_assignees WHERE task_id IN (SELECT id FROM tasks WHERE project_id = ?)",
			projectID,
		).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Task{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.MemberProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("project_id = ?", projectID).Delete(&models.Membership{}).Error; err != nil {
			return err
		}
		return tx.Delete(&project).Error
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

// GetByID returns a project with its creator preloaded.
func (s *ProjectService) GetByID(projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.Preload("Creator").First(&project, projectID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// ProjectListItem pairs a project with the caller's level in it.
type ProjectListItem struct {
	Project models.Project `json:"project"`
	Level   string         `json:"level"`
}

// ListForUser returns every project the user belongs to, split into the
// ones they created and the ones they joined.
func (s *ProjectService) ListForUser(userID uint) (created, joined []ProjectListItem, err error) {
	var memberships []models.Membership
	if err := s.db.Where("user_id = ?", userID).
		Preload("Project").
		Preload("Project.Creator").
		Order("id ASC").
		Find(&memberships).Error; err != nil {
		return nil, nil, err
	}

	created = make([]ProjectListItem, 0)
	joined = make([]ProjectListItem, 0)
	for _, m := range memberships {
		if m.Project == nil {
			continue
		}
		item := ProjectListItem{Project: *m.Project, Level: m.Level}
		if m.Project.CreatorID == userID {
			created = append(created, item)
		} else {
			joined = append(joined, item)
		}
	}
	return created, joined, nil
}
