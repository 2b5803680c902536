package services

import (
	"errors"
	"fmt"

	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/permissions"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MembershipService is the single authority for adding, removing and
// re-leveling project members. Every mutation keeps the membership row and
// its per-project profile row in lockstep inside one transaction, so a
// concurrent reader never sees one without the other.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// Join adds a user to a project at the lowest permission level together
// with a blank per-project profile. Calling it for an existing member is a
// no-op; the member keeps their current level and profile.
func (s *MembershipService) Join(projectID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Membership
		err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			First(&existing).Error
		if err == nil {
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		membership := models.Membership{
			ProjectID: projectID,
			UserID:    userID,
			Level:     string(permissions.Lowest()),
		}
		if err := tx.Create(&membership).Error; err != nil {
			// A concurrent Join for the same pair won the race.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil
			}
			return err
		}

		profile := models.MemberProfile{
			ProjectID: projectID,
			UserID:    userID,
		}
		return tx.Create(&profile).Error
	})
}

// Leave removes the user's own membership and profile. Leaving a project
// one is not a member of is a no-op.
func (s *MembershipService) Leave(projectID, userID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return removeMemberTx(tx, projectID, userID)
	})
}

// Remove removes another member on behalf of an actor. The actor needs the
// member-management level and must strictly outrank the target, which
// also rules out removing the creator.
func (s *MembershipService) Remove(projectID, actorID, targetID uint) error {
	if actorID == targetID {
		return s.Leave(projectID, targetID)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		actorRank, err := lockMemberRank(tx, projectID, actorID)
		if err != nil {
			return err
		}

		var target models.Membership
		err = lockForUpdate(tx).
			Where("project_id = ? AND user_id = ?", projectID, targetID).
			First(&target).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		manageRank, _ := permissions.Rank(permissions.LevelAddUsers)
		targetRank, err := permissions.Rank(permissions.Level(target.Level))
		if err != nil {
			return err
		}
		if actorRank < manageRank || actorRank <= targetRank {
			return ErrInsufficientPrivilege
		}

		return removeMemberTx(tx, projectID, targetID)
	})
}

// ChangeLevel sets the target member's permission level. It fails with
// ErrReservedLevel when newLevel is the creator level, and with
// ErrInsufficientPrivilege unless the actor strictly outranks both the
// new level and the target's current level. Both membership rows are read
// under row locks in the same transaction as the write, so two concurrent
// escalations cannot both slip past a level one of them just revoked.
func (s *MembershipService) ChangeLevel(projectID, actorID, targetID uint, newLevel permissions.Level) error {
	newRank, err := permissions.Rank(newLevel)
	if err != nil {
		return err
	}
	if newLevel == permissions.LevelCreator {
		return ErrReservedLevel
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return changeLevelTx(tx, projectID, actorID, targetID, newLevel, newRank)
	})
}

// BulkChangeLevel applies ChangeLevel to a set of members as one atomic
// unit: if any target is ineligible the whole batch is rolled back.
func (s *MembershipService) BulkChangeLevel(projectID, actorID uint, targetIDs []uint, newLevel permissions.Level) error {
	newRank, err := permissions.Rank(newLevel)
	if err != nil {
		return err
	}
	if newLevel == permissions.LevelCreator {
		return ErrReservedLevel
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, targetID := range targetIDs {
			if targetID == actorID {
				return ErrInsufficientPrivilege
			}
			if err := changeLevelTx(tx, projectID, actorID, targetID, newLevel, newRank); err != nil {
				return err
			}
		}
		return nil
	})
}

// BulkRemove removes a set of members as one atomic unit. Targets must
// all be strictly below the actor's level; the actor and the creator are
// never removable this way.
func (s *MembershipService) BulkRemove(projectID, actorID uint, targetIDs []uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		actorRank, err := lockMemberRank(tx, projectID, actorID)
		if err != nil {
			return err
		}
		manageRank, _ := permissions.Rank(permissions.LevelAddUsers)
		if actorRank < manageRank {
			return ErrInsufficientPrivilege
		}

		for _, targetID := range targetIDs {
			if targetID == actorID {
				return ErrInsufficientPrivilege
			}

			var target models.Membership
			err := lockForUpdate(tx).
				Where("project_id = ? AND user_id = ?", projectID, targetID).
				First(&target).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return err
			}

			targetRank, err := permissions.Rank(permissions.Level(target.Level))
			if err != nil {
				return err
			}
			if actorRank <= targetRank {
				return ErrInsufficientPrivilege
			}

			if err := removeMemberTx(tx, projectID, targetID); err != nil {
				return err
			}
		}
		return nil
	})
}

// EligibleTargets returns the members an actor may re-level or remove:
// everyone whose current level ranks strictly below the actor's, minus
// the actor and the creator. The list is recomputed on every call since
// levels change underneath it.
func (s *MembershipService) EligibleTargets(projectID, actorID uint) ([]models.Membership, error) {
	var actor models.Membership
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, actorID).
		First(&actor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAMember
	}
	if err != nil {
		return nil, err
	}

	actorRank, err := permissions.Rank(permissions.Level(actor.Level))
	if err != nil {
		return nil, err
	}

	members, err := s.ListMembers(projectID)
	if err != nil {
		return nil, err
	}

	eligible := make([]models.Membership, 0, len(members))
	for _, m := range members {
		if m.UserID == actorID || m.Level == string(permissions.LevelCreator) {
			continue
		}
		rank, err := permissions.Rank(permissions.Level(m.Level))
		if err != nil {
			return nil, err
		}
		if rank < actorRank {
			eligible = append(eligible, m)
		}
	}
	return eligible, nil
}

// ListMembers returns all memberships of a project with users and
// profiles preloaded.
func (s *MembershipService) ListMembers(projectID uint) ([]models.Membership, error) {
	var members []models.Membership
	err := s.db.Where("project_id = ?", projectID).
		Preload("User").
		Order("id ASC").
		Find(&members).Error
	return members, err
}

// GetMembership returns the membership for a (project, user) pair, or
// ErrNotAMember when none exists.
func (s *MembershipService) GetMembership(projectID, userID uint) (*models.Membership, error) {
	var m models.Membership
	err := s.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotAMember
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// AssignableLevels returns the levels the actor may hand out in the
// project: everything at or below their own level, creator excluded.
func (s *MembershipService) AssignableLevels(projectID, actorID uint) ([]permissions.Level, error) {
	m, err := s.GetMembership(projectID, actorID)
	if err != nil {
		return nil, err
	}
	return permissions.AssignableAtOrBelow(permissions.Level(m.Level))
}

// changeLevelTx validates and applies one level change under row locks.
func changeLevelTx(tx *gorm.DB, projectID, actorID, targetID uint, newLevel permissions.Level, newRank int) error {
	actorRank, err := lockMemberRank(tx, projectID, actorID)
	if err != nil {
		return err
	}

	var target models.Membership
	err = lockForUpdate(tx).
		Where("project_id = ? AND user_id = ?", projectID, targetID).
		First(&target).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotAMember
	}
	if err != nil {
		return err
	}

	targetRank, err := permissions.Rank(permissions.Level(target.Level))
	if err != nil {
		return err
	}

	if actorRank <= newRank || actorRank <= targetRank {
		return ErrInsufficientPrivilege
	}

	return tx.Model(&target).Update("level", string(newLevel)).Error
}

// lockForUpdate adds a FOR UPDATE clause on dialects that support it.
// SQLite serializes writers on its own and rejects the syntax.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	switch tx.Dialector.Name() {
	case "mysql", "postgres":
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// lockMemberRank reads the actor's membership under a row lock and
// returns its rank.
func lockMemberRank(tx *gorm.DB, projectID, actorID uint) (int, error) {
	var actor models.Membership
	err := lockForUpdate(tx).
		Where("project_id = ? AND user_id = ?", projectID, actorID).
		First(&actor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrNotAMember
	}
	if err != nil {
		return 0, err
	}

	rank, err := permissions.Rank(permissions.Level(actor.Level))
	if err != nil {
		return 0, fmt.Errorf("membership %d has invalid level: %w", actor.ID, err)
	}
	return rank, nil
}

// removeMemberTx deletes the membership and profile pair inside tx.
// Missing rows are tolerated so removal stays idempotent.
func removeMemberTx(tx *gorm.DB, projectID, userID uint) error {
	if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.Membership{}).Error; err != nil {
		return err
	}
	return tx.Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.MemberProfile{}).Error
}
