package services

import (
	"github.com/taskhive/taskhive/internal/permissions"
)

// Operation names an action a member can attempt inside a project.
type Operation string

const (
	OpViewProject      Operation = "view_project"
	OpManageMembers    Operation = "manage_members"
	OpModifyTask       Operation = "modify_task"
	OpChangeTaskStatus Operation = "change_task_status"
	OpCreateTask       Operation = "create_task"
	OpUploadAttachment Operation = "upload_attachment"
	OpDeleteTask       Operation = "delete_task"
	OpDeleteAttachment Operation = "delete_attachment"
	OpDeleteProject    Operation = "delete_project"
	OpRenameProject    Operation = "rename_project"
)

// requiredLevel maps each operation to the minimum level that grants it.
// Higher levels imply everything below them.
var requiredLevel = map[Operation]permissions.Level{
	OpViewProject:      permissions.LevelRead,
	OpManageMembers:    permissions.LevelAddUsers,
	OpModifyTask:       permissions.LevelModifyTasks,
	OpChangeTaskStatus: permissions.LevelModifyTasks,
	OpCreateTask:       permissions.LevelCreateTasks,
	OpUploadAttachment: permissions.LevelCreateTasks,
	OpDeleteTask:       permissions.LevelDeleteTasks,
	OpDeleteAttachment: permissions.LevelDeleteTasks,
	OpDeleteProject:    permissions.LevelDeleteProject,
	OpRenameProject:    permissions.LevelDeleteProject,
}

// AuthzService answers permission questions by comparing a member's level
// against the threshold an operation requires.
type AuthzService struct {
	memberships *MembershipService
}

func NewAuthzService(memberships *MembershipService) *AuthzService {
	return &AuthzService{memberships: memberships}
}

// HasPermission reports whether the user may perform op in the project.
// Non-members are simply denied, not errored.
func (s *AuthzService) HasPermission(projectID, userID uint, op Operation) (bool, error) {
	required, ok := requiredLevel[op]
	if !ok {
		return false, permissions.ErrUnknownLevel
	}

	m, err := s.memberships.GetMembership(projectID, userID)
	if err == ErrNotAMember {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	cmp, err := permissions.Compare(permissions.Level(m.Level), required)
	if err != nil {
		return false, err
	}
	return cmp >= 0, nil
}

// Require is HasPermission collapsed to an error: nil when allowed,
// ErrInsufficientPrivilege otherwise.
func (s *AuthzService) Require(projectID, userID uint, op Operation) error {
	ok, err := s.HasPermission(projectID, userID, op)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInsufficientPrivilege
	}
	return nil
}
