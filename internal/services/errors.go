package services

import "errors"

// Domain errors surfaced by the service layer. Handlers translate these
// into rejected requests; none of them ever leaves partial writes behind.
var (
	// ErrInsufficientPrivilege is returned when an actor's permission level
	// does not dominate both the target member and the requested level.
	ErrInsufficientPrivilege = errors.New("insufficient privilege")

	// ErrReservedLevel is returned when a level change names the creator
	// level, which is only set at project creation.
	ErrReservedLevel = errors.New("creator level is reserved")

	// ErrInvalidInviteCode is returned when no project matches an invite code.
	ErrInvalidInviteCode = errors.New("invalid invite code")

	// ErrInvalidTimeRange is returned when a task window has start after end.
	ErrInvalidTimeRange = errors.New("start time must not be after end time")

	// ErrNotAMember is returned when an operation requires a membership the
	// user does not have.
	ErrNotAMember = errors.New("user is not a member of this project")

	// ErrAssigneeNotMember is returned when a task assignee set includes a
	// user outside the owning project.
	ErrAssigneeNotMember = errors.New("assignee is not a member of this project")

	// ErrInvalidStatus is returned for a task status outside the fixed set.
	ErrInvalidStatus = errors.New("invalid task status")

	// ErrUsernameTaken is returned when a signup reuses an existing username.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so login failures are indistinguishable to a caller.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserDisabled is returned when a deactivated account authenticates.
	ErrUserDisabled = errors.New("user is disabled")

	// ErrInvalidRefreshToken covers unknown, revoked and expired refresh
	// tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)
