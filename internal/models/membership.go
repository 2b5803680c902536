package models

import "time"

// Membership grants a user a permission level within one project. There is
// at most one row per (project, user) pair, and every row has exactly one
// matching MemberProfile; both are created and deleted together inside
// the same transaction.
//
// No soft delete: a removed member who rejoins must start over at the
// lowest level with a blank profile, so the old row has to be gone.
type Membership struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"uniqueIndex:idx_membership_project_user;not null" json:"project_id"`
	Project   *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	UserID    uint      `gorm:"uniqueIndex:idx_membership_project_user;not null" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Level     string    `gorm:"size:50;not null;default:read" json:"level"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Membership) TableName() string { return "memberships" }
