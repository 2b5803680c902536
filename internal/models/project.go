package models

import "time"

// Project is the root entity of a workspace: tasks, memberships, profiles
// and attachments all hang off it and are removed with it.
//
// Projects are hard-deleted: the cascade in ProjectService.Delete must
// actually free the (project, user) unique slots so that users can be
// re-invited to a recreated project, which soft deletion would block.
type Project struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	CreatorID uint      `gorm:"index;not null" json:"creator_id"`
	Creator   *User     `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	// InviteCode is generated once at creation and never rotated. Anyone
	// holding it may join the project at the lowest permission level.
	InviteCode string    `gorm:"uniqueIndex;size:16;not null" json:"invite_code"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
