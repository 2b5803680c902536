package models

import "time"

// MemberProfile holds user-editable metadata scoped to a single project
// membership. All content fields are optional and start unset; the row
// itself lives and dies with the Membership for the same (project, user)
// pair.
type MemberProfile struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	ProjectID    uint      `gorm:"uniqueIndex:idx_profile_project_user;not null" json:"project_id"`
	UserID       uint      `gorm:"uniqueIndex:idx_profile_project_user;not null" json:"user_id"`
	User         *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	DisplayName  *string   `gorm:"size:100" json:"display_name"`
	Role         *string   `gorm:"size:100" json:"role"`
	PhoneNumber  *string   `gorm:"size:20" json:"phone_number"`
	EmailAddress *string   `gorm:"size:255" json:"email_address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (MemberProfile) TableName() string { return "member_profiles" }
