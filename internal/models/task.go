package models

import "time"

// Task status values.
const (
	TaskStatusNotStarted = "not_started"
	TaskStatusInProcess  = "in_process"
	TaskStatusFinished   = "finished"
)

// ValidTaskStatus reports whether s is one of the fixed status values.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusNotStarted, TaskStatusInProcess, TaskStatusFinished:
		return true
	}
	return false
}

// Task belongs to exactly one project. Assignees must be members of the
// owning project; the service layer enforces that, not the schema.
type Task struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	ProjectID   uint      `gorm:"index;not null" json:"project_id"`
	Project     *Project  `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	StartAt     time.Time `gorm:"not null" json:"start_at"`
	EndAt       time.Time `gorm:"not null" json:"end_at"` // StartAt <= EndAt, enforced in TaskService
	Status      string    `gorm:"size:20;not null;default:not_started" json:"status"`
	Assignees   []User    `gorm:"many2many:task_assignees" json:"assignees,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Task) TableName() string { return "tasks" }
