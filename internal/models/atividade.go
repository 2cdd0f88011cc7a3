package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "Pending"
	TaskStatusInProgress TaskStatus = "InProgress"
	TaskStatusDone       TaskStatus = "Done"
	TaskStatusCancelled  TaskStatus = "Cancelled"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone, TaskStatusCancelled:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow      TaskPriority = "Low"
	TaskPriorityMedium   TaskPriority = "Medium"
	TaskPriorityHigh     TaskPriority = "High"
	TaskPriorityCritical TaskPriority = "Critical"
)

// TaskPriorities lists priorities from least to most urgent.
var TaskPriorities = []TaskPriority{
	TaskPriorityLow,
	TaskPriorityMedium,
	TaskPriorityHigh,
	TaskPriorityCritical,
}

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	}
	return false
}

// Atividade is a work item.
type Atividade struct {
	ID          uint64       `gorm:"primarykey" json:"id"`
	Description string       `gorm:"type:text;not null" json:"description"`
	Status      TaskStatus   `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	Priority    TaskPriority `gorm:"type:varchar(20);not null;default:'Medium'" json:"priority"`
	Deadline    *time.Time   `gorm:"index" json:"deadline"`
	Location    string       `gorm:"type:varchar(255);not null" json:"location"`
	Department  *string      `gorm:"type:varchar(150);index" json:"department"`
	Requester   *string      `gorm:"type:varchar(150)" json:"requester"`
	Handler     *string      `gorm:"type:varchar(150)" json:"handler"`
	CreatorID   uint64       `gorm:"not null;index;<-:create" json:"creator_id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`

	// Relations
	Creator User `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
}

func (Atividade) TableName() string {
	return "atividades"
}

// DepartmentName returns the department or an empty string when unset.
func (a *Atividade) DepartmentName() string {
	if a.Department == nil {
		return ""
	}
	return *a.Department
}
