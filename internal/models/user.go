package models

import (
	"time"
)

// Role is the user role flag ("tipo"): 1 administrator, 2 department member.
type Role int

const (
	RoleAdmin            Role = 1
	RoleDepartmentMember Role = 2
)

// String returns the role name used in logs and API responses.
func (r Role) String() string {
	switch r {
	case RoleAdmin:
		return "admin"
	case RoleDepartmentMember:
		return "department-member"
	default:
		return "unknown"
	}
}

type User struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	Username         string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email            string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"type:varchar(255);not null" json:"-"`
	ResetToken       *string    `gorm:"type:varchar(100);uniqueIndex" json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
	Role             Role       `gorm:"not null;default:2" json:"role"`
	SetorID          *uint64    `gorm:"index" json:"setor_id"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	// Relations
	Setor             *Setor      `gorm:"foreignKey:SetorID" json:"setor,omitempty"`
	CreatedAtividades []Atividade `gorm:"foreignKey:CreatorID" json:"-"`
}

// ResetTokenValid reports whether token matches the stored reset token and has not expired at now.
func (u *User) ResetTokenValid(token string, now time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpiry == nil || token == "" {
		return false
	}
	if now.After(*u.ResetTokenExpiry) {
		return false
	}
	return *u.ResetToken == token
}
