// Package policy holds the request principal and the role-to-capability table.
package policy

import (
	"errors"

	"github.com/yukikurage/gestor-tarefas/internal/constants"
	"github.com/yukikurage/gestor-tarefas/internal/models"
)

// ErrPermissionDenied is returned when the principal lacks a capability.
var ErrPermissionDenied = errors.New("not authorized")

type Capability string

const (
	ViewAllTasks Capability = "view_all_tasks"
	CreateTask   Capability = "create_task"
	ChangeStatus Capability = "change_status"
	DeleteTask   Capability = "delete_task"
	JoinAnyRoom  Capability = "join_any_room"
)

var grants = map[models.Role]map[Capability]bool{
	models.RoleAdmin: {
		ViewAllTasks: true,
		CreateTask:   true,
		ChangeStatus: true,
		DeleteTask:   true,
		JoinAnyRoom:  true,
	},
	models.RoleDepartmentMember: {
		CreateTask: true,
	},
}

// Principal is the authenticated actor of a single request.
type Principal struct {
	UserID   uint64
	Username string
	Email    string
	Role     models.Role

	// Department is the name of the user's department; HasDepartment is false when the
	// user's department reference is missing or dangling.
	Department    string
	HasDepartment bool
}

// NewPrincipal builds a principal from a user loaded with its Setor relation.
func NewPrincipal(user models.User) Principal {
	p := Principal{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
	if user.Setor != nil && user.Setor.ID != 0 {
		p.Department = user.Setor.Nome
		p.HasDepartment = true
	}
	return p
}

// Can reports whether the principal holds the capability.
func (p Principal) Can(c Capability) bool {
	return grants[p.Role][c]
}

// IsAdmin reports whether the principal sees and manages every task.
func (p Principal) IsAdmin() bool {
	return p.Can(ViewAllTasks)
}

// Authorize returns ErrPermissionDenied unless the principal holds the capability.
func Authorize(p Principal, c Capability) error {
	if !p.Can(c) {
		return ErrPermissionDenied
	}
	return nil
}

// DepartmentRoom returns the notification room for a department name.
func DepartmentRoom(department string) string {
	return constants.DepartmentRoomPrefix + department
}

// CanJoinRoom reports whether the principal may subscribe to room.
func (p Principal) CanJoinRoom(room string) bool {
	if p.Can(JoinAnyRoom) {
		return true
	}
	return p.HasDepartment && room == DepartmentRoom(p.Department)
}
