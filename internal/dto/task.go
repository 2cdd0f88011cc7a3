package dto

import (
	"time"

	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/policy"
	"github.com/yukikurage/gestor-tarefas/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID         uint64  `json:"id"`
	Username   string  `json:"username"`
	Email      string  `json:"email,omitempty"`
	Role       string  `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
}

// SetorDTO represents a department in API responses
type SetorDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents an atividade in API responses
type TaskDTO struct {
	ID          uint64              `json:"id"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Deadline    *time.Time          `json:"deadline"`
	Location    string              `json:"location"`
	Department  *string             `json:"department"`
	Requester   *string             `json:"requester"`
	Handler     *string             `json:"handler"`
	CreatorID   uint64              `json:"creator_id"`
	Creator     *UserDTO            `json:"creator,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role.String(),
	}
	if user.Setor != nil && user.Setor.ID != 0 {
		name := user.Setor.Nome
		dto.Department = &name
	}
	return dto
}

// ToPrincipalDTO describes the session user
func ToPrincipalDTO(p policy.Principal) UserDTO {
	dto := UserDTO{
		ID:       p.UserID,
		Username: p.Username,
		Email:    p.Email,
		Role:     p.Role.String(),
	}
	if p.HasDepartment {
		name := p.Department
		dto.Department = &name
	}
	return dto
}

// ToSetorDTOs converts departments for the registration form
func ToSetorDTOs(setores []models.Setor) []SetorDTO {
	items := make([]SetorDTO, len(setores))
	for i, s := range setores {
		items[i] = SetorDTO{ID: s.ID, Name: s.Nome}
	}
	return items
}

// ToTaskDTO converts an Atividade model to TaskDTO
func ToTaskDTO(task models.Atividade) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		Deadline:    task.Deadline,
		Location:    task.Location,
		Department:  task.Department,
		Requester:   task.Requester,
		Handler:     task.Handler,
		CreatorID:   task.CreatorID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := UserDTO{ID: task.Creator.ID, Username: task.Creator.Username}
		dto.Creator = &creator
	}

	return dto
}

// ToTaskListResponse converts a page of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Atividade, params utils.PaginationParams, total int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
