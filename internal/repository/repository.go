package repository

import (
	"context"

	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/utils"
)

// TaskRepository defines the interface for atividade data access
type TaskRepository interface {
	// Create inserts a new atividade
	Create(ctx context.Context, task *models.Atividade) error

	// FindByID finds an atividade by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Atividade, error)

	// List retrieves atividades in deadline order with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Atividade, int64, error)

	// Update persists every mutable column of the atividade in a single transaction
	Update(ctx context.Context, task *models.Atividade) error

	// Delete removes an atividade
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing atividades
type TaskFilter struct {
	// Department restricts the listing to one department when set
	Department *string
	Pagination utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// Update saves the user's columns
	Update(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID, with its department loaded
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByResetToken finds the user holding a password reset token
	FindByResetToken(ctx context.Context, token string) (*models.User, error)

	// CountByRole counts users with the given role
	CountByRole(ctx context.Context, role models.Role) (int64, error)
}

// SetorRepository defines the interface for department data access
type SetorRepository interface {
	// List returns every department ordered by name
	List(ctx context.Context) ([]models.Setor, error)

	// FindByID finds a department by ID
	FindByID(ctx context.Context, id uint64) (*models.Setor, error)
}
