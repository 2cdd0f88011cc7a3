// Package testutil provides database fixtures shared by package tests.
package testutil

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/gestor-tarefas/internal/config"
	"github.com/yukikurage/gestor-tarefas/internal/database"
	"github.com/yukikurage/gestor-tarefas/internal/models"
)

// DefaultPassword is the plaintext password of every fixture user.
const DefaultPassword = "password123"

// NewDB opens a migrated in-memory sqlite database that is closed when the test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)

	// every pooled connection to ":memory:" would get its own empty database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	return db
}

// CreateSetor inserts a department.
func CreateSetor(t *testing.T, db *gorm.DB, name string) models.Setor {
	t.Helper()

	setor := models.Setor{Nome: name}
	require.NoError(t, db.Create(&setor).Error)
	return setor
}

// CreateUser inserts a user with DefaultPassword. The email is derived from the username.
func CreateUser(t *testing.T, db *gorm.DB, username string, role models.Role, setor *models.Setor) models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.MinCost)
	require.NoError(t, err)

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		Role:         role,
	}
	if setor != nil {
		user.SetorID = &setor.ID
	}
	require.NoError(t, db.Omit("Setor").Create(&user).Error)

	if setor != nil {
		s := *setor
		user.Setor = &s
	}
	return user
}

// CreateTask inserts a pending Medium task owned by creator; opts may adjust fields before insert.
func CreateTask(t *testing.T, db *gorm.DB, creator models.User, opts ...func(*models.Atividade)) models.Atividade {
	t.Helper()

	task := models.Atividade{
		Description: "Replace the broken lamp",
		Status:      models.TaskStatusPending,
		Priority:    models.TaskPriorityMedium,
		Location:    "Block B",
		CreatorID:   creator.ID,
	}
	for _, opt := range opts {
		opt(&task)
	}
	require.NoError(t, db.Omit("Creator").Create(&task).Error)
	return task
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
