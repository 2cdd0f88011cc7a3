package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/gestor-tarefas/internal/models"
)

// GormSetorRepository is a GORM implementation of SetorRepository
type GormSetorRepository struct {
	db *gorm.DB
}

// NewSetorRepository creates a new SetorRepository
func NewSetorRepository(db *gorm.DB) SetorRepository {
	return &GormSetorRepository{db: db}
}

func (r *GormSetorRepository) List(ctx context.Context) ([]models.Setor, error) {
	setores := []models.Setor{}
	if err := r.db.WithContext(ctx).Order("nome ASC").Find(&setores).Error; err != nil {
		return nil, err
	}
	return setores, nil
}

func (r *GormSetorRepository) FindByID(ctx context.Context, id uint64) (*models.Setor, error) {
	var setor models.Setor
	if err := r.db.WithContext(ctx).First(&setor, id).Error; err != nil {
		return nil, err
	}
	return &setor, nil
}
