package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/gestor-tarefas/internal/database"
	"github.com/yukikurage/gestor-tarefas/internal/models"
)

// Tasks without a deadline go last; ties on deadline are broken by status weight
// (InProgress, then Pending and anything unrecognised, then Done) and finally by id.
var listOrder = []string{
	"CASE WHEN atividades.deadline IS NULL THEN 1 ELSE 0 END",
	"atividades.deadline ASC",
	fmt.Sprintf("CASE atividades.status WHEN '%s' THEN 1 WHEN '%s' THEN 3 ELSE 2 END",
		models.TaskStatusInProgress, models.TaskStatusDone),
	"atividades.id ASC",
}

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create inserts a new atividade
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Atividade) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(task).Error
}

// FindByID finds an atividade by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Atividade, error) {
	var task models.Atividade
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves atividades with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Atividade, int64, error) {
	scoped := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&models.Atividade{})
		if filter.Department != nil {
			query = query.Where("atividades.department = ?", *filter.Department)
		}
		return query
	}

	var total int64
	if err := scoped().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := scoped().Preload("Creator")
	for _, order := range listOrder {
		listQuery = listQuery.Order(order)
	}
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	tasks := []models.Atividade{}
	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Columns an update may write. creator_id and created_at are fixed at insert time.
var updatableColumns = []string{
	"description",
	"status",
	"priority",
	"deadline",
	"location",
	"department",
	"requester",
	"handler",
	"updated_at",
}

// Update writes the mutable columns of an existing atividade inside a transaction.
// It returns gorm.ErrRecordNotFound when the row no longer exists.
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Atividade) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(task).Select(updatableColumns).Updates(task)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}

		// MySQL reports changed rows, not matched ones.
		var count int64
		if err := tx.Model(&models.Atividade{}).Where("id = ?", task.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete removes an atividade
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Atividade{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
