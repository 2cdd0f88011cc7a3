package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/gestor-tarefas/internal/models"
)

// SeedDepartments makes sure every named department exists. Blank names are skipped.
func SeedDepartments(db *gorm.DB, names []string) (int, error) {
	created := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}

			var existing int64
			if err := tx.Model(&models.Setor{}).Where("nome = ?", name).Count(&existing).Error; err != nil {
				return fmt.Errorf("failed to check department %s: %w", name, err)
			}
			if existing > 0 {
				continue
			}

			if err := tx.Create(&models.Setor{Nome: name}).Error; err != nil {
				return fmt.Errorf("failed to seed department %s: %w", name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}
