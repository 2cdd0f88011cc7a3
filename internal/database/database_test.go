package database

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/gestor-tarefas/internal/config"
	"github.com/yukikurage/gestor-tarefas/internal/models"
	"github.com/yukikurage/gestor-tarefas/internal/utils"
)

func TestDialector_UnknownDriver(t *testing.T) {
	_, err := Dialector(config.DatabaseConfig{Driver: "oracle"})
	require.Error(t, err)
}

func TestDialector_KnownDrivers(t *testing.T) {
	for _, driver := range []string{"mysql", "postgres", "sqlite"} {
		d, err := Dialector(config.DatabaseConfig{Driver: driver, Path: ":memory:"})
		require.NoError(t, err, driver)
		assert.Equal(t, driver, d.Name())
	}
}

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := Connect(config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"}, zerolog.Nop())
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = Close(db) })

	return db
}

func TestConnectMigrateAndSeed(t *testing.T) {
	db := openMemory(t)

	require.NoError(t, Migrate(db))
	assert.True(t, db.Migrator().HasTable(&models.Atividade{}))
	assert.True(t, db.Migrator().HasTable("setores"))

	created, err := SeedDepartments(db, []string{"Maintenance", " ", "Finance"})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = SeedDepartments(db, []string{"Maintenance", "IT"})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	var count int64
	require.NoError(t, db.Model(&models.Setor{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestPaginate(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(db))

	_, err := SeedDepartments(db, []string{"A", "B", "C"})
	require.NoError(t, err)

	var page []models.Setor
	err = db.Order("id").Scopes(Paginate(utils.PaginationParams{Page: 2, Limit: 2, Offset: 2})).Find(&page).Error
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "C", page[0].Nome)
}
