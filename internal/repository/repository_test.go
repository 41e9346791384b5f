package repository

import (
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amigo-insight/surveydash/internal/models"
)

// newTestDB opens a throwaway SQLite database with the full schema and the
// same TranslateError setting as production.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Project{},
		&models.CountryLink{},
		&models.Vendor{},
		&models.SurveyResponse{},
		&models.ProjectVendorCounts{},
		&models.Client{},
		&models.RequestLog{},
	))
	return db
}
