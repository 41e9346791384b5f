package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

// staticGeo is a Resolver stub returning a fixed country or failure.
type staticGeo struct {
	country string
	err     error
}

func (g staticGeo) CountryCode(ctx context.Context, ip string) (string, error) {
	return g.country, g.err
}

// testStores bundles the repositories over one throwaway database.
type testStores struct {
	db        *gorm.DB
	projects  repository.ProjectRepository
	vendors   repository.VendorRepository
	responses repository.ResponseRepository
	counts    repository.CountsRepository
	clients   repository.ClientRepository
}

func newTestStores(t *testing.T) *testStores {
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

	return &testStores{
		db:        db,
		projects:  repository.NewProjectRepository(db),
		vendors:   repository.NewVendorRepository(db),
		responses: repository.NewResponseRepository(db),
		counts:    repository.NewCountsRepository(db),
		clients:   repository.NewClientRepository(db),
	}
}

// seedProject creates an active project with one US link and the given quota.
func (s *testStores) seedProject(t *testing.T, identifier, token string, quota int64) *models.Project {
	t.Helper()
	project := &models.Project{
		ProjectIdentifier: identifier,
		Token:             token,
		Status:            models.ProjectActive,
		Counts:            quota,
		CountryLinks: []models.CountryLink{
			{Country: "US", OriginalLink: "https://surveys.example.com/s1?uid=[UID]", Position: 0},
		},
	}
	require.NoError(t, s.projects.CreateProject(project))
	return project
}

// seedVendor creates a vendor with callback templates for every status.
func (s *testStores) seedVendor(t *testing.T, username, token string) *models.Vendor {
	t.Helper()
	vendor := &models.Vendor{
		Username:             username,
		Token:                token,
		CompleteURL:          "https://vendor.example/cb/complete/[UID]",
		TerminateURL:         "https://vendor.example/cb/terminate/[UID]",
		QuotafullURL:         "https://vendor.example/cb/quotafull/[UID]",
		SecurityTerminateURL: "https://vendor.example/cb/security/[UID]",
		Shown:                true,
	}
	require.NoError(t, s.vendors.CreateVendor(vendor))
	return vendor
}

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)
	return loc
}
