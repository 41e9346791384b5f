package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
	"github.com/amigo-insight/surveydash/internal/services"
)

// fixedGeo always resolves to the same country code.
type fixedGeo struct {
	code string
}

func (g fixedGeo) CountryCode(_ context.Context, _ string) (string, error) {
	return g.code, nil
}

type testApp struct {
	router    *gin.Engine
	projects  repository.ProjectRepository
	vendors   repository.VendorRepository
	responses repository.ResponseRepository
}

// newTestApp stands up the full route tree over a throwaway database with
// the geo lookup stubbed to "US".
func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Project{}, &models.CountryLink{}, &models.Vendor{},
		&models.SurveyResponse{}, &models.ProjectVendorCounts{},
		&models.Client{}, &models.RequestLog{},
	))

	projects := repository.NewProjectRepository(db)
	vendors := repository.NewVendorRepository(db)
	responses := repository.NewResponseRepository(db)
	counts := repository.NewCountsRepository(db)
	clients := repository.NewClientRepository(db)

	loc, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	deps := &Deps{
		Intake:     services.NewIntakeService(projects, vendors, responses, fixedGeo{code: "US"}, true, loc),
		Resolution: services.NewResolutionService(responses, projects, vendors, counts, services.NewVendorNotifier(nil), loc),
		Projects:   services.NewProjectService(projects, vendors, clients),
		Vendors:    services.NewVendorService(vendors),
		Reporting:  services.NewReportingService(responses, counts, projects),
	}

	router := gin.New()
	SetupRoutes(router, deps, 64)
	return &testApp{router: router, projects: projects, vendors: vendors, responses: responses}
}

func (a *testApp) seedClickFixtures(t *testing.T) {
	t.Helper()
	require.NoError(t, a.projects.CreateProject(&models.Project{
		ProjectIdentifier: "P1",
		Token:             "tok1",
		Status:            models.ProjectActive,
		Counts:            100,
		CountryLinks: []models.CountryLink{
			{Country: "US", OriginalLink: "https://surveys.example.com/s1?uid=[UID]", Position: 1},
		},
	}))
	require.NoError(t, a.vendors.CreateVendor(&models.Vendor{
		Username: "V1",
		Token:    "vt1",
		Shown:    true,
	}))
}

func (a *testApp) get(path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t)
	w := app.get("/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestSurveyClick_MissingParams(t *testing.T) {
	app := newTestApp(t)
	w := app.get("/survey?uid=u1&pid=tok1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSurveyClick_UnknownProjectToken(t *testing.T) {
	app := newTestApp(t)
	w := app.get("/survey?uid=u1&pid=nope&token=vt1&country=US", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/rejection?type=TERMINATE", w.Header().Get("Location"))
}

func TestSurveyClick_Success(t *testing.T) {
	app := newTestApp(t)
	app.seedClickFixtures(t)

	w := app.get("/survey?uid=u1&pid=tok1&token=vt1&country=US",
		map[string]string{"X-Forwarded-For": "1.2.3.4"})
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://surveys.example.com/s1?uid=u1", w.Header().Get("Location"))

	record, err := app.responses.GetResponseByUID("u1")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3.4", record.IPAddress)
	assert.Equal(t, models.StatusInProgress, record.Status)
}

func TestSurveyClick_DuplicateRedirectsToRejection(t *testing.T) {
	app := newTestApp(t)
	app.seedClickFixtures(t)

	first := app.get("/survey?uid=u1&pid=tok1&token=vt1&country=US",
		map[string]string{"X-Forwarded-For": "1.2.3.4"})
	assert.Equal(t, http.StatusFound, first.Code)

	second := app.get("/survey?uid=u1&pid=tok1&token=vt1&country=US",
		map[string]string{"X-Forwarded-For": "5.6.7.8"})
	assert.Equal(t, http.StatusFound, second.Code)
	assert.Equal(t, "/rejection?type=TERMINATE", second.Header().Get("Location"))
}

func TestResolve_MissingUID(t *testing.T) {
	app := newTestApp(t)
	w := app.get("/survey/complete", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResolve_NoMatch(t *testing.T) {
	app := newTestApp(t)
	w := app.get("/survey/complete?UID=ghost", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "no_match")
}

func TestRejectionPage(t *testing.T) {
	app := newTestApp(t)

	w := app.get("/rejection?type=QUOTA_FULL", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Survey Full")

	// Unknown types render the internal-error page instead of failing.
	w = app.get("/rejection?type=bogus", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Something Went Wrong")
}

func TestCreateVendor_MintsToken(t *testing.T) {
	app := newTestApp(t)

	body := `{"username":"V9","complete_url":"https://vendor.example/cb/complete/[UID]"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/vendors", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	vendor, err := app.vendors.GetVendorByUsername("V9")
	require.NoError(t, err)
	assert.NotEmpty(t, vendor.Token)
	assert.Contains(t, w.Body.String(), vendor.Token)
}

func TestClientIP(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "1.2.3.4, 10.0.0.1"}, "1.2.3.4"},
		{"real ip fallback", map[string]string{"X-Real-IP": "5.6.7.8"}, "5.6.7.8"},
		{"unknown forwarded falls through", map[string]string{"X-Forwarded-For": "unknown", "X-Real-IP": "5.6.7.8"}, "5.6.7.8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/survey", nil)
			for k, v := range tc.headers {
				c.Request.Header.Set(k, v)
			}
			assert.Equal(t, tc.want, ClientIP(c))
		})
	}
}
