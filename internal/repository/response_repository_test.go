package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/amigo-insight/surveydash/internal/models"
)

func newResponse(uid, projectID, ip string) *models.SurveyResponse {
	return &models.SurveyResponse{
		UID:            uid,
		ProjectID:      projectID,
		VendorUsername: "v1",
		IPAddress:      ip,
		Country:        "US",
		Status:         models.StatusInProgress,
		StartTime:      time.Now(),
	}
}

func TestCreateResponse_DuplicateUID(t *testing.T) {
	repo := NewResponseRepository(newTestDB(t))

	require.NoError(t, repo.CreateResponse(newResponse("u1", "P1", "1.1.1.1")))

	// The unique index on uid must reject a second record, whatever the
	// project or IP, and surface as gorm.ErrDuplicatedKey through the wrap.
	err := repo.CreateResponse(newResponse("u1", "P2", "2.2.2.2"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestExistsByUID(t *testing.T) {
	repo := NewResponseRepository(newTestDB(t))
	require.NoError(t, repo.CreateResponse(newResponse("u1", "P1", "1.1.1.1")))

	exists, err := repo.ExistsByUID("u1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUID("u2")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCountByIPAndProject(t *testing.T) {
	repo := NewResponseRepository(newTestDB(t))
	require.NoError(t, repo.CreateResponse(newResponse("u1", "P1", "1.1.1.1")))

	count, err := repo.CountByIPAndProject("1.1.1.1", "P1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	// Same IP on another project does not count against P1.
	count, err = repo.CountByIPAndProject("1.1.1.1", "P2")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	count, err = repo.CountByIPAndProject("9.9.9.9", "P1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
}

func TestResolveIfInProgress_OnlyOnce(t *testing.T) {
	repo := NewResponseRepository(newTestDB(t))
	require.NoError(t, repo.CreateResponse(newResponse("u1", "P1", "1.1.1.1")))

	end := time.Now()
	applied, err := repo.ResolveIfInProgress("u1", models.StatusComplete, end)
	require.NoError(t, err)
	assert.True(t, applied)

	// The compare-and-set must fail for a second terminal callback.
	applied, err = repo.ResolveIfInProgress("u1", models.StatusTerminate, end)
	require.NoError(t, err)
	assert.False(t, applied)

	record, err := repo.GetResponseByUID("u1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, record.Status)
	require.NotNil(t, record.EndTime)
}

func TestResolveIfInProgress_UnknownUID(t *testing.T) {
	repo := NewResponseRepository(newTestDB(t))

	applied, err := repo.ResolveIfInProgress("nope", models.StatusComplete, time.Now())
	require.NoError(t, err)
	assert.False(t, applied)
}
