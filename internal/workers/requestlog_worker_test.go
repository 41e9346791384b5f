package workers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

func newLogRepo(t *testing.T) repository.RequestLogRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.RequestLog{}))
	return repository.NewRequestLogRepository(db)
}

func TestRequestLogWorkers_DrainAndPersist(t *testing.T) {
	repo := newLogRepo(t)
	events := make(chan models.RequestLogEvent, 16)
	StartRequestLogWorkers(2, events, repo)

	for i := 0; i < 5; i++ {
		events <- models.RequestLogEvent{
			Method:     "GET",
			Path:       "/survey",
			Query:      "uid=u1",
			IPAddress:  "1.2.3.4",
			UserAgent:  "test-agent",
			StatusCode: 302,
			Latency:    3 * time.Millisecond,
			Timestamp:  time.Now(),
		}
	}
	close(events)

	require.Eventually(t, func() bool {
		logs, err := repo.GetRecentRequestLogs(10)
		return err == nil && len(logs) == 5
	}, 2*time.Second, 10*time.Millisecond)

	logs, err := repo.GetRecentRequestLogs(10)
	require.NoError(t, err)
	assert.Equal(t, "/survey", logs[0].Path)
	assert.Equal(t, 302, logs[0].StatusCode)
}
