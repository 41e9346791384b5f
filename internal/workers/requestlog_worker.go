package workers

import (
	"github.com/sirupsen/logrus"

	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

// StartRequestLogWorkers launches a pool of worker goroutines to persist
// request-log events asynchronously. Logging runs off the critical path so
// high-volume click traffic never waits on the journal table.
func StartRequestLogWorkers(workerCount int, events <-chan models.RequestLogEvent, logRepo repository.RequestLogRepository) {
	logrus.Infof("Starting %d request log worker(s)...", workerCount)

	for i := 0; i < workerCount; i++ {
		go requestLogWorker(events, logRepo)
	}
}

// requestLogWorker drains the event channel and writes one row per event.
// It exits when the channel is closed during shutdown.
func requestLogWorker(events <-chan models.RequestLogEvent, logRepo repository.RequestLogRepository) {
	for event := range events {
		row := &models.RequestLog{
			Method:     event.Method,
			Path:       event.Path,
			Query:      event.Query,
			IPAddress:  event.IPAddress,
			UserAgent:  event.UserAgent,
			StatusCode: event.StatusCode,
			LatencyMs:  event.Latency.Milliseconds(),
			Timestamp:  event.Timestamp,
		}

		// Log and keep draining on failure; one lost row must not stall the pool.
		if err := logRepo.CreateRequestLog(row); err != nil {
			logrus.WithError(err).WithField("path", event.Path).Error("Failed to save request log")
		}
	}
}
