package monitor

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

// LinkMonitor periodically checks that the survey links configured on
// active projects are still reachable, and logs a notification whenever a
// link changes state. A dead survey link burns vendor traffic silently, so
// ops wants to hear about it before the vendors do.
type LinkMonitor struct {
	projectRepo repository.ProjectRepository
	interval    time.Duration
	knownStates map[uint]bool // CountryLink ID -> last observed reachability
	mu          sync.Mutex
	httpClient  *http.Client
}

// NewLinkMonitor creates and returns a new instance of LinkMonitor.
func NewLinkMonitor(projectRepo repository.ProjectRepository, interval time.Duration) *LinkMonitor {
	return &LinkMonitor{
		projectRepo: projectRepo,
		interval:    interval,
		knownStates: make(map[uint]bool),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Start launches the periodic monitoring loop. Blocking; run in a goroutine.
func (m *LinkMonitor) Start() {
	logrus.Infof("[MONITOR] Starting survey link monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.checkLinks()

	for range ticker.C {
		m.checkLinks()
	}
}

// checkLinks verifies every country link of every active project.
func (m *LinkMonitor) checkLinks() {
	projects, err := m.projectRepo.GetAllProjects()
	if err != nil {
		logrus.WithError(err).Error("[MONITOR] Failed to retrieve projects for monitoring")
		return
	}

	for _, project := range projects {
		if project.Status != models.ProjectActive {
			continue
		}
		for _, link := range project.CountryLinks {
			currentState := m.isLinkReachable(link.OriginalLink)

			m.mu.Lock()
			previousState, seen := m.knownStates[link.ID]
			m.knownStates[link.ID] = currentState
			m.mu.Unlock()

			fields := logrus.Fields{
				"project": project.ProjectIdentifier,
				"country": link.Country,
			}
			if !seen {
				logrus.WithFields(fields).Infof("[MONITOR] Initial state: %s", formatState(currentState))
				continue
			}
			if currentState != previousState {
				logrus.WithFields(fields).Warnf("[NOTIFICATION] Survey link changed from %s to %s",
					formatState(previousState), formatState(currentState))
			}
		}
	}
}

// isLinkReachable performs an HTTP HEAD request against the link template.
// 2xx and 3xx count as reachable.
func (m *LinkMonitor) isLinkReachable(url string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		logrus.WithError(err).WithField("url", url).Debug("[MONITOR] Failed to build check request")
		return false
	}

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 400
}

func formatState(reachable bool) string {
	if reachable {
		return "REACHABLE"
	}
	return "UNREACHABLE"
}
