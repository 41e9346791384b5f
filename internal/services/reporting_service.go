package services

import (
	"errors"

	"gorm.io/gorm"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

// ReportingService exposes the read-only views over the ledger and the
// vendor-project aggregates. It never mutates counters.
type ReportingService struct {
	responses repository.ResponseRepository
	counts    repository.CountsRepository
	projects  repository.ProjectRepository
}

// NewReportingService creates and returns a new instance of ReportingService.
func NewReportingService(
	responses repository.ResponseRepository,
	counts repository.CountsRepository,
	projects repository.ProjectRepository,
) *ReportingService {
	return &ReportingService{responses: responses, counts: counts, projects: projects}
}

// ListResponses returns every ledger record, most recent first.
func (s *ReportingService) ListResponses() ([]models.SurveyResponse, error) {
	return s.responses.GetAllResponses()
}

// VendorCounts returns the aggregates filtered by vendor and/or project;
// both filters empty returns everything.
func (s *ReportingService) VendorCounts(vendorUsername, projectID string) ([]models.ProjectVendorCounts, error) {
	switch {
	case vendorUsername != "" && projectID != "":
		counts, err := s.counts.GetCounts(vendorUsername, projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return []models.ProjectVendorCounts{}, nil
			}
			return nil, err
		}
		return []models.ProjectVendorCounts{*counts}, nil
	case projectID != "":
		return s.counts.GetCountsByProject(projectID)
	default:
		return s.counts.GetAllCounts()
	}
}

// ProjectStats is the reporting view of one project: its outcome counters,
// the ledger size and the per-vendor breakdown.
type ProjectStats struct {
	ProjectIdentifier string                       `json:"project_identifier"`
	Status            models.ProjectStatus         `json:"status"`
	Counts            int64                        `json:"counts"`
	Complete          int64                        `json:"complete"`
	Terminate         int64                        `json:"terminate"`
	Quotafull         int64                        `json:"quotafull"`
	SecurityTerminate int64                        `json:"security_terminate"`
	TotalResponses    int64                        `json:"total_responses"`
	VendorCounts      []models.ProjectVendorCounts `json:"vendor_counts"`
}

// GetProjectStats assembles the stats view for a project identifier.
func (s *ReportingService) GetProjectStats(identifier string) (*ProjectStats, error) {
	project, err := s.projects.GetProjectByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrProjectNotFound
		}
		return nil, err
	}

	total, err := s.responses.CountByProject(identifier)
	if err != nil {
		return nil, err
	}
	vendorCounts, err := s.counts.GetCountsByProject(identifier)
	if err != nil {
		return nil, err
	}

	return &ProjectStats{
		ProjectIdentifier: project.ProjectIdentifier,
		Status:            project.Status,
		Counts:            project.Counts,
		Complete:          project.Complete,
		Terminate:         project.Terminate,
		Quotafull:         project.Quotafull,
		SecurityTerminate: project.SecurityTerminate,
		TotalResponses:    total,
		VendorCounts:      vendorCounts,
	}, nil
}
