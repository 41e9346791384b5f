package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

// ProjectService provides the admin-facing operations on projects. It is
// simple data-access glue around the repositories: the outcome counters are
// never touched here, only by the resolution pipeline.
type ProjectService struct {
	projects repository.ProjectRepository
	vendors  repository.VendorRepository
	clients  repository.ClientRepository
}

// NewProjectService creates and returns a new instance of ProjectService.
func NewProjectService(
	projects repository.ProjectRepository,
	vendors repository.VendorRepository,
	clients repository.ClientRepository,
) *ProjectService {
	return &ProjectService{projects: projects, vendors: vendors, clients: clients}
}

// CreateProjectInput is what an admin supplies when commissioning a survey.
type CreateProjectInput struct {
	ProjectIdentifier string
	ClientID          uint
	Counts            int64
	CountryLinks      []models.CountryLink
	LOI               string
	IR                string
	CPI               string
}

// CreateProject creates a project with a freshly minted opaque token. The
// token goes into click URLs instead of the identifier so that live project
// ids cannot be enumerated.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if input.ProjectIdentifier == "" {
		return nil, errors.New("project identifier is required")
	}

	if input.ClientID != 0 {
		if _, err := s.clients.GetClientByID(input.ClientID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, customerrors.ErrClientNotFound
			}
			return nil, fmt.Errorf("failed to check owning client: %w", err)
		}
	}

	for i := range input.CountryLinks {
		input.CountryLinks[i].Position = i
	}

	project := &models.Project{
		ProjectIdentifier: input.ProjectIdentifier,
		Token:             uuid.NewString(),
		Status:            models.ProjectActive,
		Counts:            input.Counts,
		CountryLinks:      input.CountryLinks,
		ClientID:          input.ClientID,
		LOI:               input.LOI,
		IR:                input.IR,
		CPI:               input.CPI,
	}
	if err := s.projects.CreateProject(project); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject retrieves a project by its external identifier.
func (s *ProjectService) GetProject(identifier string) (*models.Project, error) {
	project, err := s.projects.GetProjectByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrProjectNotFound
		}
		return nil, err
	}
	return project, nil
}

// ListProjects returns all projects.
func (s *ProjectService) ListProjects() ([]models.Project, error) {
	return s.projects.GetAllProjects()
}

// ListProjectsByClient returns the projects owned by a client. Ownership is
// one-directional: this is an indexed lookup on Project.ClientID.
func (s *ProjectService) ListProjectsByClient(clientID uint) ([]models.Project, error) {
	return s.projects.GetProjectsByClientID(clientID)
}

// SetStatus toggles a project's lifecycle status.
func (s *ProjectService) SetStatus(identifier string, status models.ProjectStatus) error {
	switch status {
	case models.ProjectActive, models.ProjectInactive, models.ProjectClosed:
	default:
		return fmt.Errorf("unknown project status %q", status)
	}
	err := s.projects.UpdateProjectStatus(identifier, status)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return customerrors.ErrProjectNotFound
	}
	return err
}

// AssignVendor assigns a vendor to a project, keeping both sides' assignment
// lists in step.
func (s *ProjectService) AssignVendor(identifier, vendorUsername string) error {
	project, err := s.projects.GetProjectByIdentifier(identifier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customerrors.ErrProjectNotFound
		}
		return err
	}
	vendor, err := s.vendors.GetVendorByUsername(vendorUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customerrors.ErrVendorNotFound
		}
		return err
	}

	if !containsString(project.Vendors, vendor.Username) {
		if err := s.projects.UpdateProjectVendors(identifier, append(project.Vendors, vendor.Username)); err != nil {
			return err
		}
	}
	if !containsString(vendor.Projects, project.ProjectIdentifier) {
		if err := s.vendors.UpdateVendorProjects(vendorUsername, append(vendor.Projects, project.ProjectIdentifier)); err != nil {
			return err
		}
	}
	return nil
}

// CreateClient registers a commissioning client.
func (s *ProjectService) CreateClient(name, email, companyName string) (*models.Client, error) {
	if name == "" {
		return nil, errors.New("client name is required")
	}
	client := &models.Client{Name: name, Email: email, CompanyName: companyName}
	if err := s.clients.CreateClient(client); err != nil {
		return nil, err
	}
	return client, nil
}

// ListClients returns all registered clients.
func (s *ProjectService) ListClients() ([]models.Client, error) {
	return s.clients.GetAllClients()
}

func containsString(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
