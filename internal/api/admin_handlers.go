package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/services"
)

// The handlers below are thin admin glue over the services: create and list
// projects, vendors and clients, toggle project status, assign vendors and
// read the reporting views. The click pipelines never go through them.

// CreateProjectRequest is the JSON body for commissioning a project.
type CreateProjectRequest struct {
	ProjectIdentifier string `json:"project_identifier" binding:"required"`
	ClientID          uint   `json:"client_id"`
	Counts            int64  `json:"counts" binding:"required"`
	LOI               string `json:"loi"`
	IR                string `json:"ir"`
	CPI               string `json:"cpi"`
	CountryLinks      []struct {
		Country string `json:"country" binding:"required"`
		Link    string `json:"link" binding:"required,url"`
	} `json:"country_links" binding:"required,dive"`
}

// CreateProjectHandler creates a project and returns it with its freshly
// minted click token.
func CreateProjectHandler(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		links := make([]models.CountryLink, 0, len(req.CountryLinks))
		for _, l := range req.CountryLinks {
			links = append(links, models.CountryLink{Country: l.Country, OriginalLink: l.Link})
		}

		project, err := projects.CreateProject(services.CreateProjectInput{
			ProjectIdentifier: req.ProjectIdentifier,
			ClientID:          req.ClientID,
			Counts:            req.Counts,
			CountryLinks:      links,
			LOI:               req.LOI,
			IR:                req.IR,
			CPI:               req.CPI,
		})
		if err != nil {
			if errors.Is(err, customerrors.ErrClientNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Client not found"})
				return
			}
			logrus.WithError(err).Error("Failed to create project")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"project_identifier": project.ProjectIdentifier,
			"token":              project.Token,
			"status":             project.Status,
			"counts":             project.Counts,
		})
	}
}

// ListProjectsHandler returns all projects.
func ListProjectsHandler(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := projects.ListProjects()
		if err != nil {
			logrus.WithError(err).Error("Failed to list projects")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, all)
	}
}

// GetProjectHandler returns one project by its external identifier.
func GetProjectHandler(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		project, err := projects.GetProject(c.Param("id"))
		if err != nil {
			if errors.Is(err, customerrors.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			logrus.WithError(err).Error("Failed to load project")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, project)
	}
}

// ProjectStatsHandler returns the reporting view of one project.
func ProjectStatsHandler(reporting *services.ReportingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := reporting.GetProjectStats(c.Param("id"))
		if err != nil {
			if errors.Is(err, customerrors.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			logrus.WithError(err).Error("Failed to load project stats")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, stats)
	}
}

// SetProjectStatusHandler toggles a project's lifecycle status.
func SetProjectStatusHandler(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status models.ProjectStatus `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
			return
		}
		if err := projects.SetStatus(c.Param("id"), req.Status); err != nil {
			if errors.Is(err, customerrors.ErrProjectNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
				return
			}
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"project_identifier": c.Param("id"), "status": req.Status})
	}
}

// AssignVendorHandler assigns a vendor to a project.
func AssignVendorHandler(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
			return
		}
		if err := projects.AssignVendor(c.Param("id"), req.Username); err != nil {
			switch {
			case errors.Is(err, customerrors.ErrProjectNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
			case errors.Is(err, customerrors.ErrVendorNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
			default:
				logrus.WithError(err).Error("Failed to assign vendor")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"project_identifier": c.Param("id"), "vendor": req.Username})
	}
}

// CreateVendorRequest is the JSON body for onboarding a vendor.
type CreateVendorRequest struct {
	Username             string `json:"username" binding:"required"`
	Email                string `json:"email" binding:"omitempty,email"`
	CompanyName          string `json:"company_name"`
	CompleteURL          string `json:"complete_url" binding:"omitempty,url"`
	TerminateURL         string `json:"terminate_url" binding:"omitempty,url"`
	QuotafullURL         string `json:"quotafull_url" binding:"omitempty,url"`
	SecurityTerminateURL string `json:"security_terminate_url" binding:"omitempty,url"`
}

// CreateVendorHandler creates a vendor and returns it with its click token.
// The token is shown once here so the admin can build the vendor's links.
func CreateVendorHandler(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateVendorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		vendor, err := vendors.CreateVendor(services.CreateVendorInput{
			Username:             req.Username,
			Email:                req.Email,
			CompanyName:          req.CompanyName,
			CompleteURL:          req.CompleteURL,
			TerminateURL:         req.TerminateURL,
			QuotafullURL:         req.QuotafullURL,
			SecurityTerminateURL: req.SecurityTerminateURL,
		})
		if err != nil {
			logrus.WithError(err).Error("Failed to create vendor")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vendor"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"username": vendor.Username,
			"token":    vendor.Token,
		})
	}
}

// ListVendorsHandler returns all visible vendors.
func ListVendorsHandler(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		all, err := vendors.ListVendors()
		if err != nil {
			logrus.WithError(err).Error("Failed to list vendors")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, all)
	}
}

// HideVendorHandler hides a vendor from listings without deleting its data
// or invalidating its click token.
func HideVendorHandler(vendors *services.VendorService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := vendors.HideVendor(c.Param("username")); err != nil {
			if errors.Is(err, customerrors.ErrVendorNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
				return
			}
			logrus.WithError(err).Error("Failed to hide vendor")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"username": c.Param("username"), "shown": false})
	}
}

// CreateClientHandler registers a commissioning client.
func CreateClientHandler(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Name        string `json:"name" binding:"required"`
			Email       string `json:"email" binding:"omitempty,email"`
			CompanyName string `json:"company_name"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		client, err := projects.CreateClient(req.Name, req.Email, req.CompanyName)
		if err != nil {
			logrus.WithError(err).Error("Failed to create client")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create client"})
			return
		}
		c.JSON(http.StatusCreated, client)
	}
}

// ClientProjectsHandler lists the projects owned by a client.
func ClientProjectsHandler(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid client id"})
			return
		}
		owned, err := projects.ListProjectsByClient(uint(id))
		if err != nil {
			logrus.WithError(err).Error("Failed to list client projects")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, owned)
	}
}

// ListClientsHandler returns all registered clients.
func ListClientsHandler(projects *services.ProjectService) gin.HandlerFunc {
	return func(c *gin.Context) {
		clients, err := projects.ListClients()
		if err != nil {
			logrus.WithError(err).Error("Failed to list clients")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, clients)
	}
}

// ListResponsesHandler returns the whole ledger, most recent first.
func ListResponsesHandler(reporting *services.ReportingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		responses, err := reporting.ListResponses()
		if err != nil {
			logrus.WithError(err).Error("Failed to list responses")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, responses)
	}
}

// VendorCountsHandler returns the per-(vendor, project) aggregates,
// optionally filtered by either key.
func VendorCountsHandler(reporting *services.ReportingService) gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := reporting.VendorCounts(c.Query("vendor"), c.Query("project"))
		if err != nil {
			logrus.WithError(err).Error("Failed to load vendor counts")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, counts)
	}
}
