// Package services contains the business logic layer for the survey routing backend
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
	"github.com/amigo-insight/surveydash/internal/geoip"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

// UIDPlaceholder is the marker substituted with the participant UID in both
// survey link templates and vendor callback templates.
const UIDPlaceholder = "[UID]"

// SubstituteUID replaces every UID placeholder in a URL template.
func SubstituteUID(template, uid string) string {
	return strings.ReplaceAll(strings.TrimSpace(template), UIDPlaceholder, uid)
}

// ClickRequest carries everything the intake pipeline needs about one
// inbound vendor click.
type ClickRequest struct {
	UID          string // participant id supplied by the vendor, ledger dedupe key
	ProjectToken string // opaque project token from the click URL
	VendorToken  string // vendor's secret click token
	Country      string // country claimed by the click URL
	SourceIP     string // resolved client IP (forwarded-for aware)
}

// IntakeService validates an inbound vendor click, deduplicates it,
// geo-verifies it and creates the ledger record. Every policy failure comes
// back as a *customerrors.RejectionError; the only side effect of a
// successful run is one ledger insert.
type IntakeService struct {
	projects  repository.ProjectRepository
	vendors   repository.VendorRepository
	responses repository.ResponseRepository
	geo       geoip.Resolver
	failOpen  bool
	loc       *time.Location
}

// NewIntakeService creates and returns a new instance of IntakeService.
// failOpen controls how a geo-IP lookup failure is treated: true degrades it
// to "unknown country" (the click proceeds), false rejects the click.
func NewIntakeService(
	projects repository.ProjectRepository,
	vendors repository.VendorRepository,
	responses repository.ResponseRepository,
	geo geoip.Resolver,
	failOpen bool,
	loc *time.Location,
) *IntakeService {
	return &IntakeService{
		projects:  projects,
		vendors:   vendors,
		responses: responses,
		geo:       geo,
		failOpen:  failOpen,
		loc:       loc,
	}
}

// HandleClick runs the intake pipeline and returns the survey URL to redirect
// the participant to, with the UID substituted into the project's country
// link. Checks run cheapest-first: project/quota/vendor/status lookups before
// the geo call, and the IP-duplicate check after it since it needs the
// resolved IP to be trusted.
func (s *IntakeService) HandleClick(ctx context.Context, req ClickRequest) (string, error) {
	log := logrus.WithFields(logrus.Fields{
		"uid":     req.UID,
		"pid":     req.ProjectToken,
		"country": req.Country,
		"ip":      req.SourceIP,
	})
	log.Info("Received vendor click")

	// Step 1: resolve the project by its opaque token. An unknown token is
	// indistinguishable from a missing project so existence cannot be probed.
	project, err := s.projects.GetProjectByToken(req.ProjectToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Project not found for click token")
			return "", customerrors.Reject(models.RejectionTerminate, "unknown project token")
		}
		log.WithError(err).Error("Project lookup failed")
		return "", customerrors.Reject(models.RejectionInternalError, "project lookup failed")
	}

	// Step 2: quota gate, before anything expensive.
	if project.QuotaReached() {
		log.WithField("project", project.ProjectIdentifier).Warn("Project quota full")
		return "", customerrors.Reject(models.RejectionQuotaFull, "project quota reached")
	}

	// Step 3: resolve the vendor by its secret click token.
	vendor, err := s.vendors.GetVendorByToken(req.VendorToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("Vendor not found for click token")
			return "", customerrors.Reject(models.RejectionTerminate, "unknown vendor token")
		}
		log.WithError(err).Error("Vendor lookup failed")
		return "", customerrors.Reject(models.RejectionInternalError, "vendor lookup failed")
	}

	// Step 4: only ACTIVE projects take clicks. The two inactive sub-states
	// render different pages.
	if project.Status != models.ProjectActive {
		rejection := models.RejectionClosed
		if project.Status == models.ProjectInactive {
			rejection = models.RejectionPaused
		}
		log.WithField("status", project.Status).Warn("Project is not active")
		return "", customerrors.Reject(rejection, "project is not active")
	}

	// Step 5: one attempt per UID, ever.
	exists, err := s.responses.ExistsByUID(req.UID)
	if err != nil {
		log.WithError(err).Error("UID dedupe check failed")
		return "", customerrors.Reject(models.RejectionInternalError, "dedupe check failed")
	}
	if exists {
		log.Warn("Survey already attempted by this UID")
		return "", customerrors.Reject(models.RejectionTerminate, "duplicate participant uid")
	}

	// Step 6: geo-verify the source IP against the claimed country.
	countryCode, err := s.geo.CountryCode(ctx, req.SourceIP)
	if err != nil {
		if !s.failOpen {
			log.WithError(err).Warn("GeoIP lookup failed, rejecting (fail-closed)")
			return "", customerrors.Reject(models.RejectionIP, "geo verification unavailable")
		}
		log.WithError(err).Warn("GeoIP lookup failed, treating country as unknown")
		countryCode = ""
	}
	if countryCode != "" && !strings.EqualFold(countryCode, req.Country) {
		log.WithField("ip_country", countryCode).Warn("Country mismatch, blocking access")
		return "", customerrors.Reject(models.RejectionIP, "ip country does not match claimed country")
	}

	// Step 7: one attempt per IP per project, whatever the UID.
	attempts, err := s.responses.CountByIPAndProject(req.SourceIP, project.ProjectIdentifier)
	if err != nil {
		log.WithError(err).Error("IP dedupe check failed")
		return "", customerrors.Reject(models.RejectionInternalError, "dedupe check failed")
	}
	if attempts > 0 {
		log.Warn("Survey already attempted from this IP for this project")
		return "", customerrors.Reject(models.RejectionTerminate, "duplicate ip for project")
	}

	// Step 8: create the ledger record. The unique index on uid is the real
	// guard: losing a race with an identical concurrent click surfaces here
	// as a duplicate-key error and maps to the same rejection as step 5.
	response := &models.SurveyResponse{
		UID:            req.UID,
		ProjectID:      project.ProjectIdentifier,
		VendorUsername: vendor.Username,
		IPAddress:      req.SourceIP,
		Country:        req.Country,
		Status:         models.StatusInProgress,
		StartTime:      time.Now().In(s.loc),
	}
	if err := s.responses.CreateResponse(response); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			log.Warn("Lost uid race to a concurrent click")
			return "", customerrors.Reject(models.RejectionTerminate, "duplicate participant uid")
		}
		log.WithError(err).Error("Failed to save survey response")
		return "", customerrors.Reject(models.RejectionInternalError, "failed to persist response")
	}
	log.WithField("vendor", vendor.Username).Info("Survey response saved, status IN_PROGRESS")

	// Step 9: pick the project's survey link for the claimed country and
	// substitute the participant UID.
	if len(project.CountryLinks) == 0 {
		log.Error("Project has no country links configured")
		return "", customerrors.Reject(models.RejectionInternalError, "no survey links configured")
	}
	link, ok := project.LinkForCountry(req.Country)
	if !ok {
		log.Warn("No survey link configured for claimed country")
		return "", customerrors.Reject(models.RejectionTerminate, "no link for country")
	}

	redirectURL := SubstituteUID(link, req.UID)
	log.WithField("redirect", redirectURL).Info("Click accepted, redirecting to survey")
	return redirectURL, nil
}
