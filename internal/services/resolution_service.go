package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	customerrors "github.com/amigo-insight/surveydash/internal/errors"
	"github.com/amigo-insight/surveydash/internal/models"
	"github.com/amigo-insight/surveydash/internal/repository"
)

// ResolutionOutcome describes what a resolution call actually did.
type ResolutionOutcome string

const (
	// OutcomeNoMatch: no ledger record exists for the UID. Benign to the
	// caller, observable as "no match".
	OutcomeNoMatch ResolutionOutcome = "no_match"
	// OutcomeAlreadyResolved: the record already left IN_PROGRESS. Makes the
	// endpoints idempotent against vendor retries.
	OutcomeAlreadyResolved ResolutionOutcome = "already_resolved"
	// OutcomeResolved: this call performed the one and only transition.
	OutcomeResolved ResolutionOutcome = "resolved"
)

// ResolutionResult is what a terminal callback produced. NotifyError is the
// only place where partial success shows: ledger and counters commit even
// when the vendor callback leg fails.
type ResolutionResult struct {
	Outcome     ResolutionOutcome
	UID         string
	ProjectID   string
	FinalStatus models.SurveyStatus
	EndTime     time.Time
	NotifyError string
}

// ResolutionService receives a terminal callback, applies the one-way
// IN_PROGRESS -> terminal transition, bumps the project and vendor-project
// counters and fires the vendor notification.
type ResolutionService struct {
	responses repository.ResponseRepository
	projects  repository.ProjectRepository
	vendors   repository.VendorRepository
	counts    repository.CountsRepository
	notifier  *VendorNotifier
	loc       *time.Location
}

// NewResolutionService creates and returns a new instance of ResolutionService.
func NewResolutionService(
	responses repository.ResponseRepository,
	projects repository.ProjectRepository,
	vendors repository.VendorRepository,
	counts repository.CountsRepository,
	notifier *VendorNotifier,
	loc *time.Location,
) *ResolutionService {
	return &ResolutionService{
		responses: responses,
		projects:  projects,
		vendors:   vendors,
		counts:    counts,
		notifier:  notifier,
		loc:       loc,
	}
}

// Resolve runs the status resolution pipeline for one terminal callback.
//
// callbackIP is the resolved source IP of the callback request: when it
// differs from the IP captured at intake the requested status is overridden
// to SECURITYTERMINATE whatever endpoint was called. The IN_PROGRESS check
// and the terminal write are a single conditional update, so two concurrent
// callbacks for the same UID cannot both resolve.
func (s *ResolutionService) Resolve(ctx context.Context, uid string, requested models.SurveyStatus, callbackIP string) (*ResolutionResult, error) {
	log := logrus.WithFields(logrus.Fields{"uid": uid, "status": requested})

	if !requested.Terminal() {
		return nil, fmt.Errorf("status %s is not a terminal status", requested)
	}

	// Step 1: look up the ledger record.
	record, err := s.responses.GetResponseByUID(uid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Info("No survey response for UID, nothing to resolve")
			return &ResolutionResult{Outcome: OutcomeNoMatch, UID: uid}, nil
		}
		return nil, fmt.Errorf("failed to load response for %s: %w", uid, err)
	}

	// Step 2: the owning project must exist; a miss means referential
	// corruption, which is fatal and surfaces as not-found to the caller.
	if _, err := s.projects.GetProjectByIdentifier(record.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to load project %s: %w", record.ProjectID, err)
	}

	// Step 3: already-terminal records are a benign no-op.
	if record.Status != models.StatusInProgress {
		log.WithField("current", record.Status).Info("Response already resolved")
		return &ResolutionResult{Outcome: OutcomeAlreadyResolved, UID: uid, ProjectID: record.ProjectID}, nil
	}

	// Step 4: hijack defense. A callback arriving from a different IP than
	// the click is resolved as SECURITYTERMINATE regardless of the endpoint.
	final := requested
	if record.IPAddress != callbackIP {
		log.WithFields(logrus.Fields{
			"intake_ip":   record.IPAddress,
			"callback_ip": callbackIP,
		}).Warn("IP address changed between click and callback, overriding to security terminate")
		final = models.StatusSecurityTerminate
	}

	// Step 5: one-way transition, compare-and-set on the status.
	endTime := time.Now().In(s.loc)
	applied, err := s.responses.ResolveIfInProgress(uid, final, endTime)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent callback won the transition between the read above
		// and this write.
		log.Info("Response resolved concurrently, treating as already resolved")
		return &ResolutionResult{Outcome: OutcomeAlreadyResolved, UID: uid, ProjectID: record.ProjectID}, nil
	}

	// Step 6: bump the project outcome counter matching the final status.
	column, _ := final.ProjectCounterColumn()
	if err := s.projects.IncrementProjectCounter(record.ProjectID, column); err != nil {
		return nil, fmt.Errorf("response %s resolved but project counter update failed: %w", uid, err)
	}
	log.WithFields(logrus.Fields{"project": record.ProjectID, "counter": column}).Info("Incremented project counter")

	// Step 7: bump the per-(vendor, project) aggregate, creating the row on
	// the pair's first outcome.
	if err := s.counts.IncrementCounts(record.VendorUsername, record.ProjectID, final); err != nil {
		return nil, fmt.Errorf("response %s resolved but vendor counts update failed: %w", uid, err)
	}

	result := &ResolutionResult{
		Outcome:     OutcomeResolved,
		UID:         uid,
		ProjectID:   record.ProjectID,
		FinalStatus: final,
		EndTime:     endTime,
	}

	// Step 8: best-effort vendor notification. Everything above is already
	// committed; a failure here is only reported.
	if err := s.notifyVendor(ctx, record.VendorUsername, final, uid); err != nil {
		log.WithError(err).Warn("Vendor notification failed")
		result.NotifyError = err.Error()
	}
	return result, nil
}

// notifyVendor resolves the vendor's callback template for the final status,
// substitutes the UID and fires the single callback attempt.
func (s *ResolutionService) notifyVendor(ctx context.Context, vendorUsername string, status models.SurveyStatus, uid string) error {
	vendor, err := s.vendors.GetVendorByUsername(vendorUsername)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return customerrors.ErrVendorNotFound
		}
		return fmt.Errorf("failed to load vendor %s: %w", vendorUsername, err)
	}

	template, ok := vendor.CallbackURL(status)
	if !ok {
		return customerrors.ErrNoCallbackConfigured{VendorUsername: vendorUsername, Status: status}
	}

	return s.notifier.Notify(ctx, SubstituteUID(template, uid))
}
