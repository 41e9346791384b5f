package models

import "time"

// SurveyStatus is the lifecycle state of a single survey attempt.
// IN_PROGRESS is the sole initial state; the four terminal states are
// mutually exclusive and a record transitions out of IN_PROGRESS at most
// once, enforced by a conditional update in the repository layer.
type SurveyStatus string

const (
	StatusInProgress        SurveyStatus = "IN_PROGRESS"
	StatusComplete          SurveyStatus = "COMPLETE"
	StatusTerminate         SurveyStatus = "TERMINATE"
	StatusQuotafull         SurveyStatus = "QUOTAFULL"
	StatusSecurityTerminate SurveyStatus = "SECURITYTERMINATE"
)

// statusCounterColumns maps each terminal status to the counter column it
// increments, on both the projects table and the vendor-project aggregate.
// Adding a new outcome kind means adding one row here (and the columns).
var statusCounterColumns = map[SurveyStatus]struct {
	Project string
	Counts  string
}{
	StatusComplete:          {Project: "complete", Counts: "completed_surveys"},
	StatusTerminate:         {Project: "terminate", Counts: "terminated_surveys"},
	StatusQuotafull:         {Project: "quotafull", Counts: "quota_full_surveys"},
	StatusSecurityTerminate: {Project: "security_terminate", Counts: "security_terminate_surveys"},
}

// Terminal reports whether s is one of the four terminal statuses.
func (s SurveyStatus) Terminal() bool {
	_, ok := statusCounterColumns[s]
	return ok
}

// ProjectCounterColumn returns the projects table column that counts
// outcomes of this status.
func (s SurveyStatus) ProjectCounterColumn() (string, bool) {
	cols, ok := statusCounterColumns[s]
	return cols.Project, ok
}

// VendorCounterColumn returns the vendor-project aggregate column that
// counts outcomes of this status.
func (s SurveyStatus) VendorCounterColumn() (string, bool) {
	cols, ok := statusCounterColumns[s]
	return cols.Counts, ok
}

// SurveyResponse is one ledger record per survey attempt.
//
// The unique index on UID is the storage-level dedupe guarantee: two
// concurrent clicks with the same UID cannot both insert. The composite
// index on (ip_address, project_id) backs the one-attempt-per-IP-per-project
// check at intake. Records are never deleted.
type SurveyResponse struct {
	ID uint `gorm:"primaryKey"`

	// UID is the participant identifier supplied by the vendor at click time.
	UID string `gorm:"column:uid;uniqueIndex;size:64;not null"`

	// ProjectID is the owning project's ProjectIdentifier (not its row id).
	ProjectID string `gorm:"size:64;index:idx_responses_ip_project,priority:2"`

	VendorUsername string `gorm:"size:64"`

	// IPAddress is the source IP captured at intake. A resolution callback
	// arriving from a different IP is overridden to SECURITYTERMINATE.
	IPAddress string `gorm:"size:50;index:idx_responses_ip_project,priority:1"`

	// Country is the country code claimed by the vendor's click URL.
	Country string `gorm:"size:8"`

	Status SurveyStatus `gorm:"size:24;not null;default:IN_PROGRESS"`

	// StartTime and EndTime are civil times in the configured reporting
	// timezone. EndTime stays nil until the record reaches a terminal state.
	StartTime time.Time
	EndTime   *time.Time
}
