package models

// ProjectVendorCounts aggregates outcome counts per (vendor, project) pair.
// Rows are created lazily on the first outcome for a pair and the counters
// only ever go up; reporting surfaces read them but never write.
type ProjectVendorCounts struct {
	ID uint `gorm:"primaryKey"`

	VendorUsername string `gorm:"size:64;not null;uniqueIndex:idx_vendor_project,priority:1"`
	ProjectID      string `gorm:"size:64;not null;uniqueIndex:idx_vendor_project,priority:2"`

	CompletedSurveys         int64
	TerminatedSurveys        int64
	QuotaFullSurveys         int64
	SecurityTerminateSurveys int64
}

// statusCountsSeed maps each terminal status to the setter used when a
// (vendor, project) row is first created with its initial count of one.
var statusCountsSeed = map[SurveyStatus]func(*ProjectVendorCounts){
	StatusComplete:          func(c *ProjectVendorCounts) { c.CompletedSurveys = 1 },
	StatusTerminate:         func(c *ProjectVendorCounts) { c.TerminatedSurveys = 1 },
	StatusQuotafull:         func(c *ProjectVendorCounts) { c.QuotaFullSurveys = 1 },
	StatusSecurityTerminate: func(c *ProjectVendorCounts) { c.SecurityTerminateSurveys = 1 },
}

// NewProjectVendorCounts builds the row inserted when a pair records its
// first outcome: the matching counter starts at one, the rest at zero.
func NewProjectVendorCounts(vendorUsername, projectID string, status SurveyStatus) (*ProjectVendorCounts, bool) {
	seed, ok := statusCountsSeed[status]
	if !ok {
		return nil, false
	}
	row := &ProjectVendorCounts{
		VendorUsername: vendorUsername,
		ProjectID:      projectID,
	}
	seed(row)
	return row, true
}
