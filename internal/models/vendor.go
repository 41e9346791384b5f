package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vendor represents a traffic supplier. The Token is the vendor's sole
// click credential: it is minted once at creation and never regenerated,
// and it authenticates inbound clicks without exposing the username.
type Vendor struct {
	ID uint `gorm:"primaryKey"`

	Username    string `gorm:"uniqueIndex;size:64;not null"`
	Email       string `gorm:"size:128"`
	CompanyName string `gorm:"size:128"`

	// Token is attached to every click link handed to this vendor.
	Token string `gorm:"uniqueIndex;size:64;not null"`

	// Per-status callback URL templates, each containing the UID placeholder.
	// One of these is invoked (best effort) after every status resolution.
	CompleteURL          string `json:"complete_url"`
	TerminateURL         string `json:"terminate_url"`
	QuotafullURL         string `json:"quotafull_url"`
	SecurityTerminateURL string `json:"security_terminate_url"`

	// Projects is the list of project identifiers assigned to this vendor.
	Projects []string `gorm:"serializer:json"`

	// Shown hides soft-removed vendors from listings without deleting the
	// rows their responses still reference.
	Shown bool `gorm:"default:true"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// vendorCallbackFields maps each terminal status to the accessor for the
// matching callback template, so the resolution pipeline never branches on
// the status kind.
var vendorCallbackFields = map[SurveyStatus]func(*Vendor) string{
	StatusComplete:          func(v *Vendor) string { return v.CompleteURL },
	StatusTerminate:         func(v *Vendor) string { return v.TerminateURL },
	StatusQuotafull:         func(v *Vendor) string { return v.QuotafullURL },
	StatusSecurityTerminate: func(v *Vendor) string { return v.SecurityTerminateURL },
}

// CallbackURL returns the callback template configured for the given
// terminal status, or ok=false when the status has no template field or
// the template is empty.
func (v *Vendor) CallbackURL(status SurveyStatus) (string, bool) {
	accessor, ok := vendorCallbackFields[status]
	if !ok {
		return "", false
	}
	url := accessor(v)
	return url, url != ""
}

// BeforeCreate mints the click token on first persist. An explicitly set
// token (fixtures, imports) is kept as is.
func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.Token == "" {
		v.Token = uuid.NewString()
	}
	return nil
}
