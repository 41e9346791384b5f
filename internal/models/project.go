package models

import (
	"strings"
	"time"
)

// ProjectStatus represents the lifecycle state of a survey project.
// Only ACTIVE projects accept new clicks; INACTIVE projects are paused
// by an admin and CLOSED projects have ended permanently.
type ProjectStatus string

const (
	ProjectActive   ProjectStatus = "ACTIVE"
	ProjectInactive ProjectStatus = "INACTIVE"
	ProjectClosed   ProjectStatus = "CLOSED"
)

// Project represents a commissioned survey with its per-country links,
// quota target and outcome counters.
//
// The outcome counters (Complete, Terminate, Quotafull, SecurityTerminate)
// are mutated only by the status resolution pipeline, through single-statement
// atomic increments in the repository layer. Everything else is admin-managed.
type Project struct {
	ID uint `gorm:"primaryKey"`

	// ProjectIdentifier is the externally exposed, human-readable identifier.
	ProjectIdentifier string `gorm:"uniqueIndex;size:64;not null"`

	// Token is the opaque identifier embedded in vendor click URLs instead of
	// ProjectIdentifier, so that project ids cannot be enumerated.
	Token string `gorm:"uniqueIndex;size:64;not null"`

	Status ProjectStatus `gorm:"size:16;not null;default:ACTIVE"`

	// Counts is the quota target: the project stops accepting clicks once
	// Complete reaches it.
	Counts int64

	Complete          int64
	Terminate         int64
	Quotafull         int64
	SecurityTerminate int64

	// CountryLinks holds the ordered (country, survey link) pairs. Each link
	// contains the UID placeholder that gets substituted at redirect time.
	CountryLinks []CountryLink `gorm:"foreignKey:ProjectID"`

	// Vendors is the list of vendor usernames assigned to this project.
	Vendors []string `gorm:"serializer:json"`

	// ClientID references the owning client. Ownership is one-directional:
	// "projects of a client" is an indexed lookup, the client holds no list.
	ClientID uint `gorm:"index"`

	LOI string `gorm:"size:32"`
	IR  string `gorm:"size:32"`
	CPI string `gorm:"size:32"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

// CountryLink is one (country, survey link) pair of a project.
type CountryLink struct {
	ID           uint   `gorm:"primaryKey"`
	ProjectID    uint   `gorm:"index"`
	Country      string `gorm:"size:8;not null"`
	OriginalLink string `gorm:"not null"`
	Position     int
}

// QuotaReached reports whether the project has collected enough completes.
func (p *Project) QuotaReached() bool {
	return p.Complete >= p.Counts
}

// LinkForCountry returns the survey link configured for the given country
// code. The match is case-insensitive; the first matching link wins.
func (p *Project) LinkForCountry(country string) (string, bool) {
	for _, l := range p.CountryLinks {
		if strings.EqualFold(l.Country, country) {
			return l.OriginalLink, true
		}
	}
	return "", false
}
