package errors

import (
	"errors"
	"fmt"

	"github.com/amigo-insight/surveydash/internal/models"
)

// Custom error types for the survey routing backend

// ErrProjectNotFound is returned when no project matches a given identifier or token
var ErrProjectNotFound = errors.New("project not found")

// ErrVendorNotFound is returned when no vendor matches a given username or click token
var ErrVendorNotFound = errors.New("vendor not found")

// ErrClientNotFound is returned when no client matches a given id
var ErrClientNotFound = errors.New("client not found")

// RejectionError signals that a click must be turned away with one of the
// catalogued rejection types. It is an expected outcome, not a failure:
// handlers translate it into a redirect to the rejection page.
type RejectionError struct {
	Type   models.RejectionType
	Reason string
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("survey click rejected (%s): %s", e.Type, e.Reason)
}

// Reject builds a RejectionError for the given type and reason.
func Reject(t models.RejectionType, reason string) *RejectionError {
	return &RejectionError{Type: t, Reason: reason}
}

// ErrNotifyFailed is returned when the vendor callback could not be delivered.
// The ledger and counter updates stay committed; this only describes the
// best-effort notification leg.
type ErrNotifyFailed struct {
	URL    string
	Reason string
}

func (e ErrNotifyFailed) Error() string {
	return fmt.Sprintf("failed to notify vendor at %s: %s", e.URL, e.Reason)
}

// ErrNoCallbackConfigured is returned when a vendor has no callback URL
// template for the resolved terminal status.
type ErrNoCallbackConfigured struct {
	VendorUsername string
	Status         models.SurveyStatus
}

func (e ErrNoCallbackConfigured) Error() string {
	return fmt.Sprintf("no vendor callback configured for %s (status %s)", e.VendorUsername, e.Status)
}
