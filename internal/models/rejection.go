package models

import "strings"

// RejectionType identifies why a click was turned away. Policy rejections
// are expected, high-frequency outcomes: the participant is redirected to
// the rejection page with the type as a query parameter.
type RejectionType string

const (
	RejectionIP            RejectionType = "IP"
	RejectionTerminate     RejectionType = "TERMINATE"
	RejectionQuotaFull     RejectionType = "QUOTA_FULL"
	RejectionPaused        RejectionType = "PAUSED"
	RejectionClosed        RejectionType = "CLOSED"
	RejectionInternalError RejectionType = "INTERNAL_ERROR"
)

// RejectionPage is the human-readable content rendered for one rejection
// type.
type RejectionPage struct {
	Title    string
	IconType string
	Message  string
}

var rejectionCatalog = map[RejectionType]RejectionPage{
	RejectionIP: {
		Title:    "Location Mismatch",
		IconType: "error",
		Message: "We're sorry! This survey is not available from your current location. " +
			"It appears your IP address does not match the required country for this survey.",
	},
	RejectionTerminate: {
		Title:    "Survey Terminated",
		IconType: "warning",
		Message: "Thank you for your participation! Unfortunately, you do not qualify for " +
			"this particular survey. We appreciate your time and encourage you to check back " +
			"for other opportunities.",
	},
	RejectionQuotaFull: {
		Title:    "Survey Full",
		IconType: "info",
		Message: "This survey has reached its participation limit. We've received enough " +
			"responses for this survey. Thank you for your interest!",
	},
	RejectionPaused: {
		Title:    "Survey Temporarily Unavailable",
		IconType: "warning",
		Message: "This survey is currently paused. The survey you're trying to access is " +
			"temporarily unavailable. Please try again later.",
	},
	RejectionClosed: {
		Title:    "Survey Closed",
		IconType: "error",
		Message: "This survey is now closed. The survey period has ended and we are no " +
			"longer accepting responses. Thank you for your interest!",
	},
	RejectionInternalError: {
		Title:    "Something Went Wrong",
		IconType: "error",
		Message: "It's not you, it's us! We're experiencing technical difficulties at the " +
			"moment. Please try again later or contact our support team if the problem persists.",
	},
}

// ParseRejectionType maps a raw query value to a known rejection type.
// Unknown values fall back to INTERNAL_ERROR, mirroring the page handler's
// behavior of never failing to render something.
func ParseRejectionType(raw string) RejectionType {
	t := RejectionType(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := rejectionCatalog[t]; ok {
		return t
	}
	return RejectionInternalError
}

// PageFor returns the rejection page content for the given type.
func PageFor(t RejectionType) RejectionPage {
	if page, ok := rejectionCatalog[t]; ok {
		return page
	}
	return rejectionCatalog[RejectionInternalError]
}
