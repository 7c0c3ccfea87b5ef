// Package advisory holds the non-fatal diagnostics winify reports at the end
// of a run. An advisory never changes the exit status; it tells the user what
// did not fully work and what to do about it by hand.
package advisory

import (
	"github.com/rs/zerolog"
)

// Code identifies an advisory kind
type Code string

const (
	DesktopNotDetected Code = "desktop_not_detected"
	BelowMinimum       Code = "below_minimum_support"
	NewerThanTested    Code = "newer_than_tested"
	InstallFailed      Code = "install_failed"
	NotFoundAfterScan  Code = "not_found_after_rescan"
	EnableFailed       Code = "enable_failed"
	NotVerified        Code = "not_verified"
	ReloadFailed       Code = "reload_failed"
)

// Advisory is a user-facing, non-fatal diagnostic
type Advisory struct {
	Code        Code     `json:"code"`
	Message     string   `json:"message"`
	Remediation []string `json:"remediation,omitempty"`
}

// List accumulates advisories in the order they were raised
type List []Advisory

// Add appends an advisory and logs it as a warning
func (l *List) Add(logger zerolog.Logger, a Advisory) {
	logger.Warn().Str("advisory", string(a.Code)).Msg(a.Message)
	*l = append(*l, a)
}

// Has reports whether an advisory with code was raised
func (l List) Has(code Code) bool {
	for _, a := range l {
		if a.Code == code {
			return true
		}
	}
	return false
}
