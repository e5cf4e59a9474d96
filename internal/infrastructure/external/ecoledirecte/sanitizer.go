package ecoledirecte

import "github.com/microcosm-cc/bluemonday"

// Sanitizer strips unsafe markup from provider-sourced rich text. Homework
// content is teacher-authored HTML and gets rendered by host dashboards,
// so scripts and event handlers must not survive the trip.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer builds a Sanitizer around the UGC policy: basic formatting
// and links stay, active content goes.
func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// Clean returns the sanitized form of the input.
func (s *Sanitizer) Clean(input string) string {
	return s.policy.Sanitize(input)
}
