package ecoledirecte

import (
	"bytes"
	"encoding/json"
)

// Envelope is the provider's uniform response wrapper. Every endpoint
// answers with it, the payload sits under Data.
type Envelope struct {
	// Code is the provider's embedded status code. It is a pointer so a
	// body without the field can be told apart from an explicit zero.
	Code *int `json:"code"`

	// Token is issued on login responses and must be echoed on
	// authenticated calls. Empty elsewhere.
	Token string `json:"token"`

	// Message carries the provider's human-readable failure reason.
	Message string `json:"message"`

	// Data is the endpoint-specific payload, left raw for the mapper.
	Data json.RawMessage `json:"data"`
}

// StatusCode returns the embedded code, 0 when the field was absent.
func (e *Envelope) StatusCode() int {
	if e.Code == nil {
		return 0
	}
	return *e.Code
}

// HasData checks if the envelope carries a usable payload. An explicit
// JSON null counts as absent, the provider answers rejected challenge
// submissions that way.
func (e *Envelope) HasData() bool {
	trimmed := bytes.TrimSpace(e.Data)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// loginRequest is the form payload of both login steps. Credential values
// are form-quoted before marshalling, see formQuote.
type loginRequest struct {
	Identifiant string               `json:"identifiant"`
	Motdepasse  string               `json:"motdepasse"`
	IsRelogin   bool                 `json:"isRelogin"`
	FA          []verificationTokens `json:"fa,omitempty"`
}

// verificationTokens is the pair returned after a correctly answered
// challenge, echoed on the second login step.
type verificationTokens struct {
	CN string `json:"cn"`
	CV string `json:"cv"`
}

// challengeDTO is the security question payload, both fields base64.
type challengeDTO struct {
	Question     string   `json:"question"`
	Propositions []string `json:"propositions"`
}

// challengeAnswer is the form payload submitting a challenge answer.
type challengeAnswer struct {
	Choix string `json:"choix"`
}

// gradesRequest scopes a grades fetch to one school year.
type gradesRequest struct {
	AnneeScolaire string `json:"anneeScolaire"`
}

// lessonsRequest scopes a timetable fetch to a day span.
type lessonsRequest struct {
	DateDebut string `json:"dateDebut"`
	DateFin   string `json:"dateFin"`
	AvecTrous bool   `json:"avecTrous"`
}
