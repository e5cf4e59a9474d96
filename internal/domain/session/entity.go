package session

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session is the authenticated state returned by a successful login.
type Session struct {
	// Token is the bearer token the provider issued for this session.
	Token shared.Token

	// AccountID is the provider-side identifier of the account that logged in.
	AccountID int64

	// Username is the login identifier of the account.
	Username string

	// LoginID is the provider's secondary login identifier.
	LoginID int64

	// Kind discriminates student accounts from family accounts.
	Kind shared.AccountKind

	// Establishment is the school name attached to the account.
	Establishment string

	// Modules lists the codes of the provider modules enabled for this
	// account. Disabled modules are dropped at decode time.
	Modules []string

	// Students is the roster this account gives access to. For a student
	// account it holds exactly the account owner, for a family account it
	// holds the linked students.
	Students []Student
}

// HasModule checks if the given provider module is enabled for the account.
func (s *Session) HasModule(code string) bool {
	for _, m := range s.Modules {
		if m == code {
			return true
		}
	}
	return false
}

// Validate checks that the session is usable for authenticated calls.
func (s *Session) Validate() error {
	if s.Token.IsEmpty() {
		return shared.NewDomainError("session", "Validate", shared.ErrInvalidState, "session has no token")
	}
	if s.AccountID == 0 {
		return shared.NewDomainError("session", "Validate", shared.ErrInvalidState, "session has no account id")
	}
	return nil
}

// String returns a loggable representation. The token stays out of it.
func (s *Session) String() string {
	return fmt.Sprintf(
		"Session{Account: %d, Username: %s, Kind: %s, Students: %d}",
		s.AccountID, s.Username, s.Kind, len(s.Students),
	)
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is one student reachable through a session.
type Student struct {
	// ID is the provider-side student identifier, used in resource paths.
	ID int64

	// FirstName and LastName come verbatim from the provider.
	FirstName string
	LastName  string

	// Establishment is the school name, inherited from the account.
	Establishment string

	// ClassID and ClassName describe the student's class when the provider
	// exposes it. Both stay empty otherwise.
	ClassID   string
	ClassName string

	// Modules lists the enabled provider module codes for this student.
	Modules []string
}

// Non-letters in name slugs become underscores, one per character.
var nonLetter = regexp.MustCompile(`[^a-z]`)

// FullName returns the display name, first name first.
func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// FullNameSlug returns the lowercased underscore form of the full name used
// to derive stable operator-facing identifiers. Each name part is lowercased
// and every character outside a-z becomes a single underscore, then the
// parts are joined with an underscore.
func (s Student) FullNameSlug() string {
	first := nonLetter.ReplaceAllString(strings.ToLower(s.FirstName), "_")
	last := nonLetter.ReplaceAllString(strings.ToLower(s.LastName), "_")
	return first + "_" + last
}

// HasModule checks if the given provider module is enabled for the student.
func (s Student) HasModule(code string) bool {
	for _, m := range s.Modules {
		if m == code {
			return true
		}
	}
	return false
}

// Validate checks that the student record can be addressed in resource paths.
func (s Student) Validate() error {
	if s.ID == 0 {
		return shared.ErrMissingStudentID
	}
	return nil
}
