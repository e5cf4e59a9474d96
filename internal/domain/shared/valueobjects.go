package shared

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════
// Credentials Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Credentials carries the provider account username and password.
type Credentials struct {
	Username string
	Password string
}

// IsValid checks that both fields are present.
func (c Credentials) IsValid() bool {
	return strings.TrimSpace(c.Username) != "" && c.Password != ""
}

// String returns a loggable representation that never exposes the password.
func (c Credentials) String() string {
	return c.Username + ":***"
}

// NewCredentials creates new Credentials with validation. The password is
// kept verbatim, some providers accept significant whitespace in it.
func NewCredentials(username, password string) (Credentials, error) {
	c := Credentials{Username: strings.TrimSpace(username), Password: password}
	if !c.IsValid() {
		return Credentials{}, ErrEmptyCredentials
	}
	return c, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Token Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Token is the opaque bearer token the provider issues on login. It is
// forwarded verbatim on subsequent calls and never inspected.
type Token string

// IsEmpty checks if no token has been issued.
func (t Token) IsEmpty() bool {
	return t == ""
}

// String returns the string representation.
func (t Token) String() string {
	return string(t)
}

// ═══════════════════════════════════════════════════════════════════════════
// AccountKind Value Object
// ═══════════════════════════════════════════════════════════════════════════

// AccountKind is the provider's account type discriminator.
type AccountKind string

// AccountKindStudent marks an account owned by the student themselves.
// Any other value is treated as a family account with linked students.
const AccountKindStudent AccountKind = "E"

// IsStudent checks if the account belongs to a student directly.
func (k AccountKind) IsStudent() bool {
	return k == AccountKindStudent
}

// String returns the string representation.
func (k AccountKind) String() string {
	return string(k)
}

// ═══════════════════════════════════════════════════════════════════════════
// SchoolYear Value Object
// ═══════════════════════════════════════════════════════════════════════════

// SchoolYear represents a French school year ("2024-2025").
type SchoolYear string

// School year format: start year, dash, end year.
var schoolYearRegex = regexp.MustCompile(`^\d{4}-\d{4}$`)

// IsValid checks if the school year format is valid.
func (s SchoolYear) IsValid() bool {
	return schoolYearRegex.MatchString(string(s))
}

// String returns the string representation.
func (s SchoolYear) String() string {
	return string(s)
}

// StartYear extracts the first calendar year of the school year.
func (s SchoolYear) StartYear() int {
	if len(s) < 4 {
		return 0
	}
	year := 0
	fmt.Sscanf(string(s[:4]), "%d", &year)
	return year
}

// NewSchoolYear creates a new SchoolYear with validation.
func NewSchoolYear(value string) (SchoolYear, error) {
	s := SchoolYear(strings.TrimSpace(value))
	if !s.IsValid() {
		return "", NewDomainError("shared", "NewSchoolYear", ErrInvalidFormat, "invalid school year, expected YYYY-YYYY")
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// DateRange Value Object
// ═══════════════════════════════════════════════════════════════════════════

// DateRange represents an inclusive day span, used for timetable queries.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsValid checks if the range is usable.
func (d DateRange) IsValid() bool {
	return !d.Start.IsZero() && !d.End.IsZero() && !d.Start.After(d.End)
}

// Days returns the number of days the range covers, both ends included.
func (d DateRange) Days() int {
	return int(d.End.Sub(d.Start).Hours()/24) + 1
}

// Contains checks if a time falls within the range.
func (d DateRange) Contains(tm time.Time) bool {
	return (tm.Equal(d.Start) || tm.After(d.Start)) && (tm.Equal(d.End) || tm.Before(d.End))
}

// NewDateRange creates a new DateRange with validation.
func NewDateRange(start, end time.Time) (DateRange, error) {
	d := DateRange{Start: start, End: end}
	if !d.IsValid() {
		return DateRange{}, NewDomainError("shared", "NewDateRange", ErrInvalidInput, "'start' must not be after 'end'")
	}
	return d, nil
}
