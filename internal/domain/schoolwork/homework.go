// Package schoolwork holds the read-only projections of provider data a
// session gives access to: homework, grades, and timetable lessons.
//
// The records mirror the provider's JSON field-by-field. Every field is
// independently optional on the wire, text and scalar fields default to the
// empty string and flags to false when absent. Records carry no cross-record
// invariants and are rebuilt on every fetch, the caller owns them.
//
// Field names keep the provider's French vocabulary. Translating them
// invites drift between this library and the provider's documentation, and
// the JSON forms must stay byte-compatible with what hosts already consume.
package schoolwork

// Homework is one diary entry for a student.
type Homework struct {
	// Matiere is the subject display name.
	Matiere string `json:"matiere"`

	// CodeMatiere is the provider's short subject code.
	CodeMatiere string `json:"codeMatiere"`

	// AFaire is the assigned work. Depending on the endpoint the provider
	// sends it as a flag or as a nested document, nested forms collapse to
	// the empty string.
	AFaire string `json:"aFaire"`

	// DevoirID is the provider-side identifier of the assignment.
	DevoirID string `json:"idDevoir"`

	// DocumentsAFaire signals that documents must be handed in.
	DocumentsAFaire string `json:"documentsAFaire"`

	// DonneLe is the date the work was assigned.
	DonneLe string `json:"donneLe"`

	// PourLe is the date the work is due. It is not part of the provider
	// record, it comes from the request date or the grouping key of the
	// response.
	PourLe string `json:"pourLe"`

	// Effectue signals that the student marked the work done.
	Effectue string `json:"effectue"`

	// Interrogation signals an announced in-class test.
	Interrogation string `json:"interrogation"`

	// RendreEnLigne signals that the work is handed in online.
	RendreEnLigne string `json:"rendreEnLigne"`

	// NbJourMaxRenduDevoir is the submission window in days.
	NbJourMaxRenduDevoir string `json:"nbJourMaxRenduDevoir"`

	// Contenu is the session content attached to the entry.
	Contenu string `json:"contenu"`
}

// IsDone checks if the student marked the work done.
func (h Homework) IsDone() bool {
	return h.Effectue == "true"
}

// IsTest checks if the entry announces an in-class test.
func (h Homework) IsTest() bool {
	return h.Interrogation == "true"
}
