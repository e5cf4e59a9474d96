package ecoledirecte

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/schoolwork"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/session"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MAPPER
// ══════════════════════════════════════════════════════════════════════════════

// Mapper converts provider payloads into domain records.
//
// Record mapping is total: a field that is missing or arrives with an
// unexpected type becomes the type-appropriate default, never an error.
// The provider reshapes its payloads between releases and a drifted
// optional field must not break hosts.
type Mapper struct {
	sanitizer *Sanitizer
}

// NewMapper creates a Mapper. A nil sanitizer passes rich-text fields
// through verbatim.
func NewMapper(sanitizer *Sanitizer) *Mapper {
	return &Mapper{sanitizer: sanitizer}
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// SessionFromLogin builds the established session from a successful login
// envelope. The first account owns the session; a student account exposes
// itself as the single reachable student, a family account exposes its
// linked students.
func (m *Mapper) SessionFromLogin(env *Envelope) (*session.Session, error) {
	if !env.HasData() {
		return nil, shared.ErrNoAccounts
	}

	var data struct {
		Accounts []record `json:"accounts"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, shared.WrapError(domainName, "SessionFromLogin", shared.ErrTransport,
			"decode login data", err)
	}
	if len(data.Accounts) == 0 {
		return nil, shared.ErrNoAccounts
	}
	account := data.Accounts[0]

	sess := &session.Session{
		Token:         shared.Token(env.Token),
		AccountID:     account.integer("id"),
		Username:      account.str("identifiant"),
		LoginID:       account.integer("idLogin"),
		Kind:          shared.AccountKind(account.str("typeCompte")),
		Establishment: account.str("nomEtablissement"),
		Modules:       enabledModules(account.list("modules")),
	}

	if sess.Kind.IsStudent() {
		classe := account.child("profile").child("classe")
		sess.Students = []session.Student{{
			ID:            sess.AccountID,
			FirstName:     account.str("prenom"),
			LastName:      account.str("nom"),
			Establishment: sess.Establishment,
			ClassID:       classe.str("id"),
			ClassName:     classe.str("libelle"),
			Modules:       sess.Modules,
		}}
		return sess, nil
	}

	for _, eleve := range account.child("profile").list("eleves") {
		sess.Students = append(sess.Students, m.StudentFromRecord(eleve, sess.Establishment))
	}
	return sess, nil
}

// StudentFromRecord maps one linked-student record of a family account.
// Each linked student carries their own module list.
func (m *Mapper) StudentFromRecord(rec map[string]any, establishment string) session.Student {
	r := record(rec)
	classe := r.child("classe")
	return session.Student{
		ID:            r.integer("id"),
		FirstName:     r.str("prenom"),
		LastName:      r.str("nom"),
		Establishment: establishment,
		ClassID:       classe.str("id"),
		ClassName:     classe.str("libelle"),
		Modules:       enabledModules(r.list("modules")),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHOOL DATA
// ══════════════════════════════════════════════════════════════════════════════

// HomeworksForDate maps the single-day diary payload. The records do not
// repeat the due date, the caller supplies the day it asked for.
func (m *Mapper) HomeworksForDate(data json.RawMessage, pourLe string) ([]schoolwork.Homework, error) {
	var payload struct {
		Matieres []record `json:"matieres"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, shared.WrapError(domainName, "HomeworksForDate", shared.ErrTransport,
			"decode homework payload", err)
	}

	homeworks := make([]schoolwork.Homework, 0, len(payload.Matieres))
	for _, rec := range payload.Matieres {
		homeworks = append(homeworks, m.HomeworkFromRecord(rec, pourLe))
	}
	return homeworks, nil
}

// HomeworksFromDiary maps the full-diary payload, a map of due date to
// record list. Dates are walked in order so repeated calls yield the same
// slice.
func (m *Mapper) HomeworksFromDiary(data json.RawMessage) ([]schoolwork.Homework, error) {
	var byDate map[string]json.RawMessage
	if err := json.Unmarshal(data, &byDate); err != nil {
		return nil, shared.WrapError(domainName, "HomeworksFromDiary", shared.ErrTransport,
			"decode homework diary", err)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	var homeworks []schoolwork.Homework
	for _, date := range dates {
		var records []record
		if err := json.Unmarshal(byDate[date], &records); err != nil {
			// Not a record list, e.g. a metadata key sharing the map.
			continue
		}
		for _, rec := range records {
			homeworks = append(homeworks, m.HomeworkFromRecord(rec, date))
		}
	}
	return homeworks, nil
}

// HomeworkFromRecord maps one diary record filed under the given due date.
func (m *Mapper) HomeworkFromRecord(rec map[string]any, pourLe string) schoolwork.Homework {
	r := record(rec)
	return schoolwork.Homework{
		Matiere:              r.str("matiere"),
		CodeMatiere:          r.str("codeMatiere"),
		AFaire:               r.str("aFaire"),
		DevoirID:             r.str("idDevoir"),
		DocumentsAFaire:      r.str("documentsAFaire"),
		DonneLe:              r.str("donneLe"),
		PourLe:               pourLe,
		Effectue:             r.str("effectue"),
		Interrogation:        r.str("interrogation"),
		RendreEnLigne:        r.str("rendreEnLigne"),
		NbJourMaxRenduDevoir: r.str("nbJourMaxRenduDevoir"),
		Contenu:              m.richText(r.str("contenu")),
	}
}

// GradesFromData maps the school-year grades payload, records under
// data.notes.
func (m *Mapper) GradesFromData(data json.RawMessage) ([]schoolwork.Grade, error) {
	var payload struct {
		Notes []record `json:"notes"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, shared.WrapError(domainName, "GradesFromData", shared.ErrTransport,
			"decode grades payload", err)
	}

	grades := make([]schoolwork.Grade, 0, len(payload.Notes))
	for _, rec := range payload.Notes {
		grades = append(grades, m.GradeFromRecord(rec))
	}
	return grades, nil
}

// GradeFromRecord maps one grade record.
func (m *Mapper) GradeFromRecord(rec map[string]any) schoolwork.Grade {
	r := record(rec)
	return schoolwork.Grade{
		ID:                r.str("id"),
		Devoir:            r.str("devoir"),
		CodePeriode:       r.str("codePeriode"),
		CodeMatiere:       r.str("codeMatiere"),
		LibelleMatiere:    r.str("libelleMatiere"),
		CodeSousMatiere:   r.str("codeSousMatiere"),
		TypeDevoir:        r.str("typeDevoir"),
		EnLettre:          r.str("enLettre"),
		Commentaire:       r.str("commentaire"),
		UncSujet:          r.str("uncSujet"),
		UncCorrige:        r.str("uncCorrige"),
		Coef:              r.str("coef"),
		NoteSur:           r.str("noteSur"),
		Valeur:            r.str("valeur"),
		NonSignificatif:   r.str("nonSignificatif"),
		Valeurisee:        r.str("valeurisee"),
		Date:              r.str("date"),
		DateSaisie:        r.str("dateSaisie"),
		MoyenneClasse:     r.str("moyenneClasse"),
		MinClasse:         r.str("minClasse"),
		MaxClasse:         r.str("maxClasse"),
		ElementsProgramme: r.str("elementsProgramme"),
	}
}

// LessonsFromData maps the timetable payload, a bare record list.
func (m *Mapper) LessonsFromData(data json.RawMessage) ([]schoolwork.Lesson, error) {
	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, shared.WrapError(domainName, "LessonsFromData", shared.ErrTransport,
			"decode timetable payload", err)
	}

	lessons := make([]schoolwork.Lesson, 0, len(records))
	for _, rec := range records {
		lessons = append(lessons, m.LessonFromRecord(rec))
	}
	return lessons, nil
}

// LessonFromRecord maps one timetable record.
func (m *Mapper) LessonFromRecord(rec map[string]any) schoolwork.Lesson {
	r := record(rec)
	return schoolwork.Lesson{
		ID:              r.str("id"),
		Text:            r.str("text"),
		Matiere:         r.str("matiere"),
		CodeMatiere:     r.str("codeMatiere"),
		TypeCours:       r.str("typeCours"),
		StartDate:       r.str("start_date"),
		EndDate:         r.str("end_date"),
		Color:           r.str("color"),
		Dispense:        r.str("dispense"),
		Prof:            r.str("prof"),
		Salle:           r.str("salle"),
		Classe:          r.str("classe"),
		ClasseID:        r.str("classeId"),
		ClasseCode:      r.str("classeCode"),
		Groupe:          r.str("groupe"),
		GroupeCode:      r.str("groupeCode"),
		GroupeID:        r.str("groupeId"),
		Icone:           r.str("icone"),
		Dispensable:     r.boolean("dispensable"),
		IsFlexible:      r.boolean("isFlexible"),
		IsModifie:       r.boolean("isModifie"),
		ContenuDeSeance: r.boolean("contenuDeSeance"),
		DevoirAFaire:    r.boolean("devoirAFaire"),
		IsAnnule:        r.boolean("isAnnule"),
	}
}

// richText prepares a provider rich-text value for the host. The provider
// ships homework content base64-wrapped with HTML inside; with a sanitizer
// configured the text is unwrapped and cleaned, without one it passes
// through untouched.
func (m *Mapper) richText(value string) string {
	if m.sanitizer == nil || value == "" {
		return value
	}
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil && utf8.Valid(decoded) {
		value = string(decoded)
	}
	return m.sanitizer.Clean(value)
}

// ══════════════════════════════════════════════════════════════════════════════
// RECORD ACCESS
// ══════════════════════════════════════════════════════════════════════════════

// record is one decoded provider JSON object.
type record map[string]any

// str reads a field as text. Numbers and booleans are rendered to their
// textual form, anything else (missing, null, nested) is the empty string.
// The provider is not consistent about scalar types across releases.
func (r record) str(key string) string {
	switch value := r[key].(type) {
	case string:
		return value
	case float64:
		if value == math.Trunc(value) && math.Abs(value) < 1e15 {
			return strconv.FormatInt(int64(value), 10)
		}
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		return ""
	}
}

// boolean reads a field as a flag. The textual forms "true" and "1" count
// as set, missing or anything else is false.
func (r record) boolean(key string) bool {
	switch value := r[key].(type) {
	case bool:
		return value
	case string:
		return value == "true" || value == "1"
	default:
		return false
	}
}

// integer reads a field as a whole number, zero when absent or unreadable.
func (r record) integer(key string) int64 {
	switch value := r[key].(type) {
	case float64:
		return int64(value)
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return 0
		}
		return parsed
	default:
		return 0
	}
}

// child reads a nested object, empty when absent so lookups chain safely.
func (r record) child(key string) record {
	if nested, ok := r[key].(map[string]any); ok {
		return record(nested)
	}
	return record{}
}

// list reads an array of objects, skipping entries of any other shape.
func (r record) list(key string) []record {
	raw, ok := r[key].([]any)
	if !ok {
		return nil
	}
	records := make([]record, 0, len(raw))
	for _, item := range raw {
		if nested, ok := item.(map[string]any); ok {
			records = append(records, record(nested))
		}
	}
	return records
}

// enabledModules keeps the code of each module the provider flags enabled.
func enabledModules(modules []record) []string {
	codes := make([]string, 0, len(modules))
	for _, module := range modules {
		if module.boolean("enable") {
			codes = append(codes, module.str("code"))
		}
	}
	return codes
}
