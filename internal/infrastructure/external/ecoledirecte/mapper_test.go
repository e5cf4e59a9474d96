package ecoledirecte

import (
	"encoding/base64"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
)

func loginEnvelope(t *testing.T, token, data string) *Envelope {
	t.Helper()
	code := codeOK
	return &Envelope{Code: &code, Token: token, Data: json.RawMessage(data)}
}

func TestSessionFromLoginStudentAccount(t *testing.T) {
	env := loginEnvelope(t, "session-token", `{
		"accounts": [{
			"id": 1234,
			"identifiant": "jdupont",
			"idLogin": 777,
			"typeCompte": "E",
			"nomEtablissement": "College Jean Moulin",
			"prenom": "Jean",
			"nom": "Dupont",
			"modules": [
				{"code": "CAHIER_DE_TEXTES", "enable": true},
				{"code": "NOTES", "enable": true},
				{"code": "MESSAGERIE", "enable": false}
			],
			"profile": {"classe": {"id": 42, "libelle": "3eme B"}}
		}]
	}`)

	sess, err := NewMapper(nil).SessionFromLogin(env)

	require.NoError(t, err)
	assert.Equal(t, shared.Token("session-token"), sess.Token)
	assert.Equal(t, int64(1234), sess.AccountID)
	assert.Equal(t, "jdupont", sess.Username)
	assert.Equal(t, int64(777), sess.LoginID)
	assert.True(t, sess.Kind.IsStudent())
	assert.Equal(t, "College Jean Moulin", sess.Establishment)
	assert.Equal(t, []string{"CAHIER_DE_TEXTES", "NOTES"}, sess.Modules)

	require.Len(t, sess.Students, 1)
	student := sess.Students[0]
	assert.Equal(t, int64(1234), student.ID)
	assert.Equal(t, "Jean", student.FirstName)
	assert.Equal(t, "Dupont", student.LastName)
	assert.Equal(t, "College Jean Moulin", student.Establishment)
	assert.Equal(t, "42", student.ClassID)
	assert.Equal(t, "3eme B", student.ClassName)
	assert.Equal(t, sess.Modules, student.Modules)
}

func TestSessionFromLoginFamilyAccount(t *testing.T) {
	env := loginEnvelope(t, "tok", `{
		"accounts": [{
			"id": 99,
			"identifiant": "famille.durand",
			"idLogin": 31,
			"typeCompte": "1",
			"nomEtablissement": "Lycee Pasteur",
			"modules": [{"code": "MESSAGERIE", "enable": true}],
			"profile": {
				"eleves": [
					{
						"id": 501,
						"prenom": "Alice",
						"nom": "Durand",
						"classe": {"id": 7, "libelle": "Seconde 3"},
						"modules": [
							{"code": "NOTES", "enable": true},
							{"code": "EDT", "enable": false}
						]
					},
					{"id": 502, "prenom": "Bruno", "nom": "Durand", "modules": []}
				]
			}
		}]
	}`)

	sess, err := NewMapper(nil).SessionFromLogin(env)

	require.NoError(t, err)
	assert.False(t, sess.Kind.IsStudent())
	require.Len(t, sess.Students, 2)

	assert.Equal(t, int64(501), sess.Students[0].ID)
	assert.Equal(t, "Alice", sess.Students[0].FirstName)
	assert.Equal(t, "Lycee Pasteur", sess.Students[0].Establishment)
	assert.Equal(t, "7", sess.Students[0].ClassID)
	assert.Equal(t, []string{"NOTES"}, sess.Students[0].Modules)

	assert.Equal(t, int64(502), sess.Students[1].ID)
	assert.Empty(t, sess.Students[1].ClassID)
	assert.Empty(t, sess.Students[1].ClassName)
	assert.Empty(t, sess.Students[1].Modules)
}

func TestSessionFromLoginWithoutAccounts(t *testing.T) {
	_, err := NewMapper(nil).SessionFromLogin(loginEnvelope(t, "tok", `{"accounts": []}`))
	assert.ErrorIs(t, err, shared.ErrNoAccounts)

	_, err = NewMapper(nil).SessionFromLogin(loginEnvelope(t, "tok", `null`))
	assert.ErrorIs(t, err, shared.ErrNoAccounts)
}

func TestStudentFromRecordIsTotal(t *testing.T) {
	student := NewMapper(nil).StudentFromRecord(map[string]any{}, "Lycee Pasteur")

	assert.Zero(t, student.ID)
	assert.Empty(t, student.FirstName)
	assert.Empty(t, student.LastName)
	assert.Equal(t, "Lycee Pasteur", student.Establishment)
	assert.Empty(t, student.ClassID)
	assert.Empty(t, student.Modules)
}

func TestHomeworkFromRecordIsTotal(t *testing.T) {
	hw := NewMapper(nil).HomeworkFromRecord(map[string]any{}, "2025-09-01")

	assert.Equal(t, "2025-09-01", hw.PourLe)
	assert.Empty(t, hw.Matiere)
	assert.Empty(t, hw.Contenu)
	assert.False(t, hw.IsDone())
}

func TestHomeworkFromRecordCoercesScalars(t *testing.T) {
	hw := NewMapper(nil).HomeworkFromRecord(map[string]any{
		"matiere":       "Mathematiques",
		"idDevoir":      float64(4823),
		"effectue":      true,
		"interrogation": false,
		"aFaire":        map[string]any{"contenu": "nested"},
	}, "2025-09-01")

	assert.Equal(t, "Mathematiques", hw.Matiere)
	assert.Equal(t, "4823", hw.DevoirID)
	assert.Equal(t, "true", hw.Effectue)
	assert.Equal(t, "false", hw.Interrogation)
	assert.Empty(t, hw.AFaire)
	assert.True(t, hw.IsDone())
}

func TestGradeFromRecordIsTotal(t *testing.T) {
	grade := NewMapper(nil).GradeFromRecord(map[string]any{})

	assert.Empty(t, grade.ID)
	assert.Empty(t, grade.Valeur)
	assert.True(t, grade.IsSignificant())
}

func TestGradeFromRecordCoercesNumbers(t *testing.T) {
	grade := NewMapper(nil).GradeFromRecord(map[string]any{
		"id":              float64(910),
		"devoir":          "Controle chapitre 2",
		"noteSur":         float64(20),
		"valeur":          "15,5",
		"coef":            0.5,
		"nonSignificatif": false,
	})

	assert.Equal(t, "910", grade.ID)
	assert.Equal(t, "20", grade.NoteSur)
	assert.Equal(t, "15,5", grade.Valeur)
	assert.Equal(t, "0.5", grade.Coef)
	assert.Equal(t, "false", grade.NonSignificatif)
	assert.True(t, grade.IsSignificant())
}

func TestLessonFromRecordIsTotal(t *testing.T) {
	lesson := NewMapper(nil).LessonFromRecord(map[string]any{})

	assert.Empty(t, lesson.ID)
	assert.Empty(t, lesson.Matiere)
	assert.False(t, lesson.IsAnnule)
	assert.False(t, lesson.IsCancelled())
}

func TestHomeworksForDateStampsRequestedDay(t *testing.T) {
	data := json.RawMessage(`{
		"matieres": [
			{"matiere": "Anglais", "aFaire": true, "effectue": false},
			{"matiere": "Histoire", "aFaire": true, "effectue": true}
		]
	}`)

	homeworks, err := NewMapper(nil).HomeworksForDate(data, "2025-09-12")

	require.NoError(t, err)
	require.Len(t, homeworks, 2)
	assert.Equal(t, "Anglais", homeworks[0].Matiere)
	assert.Equal(t, "2025-09-12", homeworks[0].PourLe)
	assert.Equal(t, "2025-09-12", homeworks[1].PourLe)
	assert.True(t, homeworks[1].IsDone())
}

func TestHomeworksFromDiaryWalksDatesInOrder(t *testing.T) {
	data := json.RawMessage(`{
		"2025-09-15": [{"matiere": "Physique"}],
		"2025-09-12": [{"matiere": "Anglais"}, {"matiere": "Histoire"}]
	}`)

	homeworks, err := NewMapper(nil).HomeworksFromDiary(data)

	require.NoError(t, err)
	require.Len(t, homeworks, 3)
	assert.Equal(t, "2025-09-12", homeworks[0].PourLe)
	assert.Equal(t, "Anglais", homeworks[0].Matiere)
	assert.Equal(t, "2025-09-12", homeworks[1].PourLe)
	assert.Equal(t, "2025-09-15", homeworks[2].PourLe)
	assert.Equal(t, "Physique", homeworks[2].Matiere)
}

func TestHomeworksFromDiarySkipsNonListKeys(t *testing.T) {
	data := json.RawMessage(`{
		"sacoche": {"visible": true},
		"2025-09-12": [{"matiere": "Anglais"}]
	}`)

	homeworks, err := NewMapper(nil).HomeworksFromDiary(data)

	require.NoError(t, err)
	require.Len(t, homeworks, 1)
	assert.Equal(t, "Anglais", homeworks[0].Matiere)
}

func TestGradesFromData(t *testing.T) {
	data := json.RawMessage(`{
		"notes": [
			{"devoir": "Dictee", "valeur": "12", "noteSur": "20"},
			{"devoir": "Oral", "valeur": "18", "noteSur": "20"}
		]
	}`)

	grades, err := NewMapper(nil).GradesFromData(data)

	require.NoError(t, err)
	require.Len(t, grades, 2)
	assert.Equal(t, "Dictee", grades[0].Devoir)
	assert.Equal(t, "18", grades[1].Valeur)
}

func TestLessonsFromData(t *testing.T) {
	data := json.RawMessage(`[
		{
			"id": 8812,
			"matiere": "SVT",
			"start_date": "2025-09-12 08:00",
			"end_date": "2025-09-12 09:00",
			"isAnnule": false
		},
		{"id": 8813, "matiere": "EPS", "isAnnule": true}
	]`)

	lessons, err := NewMapper(nil).LessonsFromData(data)

	require.NoError(t, err)
	require.Len(t, lessons, 2)
	assert.Equal(t, "8812", lessons[0].ID)
	assert.Equal(t, "2025-09-12 08:00", lessons[0].StartDate)
	assert.False(t, lessons[0].IsCancelled())
	assert.True(t, lessons[1].IsCancelled())
}

func TestRichTextSanitizedWhenConfigured(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(
		[]byte(`<p>Exercice 1 page 24</p><script>alert(1)</script>`))

	hw := NewMapper(NewSanitizer()).HomeworkFromRecord(map[string]any{"contenu": encoded}, "2025-09-01")

	assert.Equal(t, "<p>Exercice 1 page 24</p>", hw.Contenu)
}

func TestRichTextVerbatimWithoutSanitizer(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte(`<p>Exercice</p>`))

	hw := NewMapper(nil).HomeworkFromRecord(map[string]any{"contenu": encoded}, "2025-09-01")

	assert.Equal(t, encoded, hw.Contenu)
}

func TestRecordAccessors(t *testing.T) {
	r := record{
		"text":    "plain",
		"number":  float64(12),
		"decimal": 1.75,
		"flag":    true,
		"textual": "1",
		"nested":  map[string]any{"inner": "value"},
		"items":   []any{map[string]any{"a": "b"}, "stray"},
	}

	assert.Equal(t, "plain", r.str("text"))
	assert.Equal(t, "12", r.str("number"))
	assert.Equal(t, "1.75", r.str("decimal"))
	assert.Equal(t, "true", r.str("flag"))
	assert.Empty(t, r.str("nested"))
	assert.Empty(t, r.str("absent"))

	assert.True(t, r.boolean("flag"))
	assert.True(t, r.boolean("textual"))
	assert.False(t, r.boolean("absent"))
	assert.False(t, r.boolean("text"))

	assert.Equal(t, int64(12), r.integer("number"))
	assert.Zero(t, r.integer("absent"))

	assert.Equal(t, "value", r.child("nested").str("inner"))
	assert.Empty(t, r.child("absent").str("inner"))

	items := r.list("items")
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].str("a"))
	assert.Nil(t, r.list("absent"))
}
