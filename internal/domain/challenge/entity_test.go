package challenge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntryUnmarshalObjectForm(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`{"candidates":["Paris","Lyon"],"confirmed":"Lyon"}`), &e)

	assert.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Lyon"}, e.Candidates)
	assert.Equal(t, "Lyon", e.Confirmed)
	assert.True(t, e.IsAnswered())
}

func TestEntryUnmarshalLegacyList(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`["Paris","Lyon","Nantes"]`), &e)

	assert.NoError(t, err)
	assert.Equal(t, []string{"Paris", "Lyon", "Nantes"}, e.Candidates)
	assert.False(t, e.IsAnswered())
}

func TestEntryUnmarshalLegacySingleElementIsConfirmed(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`["Lyon"]`), &e)

	assert.NoError(t, err)
	assert.Equal(t, "Lyon", e.Confirmed)
	assert.True(t, e.IsAnswered())
}

func TestEntryObjectFormWithoutConfirmationStaysUnanswered(t *testing.T) {
	var e Entry
	err := json.Unmarshal([]byte(`{"candidates":["Lyon"],"confirmed":""}`), &e)

	assert.NoError(t, err)
	assert.False(t, e.IsAnswered())
}

func TestEntryMarshalAlwaysObjectForm(t *testing.T) {
	out, err := json.Marshal(Entry{Candidates: []string{"Paris"}, Confirmed: ""})

	assert.NoError(t, err)
	assert.JSONEq(t, `{"candidates":["Paris"],"confirmed":""}`, string(out))
}

func TestAnswersLookup(t *testing.T) {
	answers := Answers{
		"Ville de naissance ?": {Candidates: []string{"Paris", "Lyon"}, Confirmed: "Lyon"},
	}

	entry, ok := answers.Lookup("Ville de naissance ?")
	assert.True(t, ok)
	assert.Equal(t, "Lyon", entry.Confirmed)

	_, ok = answers.Lookup("Nom du chien ?")
	assert.False(t, ok)
}

func TestDecodeText(t *testing.T) {
	text, err := DecodeText("VmlsbGUgZGUgbmFpc3NhbmNlID8=")
	assert.NoError(t, err)
	assert.Equal(t, "Ville de naissance ?", text)

	_, err = DecodeText("not base64 at all!!")
	assert.Error(t, err)
}

func TestEncodeAnswer(t *testing.T) {
	assert.Equal(t, "THlvbg==", EncodeAnswer("Lyon"))
}

func TestEncodeDecodeRoundTripKeepsAccents(t *testing.T) {
	decoded, err := DecodeText(EncodeAnswer("Aix-en-Provence, Bouches-du-Rhône"))
	assert.NoError(t, err)
	assert.Equal(t, "Aix-en-Provence, Bouches-du-Rhône", decoded)
}
