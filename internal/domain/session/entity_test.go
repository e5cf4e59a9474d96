package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
)

func TestFullNameSlug(t *testing.T) {
	tests := []struct {
		name      string
		firstName string
		lastName  string
		want      string
	}{
		{"plain", "Lucie", "Martin", "lucie_martin"},
		{"hyphenated", "Jean-Paul", "Dupont", "jean_paul_dupont"},
		{"apostrophe", "Mael", "O'Brien", "mael_o_brien"},
		{"hyphen and apostrophe together", "Jean-Paul", "O'Brien", "jean_paul_o_brien"},
		{"accented letters become underscores", "Léo", "Noël", "l_o_no_l"},
		{"consecutive separators stay separate", "Anne--Lise", "Roy", "anne__lise_roy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Student{FirstName: tt.firstName, LastName: tt.lastName}
			assert.Equal(t, tt.want, s.FullNameSlug())
		})
	}
}

func TestFullName(t *testing.T) {
	s := Student{FirstName: "Lucie", LastName: "Martin"}
	assert.Equal(t, "Lucie Martin", s.FullName())
}

func TestSessionHasModule(t *testing.T) {
	s := Session{Modules: []string{"NOTES", "CAHIER_DE_TEXTES"}}

	assert.True(t, s.HasModule("NOTES"))
	assert.False(t, s.HasModule("MESSAGERIE"))
}

func TestSessionValidate(t *testing.T) {
	valid := Session{Token: "abc", AccountID: 1234}
	assert.NoError(t, valid.Validate())

	noToken := Session{AccountID: 1234}
	assert.Error(t, noToken.Validate())

	noAccount := Session{Token: "abc"}
	assert.Error(t, noAccount.Validate())
}

func TestStudentValidate(t *testing.T) {
	assert.NoError(t, Student{ID: 42}.Validate())
	assert.ErrorIs(t, Student{}.Validate(), shared.ErrInvalidInput)
}
