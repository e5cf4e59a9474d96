package schoolwork

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHomeworkIsDone(t *testing.T) {
	tests := []struct {
		name     string
		effectue string
		want     bool
	}{
		{name: "marked done", effectue: "true", want: true},
		{name: "marked not done", effectue: "false", want: false},
		{name: "absent on the wire", effectue: "", want: false},
		{name: "numeric flag does not count", effectue: "1", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hw := Homework{Effectue: tt.effectue}
			assert.Equal(t, tt.want, hw.IsDone())
		})
	}
}

func TestHomeworkIsTest(t *testing.T) {
	assert.True(t, Homework{Interrogation: "true"}.IsTest())
	assert.False(t, Homework{Interrogation: "false"}.IsTest())
	assert.False(t, Homework{}.IsTest())
}

func TestGradeIsSignificant(t *testing.T) {
	tests := []struct {
		name            string
		nonSignificatif string
		want            bool
	}{
		{name: "counts towards averages", nonSignificatif: "false", want: true},
		{name: "excluded mark", nonSignificatif: "true", want: false},
		{name: "absent on the wire counts", nonSignificatif: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := Grade{NonSignificatif: tt.nonSignificatif}
			assert.Equal(t, tt.want, g.IsSignificant())
		})
	}
}

func TestLessonIsCancelled(t *testing.T) {
	assert.True(t, Lesson{IsAnnule: true}.IsCancelled())
	assert.False(t, Lesson{}.IsCancelled())
}
