// Package challenge models the security question ("QCM") the provider asks
// on login from an unrecognized device, and the operator-curated store of
// known answers that lets the handshake pass it without human interaction.
//
// Questions and answers travel base64-encoded on the wire but are stored
// decoded, the store is meant to be read and edited by a human.
package challenge

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// Entry is the stored knowledge about one security question.
type Entry struct {
	// Candidates holds every answer text the provider has proposed for
	// this question, in the order they were first seen.
	Candidates []string `json:"candidates"`

	// Confirmed is the answer known to be correct. Empty until the
	// operator confirms one, the handshake never sets it on its own.
	Confirmed string `json:"confirmed"`
}

// IsAnswered checks if the entry carries a confirmed answer.
func (e Entry) IsAnswered() bool {
	return e.Confirmed != ""
}

// UnmarshalJSON accepts both the current object form and the legacy form
// where an entry was a bare list of candidates. A legacy single-element
// list counts as confirmed, that is what it meant to the previous format.
func (e *Entry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var candidates []string
		if err := json.Unmarshal(trimmed, &candidates); err != nil {
			return err
		}
		e.Candidates = candidates
		e.Confirmed = ""
		if len(candidates) == 1 {
			e.Confirmed = candidates[0]
		}
		return nil
	}

	type plain Entry
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Entry(p)
	return nil
}

// Answers maps decoded question text to what is known about it.
type Answers map[string]Entry

// Lookup returns the entry for a question and whether it exists.
func (a Answers) Lookup(question string) (Entry, bool) {
	entry, ok := a[question]
	return entry, ok
}

// DecodeText decodes the provider's base64 wire form into plaintext.
func DecodeText(encoded string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("challenge: decode text: %w", err)
	}
	return string(raw), nil
}

// EncodeAnswer converts a stored plaintext answer into the wire form the
// provider expects on submission.
func EncodeAnswer(answer string) string {
	return base64.StdEncoding.EncodeToString([]byte(answer))
}
