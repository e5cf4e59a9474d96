// Package postgres implements the PostgreSQL persistence layer for the
// École Directe client.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/challenge"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
)

const storeDomain = "challenge"

// ══════════════════════════════════════════════════════════════════════════════
// ANSWER STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AnswerStore implements challenge.Store on top of the challenge_answers
// table. The handshake only ever inserts candidate lists for questions it
// has not seen; the confirmed column belongs to the operator and is never
// overwritten by an upsert.
type AnswerStore struct {
	conn *Connection
}

// NewAnswerStore creates a new AnswerStore.
func NewAnswerStore(conn *Connection) *AnswerStore {
	return &AnswerStore{conn: conn}
}

// ─────────────────────────────────────────────────────────────────────────────
// challenge.Store
// ─────────────────────────────────────────────────────────────────────────────

// Load returns the full answer set. Any database failure is reported as a
// cache-kind error so the caller can tell a broken store from a failed
// login.
func (s *AnswerStore) Load(ctx context.Context) (challenge.Answers, error) {
	query := `
		SELECT question, candidates, confirmed
		FROM challenge_answers
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
			"challenge answer table unavailable", err)
	}
	defer rows.Close()

	answers := challenge.Answers{}
	for rows.Next() {
		var question, confirmed string
		var candidatesJSON []byte

		if err := rows.Scan(&question, &candidatesJSON, &confirmed); err != nil {
			return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
				"challenge answer row unreadable", err)
		}

		var candidates []string
		if len(candidatesJSON) > 0 {
			if err := json.Unmarshal(candidatesJSON, &candidates); err != nil {
				return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
					fmt.Sprintf("candidates for question %q are not valid JSON", question), err)
			}
		}

		answers[question] = challenge.Entry{Candidates: candidates, Confirmed: confirmed}
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
			"challenge answer table unavailable", err)
	}

	return answers, nil
}

// RecordCandidates stores the proposed answers for a newly seen question.
// Re-recording an existing question refreshes its candidate list and
// leaves the operator's confirmed answer untouched.
func (s *AnswerStore) RecordCandidates(ctx context.Context, question string, candidates []string) error {
	query := `
		INSERT INTO challenge_answers (question, candidates)
		VALUES ($1, $2)
		ON CONFLICT (question) DO UPDATE SET
			candidates = EXCLUDED.candidates
	`

	if candidates == nil {
		candidates = []string{}
	}
	candidatesJSON, err := json.Marshal(candidates)
	if err != nil {
		return shared.WrapError(storeDomain, "RecordCandidates", shared.ErrCache,
			"encode candidates", err)
	}

	if _, err := s.conn.Exec(ctx, query, question, candidatesJSON); err != nil {
		return shared.WrapError(storeDomain, "RecordCandidates", shared.ErrCache,
			fmt.Sprintf("record question %q", question), err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Operator Curation
// ─────────────────────────────────────────────────────────────────────────────

// Confirm marks one candidate as the curated answer for a question.
func (s *AnswerStore) Confirm(ctx context.Context, question, answer string) error {
	query := `
		UPDATE challenge_answers
		SET confirmed = $1
		WHERE question = $2
	`

	result, err := s.conn.Exec(ctx, query, answer, question)
	if err != nil {
		return shared.WrapError(storeDomain, "Confirm", shared.ErrCache,
			fmt.Sprintf("confirm answer for question %q", question), err)
	}
	if result.RowsAffected() == 0 {
		return shared.NewDomainError(storeDomain, "Confirm", shared.ErrInvalidInput,
			fmt.Sprintf("question %q is not in the answer store", question))
	}

	return nil
}

// Unanswered returns the questions still waiting for an operator answer,
// oldest first. Host tooling surfaces these for triage.
func (s *AnswerStore) Unanswered(ctx context.Context) ([]string, error) {
	query := `
		SELECT question
		FROM challenge_answers
		WHERE confirmed = ''
		ORDER BY first_seen_at ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, shared.WrapError(storeDomain, "Unanswered", shared.ErrCache,
			"challenge answer table unavailable", err)
	}
	defer rows.Close()

	var questions []string
	for rows.Next() {
		var question string
		if err := rows.Scan(&question); err != nil {
			return nil, shared.WrapError(storeDomain, "Unanswered", shared.ErrCache,
				"challenge answer row unreadable", err)
		}
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.WrapError(storeDomain, "Unanswered", shared.ErrCache,
			"challenge answer table unavailable", err)
	}

	return questions, nil
}
