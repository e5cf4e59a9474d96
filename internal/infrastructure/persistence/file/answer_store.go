// Package file implements the challenge answer store as a single
// operator-editable JSON file. This is the store the integration ships
// with: the operator curates answers by editing the file, the handshake
// only ever appends newly seen questions.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/challenge"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
)

const storeDomain = "challenge"

// AnswerStore persists the answer set in one JSON file. A mutex serializes
// writers in-process and every write goes through a temp file plus rename,
// so a crash mid-write cannot torch the operator's curated answers.
type AnswerStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewAnswerStore creates a store over the given file path. The file is
// never auto-created: its absence means the operator has not provisioned
// the integration and Load reports that as a cache-kind error.
func NewAnswerStore(path string, logger *slog.Logger) *AnswerStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnswerStore{path: path, logger: logger}
}

// Load implements challenge.Store.
func (s *AnswerStore) Load(ctx context.Context) (challenge.Answers, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

// RecordCandidates implements challenge.Store. The entry is written in the
// explicit object form; legacy bare-list entries elsewhere in the file are
// migrated along on this rewrite.
func (s *AnswerStore) RecordCandidates(ctx context.Context, question string, candidates []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers, err := s.loadLocked()
	if err != nil {
		return err
	}

	answers[question] = challenge.Entry{Candidates: candidates}
	if err := s.writeLocked("RecordCandidates", answers); err != nil {
		return err
	}

	s.logger.Info("recorded new security question",
		"path", s.path,
		"question", question,
		"candidates", len(candidates))
	return nil
}

// Confirm marks one candidate as the curated answer for a question.
// Operators normally edit the file by hand; this helper exists for host
// tooling that confirms answers programmatically.
func (s *AnswerStore) Confirm(ctx context.Context, question, answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	answers, err := s.loadLocked()
	if err != nil {
		return err
	}

	entry, ok := answers.Lookup(question)
	if !ok {
		return shared.NewDomainError(storeDomain, "Confirm", shared.ErrInvalidInput,
			fmt.Sprintf("question %q is not in the answer store", question))
	}
	entry.Confirmed = answer
	answers[question] = entry
	return s.writeLocked("Confirm", answers)
}

func (s *AnswerStore) loadLocked() (challenge.Answers, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
			fmt.Sprintf("answer store %s is missing; create it before enabling this integration", s.path), err)
	}
	if err != nil {
		return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
			fmt.Sprintf("answer store %s is unreadable", s.path), err)
	}

	// An operator-created empty file or a literal null is an empty,
	// usable store. Only a file that fails to parse is fatal.
	if len(bytes.TrimSpace(raw)) == 0 {
		return challenge.Answers{}, nil
	}
	var answers challenge.Answers
	if err := json.Unmarshal(raw, &answers); err != nil {
		return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
			fmt.Sprintf("answer store %s is not valid JSON", s.path), err)
	}
	if answers == nil {
		answers = challenge.Answers{}
	}
	return answers, nil
}

func (s *AnswerStore) writeLocked(op string, answers challenge.Answers) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(answers); err != nil {
		return shared.WrapError(storeDomain, op, shared.ErrCache,
			"encode answer store", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o600); err != nil {
		return shared.WrapError(storeDomain, op, shared.ErrCache,
			fmt.Sprintf("write answer store %s", s.path), err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return shared.WrapError(storeDomain, op, shared.ErrCache,
			fmt.Sprintf("replace answer store %s", s.path), err)
	}
	return nil
}
