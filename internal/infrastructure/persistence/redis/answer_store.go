package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/challenge"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
)

const storeDomain = "challenge"

// ══════════════════════════════════════════════════════════════════════════════
// ANSWER STORE IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// AnswerStore implements challenge.Store on Redis, one hash per security
// question with a candidates field (JSON array) and a confirmed field
// (plain string). Hosts that run several instances against the same
// account share one answer set this way.
//
// An empty namespace means the operator never provisioned the store and
// reads as a fatal cache-kind error, mirroring the missing-file case of
// the JSON store. Provision marks an intentionally empty store as usable.
type AnswerStore struct {
	cache *Cache
}

// NewAnswerStore creates a store over an established Redis connection.
func NewAnswerStore(cache *Cache) *AnswerStore {
	return &AnswerStore{cache: cache}
}

// ─────────────────────────────────────────────────────────────────────────────
// challenge.Store
// ─────────────────────────────────────────────────────────────────────────────

// Load scans the answer namespace and returns the full answer set.
func (s *AnswerStore) Load(ctx context.Context) (challenge.Answers, error) {
	answers := challenge.Answers{}

	iter := s.cache.Client().Scan(ctx, 0, PrefixAnswer+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		fields, err := s.cache.Client().HGetAll(ctx, key).Result()
		if err != nil {
			return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
				fmt.Sprintf("read answer hash %s", key), err)
		}
		if len(fields) == 0 {
			// Key vanished between scan and read.
			continue
		}

		question := strings.TrimPrefix(key, PrefixAnswer)

		var candidates []string
		if raw := fields["candidates"]; raw != "" {
			if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
				return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
					fmt.Sprintf("candidates for question %q are not valid JSON", question), err)
			}
		}

		answers[question] = challenge.Entry{
			Candidates: candidates,
			Confirmed:  fields["confirmed"],
		}
	}
	if err := iter.Err(); err != nil {
		return nil, shared.WrapError(storeDomain, "Load", shared.ErrCache,
			"answer namespace unavailable", err)
	}

	if len(answers) == 0 {
		provisioned, err := s.provisioned(ctx, "Load")
		if err != nil {
			return nil, err
		}
		if !provisioned {
			return nil, shared.NewDomainError(storeDomain, "Load", shared.ErrCache,
				"answer store is not provisioned in redis; seed it before enabling this integration")
		}
	}

	return answers, nil
}

// RecordCandidates stores the proposed answers for a newly seen question.
// The confirmed field is never written here, so re-recording a question
// cannot clobber the operator's answer.
func (s *AnswerStore) RecordCandidates(ctx context.Context, question string, candidates []string) error {
	provisioned, err := s.provisioned(ctx, "RecordCandidates")
	if err != nil {
		return err
	}
	if !provisioned {
		return shared.NewDomainError(storeDomain, "RecordCandidates", shared.ErrCache,
			"answer store is not provisioned in redis; seed it before enabling this integration")
	}

	if candidates == nil {
		candidates = []string{}
	}
	data, err := json.Marshal(candidates)
	if err != nil {
		return shared.WrapError(storeDomain, "RecordCandidates", shared.ErrCache,
			"encode candidates", err)
	}

	if err := s.cache.Client().HSet(ctx, AnswerKey(question), "candidates", string(data)).Err(); err != nil {
		return shared.WrapError(storeDomain, "RecordCandidates", shared.ErrCache,
			fmt.Sprintf("record question %q", question), err)
	}

	return nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Operator Curation
// ─────────────────────────────────────────────────────────────────────────────

// Provision marks the store as seeded so an empty answer set reads as
// usable instead of missing.
func (s *AnswerStore) Provision(ctx context.Context) error {
	if err := s.cache.SetString(ctx, KeyProvisioned, "1", 0); err != nil {
		return shared.WrapError(storeDomain, "Provision", shared.ErrCache,
			"write provision marker", err)
	}
	return nil
}

// Confirm marks one candidate as the curated answer for a question.
func (s *AnswerStore) Confirm(ctx context.Context, question, answer string) error {
	provisioned, err := s.provisioned(ctx, "Confirm")
	if err != nil {
		return err
	}
	if !provisioned {
		return shared.NewDomainError(storeDomain, "Confirm", shared.ErrCache,
			"answer store is not provisioned in redis; seed it before enabling this integration")
	}

	exists, err := s.cache.Exists(ctx, AnswerKey(question))
	if err != nil {
		return shared.WrapError(storeDomain, "Confirm", shared.ErrCache,
			fmt.Sprintf("look up question %q", question), err)
	}
	if !exists {
		return shared.NewDomainError(storeDomain, "Confirm", shared.ErrInvalidInput,
			fmt.Sprintf("question %q is not in the answer store", question))
	}

	if err := s.cache.Client().HSet(ctx, AnswerKey(question), "confirmed", answer).Err(); err != nil {
		return shared.WrapError(storeDomain, "Confirm", shared.ErrCache,
			fmt.Sprintf("confirm answer for question %q", question), err)
	}

	return nil
}

// provisioned reports whether the store holds the provision marker or at
// least one answer hash.
func (s *AnswerStore) provisioned(ctx context.Context, op string) (bool, error) {
	marked, err := s.cache.Exists(ctx, KeyProvisioned)
	if err != nil {
		return false, shared.WrapError(storeDomain, op, shared.ErrCache,
			"read provision marker", err)
	}
	if marked {
		return true, nil
	}

	iter := s.cache.Client().Scan(ctx, 0, PrefixAnswer+"*", 1).Iterator()
	if iter.Next(ctx) {
		return true, nil
	}
	if err := iter.Err(); err != nil {
		return false, shared.WrapError(storeDomain, op, shared.ErrCache,
			"answer namespace unavailable", err)
	}

	return false, nil
}
