package challenge

import "context"

// Store persists the answer set across process restarts.
//
// Implementations must fail Load with a cache-kind error when the backing
// storage has never been provisioned: a missing store is an operator
// configuration mistake, silently starting empty would lock the account
// behind a question nobody gets to see.
type Store interface {
	// Load reads the full answer set. A backing store that exists but
	// holds nothing yields an empty, usable set.
	Load(ctx context.Context) (Answers, error)

	// RecordCandidates stores the candidate answers seen for a previously
	// unseen question and persists immediately. Existing confirmations
	// for other questions are left untouched.
	RecordCandidates(ctx context.Context, question string, candidates []string) error
}
