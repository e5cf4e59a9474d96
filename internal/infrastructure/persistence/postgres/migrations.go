// Package postgres implements the PostgreSQL persistence layer for the
// École Directe client.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE CHALLENGE ANSWERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create challenge_answers table
-- Version: 001

-- The curated answer set for the provider's login security questions.
-- One row per question the handshake has ever seen; the operator fills
-- in the confirmed column, the handshake only inserts candidates.
CREATE TABLE IF NOT EXISTS challenge_answers (
    question TEXT PRIMARY KEY,
    candidates JSONB NOT NULL DEFAULT '[]'::jsonb,
    confirmed TEXT NOT NULL DEFAULT '',
    first_seen_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT candidates_is_array CHECK (jsonb_typeof(candidates) = 'array')
);

-- Operators triage from here: questions still waiting for an answer
CREATE INDEX IF NOT EXISTS idx_challenge_answers_unconfirmed
    ON challenge_answers(first_seen_at)
    WHERE confirmed = '';

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_challenge_answers_updated_at ON challenge_answers;
CREATE TRIGGER update_challenge_answers_updated_at
    BEFORE UPDATE ON challenge_answers
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_challenge_answers_updated_at ON challenge_answers;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS challenge_answers;
`

// ══════════════════════════════════════════════════════════════════════════════
// EMBEDDED MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_challenge_answers",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
	}
}
