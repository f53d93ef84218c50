// README: Assistant usage store backed by PostgreSQL (ai_usage table).
package aiusage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepass/internal/types"
)

// Store handles ai_usage persistence.
type Store struct {
	db *pgxpool.Pool
}

// NewStore returns a Store backed by the given connection pool.
func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// UseToken atomically checks the quota for month and deducts one token.
// The counter resets to DefaultTokens when last_reset_month is behind month.
// Returns ErrInsufficientTokens when no row is updated (quota exhausted or user absent).
func (s *Store) UseToken(ctx context.Context, uid types.ID, month string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE ai_usage SET
			tokens_remaining = CASE WHEN last_reset_month != $1 THEN $2 - 1 ELSE tokens_remaining - 1 END,
			last_reset_month = $1
		WHERE uid = $3 AND (last_reset_month < $1 OR tokens_remaining > 0)
	`, month, DefaultTokens, string(uid))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInsufficientTokens
	}
	return nil
}

// EnsureUser inserts a row for uid with the default allowance; existing rows are kept.
func (s *Store) EnsureUser(ctx context.Context, uid types.ID, month string) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ai_usage (uid, tokens_remaining, last_reset_month)
		VALUES ($1, $2, $3)
		ON CONFLICT (uid) DO NOTHING
	`, string(uid), DefaultTokens, month)
	return err
}

// Remaining reports the tokens left in month, treating an older row as reset.
func (s *Store) Remaining(ctx context.Context, uid types.ID, month string) (int, error) {
	var (
		left      int
		lastMonth string
	)
	err := s.db.QueryRow(ctx, `
		SELECT tokens_remaining, last_reset_month FROM ai_usage WHERE uid = $1
	`, string(uid)).Scan(&left, &lastMonth)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultTokens, nil
	}
	if err != nil {
		return 0, err
	}
	if lastMonth < month {
		return DefaultTokens, nil
	}
	return left, nil
}
