// README: Child store backed by PostgreSQL.
package child

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepass/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context, userID types.ID) ([]Child, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, name, birthdate, gender, notes, created_at
        FROM children
        WHERE user_id = $1
        ORDER BY created_at, id`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, userID, id types.ID) (*Child, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, name, birthdate, gender, notes, created_at
        FROM children
        WHERE user_id = $1 AND id = $2`, string(userID), string(id),
	)
	c, err := scanChild(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

func (s *Store) Create(ctx context.Context, children ...Child) error {
	batch := &pgx.Batch{}
	for _, c := range children {
		batch.Queue(`
            INSERT INTO children (id, user_id, name, birthdate, gender, notes, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            ON CONFLICT (user_id, id) DO NOTHING`,
			string(c.ID), string(c.UserID), c.Name, c.Birthdate, string(c.Gender), c.Notes, c.CreatedAt,
		)
	}
	return s.db.SendBatch(ctx, batch).Close()
}

// Seed stores the default children the first time a user is seen. It returns
// false without writing when the user was seeded before, even if they have
// since deleted every row.
func (s *Store) Seed(ctx context.Context, userID types.ID, children ...Child) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        INSERT INTO user_seeds (user_id, kind) VALUES ($1, 'children')
        ON CONFLICT (user_id, kind) DO NOTHING`, string(userID))
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	batch := &pgx.Batch{}
	for _, r := range children {
		batch.Queue(`
            INSERT INTO children (id, user_id, name, birthdate, gender, notes, created_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7)
            ON CONFLICT (user_id, id) DO NOTHING`,
			string(r.ID), string(userID), r.Name, r.Birthdate, string(r.Gender), r.Notes, r.CreatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *Store) Update(ctx context.Context, c *Child) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE children SET name = $1, birthdate = $2, gender = $3, notes = $4
        WHERE user_id = $5 AND id = $6`,
		c.Name, c.Birthdate, string(c.Gender), c.Notes, string(c.UserID), string(c.ID),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, userID, id types.ID) (bool, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM children WHERE user_id = $1 AND id = $2`, string(userID), string(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanChild(row pgx.Row) (*Child, error) {
	var (
		c                  Child
		id, userID, gender string
	)
	if err := row.Scan(&id, &userID, &c.Name, &c.Birthdate, &gender, &c.Notes, &c.CreatedAt); err != nil {
		return nil, err
	}
	c.ID, c.UserID, c.Gender = types.ID(id), types.ID(userID), Gender(gender)
	return &c, nil
}
