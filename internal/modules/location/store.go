// README: Location store backed by PostgreSQL.
package location

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

func (s *Store) List(ctx context.Context, userID types.ID) ([]Location, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, name, address, thumbnail, created_at
        FROM locations
        WHERE user_id = $1
        ORDER BY created_at, id`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

func (s *Store) Get(ctx context.Context, userID, id types.ID) (*Location, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, name, address, thumbnail, created_at
        FROM locations
        WHERE user_id = $1 AND id = $2`, string(userID), string(id),
	)
	l, err := scanLocation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return l, err
}

// Create inserts all rows in one batch.
func (s *Store) Create(ctx context.Context, locs ...Location) error {
	batch := &pgx.Batch{}
	for _, l := range locs {
		batch.Queue(`
            INSERT INTO locations (id, user_id, name, address, thumbnail, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (user_id, id) DO NOTHING`,
			string(l.ID), string(l.UserID), l.Name, l.Address, l.Thumbnail, l.CreatedAt,
		)
	}
	return s.db.SendBatch(ctx, batch).Close()
}

// Seed stores the default places the first time a user is seen. It returns
// false without writing when the user was seeded before, even if they have
// since deleted every row.
func (s *Store) Seed(ctx context.Context, userID types.ID, locs ...Location) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
        INSERT INTO user_seeds (user_id, kind) VALUES ($1, 'locations')
        ON CONFLICT (user_id, kind) DO NOTHING`, string(userID))
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	batch := &pgx.Batch{}
	for _, r := range locs {
		batch.Queue(`
            INSERT INTO locations (id, user_id, name, address, thumbnail, created_at)
            VALUES ($1, $2, $3, $4, $5, $6)
            ON CONFLICT (user_id, id) DO NOTHING`,
			string(r.ID), string(userID), r.Name, r.Address, r.Thumbnail, r.CreatedAt,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *Store) Update(ctx context.Context, l *Location) error {
	tag, err := s.db.Exec(ctx, `
        UPDATE locations SET name = $1, address = $2
        WHERE user_id = $3 AND id = $4`,
		l.Name, l.Address, string(l.UserID), string(l.ID),
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
	tag, err := s.db.Exec(ctx, `DELETE FROM locations WHERE user_id = $1 AND id = $2`, string(userID), string(id))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanLocation(row pgx.Row) (*Location, error) {
	var (
		l          Location
		id, userID string
	)
	if err := row.Scan(&id, &userID, &l.Name, &l.Address, &l.Thumbnail, &l.CreatedAt); err != nil {
		return nil, err
	}
	l.ID, l.UserID = types.ID(id), types.ID(userID)
	return &l, nil
}
