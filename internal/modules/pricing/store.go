// README: Ticket bundle store backed by PostgreSQL.
package pricing

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ListBundles returns the active bundles and the catalog currency.
func (s *Store) ListBundles(ctx context.Context) ([]TicketBundle, string, error) {
	rows, err := s.db.Query(ctx, `
        SELECT kind, base_rides, bonus_rides, price, currency
        FROM ticket_bundles
        WHERE active
        ORDER BY base_rides DESC`)
	if err != nil {
		return nil, "", err
	}
	defer rows.Close()

	var (
		out      []TicketBundle
		currency string
	)
	for rows.Next() {
		var b TicketBundle
		var kind string
		if err := rows.Scan(&kind, &b.BaseRides, &b.BonusRides, &b.Price, &currency); err != nil {
			return nil, "", err
		}
		b.Kind = Kind(kind)
		out = append(out, b)
	}
	return out, currency, rows.Err()
}

// UpsertBundle inserts or replaces a bundle row keyed by kind.
func (s *Store) UpsertBundle(ctx context.Context, b TicketBundle, currency string) error {
	_, err := s.db.Exec(ctx, `
        INSERT INTO ticket_bundles (kind, base_rides, bonus_rides, price, currency, active)
        VALUES ($1, $2, $3, $4, $5, TRUE)
        ON CONFLICT (kind) DO UPDATE SET
            base_rides = EXCLUDED.base_rides,
            bonus_rides = EXCLUDED.bonus_rides,
            price = EXCLUDED.price,
            currency = EXCLUDED.currency,
            active = TRUE`,
		string(b.Kind), b.BaseRides, b.BonusRides, b.Price, currency,
	)
	return err
}

// ReplaceCatalog makes c the active catalog: its bundles are upserted and any
// other bundle is deactivated, in one transaction.
func (s *Store) ReplaceCatalog(ctx context.Context, c Catalog) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	bundles := c.Bundles()
	kinds := make([]string, 0, len(bundles))
	batch := &pgx.Batch{}
	for _, b := range bundles {
		kinds = append(kinds, string(b.Kind))
		batch.Queue(`
            INSERT INTO ticket_bundles (kind, base_rides, bonus_rides, price, currency, active)
            VALUES ($1, $2, $3, $4, $5, TRUE)
            ON CONFLICT (kind) DO UPDATE SET
                base_rides = EXCLUDED.base_rides,
                bonus_rides = EXCLUDED.bonus_rides,
                price = EXCLUDED.price,
                currency = EXCLUDED.currency,
                active = TRUE`,
			string(b.Kind), b.BaseRides, b.BonusRides, b.Price, c.Currency)
	}
	batch.Queue(`UPDATE ticket_bundles SET active = FALSE WHERE kind <> ALL($1)`, kinds)
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
