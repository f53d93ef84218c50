// README: Booking store backed by PostgreSQL (bookings + booking_routes).
package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"time"

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

// Create writes the booking and its routes in one transaction.
func (s *Store) Create(ctx context.Context, b *Booking) error {
	quote, err := json.Marshal(b.Quote)
	if err != nil {
		return err
	}
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
        INSERT INTO bookings (
            id, user_id, booking_type, ride_date, start_date, end_date,
            days, ride_count, quote, total_price, currency,
            status, status_version, created_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6,
            $7, $8, $9, $10, $11,
            $12, $13, $14
        )`,
		string(b.ID),
		string(b.UserID),
		string(b.Type),
		b.Date, b.StartDate, b.EndDate,
		daysToStrings(b.Days),
		b.RideCount,
		quote,
		b.Quote.TotalPrice,
		b.Quote.Currency,
		string(b.Status),
		b.StatusVersion,
		b.CreatedAt,
	)
	if err != nil {
		return err
	}

	for i, r := range b.Routes {
		_, err = tx.Exec(ctx, `
            INSERT INTO booking_routes (
                booking_id, position, name, pickup, dropoff,
                pickup_address, dropoff_address, pickup_time, dropoff_time
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			string(b.ID), i, r.Name, r.Pickup, r.Dropoff,
			r.PickupAddress, r.DropoffAddress, r.PickupTime, r.DropoffTime,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Booking, error) {
	row := s.db.QueryRow(ctx, `
        SELECT id, user_id, booking_type, ride_date, start_date, end_date,
               days, ride_count, quote, status, status_version, created_at
        FROM bookings
        WHERE id = $1`, string(id),
	)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if b.Routes, err = s.routes(ctx, b.ID); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]Booking, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, user_id, booking_type, ride_date, start_date, end_date,
               days, ride_count, quote, status, status_version, created_at
        FROM bookings
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT 50`, string(userID),
	)
	if err != nil {
		return nil, err
	}
	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, *b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Routes, err = s.routes(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// UpdateStatus applies an optimistic transition; false means the row moved on.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE bookings
        SET status = $1,
            status_version = status_version + 1,
            confirmed_at = CASE WHEN $1 = 'confirmed' THEN NOW() ELSE confirmed_at END,
            cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
        WHERE id = $2 AND status = $3 AND status_version = $4`,
		string(to), string(id), string(from), version,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) routes(ctx context.Context, bookingID types.ID) ([]Route, error) {
	rows, err := s.db.Query(ctx, `
        SELECT name, pickup, dropoff, pickup_address, dropoff_address, pickup_time, dropoff_time
        FROM booking_routes
        WHERE booking_id = $1
        ORDER BY position`, string(bookingID),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Route
	for rows.Next() {
		var r Route
		if err := rows.Scan(&r.Name, &r.Pickup, &r.Dropoff, &r.PickupAddress, &r.DropoffAddress, &r.PickupTime, &r.DropoffTime); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b                      Booking
		id, userID, typ, state string
		date, start, end       *time.Time
		days                   []string
		quote                  []byte
	)
	err := row.Scan(&id, &userID, &typ, &date, &start, &end,
		&days, &b.RideCount, &quote, &state, &b.StatusVersion, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.ID, b.UserID = types.ID(id), types.ID(userID)
	b.Type, b.Status = BookingType(typ), Status(state)
	b.Date, b.StartDate, b.EndDate = date, start, end
	for _, d := range days {
		b.Days = append(b.Days, Weekday(d))
	}
	if len(quote) > 0 {
		if err := json.Unmarshal(quote, &b.Quote); err != nil {
			return nil, err
		}
	}
	return &b, nil
}

func daysToStrings(days []Weekday) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		out = append(out, string(d))
	}
	return out
}
