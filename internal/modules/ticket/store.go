// README: Purchase and wallet store backed by PostgreSQL.
package ticket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"ridepass/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, p *Purchase) error {
	quote, err := json.Marshal(p.Quote)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO ticket_purchases (
            id, order_id, user_id, booking_id, rides, granted_rides,
            quote, amount, currency, status, created_at
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		string(p.ID), p.OrderID, string(p.UserID), toStringPtr(p.BookingID),
		p.Rides, p.Quote.GrantedRides, quote,
		p.Amount.Amount, p.Amount.Currency, string(p.Status), p.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == openBookingIndex {
		return ErrConflict
	}
	return err
}

// openBookingIndex allows one pending or paid purchase per booking.
const openBookingIndex = "ticket_purchases_open_booking_idx"

const purchaseColumns = `id, order_id, user_id, booking_id, rides, quote, amount, currency,
               status, payment_key, created_at, paid_at`

func (s *Store) Get(ctx context.Context, orderID string) (*Purchase, error) {
	row := s.db.QueryRow(ctx, `SELECT `+purchaseColumns+` FROM ticket_purchases WHERE order_id = $1`, orderID)
	p, err := scanPurchase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Store) ListByUser(ctx context.Context, userID types.ID) ([]Purchase, error) {
	rows, err := s.db.Query(ctx, `SELECT `+purchaseColumns+`
        FROM ticket_purchases
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT 50`, string(userID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// OpenForBooking returns the pending or paid purchase of a booking, or
// ErrNotFound when every earlier attempt failed.
func (s *Store) OpenForBooking(ctx context.Context, bookingID types.ID) (*Purchase, error) {
	row := s.db.QueryRow(ctx, `SELECT `+purchaseColumns+`
        FROM ticket_purchases
        WHERE booking_id = $1 AND status IN ('pending', 'paid')
        ORDER BY created_at DESC
        LIMIT 1`, string(bookingID))
	p, err := scanPurchase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// MarkPaid moves a pending purchase to paid and adds its granted rides to the
// owner's wallet in one transaction.
func (s *Store) MarkPaid(ctx context.Context, orderID, paymentKey string, paidAt time.Time) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var (
		userID  string
		granted int
	)
	err = tx.QueryRow(ctx, `
        UPDATE ticket_purchases
        SET status = 'paid', payment_key = $1, paid_at = $2
        WHERE order_id = $3 AND status = 'pending'
        RETURNING user_id, granted_rides`,
		paymentKey, paidAt, orderID,
	).Scan(&userID, &granted)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, err = tx.Exec(ctx, `
        INSERT INTO ticket_wallets (user_id, rides, updated_at)
        VALUES ($1, $2, $3)
        ON CONFLICT (user_id) DO UPDATE SET
            rides = ticket_wallets.rides + EXCLUDED.rides,
            updated_at = EXCLUDED.updated_at`,
		userID, granted, paidAt,
	)
	if err != nil {
		return false, err
	}
	return true, tx.Commit(ctx)
}

func (s *Store) MarkFailed(ctx context.Context, orderID string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
        UPDATE ticket_purchases SET status = 'failed'
        WHERE order_id = $1 AND status = 'pending'`, orderID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Wallet(ctx context.Context, userID types.ID) (Wallet, error) {
	w := Wallet{UserID: userID}
	err := s.db.QueryRow(ctx, `
        SELECT rides, updated_at FROM ticket_wallets WHERE user_id = $1`, string(userID),
	).Scan(&w.Rides, &w.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return w, nil
	}
	return w, err
}

func scanPurchase(row pgx.Row) (*Purchase, error) {
	var (
		p                     Purchase
		id, userID, status    string
		bookingID, paymentKey *string
		quote                 []byte
	)
	err := row.Scan(&id, &p.OrderID, &userID, &bookingID, &p.Rides, &quote,
		&p.Amount.Amount, &p.Amount.Currency, &status, &paymentKey, &p.CreatedAt, &p.PaidAt)
	if err != nil {
		return nil, err
	}
	p.ID, p.UserID, p.Status = types.ID(id), types.ID(userID), Status(status)
	if bookingID != nil {
		b := types.ID(*bookingID)
		p.BookingID = &b
	}
	if paymentKey != nil {
		p.PaymentKey = *paymentKey
	}
	if err := json.Unmarshal(quote, &p.Quote); err != nil {
		return nil, err
	}
	return &p, nil
}

func toStringPtr(id *types.ID) *string {
	if id == nil {
		return nil
	}
	v := string(*id)
	return &v
}
