package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/payment"
)

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) scanRecord(row pgx.Row) (*payment.Record, error) {
	rec := &payment.Record{}
	var status string
	err := row.Scan(&rec.ID, &rec.ShopID, &rec.Email, &rec.Name, &rec.Amount,
		&status, &rec.TxSignature, &rec.Reference, &rec.CreatedAt, &rec.CompletedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	rec.Status = payment.Status(status)
	return rec, nil
}

// Create inserts a payment record and populates its ID. The unique index on
// tx_signature makes concurrent verifications of the same transaction
// collapse into a single row.
func (r *PaymentRepository) Create(ctx context.Context, rec *payment.Record) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO payments (shop_id, email, name, amount, status, tx_signature, reference, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		rec.ShopID, rec.Email, rec.Name, rec.Amount, string(rec.Status),
		rec.TxSignature, rec.Reference, rec.CreatedAt, rec.CompletedAt,
	).Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrPaymentAlreadyRecorded
		}
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByTxSignature retrieves the record for a transaction signature.
func (r *PaymentRepository) GetByTxSignature(ctx context.Context, sig string) (*payment.Record, error) {
	return r.scanRecord(r.pool.QueryRow(ctx,
		`SELECT id, shop_id, email, name, amount, status, tx_signature, reference, created_at, completed_at
		 FROM payments WHERE tx_signature = $1`, sig))
}

// ListByShop lists records for a shop, newest first.
func (r *PaymentRepository) ListByShop(ctx context.Context, shopID int64, limit int) ([]*payment.Record, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, shop_id, email, name, amount, status, tx_signature, reference, created_at, completed_at
		 FROM payments WHERE shop_id = $1 ORDER BY created_at DESC LIMIT $2`,
		shopID, limit)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var records []*payment.Record
	for rows.Next() {
		rec, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return records, nil
}
