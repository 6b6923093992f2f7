package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/merchant"
)

// MerchantRepository implements merchant.Repository using PostgreSQL.
type MerchantRepository struct {
	pool *pgxpool.Pool
}

// NewMerchantRepository creates a new MerchantRepository.
func NewMerchantRepository(pool *pgxpool.Pool) *MerchantRepository {
	return &MerchantRepository{pool: pool}
}

func (r *MerchantRepository) scanMerchant(row pgx.Row) (*merchant.Merchant, error) {
	m := &merchant.Merchant{}
	err := row.Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &m.SolanaPublicKey, &m.WebhookURL, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrMerchantNotFound
		}
		return nil, fmt.Errorf("scan shop: %w", err)
	}
	return m, nil
}

// GetByID retrieves a shop by its ID.
func (r *MerchantRepository) GetByID(ctx context.Context, id int64) (*merchant.Merchant, error) {
	return r.scanMerchant(r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, description, solana_public_key, webhook_url, created_at
		 FROM shops WHERE id = $1`, id))
}

// GetByUserID retrieves the shop owned by a user.
func (r *MerchantRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*merchant.Merchant, error) {
	return r.scanMerchant(r.pool.QueryRow(ctx,
		`SELECT id, user_id, name, description, solana_public_key, webhook_url, created_at
		 FROM shops WHERE user_id = $1`, userID))
}

// Create inserts a new shop and populates its ID.
func (r *MerchantRepository) Create(ctx context.Context, m *merchant.Merchant) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO shops (user_id, name, description, solana_public_key, webhook_url, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		m.UserID, m.Name, m.Description, m.SolanaPublicKey, m.WebhookURL, m.CreatedAt,
	).Scan(&m.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrMerchantExists
		}
		return fmt.Errorf("insert shop: %w", err)
	}
	return nil
}
