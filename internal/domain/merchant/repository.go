package merchant

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for merchants.
type Repository interface {
	// GetByID retrieves a merchant by shop id. Returns
	// errors.ErrMerchantNotFound when absent.
	GetByID(ctx context.Context, id int64) (*Merchant, error)
	// GetByUserID retrieves the shop owned by a user, if any.
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Merchant, error)
	// Create inserts a new merchant and populates its ID.
	Create(ctx context.Context, m *Merchant) error
}
