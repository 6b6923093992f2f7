package payment

import "context"

// Repository defines persistence operations for verification records.
type Repository interface {
	// Create inserts a record and populates its ID. Returns
	// errors.ErrPaymentAlreadyRecorded when a record with the same
	// transaction signature already exists.
	Create(ctx context.Context, r *Record) error
	// GetByTxSignature retrieves the record for a transaction signature.
	// Returns errors.ErrPaymentNotFound when no record exists.
	GetByTxSignature(ctx context.Context, sig string) (*Record, error)
	// ListByShop lists records for a shop, newest first.
	ListByShop(ctx context.Context, shopID int64, limit int) ([]*Record, error)
}
