package payment

import (
	"time"

	"github.com/solpayhq/solpay/internal/domain/errors"
)

// Status represents the verification record status in the state machine.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Record is the persisted outcome of verifying a customer-signed
// transaction for a shop. One record exists per transaction signature.
type Record struct {
	ID          int64
	ShopID      int64
	Email       string
	Name        string
	Amount      int64
	Status      Status
	TxSignature string
	Reference   string
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// NewRecord creates a pending verification record.
func NewRecord(shopID int64, email, name string, amount int64, txSignature, reference string) (*Record, error) {
	if amount <= 0 {
		return nil, errors.NewValidationError("amount", "must be greater than 0")
	}
	if txSignature == "" {
		return nil, errors.NewValidationError("signedTransaction", "missing transaction signature")
	}
	return &Record{
		ShopID:      shopID,
		Email:       email,
		Name:        name,
		Amount:      amount,
		Status:      StatusPending,
		TxSignature: txSignature,
		Reference:   reference,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

// MarkCompleted transitions the record to completed. Only pending records
// may complete; terminal states never transition.
func (r *Record) MarkCompleted() error {
	if r.Status != StatusPending {
		return errors.ErrInvalidStateTransition
	}
	r.Status = StatusCompleted
	now := time.Now().UTC()
	r.CompletedAt = &now
	return nil
}

// MarkFailed transitions the record to failed.
func (r *Record) MarkFailed() error {
	if r.Status != StatusPending {
		return errors.ErrInvalidStateTransition
	}
	r.Status = StatusFailed
	return nil
}

// IsTerminal reports whether the record reached a terminal state.
func (r *Record) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusFailed
}
