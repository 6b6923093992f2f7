package merchant

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	"github.com/solpayhq/solpay/internal/domain/errors"
)

// Merchant represents a shop that accepts token payments. The receiving key
// is the owner wallet, not the token account; the destination token account
// is derived per asset at payment time.
type Merchant struct {
	ID              int64
	UserID          uuid.UUID
	Name            string
	Description     string
	SolanaPublicKey string
	WebhookURL      string
	CreatedAt       time.Time
}

// NewMerchant creates a merchant record after validating its fields.
func NewMerchant(userID uuid.UUID, name, description, solanaPublicKey, webhookURL string) (*Merchant, error) {
	if len(name) < 3 {
		return nil, errors.NewValidationError("businessName", "must be at least 3 characters")
	}
	if len(description) < 10 {
		return nil, errors.NewValidationError("businessDescription", "must be at least 10 characters")
	}
	if _, err := solana.PublicKeyFromBase58(solanaPublicKey); err != nil {
		return nil, errors.NewValidationError("solanaPubKey", "invalid Solana public key")
	}
	return &Merchant{
		UserID:          userID,
		Name:            name,
		Description:     description,
		SolanaPublicKey: solanaPublicKey,
		WebhookURL:      webhookURL,
		CreatedAt:       time.Now().UTC(),
	}, nil
}

// ReceivingKey returns the merchant's wallet public key.
func (m *Merchant) ReceivingKey() (solana.PublicKey, error) {
	return solana.PublicKeyFromBase58(m.SolanaPublicKey)
}
