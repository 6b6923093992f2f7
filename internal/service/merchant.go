package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/merchant"
	"github.com/solpayhq/solpay/internal/domain/payment"
)

// MerchantService exposes the shop read/create operations the payment
// surface needs. The core flow only consumes lookups; creation exists for
// onboarding.
type MerchantService struct {
	merchants merchant.Repository
	payments  payment.Repository
	logger    zerolog.Logger
}

// NewMerchantService creates a MerchantService.
func NewMerchantService(merchants merchant.Repository, payments payment.Repository, logger zerolog.Logger) *MerchantService {
	return &MerchantService{
		merchants: merchants,
		payments:  payments,
		logger:    logger,
	}
}

// Theme is the display theme served with a public profile.
type Theme struct {
	TextColor       string `json:"textColor"`
	AccentColor     string `json:"accentColor"`
	CardBackground  string `json:"cardBackground"`
	ButtonTextColor string `json:"buttonTextColor"`
}

// Profile is the public shop profile.
type Profile struct {
	ID               int64    `json:"id"`
	BusinessName     string   `json:"businessName"`
	Description      string   `json:"description"`
	LogoURL          string   `json:"logoUrl"`
	Industry         string   `json:"industry"`
	SolanaPublicKey  string   `json:"solanaPublicKey"`
	Verified         bool     `json:"verified"`
	SupportedTokens  []string `json:"supportedTokens"`
	Theme            Theme    `json:"theme"`
	PublicProfileURL string   `json:"publicProfileUrl"`
}

// GetProfile returns the public profile for a shop.
func (s *MerchantService) GetProfile(ctx context.Context, shopID int64) (*Profile, error) {
	m, err := s.merchants.GetByID(ctx, shopID)
	if err != nil {
		return nil, err
	}
	return &Profile{
		ID:              m.ID,
		BusinessName:    m.Name,
		Description:     m.Description,
		LogoURL:         "https://images.unsplash.com/photo-1544365558-35aa4afcf11f?q=80&w=100&h=100&auto=format&fit=crop",
		Industry:        "Food & Beverage",
		SolanaPublicKey: m.SolanaPublicKey,
		Verified:        true,
		SupportedTokens: []string{"solana", "usdc"},
		Theme: Theme{
			TextColor:       "#2d2d2d",
			AccentColor:     "#6a4831",
			CardBackground:  "#f5f0ea",
			ButtonTextColor: "#ffffff",
		},
		PublicProfileURL: fmt.Sprintf("/merchant/%d", m.ID),
	}, nil
}

// CreateMerchantInput holds the validated input for creating a shop.
type CreateMerchantInput struct {
	UserID              uuid.UUID
	BusinessName        string
	BusinessDescription string
	SolanaPubKey        string
	WebhookURL          string
}

// Create registers a new shop. A user owns at most one shop; a second
// create attempt fails with ErrMerchantExists.
func (s *MerchantService) Create(ctx context.Context, in CreateMerchantInput) (*merchant.Merchant, error) {
	existing, err := s.merchants.GetByUserID(ctx, in.UserID)
	if err != nil && !errors.Is(err, domainErrors.ErrMerchantNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domainErrors.ErrMerchantExists
	}

	m, err := merchant.NewMerchant(in.UserID, in.BusinessName, in.BusinessDescription, in.SolanaPubKey, in.WebhookURL)
	if err != nil {
		return nil, err
	}
	if err := s.merchants.Create(ctx, m); err != nil {
		return nil, err
	}
	s.logger.Info().Int64("shop_id", m.ID).Str("user_id", in.UserID.String()).Msg("merchant created")
	return m, nil
}

// RecentPayments lists the latest recorded payments for a shop.
func (s *MerchantService) RecentPayments(ctx context.Context, shopID int64, limit int) ([]*payment.Record, error) {
	if _, err := s.merchants.GetByID(ctx, shopID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.payments.ListByShop(ctx, shopID, limit)
}
