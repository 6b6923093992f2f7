package testutil

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/google/uuid"

	domainErrors "github.com/solpayhq/solpay/internal/domain/errors"
	"github.com/solpayhq/solpay/internal/domain/merchant"
	"github.com/solpayhq/solpay/internal/domain/payment"
	"github.com/solpayhq/solpay/internal/jupiter"
)

// --- Merchant Repository Mock ---

// MockMerchantRepository is a mock implementation of merchant.Repository.
type MockMerchantRepository struct {
	mu     sync.Mutex
	byID   map[int64]*merchant.Merchant
	byUser map[uuid.UUID]*merchant.Merchant
	nextID int64

	GetByIDFunc     func(ctx context.Context, id int64) (*merchant.Merchant, error)
	GetByUserIDFunc func(ctx context.Context, userID uuid.UUID) (*merchant.Merchant, error)
	CreateFunc      func(ctx context.Context, m *merchant.Merchant) error
}

func NewMockMerchantRepository() *MockMerchantRepository {
	return &MockMerchantRepository{
		byID:   make(map[int64]*merchant.Merchant),
		byUser: make(map[uuid.UUID]*merchant.Merchant),
		nextID: 1,
	}
}

// AddMerchant seeds a merchant, assigning an id if none is set.
func (m *MockMerchantRepository) AddMerchant(shop *merchant.Merchant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if shop.ID == 0 {
		shop.ID = m.nextID
		m.nextID++
	}
	m.byID[shop.ID] = shop
	m.byUser[shop.UserID] = shop
}

func (m *MockMerchantRepository) GetByID(ctx context.Context, id int64) (*merchant.Merchant, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	shop, ok := m.byID[id]
	if !ok {
		return nil, domainErrors.ErrMerchantNotFound
	}
	return shop, nil
}

func (m *MockMerchantRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*merchant.Merchant, error) {
	if m.GetByUserIDFunc != nil {
		return m.GetByUserIDFunc(ctx, userID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	shop, ok := m.byUser[userID]
	if !ok {
		return nil, domainErrors.ErrMerchantNotFound
	}
	return shop, nil
}

func (m *MockMerchantRepository) Create(ctx context.Context, shop *merchant.Merchant) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, shop)
	}
	m.AddMerchant(shop)
	return nil
}

// --- Payment Repository Mock ---

// MockPaymentRepository is a mock implementation of payment.Repository.
type MockPaymentRepository struct {
	mu     sync.Mutex
	bySig  map[string]*payment.Record
	nextID int64

	CreateFunc           func(ctx context.Context, r *payment.Record) error
	GetByTxSignatureFunc func(ctx context.Context, sig string) (*payment.Record, error)
	ListByShopFunc       func(ctx context.Context, shopID int64, limit int) ([]*payment.Record, error)
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		bySig:  make(map[string]*payment.Record),
		nextID: 1,
	}
}

func (m *MockPaymentRepository) Create(ctx context.Context, r *payment.Record) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, r)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bySig[r.TxSignature]; exists {
		return domainErrors.ErrPaymentAlreadyRecorded
	}
	r.ID = m.nextID
	m.nextID++
	m.bySig[r.TxSignature] = r
	return nil
}

func (m *MockPaymentRepository) GetByTxSignature(ctx context.Context, sig string) (*payment.Record, error) {
	if m.GetByTxSignatureFunc != nil {
		return m.GetByTxSignatureFunc(ctx, sig)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.bySig[sig]
	if !ok {
		return nil, domainErrors.ErrPaymentNotFound
	}
	return r, nil
}

func (m *MockPaymentRepository) ListByShop(ctx context.Context, shopID int64, limit int) ([]*payment.Record, error) {
	if m.ListByShopFunc != nil {
		return m.ListByShopFunc(ctx, shopID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*payment.Record
	for _, r := range m.bySig {
		if r.ShopID == shopID {
			out = append(out, r)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Count returns how many records the mock holds.
func (m *MockPaymentRepository) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bySig)
}

// --- Quoter Mock ---

// MockQuoter is a mock implementation of service.Quoter that counts calls.
type MockQuoter struct {
	mu    sync.Mutex
	calls int

	QuoteFunc func(ctx context.Context, p jupiter.QuoteParams) (json.RawMessage, error)
}

func (m *MockQuoter) Quote(ctx context.Context, p jupiter.QuoteParams) (json.RawMessage, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.QuoteFunc != nil {
		return m.QuoteFunc(ctx, p)
	}
	return json.RawMessage(`{"outAmount":"1000000"}`), nil
}

func (m *MockQuoter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Swap Builder Mock ---

// MockSwapBuilder is a mock implementation of service.SwapBuilder.
type MockSwapBuilder struct {
	mu    sync.Mutex
	calls int

	BuildSwapFunc func(ctx context.Context, quote json.RawMessage, userPublicKey, destinationTokenAccount string) (string, error)
}

func (m *MockSwapBuilder) BuildSwap(ctx context.Context, quote json.RawMessage, userPublicKey, destinationTokenAccount string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.BuildSwapFunc != nil {
		return m.BuildSwapFunc(ctx, quote, userPublicKey, destinationTokenAccount)
	}
	return "", nil
}

func (m *MockSwapBuilder) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// --- Network Mock ---

// MockNetwork is a mock implementation of service.Network.
type MockNetwork struct {
	TokenDecimalsFunc func(ctx context.Context, mint solana.PublicKey) (uint8, error)
	AccountExistsFunc func(ctx context.Context, account solana.PublicKey) (bool, error)
	AddressTableFunc  func(ctx context.Context, key solana.PublicKey) (solana.PublicKeySlice, error)
	SimulateFunc      func(ctx context.Context, tx *solana.Transaction) error

	mu            sync.Mutex
	simulateCalls int
}

func (m *MockNetwork) TokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	if m.TokenDecimalsFunc != nil {
		return m.TokenDecimalsFunc(ctx, mint)
	}
	return 6, nil
}

func (m *MockNetwork) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	if m.AccountExistsFunc != nil {
		return m.AccountExistsFunc(ctx, account)
	}
	return true, nil
}

func (m *MockNetwork) AddressTable(ctx context.Context, key solana.PublicKey) (solana.PublicKeySlice, error) {
	if m.AddressTableFunc != nil {
		return m.AddressTableFunc(ctx, key)
	}
	return nil, nil
}

func (m *MockNetwork) Simulate(ctx context.Context, tx *solana.Transaction) error {
	m.mu.Lock()
	m.simulateCalls++
	m.mu.Unlock()
	if m.SimulateFunc != nil {
		return m.SimulateFunc(ctx, tx)
	}
	return nil
}

func (m *MockNetwork) SimulateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.simulateCalls
}
