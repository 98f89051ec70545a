package service

import (
	"context"
	"sync"

	"github.com/meridianpay/sagelink/internal/domain"
)

// MockTransactionStore is an in-memory append-only log for tests. Behavior
// can be overridden per call through the Fn fields.
type MockTransactionStore struct {
	mu      sync.RWMutex
	records []*domain.TransactionRecord

	FindByTxIDFn  func(ctx context.Context, txID string, types ...domain.TxType) (*domain.TransactionRecord, error)
	FindRelatedFn func(ctx context.Context, relatedTxID string, txType domain.TxType, status string) (*domain.TransactionRecord, error)
	FindChainFn   func(ctx context.Context, txID string) ([]*domain.TransactionRecord, error)
	AppendFn      func(ctx context.Context, rec *domain.TransactionRecord) error
}

func NewMockTransactionStore() *MockTransactionStore {
	return &MockTransactionStore{}
}

func (m *MockTransactionStore) Append(ctx context.Context, rec *domain.TransactionRecord) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, rec)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *MockTransactionStore) FindByTxID(ctx context.Context, txID string, types ...domain.TxType) (*domain.TransactionRecord, error) {
	if m.FindByTxIDFn != nil {
		return m.FindByTxIDFn(ctx, txID, types...)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if rec.TxID != txID || rec.TxID == "" {
			continue
		}
		if len(types) == 0 || containsType(types, rec.TxType) {
			return rec, nil
		}
	}
	return nil, domain.ErrNoRecord
}

func (m *MockTransactionStore) FindRelated(ctx context.Context, relatedTxID string, txType domain.TxType, status string) (*domain.TransactionRecord, error) {
	if m.FindRelatedFn != nil {
		return m.FindRelatedFn(ctx, relatedTxID, txType, status)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		rec := m.records[i]
		if rec.RelatedTxID == relatedTxID && rec.TxType == txType && rec.Status == status {
			return rec, nil
		}
	}
	return nil, domain.ErrNoRecord
}

func (m *MockTransactionStore) FindChain(ctx context.Context, txID string) ([]*domain.TransactionRecord, error) {
	if m.FindChainFn != nil {
		return m.FindChainFn(ctx, txID)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := map[string]bool{txID: true}
	var chain []*domain.TransactionRecord
	for _, rec := range m.records {
		if (rec.TxID != "" && ids[rec.TxID]) || ids[rec.RelatedTxID] {
			chain = append(chain, rec)
			if rec.TxID != "" {
				ids[rec.TxID] = true
			}
		}
	}
	return chain, nil
}

// Records returns a snapshot of everything appended so far.
func (m *MockTransactionStore) Records() []*domain.TransactionRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.TransactionRecord, len(m.records))
	copy(out, m.records)
	return out
}

func containsType(types []domain.TxType, t domain.TxType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

// MockGateway answers every operation with a canned OK response unless the
// matching Fn field is set. Calls records the params each operation saw.
type MockGateway struct {
	mu    sync.Mutex
	Calls []MockGatewayCall

	AuthenticateFn func(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error)
	AuthoriseFn    func(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error)
	RefundFn       func(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error)
	VoidFn         func(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error)
}

type MockGatewayCall struct {
	Op     string
	Params domain.Params
}

func (m *MockGateway) Authenticate(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error) {
	m.record("authenticate", params)
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, params)
	}
	return okResponse("tx-auth-1"), nil
}

func (m *MockGateway) Authorise(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error) {
	m.record("authorise", params)
	if m.AuthoriseFn != nil {
		return m.AuthoriseFn(ctx, params)
	}
	return okResponse("tx-authorise-1"), nil
}

func (m *MockGateway) Refund(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error) {
	m.record("refund", params)
	if m.RefundFn != nil {
		return m.RefundFn(ctx, params)
	}
	return okResponse("tx-refund-1"), nil
}

func (m *MockGateway) Void(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error) {
	m.record("void", params)
	if m.VoidFn != nil {
		return m.VoidFn(ctx, params)
	}
	return okResponse("tx-void-1"), nil
}

// LastCall returns the most recent call, or nil when none was made.
func (m *MockGateway) LastCall() *MockGatewayCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	call := m.Calls[len(m.Calls)-1]
	return &call
}

func (m *MockGateway) record(op string, params domain.Params) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockGatewayCall{Op: op, Params: params.Clone()})
}

func okResponse(txID string) *domain.GatewayResponse {
	return &domain.GatewayResponse{
		Status:      domain.StatusOK,
		TxID:        txID,
		TxAuthNum:   "auth-" + txID,
		SecurityKey: "key-" + txID,
		Raw: domain.Params{
			"status":       domain.StatusOK,
			"tx_id":        txID,
			"tx_auth_num":  "auth-" + txID,
			"security_key": "key-" + txID,
		},
	}
}
