package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meridianpay/sagelink/internal/domain"
)

// transactionModel mirrors the transactions table. The flat request and
// response mappings are stored as jsonb; related_tx_id is nullable because
// AUTHENTICATE records act on nothing.
type transactionModel struct {
	ID           uuid.UUID
	TxID         string
	VendorTxCode string
	TxType       string
	TxAuthNum    string
	SecurityKey  string
	RelatedTxID  *string
	Status       string
	StatusDetail string
	AmountCents  int64
	Currency     string
	RawRequest   []byte
	RawResponse  []byte
	CreatedAt    time.Time
}

func toDBModel(rec *domain.TransactionRecord) (*transactionModel, error) {
	rawRequest, err := json.Marshal(rec.RawRequest)
	if err != nil {
		return nil, fmt.Errorf("marshal raw request: %w", err)
	}
	rawResponse, err := json.Marshal(rec.RawResponse)
	if err != nil {
		return nil, fmt.Errorf("marshal raw response: %w", err)
	}

	m := &transactionModel{
		ID:           rec.ID,
		TxID:         rec.TxID,
		VendorTxCode: rec.VendorTxCode,
		TxType:       string(rec.TxType),
		TxAuthNum:    rec.TxAuthNum,
		SecurityKey:  rec.SecurityKey,
		Status:       rec.Status,
		StatusDetail: rec.StatusDetail,
		AmountCents:  rec.AmountCents,
		Currency:     rec.Currency,
		RawRequest:   rawRequest,
		RawResponse:  rawResponse,
		CreatedAt:    rec.CreatedAt,
	}
	if rec.RelatedTxID != "" {
		related := rec.RelatedTxID
		m.RelatedTxID = &related
	}
	return m, nil
}

func toDomainModel(m *transactionModel) (*domain.TransactionRecord, error) {
	var rawRequest, rawResponse domain.Params
	if err := json.Unmarshal(m.RawRequest, &rawRequest); err != nil {
		return nil, fmt.Errorf("unmarshal raw request: %w", err)
	}
	if err := json.Unmarshal(m.RawResponse, &rawResponse); err != nil {
		return nil, fmt.Errorf("unmarshal raw response: %w", err)
	}

	rec := &domain.TransactionRecord{
		ID:           m.ID,
		TxID:         m.TxID,
		VendorTxCode: m.VendorTxCode,
		TxType:       domain.TxType(m.TxType),
		TxAuthNum:    m.TxAuthNum,
		SecurityKey:  m.SecurityKey,
		Status:       m.Status,
		StatusDetail: m.StatusDetail,
		AmountCents:  m.AmountCents,
		Currency:     m.Currency,
		RawRequest:   rawRequest,
		RawResponse:  rawResponse,
		CreatedAt:    m.CreatedAt,
	}
	if m.RelatedTxID != nil {
		rec.RelatedTxID = *m.RelatedTxID
	}
	return rec, nil
}
