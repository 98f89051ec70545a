package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/meridianpay/sagelink/internal/domain"
	"github.com/meridianpay/sagelink/internal/gateway"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TxResponse struct {
	TxID string `json:"tx_id"`
}

type RecordResponse struct {
	TxID         string    `json:"tx_id,omitempty"`
	VendorTxCode string    `json:"vendor_tx_code"`
	TxType       string    `json:"tx_type"`
	RelatedTxID  string    `json:"related_tx_id,omitempty"`
	Status       string    `json:"status"`
	StatusDetail string    `json:"status_detail,omitempty"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	CreatedAt    time.Time `json:"created_at"`
}

func toChainResponse(records []*domain.TransactionRecord) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, RecordResponse{
			TxID:         rec.TxID,
			VendorTxCode: rec.VendorTxCode,
			TxType:       string(rec.TxType),
			RelatedTxID:  rec.RelatedTxID,
			Status:       rec.Status,
			StatusDetail: rec.StatusDetail,
			Amount:       rec.AmountCents,
			Currency:     rec.Currency,
			CreatedAt:    rec.CreatedAt,
		})
	}
	return out
}

func respondWithJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := APIResponse{
		Success: status >= 200 && status < 300,
	}

	if response.Success {
		response.Data = data
	} else {
		if apiErr, ok := data.(*APIError); ok {
			response.Error = apiErr
		}
	}

	_ = json.NewEncoder(w).Encode(response)
}

// respondWithError maps the internal failure kinds to HTTP statuses. The
// facade collapses everything into PaymentError, so the original kind is
// recovered through the unwrap chain.
func respondWithError(w http.ResponseWriter, err error) {
	code := "INTERNAL_ERROR"
	message := err.Error()
	status := http.StatusInternalServerError

	var domainErr *domain.DomainError
	if _, ok := gateway.IsTransportError(err); ok {
		code = "TRANSPORT_FAULT"
		status = http.StatusBadGateway
	} else if errors.As(err, &domainErr) {
		code = domainErr.Code
		message = domainErr.Message

		switch domainErr.Code {
		case domain.ErrCodeValidation:
			status = http.StatusBadRequest
		case domain.ErrCodeRecordNotFound:
			status = http.StatusNotFound
		case domain.ErrCodeChainNotFound:
			status = http.StatusConflict
		case domain.ErrCodeBusinessDecline:
			status = http.StatusPaymentRequired
		default:
			status = http.StatusBadRequest
		}
	}

	respondWithJSON(w, status, &APIError{
		Code:    code,
		Message: message,
	})
}
