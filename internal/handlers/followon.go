package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/meridianpay/sagelink/internal/domain"
	"github.com/meridianpay/sagelink/internal/service"
)

// FollowOnRequest is the shared body for authorise and refund. All fields
// are optional: a missing amount defaults to the chain's original amount, a
// missing description to a templated one.
type FollowOnRequest struct {
	Amount      *int64 `json:"amount,omitempty" validate:"omitempty,gt=0"`
	Description string `json:"description,omitempty"`
	Reference   string `json:"reference,omitempty"`
}

type VoidRequest struct {
	Reference string `json:"reference,omitempty"`
}

// HandleAuthorise captures funds against a previous AUTHENTICATE transaction.
func (h *PaymentHandler) HandleAuthorise(w http.ResponseWriter, r *http.Request) {
	opts, err := h.decodeFollowOn(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	txID, err := h.payments.Authorise(r.Context(), r.PathValue("txID"), opts)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, TxResponse{TxID: txID})
}

// HandleRefund reverses captured funds for a chain started by the given
// AUTHENTICATE transaction.
func (h *PaymentHandler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	opts, err := h.decodeFollowOn(r)
	if err != nil {
		respondWithError(w, err)
		return
	}

	txID, err := h.payments.Refund(r.Context(), r.PathValue("txID"), opts)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, TxResponse{TxID: txID})
}

// HandleVoid cancels a transaction before settlement.
func (h *PaymentHandler) HandleVoid(w http.ResponseWriter, r *http.Request) {
	var req VoidRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, domain.NewValidationError(err))
		return
	}

	txID, err := h.payments.Void(r.Context(), r.PathValue("txID"), req.Reference)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, TxResponse{TxID: txID})
}

// HandleChain returns the audit trail for a transaction.
func (h *PaymentHandler) HandleChain(w http.ResponseWriter, r *http.Request) {
	records, err := h.payments.Chain(r.Context(), r.PathValue("txID"))
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, toChainResponse(records))
}

// decodeFollowOn tolerates an empty body: every follow-on field has a
// chain-derived default.
func (h *PaymentHandler) decodeFollowOn(r *http.Request) (service.FollowOnOptions, error) {
	var req FollowOnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return service.FollowOnOptions{}, domain.NewValidationError(err)
	}
	if err := h.validate.Struct(req); err != nil {
		return service.FollowOnOptions{}, domain.NewValidationError(err)
	}
	return service.FollowOnOptions{
		AmountCents: req.Amount,
		Description: req.Description,
		Reference:   req.Reference,
	}, nil
}
