// Package handlers exposes the payment facade over JSON HTTP.
package handlers

import (
	"context"
	"net/http"

	"github.com/go-playground/validator"
	"github.com/meridianpay/sagelink/internal/domain"
	"github.com/meridianpay/sagelink/internal/service"
)

// PaymentService is the facade surface the handlers consume.
type PaymentService interface {
	Authenticate(ctx context.Context, cmd service.AuthenticateCommand) (string, error)
	Authorise(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error)
	Refund(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error)
	Void(ctx context.Context, txID string, reference string) (string, error)
	Chain(ctx context.Context, txID string) ([]*domain.TransactionRecord, error)
}

type PaymentHandler struct {
	payments PaymentService
	validate *validator.Validate
}

func NewPaymentHandler(payments PaymentService) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		validate: validator.New(),
	}
}

func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /payments/authenticate", h.HandleAuthenticate)
	mux.HandleFunc("POST /payments/{txID}/authorise", h.HandleAuthorise)
	mux.HandleFunc("POST /payments/{txID}/refund", h.HandleRefund)
	mux.HandleFunc("POST /payments/{txID}/void", h.HandleVoid)
	mux.HandleFunc("GET /payments/{txID}", h.HandleChain)
}
