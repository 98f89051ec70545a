package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/meridianpay/sagelink/internal/domain"
	"github.com/meridianpay/sagelink/internal/service"
)

type CardRequest struct {
	Number      string `json:"number" validate:"required"`
	CV2         string `json:"cv2" validate:"required"`
	HolderName  string `json:"holder_name" validate:"required"`
	ExpiryMonth int    `json:"expiry_month" validate:"required,min=1,max=12"`
	ExpiryYear  int    `json:"expiry_year" validate:"required"`
}

type AddressRequest struct {
	Surname    string `json:"surname" validate:"required"`
	FirstNames string `json:"first_names" validate:"required"`
	Line1      string `json:"line1" validate:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" validate:"required"`
	Postcode   string `json:"postcode" validate:"required"`
	Country    string `json:"country" validate:"required,len=2"`
	State      string `json:"state"`
	Phone      string `json:"phone"`
}

type AuthenticateRequest struct {
	Amount      int64           `json:"amount" validate:"required,gt=0"`
	Currency    string          `json:"currency" validate:"required,len=3"`
	Card        CardRequest     `json:"card" validate:"required"`
	Shipping    *AddressRequest `json:"shipping_address,omitempty"`
	Billing     *AddressRequest `json:"billing_address,omitempty"`
	Description string          `json:"description,omitempty"`
	Reference   string          `json:"reference,omitempty"`
}

// HandleAuthenticate registers a new card transaction with the gateway and
// returns the gateway-issued transaction id.
func (h *PaymentHandler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, domain.NewValidationError(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondWithError(w, domain.NewValidationError(err))
		return
	}

	cmd := service.AuthenticateCommand{
		AmountCents: req.Amount,
		Currency:    req.Currency,
		Card: domain.Card{
			Number:      req.Card.Number,
			CV2:         req.Card.CV2,
			HolderName:  req.Card.HolderName,
			ExpiryMonth: req.Card.ExpiryMonth,
			ExpiryYear:  req.Card.ExpiryYear,
		},
		Shipping:    toAddress(req.Shipping),
		Billing:     toAddress(req.Billing),
		Description: req.Description,
		Reference:   req.Reference,
	}

	txID, err := h.payments.Authenticate(r.Context(), cmd)
	if err != nil {
		respondWithError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, TxResponse{TxID: txID})
}

func toAddress(a *AddressRequest) *domain.Address {
	if a == nil {
		return nil
	}
	return &domain.Address{
		Surname:    a.Surname,
		FirstNames: a.FirstNames,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		Postcode:   a.Postcode,
		Country:    a.Country,
		State:      a.State,
		Phone:      a.Phone,
	}
}
