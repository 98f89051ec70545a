package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/sagelink/internal/domain"
	"github.com/meridianpay/sagelink/internal/gateway"
	"github.com/meridianpay/sagelink/internal/handlers"
	"github.com/meridianpay/sagelink/internal/service"
)

// stubPayments implements handlers.PaymentService with overridable funcs so
// each test controls exactly one behavior.
type stubPayments struct {
	authenticateFn func(ctx context.Context, cmd service.AuthenticateCommand) (string, error)
	authoriseFn    func(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error)
	refundFn       func(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error)
	voidFn         func(ctx context.Context, txID string, reference string) (string, error)
	chainFn        func(ctx context.Context, txID string) ([]*domain.TransactionRecord, error)
}

func (s *stubPayments) Authenticate(ctx context.Context, cmd service.AuthenticateCommand) (string, error) {
	if s.authenticateFn != nil {
		return s.authenticateFn(ctx, cmd)
	}
	return "tx-auth-1", nil
}

func (s *stubPayments) Authorise(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error) {
	if s.authoriseFn != nil {
		return s.authoriseFn(ctx, txID, opts)
	}
	return "tx-authorise-1", nil
}

func (s *stubPayments) Refund(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error) {
	if s.refundFn != nil {
		return s.refundFn(ctx, txID, opts)
	}
	return "tx-refund-1", nil
}

func (s *stubPayments) Void(ctx context.Context, txID string, reference string) (string, error) {
	if s.voidFn != nil {
		return s.voidFn(ctx, txID, reference)
	}
	return "tx-void-1", nil
}

func (s *stubPayments) Chain(ctx context.Context, txID string) ([]*domain.TransactionRecord, error) {
	if s.chainFn != nil {
		return s.chainFn(ctx, txID)
	}
	return nil, domain.NewRecordNotFoundError(txID)
}

func newTestServer(payments *stubPayments) *httptest.Server {
	mux := http.NewServeMux()
	handlers.NewPaymentHandler(payments).RegisterRoutes(mux)
	return httptest.NewServer(mux)
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, handlers.APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope handlers.APIResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return resp, envelope
}

func validAuthenticateBody() string {
	return `{
		"amount": 10000,
		"currency": "GBP",
		"description": "Order 1234",
		"card": {
			"number": "4111111111111111",
			"cv2": "123",
			"holder_name": "A Cardholder",
			"expiry_month": 4,
			"expiry_year": 2028
		}
	}`
}

func TestHandleAuthenticate_Success(t *testing.T) {
	payments := &stubPayments{}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/authenticate", validAuthenticateBody())

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, envelope.Success)
	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "tx-auth-1", data["tx_id"])
}

func TestHandleAuthenticate_PassesOptionalBlocks(t *testing.T) {
	var got service.AuthenticateCommand
	payments := &stubPayments{
		authenticateFn: func(ctx context.Context, cmd service.AuthenticateCommand) (string, error) {
			got = cmd
			return "tx-auth-1", nil
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	body := `{
		"amount": 10000,
		"currency": "GBP",
		"card": {
			"number": "4111111111111111",
			"cv2": "123",
			"holder_name": "A Cardholder",
			"expiry_month": 4,
			"expiry_year": 2028
		},
		"shipping_address": {
			"surname": "Smith", "first_names": "Jo", "line1": "1 High St",
			"city": "London", "postcode": "N1 1AA", "country": "GB", "phone": "0123456789"
		}
	}`
	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/payments/authenticate", body)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, int64(10000), got.AmountCents)
	require.NotNil(t, got.Shipping)
	assert.Equal(t, "Smith", got.Shipping.Surname)
	assert.Equal(t, "0123456789", got.Shipping.Phone)
	assert.Nil(t, got.Billing)
}

func TestHandleAuthenticate_ValidationFailure(t *testing.T) {
	srv := newTestServer(&stubPayments{})
	defer srv.Close()

	// currency must be a 3-letter code
	body := strings.Replace(validAuthenticateBody(), `"GBP"`, `"POUNDS"`, 1)
	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/authenticate", body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, domain.ErrCodeValidation, envelope.Error.Code)
}

func TestHandleAuthenticate_MalformedJSON(t *testing.T) {
	srv := newTestServer(&stubPayments{})
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/authenticate", `{"amount": `)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, domain.ErrCodeValidation, envelope.Error.Code)
}

func TestHandleAuthenticate_DeclineMapsTo402(t *testing.T) {
	payments := &stubPayments{
		authenticateFn: func(ctx context.Context, cmd service.AuthenticateCommand) (string, error) {
			return "", service.NewPaymentError(domain.NewBusinessDeclineError("Card declined by issuer"))
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/authenticate", validAuthenticateBody())

	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, domain.ErrCodeBusinessDecline, envelope.Error.Code)
	assert.Equal(t, "Card declined by issuer", envelope.Error.Message)
}

func TestHandleAuthenticate_TransportFaultMapsTo502(t *testing.T) {
	payments := &stubPayments{
		authenticateFn: func(ctx context.Context, cmd service.AuthenticateCommand) (string, error) {
			return "", service.NewPaymentError(&gateway.TransportError{
				Op:  "authenticate",
				Err: errors.New("connection refused"),
			})
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/authenticate", validAuthenticateBody())

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "TRANSPORT_FAULT", envelope.Error.Code)
}

func TestHandleAuthorise_EmptyBodyUsesDefaults(t *testing.T) {
	var gotTxID string
	var gotOpts service.FollowOnOptions
	payments := &stubPayments{
		authoriseFn: func(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error) {
			gotTxID = txID
			gotOpts = opts
			return "tx-authorise-1", nil
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/tx-auth/authorise", "")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, envelope.Success)
	assert.Equal(t, "tx-auth", gotTxID)
	assert.Nil(t, gotOpts.AmountCents)
	assert.Empty(t, gotOpts.Description)
}

func TestHandleRefund_PartialAmount(t *testing.T) {
	var gotOpts service.FollowOnOptions
	payments := &stubPayments{
		refundFn: func(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error) {
			gotOpts = opts
			return "tx-refund-1", nil
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/payments/tx-auth/refund", `{"amount": 2550, "description": "partial"}`)

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, gotOpts.AmountCents)
	assert.Equal(t, int64(2550), *gotOpts.AmountCents)
	assert.Equal(t, "partial", gotOpts.Description)
}

func TestHandleRefund_NegativeAmountRejected(t *testing.T) {
	srv := newTestServer(&stubPayments{})
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/tx-auth/refund", `{"amount": -1}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, domain.ErrCodeValidation, envelope.Error.Code)
}

func TestHandleRefund_ChainNotFoundMapsTo409(t *testing.T) {
	payments := &stubPayments{
		refundFn: func(ctx context.Context, txID string, opts service.FollowOnOptions) (string, error) {
			return "", service.NewPaymentError(domain.NewChainNotFoundError(
				"no successful authorise transaction found for the AUTHENTICATE transaction with ID %s", txID))
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/tx-auth/refund", "")

	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, domain.ErrCodeChainNotFound, envelope.Error.Code)
}

func TestHandleVoid_EmptyBody(t *testing.T) {
	var gotTxID string
	payments := &stubPayments{
		voidFn: func(ctx context.Context, txID string, reference string) (string, error) {
			gotTxID = txID
			return "tx-void-1", nil
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodPost, srv.URL+"/payments/tx-auth/void", "")

	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, envelope.Success)
	assert.Equal(t, "tx-auth", gotTxID)
}

func TestHandleChain_Success(t *testing.T) {
	now := time.Now().UTC()
	payments := &stubPayments{
		chainFn: func(ctx context.Context, txID string) ([]*domain.TransactionRecord, error) {
			return []*domain.TransactionRecord{
				{TxID: "tx-auth", TxType: domain.TxTypeAuthenticate, Status: domain.StatusOK, AmountCents: 10000, Currency: "GBP", CreatedAt: now},
				{TxID: "tx-authorise", TxType: domain.TxTypeAuthorise, RelatedTxID: "tx-auth", Status: domain.StatusOK, AmountCents: 10000, Currency: "GBP", CreatedAt: now},
			}, nil
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/payments/tx-auth", "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)
	data, ok := envelope.Data.([]interface{})
	require.True(t, ok)
	require.Len(t, data, 2)
	first, ok := data[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "AUTHENTICATE", first["tx_type"])
}

func TestHandleChain_UnknownTxIDMapsTo404(t *testing.T) {
	srv := newTestServer(&stubPayments{})
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/payments/tx-missing", "")

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, domain.ErrCodeRecordNotFound, envelope.Error.Code)
}

func TestRespondWithError_UnknownErrorMapsTo500(t *testing.T) {
	payments := &stubPayments{
		chainFn: func(ctx context.Context, txID string) ([]*domain.TransactionRecord, error) {
			return nil, errors.New("kaboom")
		},
	}
	srv := newTestServer(payments)
	defer srv.Close()

	resp, envelope := doJSON(t, http.MethodGet, srv.URL+"/payments/tx-auth", "")

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
}
