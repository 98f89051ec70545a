package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meridianpay/sagelink/internal/domain"
	"github.com/meridianpay/sagelink/internal/gateway"
	"github.com/meridianpay/sagelink/internal/ports"
)

// PaymentService is the facade the surrounding system calls. One invocation
// is one chain resolution, one gateway round-trip and one record append;
// there is no internal retry and no shared mutable state beyond the store.
type PaymentService struct {
	store    ports.TransactionStore
	gateway  ports.Gateway
	resolver *ChainResolver
	locks    *chainLocks
	logger   *slog.Logger
}

func NewPaymentService(store ports.TransactionStore, gw ports.Gateway, logger *slog.Logger) *PaymentService {
	return &PaymentService{
		store:    store,
		gateway:  gw,
		resolver: NewChainResolver(store),
		locks:    newChainLocks(),
		logger:   logger,
	}
}

// AuthenticateCommand carries the caller-supplied fields for an initial
// AUTHENTICATE request. Optional blocks are nil when absent.
type AuthenticateCommand struct {
	AmountCents int64
	Currency    string
	Card        domain.Card
	Shipping    *domain.Address
	Billing     *domain.Address
	Description string
	Reference   string
}

// FollowOnOptions are the caller-supplied overrides for a chained request.
// A nil AmountCents and empty Description fall back to the defaults derived
// from the chain.
type FollowOnOptions struct {
	AmountCents *int64
	Description string
	Reference   string
}

// Authenticate registers a card transaction with the gateway and returns
// the gateway-issued tx id. The request/response pair is logged whether the
// gateway accepts or declines; a transport fault logs nothing because the
// outcome is unknown.
func (s *PaymentService) Authenticate(ctx context.Context, cmd AuthenticateCommand) (string, error) {
	vendorTxCode := uuid.NewString()
	params := gateway.AuthenticateParams(gateway.AuthenticateFields{
		VendorTxCode: vendorTxCode,
		AmountCents:  cmd.AmountCents,
		Currency:     cmd.Currency,
		Description:  cmd.Description,
		Card:         cmd.Card,
		Reference:    cmd.Reference,
		Shipping:     cmd.Shipping,
		Billing:      cmd.Billing,
	})

	resp, err := s.gateway.Authenticate(ctx, params)
	if err != nil {
		s.logger.Error("authenticate call failed", "vendor_tx_code", vendorTxCode, "error", err)
		return "", NewPaymentError(err)
	}

	rec := newRecord(domain.TxTypeAuthenticate, vendorTxCode, "", cmd.AmountCents, cmd.Currency, params, resp)
	if err := s.store.Append(ctx, rec); err != nil {
		return "", NewPaymentError(err)
	}

	if !resp.IsRegistered() {
		s.logger.Info("authenticate declined",
			"vendor_tx_code", vendorTxCode, "status", resp.Status, "detail", resp.StatusDetail)
		return "", NewPaymentError(domain.NewBusinessDeclineError(resp.StatusDetail))
	}

	s.logger.Info("authenticate accepted", "tx_id", resp.TxID, "vendor_tx_code", vendorTxCode)
	return resp.TxID, nil
}

// Authorise captures funds against a previous AUTHENTICATE transaction.
func (s *PaymentService) Authorise(ctx context.Context, txID string, opts FollowOnOptions) (string, error) {
	return s.followOn(ctx, domain.TxTypeAuthorise, txID, opts)
}

// Refund reverses captured funds. txID is the id of the original
// AUTHENTICATE transaction; the successful AUTHORISE leg is located from it.
func (s *PaymentService) Refund(ctx context.Context, txID string, opts FollowOnOptions) (string, error) {
	unlock := s.locks.lock(txID)
	defer unlock()
	return s.followOn(ctx, domain.TxTypeRefund, txID, opts)
}

// Void cancels a transaction before settlement. Like Refund, txID is the
// original AUTHENTICATE id.
func (s *PaymentService) Void(ctx context.Context, txID string, reference string) (string, error) {
	unlock := s.locks.lock(txID)
	defer unlock()
	return s.followOn(ctx, domain.TxTypeVoid, txID, FollowOnOptions{Reference: reference})
}

// Chain returns the audit trail for a transaction: the record itself plus
// everything chained off it, oldest first.
func (s *PaymentService) Chain(ctx context.Context, txID string) ([]*domain.TransactionRecord, error) {
	records, err := s.store.FindChain(ctx, txID)
	if err != nil {
		return nil, NewPaymentError(err)
	}
	if len(records) == 0 {
		return nil, NewPaymentError(domain.NewRecordNotFoundError(txID))
	}
	return records, nil
}

func (s *PaymentService) followOn(ctx context.Context, txType domain.TxType, txID string, opts FollowOnOptions) (string, error) {
	res, err := s.resolver.Resolve(ctx, txType, txID)
	if err != nil {
		return "", NewPaymentError(err)
	}

	fields, sentAmount := followOnFields(txType, res, opts)
	vendorTxCode := uuid.NewString()
	fields.VendorTxCode = vendorTxCode
	params := gateway.FollowOnParams(txType, res.Prev, fields)

	resp, err := s.call(ctx, txType, params)
	if err != nil {
		s.logger.Error("gateway call failed",
			"tx_type", txType, "related_tx_id", res.RelatedTxID, "error", err)
		return "", NewPaymentError(err)
	}

	rec := newRecord(txType, vendorTxCode, res.RelatedTxID, sentAmount, res.Currency, params, resp)
	if err := s.store.Append(ctx, rec); err != nil {
		return "", NewPaymentError(err)
	}

	if !resp.IsOK() {
		s.logger.Info("gateway declined",
			"tx_type", txType, "related_tx_id", res.RelatedTxID,
			"status", resp.Status, "detail", resp.StatusDetail)
		return "", NewPaymentError(domain.NewBusinessDeclineError(resp.StatusDetail))
	}

	s.logger.Info("gateway accepted",
		"tx_type", txType, "tx_id", resp.TxID, "related_tx_id", res.RelatedTxID)
	return resp.TxID, nil
}

// followOnFields merges the resolver's derived defaults with the caller's
// overrides per operation. VOID sends no amount and no description; REFUND
// additionally carries the chain's currency on the wire.
func followOnFields(txType domain.TxType, res *Resolution, opts FollowOnOptions) (gateway.FollowOnFields, int64) {
	if txType == domain.TxTypeVoid {
		return gateway.FollowOnFields{Reference: opts.Reference}, 0
	}

	amount := res.AmountCents
	if opts.AmountCents != nil {
		amount = *opts.AmountCents
	}
	description := res.Description
	if opts.Description != "" {
		description = opts.Description
	}

	fields := gateway.FollowOnFields{
		AmountCents: &amount,
		Description: description,
		Reference:   opts.Reference,
	}
	if txType == domain.TxTypeRefund {
		fields.Currency = res.Currency
	}
	return fields, amount
}

func (s *PaymentService) call(ctx context.Context, txType domain.TxType, params domain.Params) (*domain.GatewayResponse, error) {
	switch txType {
	case domain.TxTypeAuthorise:
		return s.gateway.Authorise(ctx, params)
	case domain.TxTypeRefund:
		return s.gateway.Refund(ctx, params)
	default:
		return s.gateway.Void(ctx, params)
	}
}

func newRecord(
	txType domain.TxType,
	vendorTxCode, relatedTxID string,
	amountCents int64,
	currency string,
	request domain.Params,
	resp *domain.GatewayResponse,
) *domain.TransactionRecord {
	return &domain.TransactionRecord{
		ID:           uuid.New(),
		TxID:         resp.TxID,
		VendorTxCode: vendorTxCode,
		TxType:       txType,
		TxAuthNum:    resp.TxAuthNum,
		SecurityKey:  resp.SecurityKey,
		RelatedTxID:  relatedTxID,
		Status:       resp.Status,
		StatusDetail: resp.StatusDetail,
		AmountCents:  amountCents,
		Currency:     currency,
		RawRequest:   scrubRequest(request),
		RawResponse:  resp.Raw.Clone(),
		CreatedAt:    time.Now().UTC(),
	}
}

// scrubRequest masks the card number to its last four digits and drops the
// CV2 entirely before the request is persisted.
func scrubRequest(params domain.Params) domain.Params {
	scrubbed := params.Clone()
	if number, ok := scrubbed["bankcard_number"]; ok {
		scrubbed["bankcard_number"] = maskCardNumber(number)
	}
	delete(scrubbed, "bankcard_cv2")
	return scrubbed
}

func maskCardNumber(number string) string {
	if len(number) <= 4 {
		return number
	}
	masked := make([]byte, len(number)-4)
	for i := range masked {
		masked[i] = '*'
	}
	return string(masked) + number[len(number)-4:]
}
