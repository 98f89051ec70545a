package service

import (
	"context"
	"fmt"

	"github.com/meridianpay/sagelink/internal/domain"
	"github.com/meridianpay/sagelink/internal/ports"
)

// The gateway's protocol has no explicit state field; which step may follow
// which is discoverable only from the log. The resolver encodes that state
// machine in one place:
//
//	AUTHENTICATE -> AUTHORISE -> {REFUND, VOID}
//
// AUTHORISE chains directly off the AUTHENTICATE record. REFUND and VOID
// start from the same AUTHENTICATE tx id but present the security material
// of the successful AUTHORISE leg, because the gateway binds those calls to
// the capture, not the registration.
type ChainResolver struct {
	store ports.TransactionStore
}

func NewChainResolver(store ports.TransactionStore) *ChainResolver {
	return &ChainResolver{store: store}
}

// Resolution is the output of a successful chain lookup: the security
// bundle for the next call plus the defaults derived from the prior legs.
type Resolution struct {
	Prev        domain.PreviousTxn
	RelatedTxID string // value recorded on the new record
	AmountCents int64  // default when the caller supplies no amount
	Currency    string
	Description string // default when the caller supplies no description
}

// Resolve locates the prerequisite record(s) for a follow-on of the given
// type starting from txID. It returns RECORD_NOT_FOUND when no record
// carries txID at all, and CHAIN_NOT_FOUND naming the missing link when a
// record exists but the chain cannot legally proceed.
func (r *ChainResolver) Resolve(ctx context.Context, txType domain.TxType, txID string) (*Resolution, error) {
	switch txType {
	case domain.TxTypeAuthorise:
		return r.resolveAuthorise(ctx, txID)
	case domain.TxTypeRefund, domain.TxTypeVoid:
		return r.resolveRefundOrVoid(ctx, txType, txID)
	default:
		return nil, fmt.Errorf("tx type %s cannot chain off a prior transaction", txType)
	}
}

func (r *ChainResolver) resolveAuthorise(ctx context.Context, txID string) (*Resolution, error) {
	authenticateTxn, err := r.findAuthenticate(ctx, txID)
	if err != nil {
		return nil, err
	}

	return &Resolution{
		Prev:        authenticateTxn.PreviousTxn(),
		RelatedTxID: authenticateTxn.TxID,
		AmountCents: authenticateTxn.AmountCents,
		Currency:    authenticateTxn.Currency,
		Description: fmt.Sprintf("Authorise TX ID %s", txID),
	}, nil
}

func (r *ChainResolver) resolveRefundOrVoid(ctx context.Context, txType domain.TxType, txID string) (*Resolution, error) {
	authenticateTxn, err := r.findAuthenticate(ctx, txID)
	if err != nil {
		return nil, err
	}

	authoriseTxn, err := r.store.FindRelated(ctx, authenticateTxn.TxID, domain.TxTypeAuthorise, domain.StatusOK)
	if err != nil {
		if err == domain.ErrNoRecord {
			return nil, domain.NewChainNotFoundError(
				"no successful authorise transaction found for the AUTHENTICATE transaction with ID %s", txID)
		}
		return nil, err
	}

	// A voided authorise leg supports no further follow-ons. Combined with
	// the per-chain lock in the facade this closes the in-process
	// double-void race; cross-process enforcement sits with the gateway.
	if _, err := r.store.FindRelated(ctx, authoriseTxn.TxID, domain.TxTypeVoid, domain.StatusOK); err == nil {
		return nil, domain.NewChainNotFoundError(
			"authorise transaction %s has already been voided", authoriseTxn.TxID)
	} else if err != domain.ErrNoRecord {
		return nil, err
	}

	// The security material comes from the AUTHORISE leg, as does the
	// refund's currency. The default refund amount is the AUTHENTICATE
	// amount, which can differ from the authorised amount.
	return &Resolution{
		Prev:        authoriseTxn.PreviousTxn(),
		RelatedTxID: authoriseTxn.TxID,
		AmountCents: authenticateTxn.AmountCents,
		Currency:    authoriseTxn.Currency,
		Description: fmt.Sprintf("Refund TX ID %s", txID),
	}, nil
}

// findAuthenticate fetches the AUTHENTICATE record every follow-on starts
// from, distinguishing "no record at all" from "record of the wrong type".
func (r *ChainResolver) findAuthenticate(ctx context.Context, txID string) (*domain.TransactionRecord, error) {
	rec, err := r.store.FindByTxID(ctx, txID)
	if err != nil {
		if err == domain.ErrNoRecord {
			return nil, domain.NewRecordNotFoundError(txID)
		}
		return nil, err
	}
	if rec.TxType != domain.TxTypeAuthenticate {
		return nil, domain.NewChainNotFoundError(
			"transaction %s is a %s, not an AUTHENTICATE", txID, rec.TxType)
	}
	return rec, nil
}
