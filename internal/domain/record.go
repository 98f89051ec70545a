// Package domain defines the transaction-log model shared by the chain
// resolver, the gateway adapter and the stores.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// TxType identifies which step of the gateway protocol a record belongs to.
type TxType string

const (
	TxTypeAuthenticate TxType = "AUTHENTICATE"
	TxTypeAuthorise    TxType = "AUTHORISE"
	TxTypeRefund       TxType = "REFUND"
	TxTypeVoid         TxType = "VOID"
)

// StatusOK is the gateway status for a fully successful call. Any other
// status is kept verbatim on the record but never chained off.
const StatusOK = "OK"

// TransactionRecord is one row of the append-only audit log: exactly one
// gateway round-trip, success or failure alike. Records are never updated
// or deleted.
type TransactionRecord struct {
	ID           uuid.UUID
	TxID         string // gateway-issued id, empty unless the call succeeded
	VendorTxCode string // merchant-generated code sent on the request
	TxType       TxType
	TxAuthNum    string
	SecurityKey  string
	RelatedTxID  string // tx_id this record acts upon, empty for AUTHENTICATE
	Status       string
	StatusDetail string
	AmountCents  int64
	Currency     string
	RawRequest   Params
	RawResponse  Params
	CreatedAt    time.Time
}

// PreviousTxn bundles the security material a follow-on call must present
// to the gateway. It is always taken from a single prior record and never
// mixed across chains.
type PreviousTxn struct {
	VendorTxCode string
	TxID         string
	TxAuthNum    string
	SecurityKey  string
}

// PreviousTxn extracts the follow-on security bundle from a record.
func (r *TransactionRecord) PreviousTxn() PreviousTxn {
	return PreviousTxn{
		VendorTxCode: r.VendorTxCode,
		TxID:         r.TxID,
		TxAuthNum:    r.TxAuthNum,
		SecurityKey:  r.SecurityKey,
	}
}

// Card holds the cardholder details flattened by the caller. The number and
// CV2 are scrubbed before a record is persisted.
type Card struct {
	Number      string
	CV2         string
	HolderName  string
	ExpiryMonth int
	ExpiryYear  int
}

// Address is a flattened shipping or billing address block.
type Address struct {
	Surname    string
	FirstNames string
	Line1      string
	Line2      string
	City       string
	Postcode   string
	Country    string
	State      string
	Phone      string
}
