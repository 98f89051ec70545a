// Package gateway holds the wire-facing side of the integration: composing
// the flat parameter set a request needs, the HTTP client that carries it,
// and decoding of the gateway's response.
package gateway

import (
	"fmt"

	"github.com/meridianpay/sagelink/internal/domain"
)

// AuthenticateFields are the caller-supplied values for an initial
// AUTHENTICATE request, already flattened to primitives.
type AuthenticateFields struct {
	VendorTxCode string
	AmountCents  int64
	Currency     string
	Description  string
	Card         domain.Card
	Reference    string // optional merchant reference, omitted when empty
	Shipping     *domain.Address
	Billing      *domain.Address
}

// FollowOnFields are the operation-specific values for AUTHORISE, REFUND
// and VOID. A nil AmountCents means no amount field is sent (VOID); an
// empty Currency or Description likewise contributes no key.
type FollowOnFields struct {
	VendorTxCode string
	AmountCents  *int64
	Currency     string
	Description  string
	Reference    string
}

// AuthenticateParams builds the flat parameter set for an AUTHENTICATE
// request. Absent optional blocks contribute no keys at all, so the gateway
// never sees empty-string address fields.
func AuthenticateParams(f AuthenticateFields) domain.Params {
	p := domain.Params{
		"tx_type":         string(domain.TxTypeAuthenticate),
		"vendor_tx_code":  f.VendorTxCode,
		"amount":          FormatAmount(f.AmountCents),
		"currency":        f.Currency,
		"description":     f.Description,
		"bankcard_number": f.Card.Number,
		"bankcard_cv2":    f.Card.CV2,
		"bankcard_name":   f.Card.HolderName,
		"bankcard_expiry": formatExpiry(f.Card.ExpiryMonth, f.Card.ExpiryYear),
	}
	if f.Reference != "" {
		p["reference"] = f.Reference
	}
	if f.Shipping != nil {
		addAddress(p, "delivery_", f.Shipping, true)
	}
	if f.Billing != nil {
		addAddress(p, "billing_", f.Billing, false)
	}
	return p
}

// FollowOnParams builds the parameter set for a chained request. The
// PreviousTxn bundle authenticates the call against the prior leg.
func FollowOnParams(txType domain.TxType, prev domain.PreviousTxn, f FollowOnFields) domain.Params {
	p := domain.Params{
		"tx_type":                string(txType),
		"vendor_tx_code":         f.VendorTxCode,
		"related_vendor_tx_code": prev.VendorTxCode,
		"related_tx_id":          prev.TxID,
		"related_tx_auth_num":    prev.TxAuthNum,
		"related_security_key":   prev.SecurityKey,
	}
	if f.AmountCents != nil {
		p["amount"] = FormatAmount(*f.AmountCents)
	}
	if f.Currency != "" {
		p["currency"] = f.Currency
	}
	if f.Description != "" {
		p["description"] = f.Description
	}
	if f.Reference != "" {
		p["reference"] = f.Reference
	}
	return p
}

func addAddress(p domain.Params, prefix string, a *domain.Address, withPhone bool) {
	p[prefix+"surname"] = a.Surname
	p[prefix+"first_names"] = a.FirstNames
	p[prefix+"address1"] = a.Line1
	p[prefix+"address2"] = a.Line2
	p[prefix+"city"] = a.City
	p[prefix+"postcode"] = a.Postcode
	p[prefix+"country"] = a.Country
	p[prefix+"state"] = a.State
	if withPhone {
		p[prefix+"phone"] = a.Phone
	}
}

// FormatAmount renders minor units as the gateway's decimal string,
// e.g. 10000 -> "100.00".
func FormatAmount(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// formatExpiry renders month and year as two digits each, e.g. 0627.
func formatExpiry(month, year int) string {
	return fmt.Sprintf("%02d%02d", month, year%100)
}
