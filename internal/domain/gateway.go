package domain

// Params is the flat field mapping exchanged with the gateway. Both the
// composed request and the decoded response take this shape, and both are
// persisted on the record for audit.
type Params map[string]string

// Clone returns a copy so a stored request can't alias the caller's map.
func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// GatewayResponse is the decoded outcome of a single gateway call. A value
// of this type always means the call itself completed; transport failures
// are returned as errors, never as a response.
type GatewayResponse struct {
	Status       string
	StatusDetail string
	TxID         string
	TxAuthNum    string
	SecurityKey  string
	Raw          Params
}

// IsRegistered reports whether an AUTHENTICATE request was accepted and the
// chain may proceed. Only meaningful on authenticate responses.
func (r *GatewayResponse) IsRegistered() bool {
	return r.Status == StatusOK || r.Status == "REGISTERED" || r.Status == "AUTHENTICATED"
}

// IsOK reports business-level success for AUTHORISE, REFUND and VOID.
func (r *GatewayResponse) IsOK() bool {
	return r.Status == StatusOK
}
