package gateway

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/meridianpay/sagelink/internal/domain"
)

// The gateway answers with one key=value pair per line. These are the keys
// carrying the response contract; everything else is kept in Raw for audit.
const (
	keyStatus       = "status"
	keyStatusDetail = "status_detail"
	keyTxID         = "tx_id"
	keyTxAuthNum    = "tx_auth_num"
	keySecurityKey  = "security_key"
)

var errMissingStatus = errors.New("response has no status field")

// ParseResponse decodes the gateway's line-oriented body into a response.
// A body without a status field is a protocol error, not a decline.
func ParseResponse(body io.Reader) (*domain.GatewayResponse, error) {
	raw := domain.Params{}
	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		raw[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if raw[keyStatus] == "" {
		return nil, errMissingStatus
	}

	return &domain.GatewayResponse{
		Status:       raw[keyStatus],
		StatusDetail: raw[keyStatusDetail],
		TxID:         raw[keyTxID],
		TxAuthNum:    raw[keyTxAuthNum],
		SecurityKey:  raw[keySecurityKey],
		Raw:          raw,
	}, nil
}
