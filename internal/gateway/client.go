package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/meridianpay/sagelink/internal/config"
	"github.com/meridianpay/sagelink/internal/domain"
	"github.com/meridianpay/sagelink/internal/metrics"
	"github.com/meridianpay/sagelink/internal/ports"
)

const defaultProtocol = "3.00"

// HTTPClient speaks the gateway's form-encoded wire protocol: a flat field
// set goes out as a POST body, a flat field set comes back as key=value
// lines. The vendor name and protocol version are stamped onto every
// request here so composers stay ignorant of the account identity.
type HTTPClient struct {
	baseURL    string
	vendor     string
	protocol   string
	httpClient *http.Client
	metrics    *metrics.GatewayMetrics
}

func NewClient(cfg config.GatewayConfig, m *metrics.GatewayMetrics) ports.Gateway {
	protocol := cfg.Protocol
	if protocol == "" {
		protocol = defaultProtocol
	}
	return &HTTPClient{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		vendor:   cfg.Vendor,
		protocol: protocol,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		metrics: m,
	}
}

func (c *HTTPClient) Authenticate(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error) {
	return c.send(ctx, "authenticate", params)
}

func (c *HTTPClient) Authorise(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error) {
	return c.send(ctx, "authorise", params)
}

func (c *HTTPClient) Refund(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error) {
	return c.send(ctx, "refund", params)
}

func (c *HTTPClient) Void(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error) {
	return c.send(ctx, "void", params)
}

func (c *HTTPClient) send(ctx context.Context, op string, params domain.Params) (*domain.GatewayResponse, error) {
	start := time.Now()
	txType := params["tx_type"]

	resp, err := c.post(ctx, op, params)
	if err != nil {
		c.metrics.Observe(txType, metrics.OutcomeFault, time.Since(start))
		return nil, err
	}

	outcome := metrics.OutcomeDeclined
	if resp.Status == domain.StatusOK {
		outcome = metrics.OutcomeOK
	}
	c.metrics.Observe(txType, outcome, time.Since(start))
	return resp, nil
}

func (c *HTTPClient) post(ctx context.Context, op string, params domain.Params) (*domain.GatewayResponse, error) {
	form := url.Values{}
	form.Set("protocol", c.protocol)
	form.Set("vendor", c.vendor)
	for key, value := range params {
		form.Set(key, value)
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, op)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return nil, &TransportError{
			Op:         op,
			StatusCode: httpResp.StatusCode,
			Err:        fmt.Errorf("unexpected gateway status"),
		}
	}

	resp, err := ParseResponse(httpResp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: httpResp.StatusCode, Err: err}
	}
	return resp, nil
}
