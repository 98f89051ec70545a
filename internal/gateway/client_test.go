package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridianpay/sagelink/internal/config"
	"github.com/meridianpay/sagelink/internal/domain"
)

func testClient(baseURL string) *HTTPClient {
	return NewClient(config.GatewayConfig{
		BaseURL: baseURL,
		Vendor:  "testvendor",
		Timeout: 2 * time.Second,
	}, nil).(*HTTPClient)
}

func TestHTTPClient_SendsFormAndDecodesResponse(t *testing.T) {
	var gotForm map[string][]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = r.PostForm
		assert.Equal(t, "/authenticate", r.URL.Path)

		_, _ = w.Write([]byte("status=OK\r\ntx_id={TX1}\r\ntx_auth_num=99\r\nsecurity_key=SK\r\n"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	resp, err := client.Authenticate(context.Background(), domain.Params{
		"tx_type":        "AUTHENTICATE",
		"vendor_tx_code": "vtx-1",
		"amount":         "100.00",
	})
	require.NoError(t, err)

	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, "{TX1}", resp.TxID)

	// the client stamps account identity onto every request
	assert.Equal(t, "testvendor", gotForm["vendor"][0])
	assert.Equal(t, "3.00", gotForm["protocol"][0])
	assert.Equal(t, "vtx-1", gotForm["vendor_tx_code"][0])
}

func TestHTTPClient_NetworkFailureIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	client := testClient(server.URL)
	_, err := client.Refund(context.Background(), domain.Params{"tx_type": "REFUND"})

	tErr, ok := IsTransportError(err)
	require.True(t, ok, "expected TransportError, got %v", err)
	assert.Equal(t, "refund", tErr.Op)
}

func TestHTTPClient_BadStatusIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Void(context.Background(), domain.Params{"tx_type": "VOID"})

	tErr, ok := IsTransportError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, tErr.StatusCode)
}

func TestHTTPClient_MalformedBodyIsTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not a gateway response</html>"))
	}))
	defer server.Close()

	client := testClient(server.URL)
	_, err := client.Authorise(context.Background(), domain.Params{"tx_type": "AUTHORISE"})

	_, ok := IsTransportError(err)
	assert.True(t, ok)
}

func TestHTTPClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := testClient(server.URL)
	_, err := client.Authenticate(ctx, domain.Params{"tx_type": "AUTHENTICATE"})

	_, ok := IsTransportError(err)
	assert.True(t, ok)
}
