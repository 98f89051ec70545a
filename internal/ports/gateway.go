package ports

import (
	"context"

	"github.com/meridianpay/sagelink/internal/domain"
)

// Gateway defines the behavior of the remote payment gateway. Each call
// sends a flat parameter set and either returns the decoded response or an
// error. A transport-level failure (the call could not be completed at all)
// is reported as a *gateway.TransportError and must never be folded into a
// declined response.
type Gateway interface {
	Authenticate(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error)
	Authorise(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error)
	Refund(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error)
	Void(ctx context.Context, params domain.Params) (*domain.GatewayResponse, error)
}
