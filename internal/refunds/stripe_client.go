package refunds

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/refund"

	pkgstripe "github.com/luisherrera/barberlane-backend/pkg/stripe"
)

// StripeRefundClient exposes the subset of Stripe operations required by the refund service.
type StripeRefundClient interface {
	CreateRefund(ctx context.Context, params *stripe.RefundParams) (*stripe.Refund, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the refund service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeRefundClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreateRefund(ctx context.Context, params *stripe.RefundParams) (*stripe.Refund, error) {
	if params != nil {
		params.Context = ctx
	}
	return refund.New(params)
}
