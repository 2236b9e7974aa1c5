package onboarding

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/account"
	"github.com/stripe/stripe-go/v84/accountlink"

	pkgstripe "github.com/luisherrera/barberlane-backend/pkg/stripe"
)

// StripeConnectClient exposes the subset of Stripe operations required by the onboarding service.
type StripeConnectClient interface {
	CreateAccount(ctx context.Context, params *stripe.AccountParams) (*stripe.Account, error)
	CreateAccountLink(ctx context.Context, params *stripe.AccountLinkParams) (*stripe.AccountLink, error)
}

type stripeClientWrapper struct{}

// NewStripeClient wraps the provided Stripe client so the onboarding service can be tested.
func NewStripeClient(api *pkgstripe.Client) StripeConnectClient {
	if api == nil {
		return nil
	}
	return &stripeClientWrapper{}
}

func (w *stripeClientWrapper) CreateAccount(ctx context.Context, params *stripe.AccountParams) (*stripe.Account, error) {
	if params != nil {
		params.Context = ctx
	}
	return account.New(params)
}

func (w *stripeClientWrapper) CreateAccountLink(ctx context.Context, params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	if params != nil {
		params.Context = ctx
	}
	return accountlink.New(params)
}
