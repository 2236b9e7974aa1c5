package errors

import (
	"errors"

	"github.com/stripe/stripe-go/v84"
)

// FromStripe converts a Stripe API failure into the platform taxonomy.
// The processor's type/code/message are preserved in the details so clients
// can branch on them, and a 4xx/5xx upstream status passes through.
func FromStripe(err error, message string) *Error {
	if err == nil {
		return nil
	}

	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) {
		return Wrap(CodeUpstream, err, message)
	}

	msg := stripeErr.Msg
	if msg == "" {
		msg = message
	}

	typed := Wrap(CodeUpstream, err, msg).WithDetails(map[string]any{
		"type": string(stripeErr.Type),
		"code": string(stripeErr.Code),
	})

	if stripeErr.HTTPStatusCode >= 400 && stripeErr.HTTPStatusCode < 600 {
		typed = typed.WithHTTPStatus(stripeErr.HTTPStatusCode)
	}

	return typed
}
