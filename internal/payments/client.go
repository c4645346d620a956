// Package payments wraps the Stripe SDK behind a narrow interface so the
// service layer receives an injected client instead of touching package
// globals. Tests substitute a fake.
package payments

import (
	"context"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

type Client interface {
	CreateAccount(ctx context.Context, params *stripe.AccountParams) (*stripe.Account, error)
	GetAccount(ctx context.Context, acctID string) (*stripe.Account, error)
	CreateAccountLink(ctx context.Context, params *stripe.AccountLinkParams) (*stripe.AccountLink, error)

	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error)

	CapturePaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error)
	CancelPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error)

	ListBalanceTransactions(ctx context.Context, acctID string, txType string, limit int64) ([]*stripe.BalanceTransaction, error)
}

type stripeClient struct {
	api *client.API
}

// New builds a Client over the official SDK. The key is per-instance; no
// package-level stripe.Key is set.
func New(apiKey string) Client {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &stripeClient{api: api}
}

func (c *stripeClient) CreateAccount(ctx context.Context, params *stripe.AccountParams) (*stripe.Account, error) {
	params.Context = ctx
	return c.api.Accounts.New(params)
}

func (c *stripeClient) GetAccount(ctx context.Context, acctID string) (*stripe.Account, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx
	return c.api.Accounts.GetByID(acctID, params)
}

func (c *stripeClient) CreateAccountLink(ctx context.Context, params *stripe.AccountLinkParams) (*stripe.AccountLink, error) {
	params.Context = ctx
	return c.api.AccountLinks.New(params)
}

func (c *stripeClient) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	return c.api.CheckoutSessions.New(params)
}

func (c *stripeClient) GetCheckoutSession(ctx context.Context, sessionID string) (*stripe.CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	return c.api.CheckoutSessions.Get(sessionID, params)
}

func (c *stripeClient) CapturePaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	return c.api.PaymentIntents.Capture(intentID, params)
}

func (c *stripeClient) CancelPaymentIntent(ctx context.Context, intentID string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	return c.api.PaymentIntents.Cancel(intentID, params)
}

func (c *stripeClient) ListBalanceTransactions(ctx context.Context, acctID string, txType string, limit int64) ([]*stripe.BalanceTransaction, error) {
	params := &stripe.BalanceTransactionListParams{}
	params.Context = ctx
	if txType != "" {
		params.Type = stripe.String(txType)
	}
	if limit > 0 {
		params.Limit = stripe.Int64(limit)
	}
	params.SetStripeAccount(acctID)

	var out []*stripe.BalanceTransaction
	iter := c.api.BalanceTransactions.List(params)
	for iter.Next() {
		out = append(out, iter.BalanceTransaction())
	}
	return out, iter.Err()
}
