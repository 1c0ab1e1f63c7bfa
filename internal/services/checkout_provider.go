package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
)

// Stripe rejects metadata values longer than this.
const maxMetadataValue = 500

type CheckoutItem struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type CheckoutRequest struct {
	Items      []CheckoutItem
	CustomerID string
	SuccessURL string
	CancelURL  string
}

type CheckoutSession struct {
	ID  string `json:"session_id"`
	URL string `json:"url"`
}

// VerifiedSession is what the provider recorded for a checkout session.
// AmountTotal is in the smallest unit of Currency.
type VerifiedSession struct {
	Paid        bool
	CustomerID  string
	AmountTotal int64
	Currency    string
}

// CheckoutProvider is a hosted payment page provider.
type CheckoutProvider interface {
	CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)
	// VerifySession returns nil, nil for an unknown session.
	VerifySession(ctx context.Context, sessionID string) (*VerifiedSession, error)
}

type StripeCheckoutProvider struct {
	client   *session.Client
	currency string
}

func NewStripeCheckoutProvider(secretKey, currency string) *StripeCheckoutProvider {
	return &StripeCheckoutProvider{
		client:   &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey},
		currency: strings.ToLower(currency),
	}
}

func (p *StripeCheckoutProvider) CreateSession(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}
	params.Context = ctx

	for _, item := range req.Items {
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(p.currency),
				UnitAmount: stripe.Int64(unitAmount(item.Price, p.currency)),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	params.AddMetadata("customerid", req.CustomerID)
	if encoded, err := json.Marshal(req.Items); err == nil && len(encoded) <= maxMetadataValue {
		params.AddMetadata("courses", string(encoded))
	} else {
		params.AddMetadata("course_count", strconv.Itoa(len(req.Items)))
	}

	created, err := p.client.New(params)
	if err != nil {
		return nil, err
	}
	return &CheckoutSession{ID: created.ID, URL: created.URL}, nil
}

func (p *StripeCheckoutProvider) VerifySession(ctx context.Context, sessionID string) (*VerifiedSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	found, err := p.client.Get(sessionID, params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode == 404 {
			return nil, nil
		}
		return nil, err
	}

	verified := &VerifiedSession{
		CustomerID:  found.Metadata["customerid"],
		AmountTotal: found.AmountTotal,
		Currency:    strings.ToLower(string(found.Currency)),
	}
	if verified.Currency == "" {
		verified.Currency = p.currency
	}
	switch found.PaymentStatus {
	case stripe.CheckoutSessionPaymentStatusPaid, stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		verified.Paid = true
	}
	return verified, nil
}

// unitAmount converts a price to the provider's smallest currency unit.
func unitAmount(price float64, currency string) int64 {
	if zeroDecimalCurrencies[currency] {
		return int64(math.Round(price))
	}
	return int64(math.Round(price * 100))
}

var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true, "jpy": true, "kmf": true,
	"krw": true, "mga": true, "pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}
