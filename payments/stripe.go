package payments

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// stripeSession mirrors the fields of Stripe's checkout.session object the
// workflow cares about. payment_intent arrives as a bare id string when the
// session is retrieved without expansion.
type stripeSession struct {
	ID              string            `json:"id"`
	URL             string            `json:"url"`
	PaymentStatus   string            `json:"payment_status"`
	PaymentIntent   string            `json:"payment_intent"`
	AmountTotal     int64             `json:"amount_total"`
	Currency        string            `json:"currency"`
	CustomerEmail   string            `json:"customer_email"`
	CustomerDetails *struct {
		Email string `json:"email"`
	} `json:"customer_details"`
	Metadata map[string]string `json:"metadata"`
}

type stripeError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// StripeGateway talks to Stripe's Checkout Sessions REST API.
type StripeGateway struct {
	client *resty.Client
}

// NewStripeGateway builds a gateway client against the given API base URL
// (https://api.stripe.com in production, a test server in tests).
func NewStripeGateway(baseURL, secretKey string) *StripeGateway {
	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(secretKey).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/x-www-form-urlencoded")

	return &StripeGateway{client: client}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	form := map[string]string{
		"mode":                                          "payment",
		"payment_method_types[0]":                       "card",
		"line_items[0][quantity]":                       "1",
		"line_items[0][price_data][currency]":           params.LineItem.Currency,
		"line_items[0][price_data][unit_amount]":        strconv.FormatInt(params.LineItem.AmountCents, 10),
		"line_items[0][price_data][product_data][name]": params.LineItem.Name,
		"customer_email":                                params.CustomerEmail,
		"success_url":                                   params.SuccessURL,
		"cancel_url":                                    params.CancelURL,
	}
	if params.ClientReferenceID != "" {
		form["client_reference_id"] = params.ClientReferenceID
	}
	for k, v := range params.Metadata {
		form[fmt.Sprintf("metadata[%s]", k)] = v
	}

	var session stripeSession
	var apiErr stripeError
	resp, err := g.client.R().
		SetContext(ctx).
		SetFormData(form).
		SetResult(&session).
		SetError(&apiErr).
		Post("/v1/checkout/sessions")
	if err != nil {
		return nil, fmt.Errorf("creating checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("creating checkout session: gateway returned %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}

	return &CheckoutSession{ID: session.ID, URL: session.URL}, nil
}

func (g *StripeGateway) RetrieveSession(ctx context.Context, sessionID string) (*Session, error) {
	var session stripeSession
	var apiErr stripeError
	resp, err := g.client.R().
		SetContext(ctx).
		SetResult(&session).
		SetError(&apiErr).
		Get("/v1/checkout/sessions/" + sessionID)
	if err != nil {
		return nil, fmt.Errorf("retrieving checkout session: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("retrieving checkout session: gateway returned %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}

	email := session.CustomerEmail
	if email == "" && session.CustomerDetails != nil {
		email = session.CustomerDetails.Email
	}

	return &Session{
		ID:              session.ID,
		PaymentStatus:   session.PaymentStatus,
		PaymentIntentID: session.PaymentIntent,
		AmountTotal:     session.AmountTotal,
		Currency:        session.Currency,
		CustomerEmail:   email,
		Metadata:        session.Metadata,
	}, nil
}
