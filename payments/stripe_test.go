package payments

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripeGatewayCreateCheckoutSession(t *testing.T) {
	var gotForm map[string]string
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":  "cs_test_1",
			"url": "https://checkout.stripe.com/c/pay/cs_test_1",
		})
	}))
	defer server.Close()

	gateway := NewStripeGateway(server.URL, "sk_test_abc")
	session, err := gateway.CreateCheckoutSession(context.Background(), CheckoutParams{
		LineItem:          CheckoutLineItem{Name: "Issue Boost", AmountCents: 500, Currency: "usd"},
		CustomerEmail:     "citizen@example.com",
		SuccessURL:        "https://front.test/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         "https://front.test/cancel",
		ClientReferenceID: "ref-1",
		Metadata:          map[string]string{MetaIssueID: "abc123", MetaProductType: ProductTypeBoost},
	})
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", session.ID)
	assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test_1", session.URL)
	assert.Equal(t, "Bearer sk_test_abc", gotAuth)

	assert.Equal(t, "payment", gotForm["mode"])
	assert.Equal(t, "usd", gotForm["line_items[0][price_data][currency]"])
	assert.Equal(t, "500", gotForm["line_items[0][price_data][unit_amount]"])
	assert.Equal(t, "Issue Boost", gotForm["line_items[0][price_data][product_data][name]"])
	assert.Equal(t, "citizen@example.com", gotForm["customer_email"])
	assert.Equal(t, "ref-1", gotForm["client_reference_id"])
	assert.Equal(t, "abc123", gotForm["metadata[issueId]"])
}

func TestStripeGatewayRetrieveSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/v1/checkout/sessions/cs_test_1", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":             "cs_test_1",
			"payment_status": "paid",
			"payment_intent": "pi_123",
			"amount_total":   500,
			"currency":       "usd",
			"customer_details": map[string]string{
				"email": "citizen@example.com",
			},
			"metadata": map[string]string{
				"issueId": "abc123",
			},
		})
	}))
	defer server.Close()

	gateway := NewStripeGateway(server.URL, "sk_test_abc")
	session, err := gateway.RetrieveSession(context.Background(), "cs_test_1")
	require.NoError(t, err)

	assert.Equal(t, SessionPaid, session.PaymentStatus)
	assert.Equal(t, "pi_123", session.PaymentIntentID)
	assert.Equal(t, int64(500), session.AmountTotal)
	assert.Equal(t, "usd", session.Currency)
	// customer_email absent: falls back to customer_details.email.
	assert.Equal(t, "citizen@example.com", session.CustomerEmail)
	assert.Equal(t, "abc123", session.Metadata["issueId"])
}

func TestStripeGatewayErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{
				"type":    "invalid_request_error",
				"message": "No such checkout session",
			},
		})
	}))
	defer server.Close()

	gateway := NewStripeGateway(server.URL, "sk_test_abc")
	_, err := gateway.RetrieveSession(context.Background(), "cs_missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "No such checkout session")
}
