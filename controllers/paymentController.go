package controllers

import (
	"errors"
	"log"
	"net/http"

	"cityfix-be/config"
	"cityfix-be/models"
	"cityfix-be/payments"
	"cityfix-be/stores"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentController creates checkout sessions and drives the idempotent
// confirmation workflow for both product types.
type PaymentController struct {
	cfg      *config.Config
	gateway  payments.Gateway
	workflow *payments.Workflow
	issues   stores.IssueStore
	users    stores.UserStore
	ledger   stores.PaymentStore
}

func NewPaymentController(cfg *config.Config, gateway payments.Gateway, workflow *payments.Workflow, issues stores.IssueStore, users stores.UserStore, ledger stores.PaymentStore) *PaymentController {
	return &PaymentController{cfg: cfg, gateway: gateway, workflow: workflow, issues: issues, users: users, ledger: ledger}
}

// ListMine returns the caller's ledger entries, newest first.
func (pc *PaymentController) ListMine(c *gin.Context) {
	email, ok := requireEmail(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	records, err := pc.ledger.ListByEmail(ctx, email)
	if err != nil {
		respondStoreError(c, err, "", "", "")
		return
	}

	c.JSON(http.StatusOK, records)
}

// CreateBoostSession opens a checkout session to boost one issue.
func (pc *PaymentController) CreateBoostSession(c *gin.Context) {
	actor, ok := resolveActor(c, pc.users)
	if !ok {
		return
	}
	if actor.Role == models.RoleUnknownActor || !actor.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is not allowed to make payments"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	issue, err := pc.issues.GetByID(ctx, c.Param("issueId"))
	if err != nil {
		respondStoreError(c, err, "Invalid issue ID", "Issue not found", "")
		return
	}
	if issue.PaymentStatus == models.PaymentPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Issue has already been boosted"})
		return
	}

	session, err := pc.gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		LineItem: payments.CheckoutLineItem{
			Name:        models.ProductBoost,
			AmountCents: pc.cfg.BoostPriceCents,
			Currency:    pc.cfg.Currency,
		},
		CustomerEmail:     actor.Email,
		SuccessURL:        pc.cfg.ClientURL + "/payment/boost/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         pc.cfg.ClientURL + "/payment/cancelled",
		ClientReferenceID: uuid.New().String(),
		Metadata: map[string]string{
			payments.MetaProductType: payments.ProductTypeBoost,
			payments.MetaIssueID:     issue.ID.Hex(),
			payments.MetaTrackingID:  issue.TrackingID,
			payments.MetaEmail:       actor.Email,
		},
	})
	if err != nil {
		log.Println("Error creating boost session:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": session.URL, "sessionId": session.ID})
}

// ConfirmBoost reconciles a boost session after the checkout redirect. The
// redirect itself proves nothing; the workflow re-reads the session from
// the gateway.
func (pc *PaymentController) ConfirmBoost(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := pc.workflow.ConfirmBoost(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrWrongProduct) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session does not belong to a boost payment"})
			return
		}
		log.Println("Error confirming boost payment:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		return
	}

	respondConfirm(c, result, "Issue boosted successfully")
}

// CreateSubscriptionSession opens a checkout session for the premium tier.
func (pc *PaymentController) CreateSubscriptionSession(c *gin.Context) {
	actor, ok := resolveActor(c, pc.users)
	if !ok {
		return
	}
	if !actor.IsActiveCitizen() {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only citizen accounts can subscribe"})
		return
	}
	if actor.Premium {
		c.JSON(http.StatusConflict, gin.H{"error": "Account is already premium"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	session, err := pc.gateway.CreateCheckoutSession(ctx, payments.CheckoutParams{
		LineItem: payments.CheckoutLineItem{
			Name:        models.ProductSubscription,
			AmountCents: pc.cfg.SubscriptionPriceCents,
			Currency:    pc.cfg.Currency,
		},
		CustomerEmail:     actor.Email,
		SuccessURL:        pc.cfg.ClientURL + "/payment/subscription/success?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:         pc.cfg.ClientURL + "/payment/cancelled",
		ClientReferenceID: uuid.New().String(),
		Metadata: map[string]string{
			payments.MetaProductType: payments.ProductTypeSubscription,
			payments.MetaEmail:       actor.Email,
		},
	})
	if err != nil {
		log.Println("Error creating subscription session:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": session.URL, "sessionId": session.ID})
}

// ConfirmSubscription reconciles a subscription session.
func (pc *PaymentController) ConfirmSubscription(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id is required"})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	result, err := pc.workflow.ConfirmSubscription(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payments.ErrWrongProduct) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Session does not belong to a subscription payment"})
			return
		}
		log.Println("Error confirming subscription payment:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		return
	}

	respondConfirm(c, result, "Subscription activated")
}

func respondConfirm(c *gin.Context, result *payments.ConfirmResult, successMsg string) {
	switch {
	case result.Pending:
		c.JSON(http.StatusOK, gin.H{"processed": false, "message": "Payment not completed yet"})
	case result.AlreadyProcessed:
		c.JSON(http.StatusOK, gin.H{"processed": true, "message": "Payment already processed"})
	default:
		c.JSON(http.StatusOK, gin.H{"processed": true, "message": successMsg})
	}
}
