// Package gateway holds the outbound payment-provider clients. The
// services depend on the small interfaces here, never on provider SDKs.
package gateway

import (
	"fmt"

	"tour-booking/pkg/utils"

	stripe "github.com/stripe/stripe-go/v82"
	checkout "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// StripeGateway creates hosted checkout sessions and verifies webhook
// signatures.
type StripeGateway interface {
	CreateCheckoutSession(orderID, tourName string, amount float64) (sessionID, checkoutURL string, err error)
	VerifyWebhook(payload []byte, signature string) (*stripe.Event, error)
}

type stripeGateway struct {
	webhookSecret string
	currency      string
	clientURL     string
	log           *zap.Logger
}

func NewStripeGateway(config utils.StripeConfig, clientURL string, logger *zap.Logger) StripeGateway {
	stripe.Key = config.SecretKey

	return &stripeGateway{
		webhookSecret: config.WebhookSecret,
		currency:      config.Currency,
		clientURL:     clientURL,
		log:           logger.With(zap.String("gateway", "stripe")),
	}
}

// CreateCheckoutSession opens a hosted payment page for the booking.
// The order ID rides along as client reference and metadata so the
// webhook can find the booking again.
func (g *stripeGateway) CreateCheckoutSession(orderID, tourName string, amount float64) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(g.currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name:        stripe.String(tourName),
						Description: stripe.String(fmt.Sprintf("Booking %s", orderID)),
					},
					// Stripe amounts are in the smallest currency unit
					UnitAmount: stripe.Int64(int64(amount * 100)),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(orderID),
		SuccessURL:        stripe.String(g.clientURL + "/booking/success?order_id=" + orderID),
		CancelURL:         stripe.String(g.clientURL + "/booking/cancel?order_id=" + orderID),
		Metadata: map[string]string{
			"order_id": orderID,
		},
	}

	sess, err := checkout.New(params)
	if err != nil {
		g.log.Error("Failed to create checkout session",
			zap.String("order_id", orderID), zap.Error(err))
		return "", "", fmt.Errorf("create checkout session: %w", err)
	}

	g.log.Info("Checkout session created",
		zap.String("order_id", orderID),
		zap.String("session_id", sess.ID))

	return sess.ID, sess.URL, nil
}

// VerifyWebhook checks the Stripe-Signature header against the raw
// payload. A payload that fails verification must be discarded.
func (g *stripeGateway) VerifyWebhook(payload []byte, signature string) (*stripe.Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("verify webhook signature: %w", err)
	}

	return &event, nil
}
