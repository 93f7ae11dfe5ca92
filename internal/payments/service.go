package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

const (
	currency        = "thb"
	purchaseOp      = "purchase"
	referencePrefix = "checkout:"
)

var (
	ErrUnknownPackage   = errors.New("unknown package")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrNotConfigured    = errors.New("payments are not configured")
)

// Grantor credits an account once per reference.
type Grantor interface {
	Grant(ctx context.Context, userID string, amount int, operation, reference string) (int, bool, error)
}

// CheckoutCreator opens a hosted checkout session.
type CheckoutCreator interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeCheckout struct {
	client *session.Client
}

// NewStripeCheckout returns a CheckoutCreator backed by the Stripe API.
func NewStripeCheckout(secretKey string) CheckoutCreator {
	return &stripeCheckout{client: &session.Client{B: stripe.GetBackend(stripe.APIBackend), Key: secretKey}}
}

func (s *stripeCheckout) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	params.Context = ctx
	return s.client.New(params)
}

// Service sells credit packages and fulfils completed checkouts.
type Service struct {
	Credits       Grantor
	Events        EventStore
	Checkout      CheckoutCreator
	Catalog       map[string]Package
	WebhookSecret string
	SuccessURL    string
	CancelURL     string
	Now           func() time.Time
}

// Checkout is the redirect target for a new purchase.
type Checkout struct {
	URL       string `json:"url"`
	SessionID string `json:"sessionId"`
}

// StartCheckout creates a session whose metadata carries the credits to grant, so
// fulfilment never has to infer them from the charged amount.
func (s *Service) StartCheckout(ctx context.Context, userID, packageID string) (Checkout, error) {
	if s.Checkout == nil {
		return Checkout{}, ErrNotConfigured
	}
	pkg, ok := s.Catalog[packageID]
	if !ok {
		return Checkout{}, fmt.Errorf("%w: %q", ErrUnknownPackage, packageID)
	}

	item := &stripe.CheckoutSessionLineItemParams{Quantity: stripe.Int64(1)}
	if pkg.PriceID != "" {
		item.Price = stripe.String(pkg.PriceID)
	} else {
		item.PriceData = &stripe.CheckoutSessionLineItemPriceDataParams{
			Currency:   stripe.String(currency),
			UnitAmount: stripe.Int64(pkg.Amount),
			ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
				Name: stripe.String(fmt.Sprintf("%d resume credits", pkg.Credits)),
			},
		}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems:         []*stripe.CheckoutSessionLineItemParams{item},
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(s.SuccessURL),
		CancelURL:         stripe.String(s.CancelURL),
	}
	params.AddMetadata("credits", fmt.Sprint(pkg.Credits))
	params.AddMetadata("packageId", pkg.ID)
	params.AddMetadata("userId", userID)

	sess, err := s.Checkout.CreateCheckoutSession(ctx, params)
	if err != nil {
		return Checkout{}, fmt.Errorf("create checkout session: %w", err)
	}
	telemetry.Info("payments.checkout_created", map[string]any{
		"user_id":    userID,
		"package_id": pkg.ID,
		"session_id": sess.ID,
	})
	return Checkout{URL: sess.URL, SessionID: sess.ID}, nil
}

// Fulfilment reports what a webhook delivery did.
type Fulfilment struct {
	EventType string `json:"eventType"`
	Granted   int    `json:"granted"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// HandleWebhook verifies a Stripe delivery and grants credits for completed checkouts.
// Deliveries that cannot be fulfilled are logged and acknowledged so Stripe stops
// retrying them; only signature and storage failures return an error.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) (Fulfilment, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.WebhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return Fulfilment{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	metrics.IncWebhookEvents()

	out := Fulfilment{EventType: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if event.Data == nil || json.Unmarshal(event.Data.Raw, &sess) != nil {
		telemetry.Warn("payments.malformed_event", map[string]any{"event_id": event.ID})
		return out, nil
	}
	fields := map[string]any{"event_id": event.ID, "session_id": sess.ID, "amount_total": sess.AmountTotal}

	if sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		telemetry.Info("payments.unpaid_session", fields)
		return out, nil
	}

	userID := sess.ClientReferenceID
	if userID == "" {
		userID = sess.Metadata["userId"]
	}
	if userID == "" {
		telemetry.Warn("payments.missing_user", fields)
		return out, nil
	}
	fields["user_id"] = userID

	credits, ok := creditsFromMetadata(sess.Metadata)
	if !ok {
		credits, ok = creditsForAmount(s.Catalog, sess.AmountTotal)
	}
	if !ok {
		telemetry.Error("payments.unknown_amount", fields)
		return out, nil
	}

	_, applied, err := s.Credits.Grant(ctx, userID, credits, purchaseOp, referencePrefix+sess.ID)
	if err != nil {
		return out, fmt.Errorf("grant credits: %w", err)
	}
	if _, err := s.Events.Record(ctx, Event{
		EventID:   event.ID,
		SessionID: sess.ID,
		UserID:    userID,
		Credits:   credits,
		CreatedAt: s.now(),
	}); err != nil {
		return out, fmt.Errorf("record payment event: %w", err)
	}

	fields["credits"] = credits
	if !applied {
		out.Duplicate = true
		telemetry.Info("payments.duplicate", fields)
		return out, nil
	}
	out.Granted = credits
	telemetry.Info("payments.granted", fields)
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
