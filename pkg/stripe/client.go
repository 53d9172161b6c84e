package stripe

import (
	"errors"
	"strconv"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/webhook"
)

type Event = stripe.Event

// SharedCartMetadataKey is the metadata field the storefront sets on checkout sessions
// and payment intents created for a shared cart.
const SharedCartMetadataKey = "shared_cart_id"

var (
	ErrWebhookSecretMissing = errors.New("webhook secret not configured")
	ErrNoSharedCart         = errors.New("event does not reference a shared cart")
)

// WebhookVerifier authenticates payment events sent by Stripe after an off-site payment.
type WebhookVerifier interface {
	VerifyWebhookSignature(payload []byte, signature string) (Event, error)
}

type webhookVerifier struct {
	webhookSecret string
}

func NewWebhookVerifier(webhookSecret string) WebhookVerifier {
	return &webhookVerifier{webhookSecret: webhookSecret}
}

func (v *webhookVerifier) VerifyWebhookSignature(payload []byte, signature string) (Event, error) {
	if v.webhookSecret == "" {
		return Event{}, ErrWebhookSecretMissing
	}

	return webhook.ConstructEventWithOptions(payload, signature, v.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// SharedCartID extracts the shared cart referenced by a checkout.session or payment_intent event.
func SharedCartID(event Event) (int64, error) {
	if event.Data == nil || event.Data.Object == nil {
		return 0, ErrNoSharedCart
	}

	metadata, ok := event.Data.Object["metadata"].(map[string]any)
	if !ok {
		return 0, ErrNoSharedCart
	}

	raw, ok := metadata[SharedCartMetadataKey].(string)
	if !ok || raw == "" {
		return 0, ErrNoSharedCart
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrNoSharedCart
	}

	return id, nil
}
