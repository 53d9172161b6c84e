package stripe_test

import (
	"testing"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/pkg/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"
)

const testSecret = "whsec_test_secret"

func signedPayload(t *testing.T, payload string) *webhook.SignedPayload {
	t.Helper()

	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
}

const sessionCompleted = `{
  "id": "evt_1",
  "object": "event",
  "type": "checkout.session.completed",
  "data": {"object": {"id": "cs_1", "object": "checkout.session", "metadata": {"shared_cart_id": "42"}}}
}`

func TestVerifyWebhookSignature(t *testing.T) {
	verifier := stripe.NewWebhookVerifier(testSecret)

	t.Run("Success", func(t *testing.T) {
		signed := signedPayload(t, sessionCompleted)

		event, err := verifier.VerifyWebhookSignature(signed.Payload, signed.Header)

		require.NoError(t, err)
		assert.Equal(t, "checkout.session.completed", string(event.Type))
	})

	t.Run("Bad signature", func(t *testing.T) {
		signed := signedPayload(t, sessionCompleted)

		_, err := verifier.VerifyWebhookSignature(signed.Payload, "t=1,v1=deadbeef")

		assert.Error(t, err)
	})

	t.Run("Secret not configured", func(t *testing.T) {
		signed := signedPayload(t, sessionCompleted)

		_, err := stripe.NewWebhookVerifier("").VerifyWebhookSignature(signed.Payload, signed.Header)

		assert.ErrorIs(t, err, stripe.ErrWebhookSecretMissing)
	})
}

func TestSharedCartID(t *testing.T) {
	verifier := stripe.NewWebhookVerifier(testSecret)

	t.Run("Reads metadata", func(t *testing.T) {
		signed := signedPayload(t, sessionCompleted)
		event, err := verifier.VerifyWebhookSignature(signed.Payload, signed.Header)
		require.NoError(t, err)

		id, err := stripe.SharedCartID(event)

		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	})

	t.Run("Missing metadata", func(t *testing.T) {
		signed := signedPayload(t, `{"id": "evt_2", "object": "event", "type": "payment_intent.succeeded", "data": {"object": {"id": "pi_1"}}}`)
		event, err := verifier.VerifyWebhookSignature(signed.Payload, signed.Header)
		require.NoError(t, err)

		_, err = stripe.SharedCartID(event)

		assert.ErrorIs(t, err, stripe.ErrNoSharedCart)
	})

	t.Run("No data", func(t *testing.T) {
		_, err := stripe.SharedCartID(stripe.Event{})

		assert.ErrorIs(t, err, stripe.ErrNoSharedCart)
	})
}
