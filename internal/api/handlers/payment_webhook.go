package handlers

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/errors"
	service "github.com/aaravmahajanofficial/shared-cart-service/internal/services"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/utils/response"
)

const maxWebhookBytes = 64 << 10

type PaymentWebhookHandler struct {
	sharedCartService service.SharedCartService
}

func NewPaymentWebhookHandler(sharedCartService service.SharedCartService) *PaymentWebhookHandler {
	return &PaymentWebhookHandler{sharedCartService: sharedCartService}
}

// HandleStripeWebhook reconciles the shared cart an off-site payment settled.
func (h *PaymentWebhookHandler) HandleStripeWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBytes))
		if err != nil {
			logger.Error("Error reading webhook body", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Failed to read request body"))
			return
		}

		signature := r.Header.Get("Stripe-Signature")
		if signature == "" {
			logger.Warn("Missing Stripe signature")
			response.Error(w, errors.BadRequestError("Stripe Signature is required"))
			return
		}

		if err := h.sharedCartService.HandlePaymentWebhook(r.Context(), payload, signature); err != nil {
			logger.Error("Failed to process payment webhook", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, map[string]bool{"received": true})
	}
}
