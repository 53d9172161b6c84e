package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
	service "github.com/aaravmahajanofficial/shared-cart-service/internal/services"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/utils"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type SharedCartHandler struct {
	sharedCartService service.SharedCartService
	validator         *validator.Validate
}

func NewSharedCartHandler(sharedCartService service.SharedCartService) *SharedCartHandler {
	return &SharedCartHandler{sharedCartService: sharedCartService, validator: validator.New()}
}

func (h *SharedCartHandler) ListSharedCarts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		carts, err := h.sharedCartService.ListSharedCarts(r.Context())
		if err != nil {
			logger.Error("Failed to list shared carts", slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, carts)
	}
}

func (h *SharedCartHandler) GetSharedCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		cartID, err := utils.PathID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		merged, err := h.sharedCartService.GetMergedCartDetail(r.Context(), cartID)
		if err != nil {
			logger.Error("Failed to get shared cart", slog.Int64("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, merged)
	}
}

func (h *SharedCartHandler) InviteParticipants() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		cartID, err := utils.PathID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.InviteRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		resp, err := h.sharedCartService.Invite(r.Context(), cartID, &req)
		if err != nil {
			logger.Warn("Failed to invite participants", slog.Int64("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusAccepted, resp)
	}
}

func (h *SharedCartHandler) GetPendingInvitations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		cartID, err := utils.PathID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		pending, err := h.sharedCartService.GetPendingInvitations(r.Context(), cartID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, pending)
	}
}

func (h *SharedCartHandler) Checkout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		cartID, err := utils.PathID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		var req models.CheckoutRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			return
		}

		result, err := h.sharedCartService.Checkout(r.Context(), cartID, &req)
		if err != nil {
			logger.Error("Shared cart checkout failed", slog.Int64("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, result)
	}
}

func (h *SharedCartHandler) GetCheckoutStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		cartID, err := utils.PathID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		status, err := h.sharedCartService.CheckoutStatus(r.Context(), cartID)
		if err != nil {
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, status)
	}
}

func (h *SharedCartHandler) CloseCart() http.HandlerFunc {
	return h.finish("close", h.sharedCartService.CloseCart)
}

func (h *SharedCartHandler) CancelCart() http.HandlerFunc {
	return h.finish("cancel", h.sharedCartService.CancelCart)
}

func (h *SharedCartHandler) finish(action string, call func(ctx context.Context, cartID int64) (*models.CartUpdateResponse, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		cartID, err := utils.PathID(r, "id")
		if err != nil {
			response.Error(w, err)
			return
		}

		resp, err := call(r.Context(), cartID)
		if err != nil {
			logger.Error("Failed to update shared cart", slog.String("action", action), slog.Int64("cartId", cartID), slog.Any("error", err))
			response.Error(w, err)
			return
		}

		logger.Info("Shared cart updated", slog.String("action", action), slog.Int64("cartId", cartID), slog.Bool("refreshed", resp.Refreshed))
		response.Success(w, http.StatusOK, resp)
	}
}
