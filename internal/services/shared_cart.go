package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/cache"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/config"
	appErrors "github.com/aaravmahajanofficial/shared-cart-service/internal/errors"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
	repository "github.com/aaravmahajanofficial/shared-cart-service/internal/repositories"
	"github.com/aaravmahajanofficial/shared-cart-service/pkg/storefront"
	"github.com/aaravmahajanofficial/shared-cart-service/pkg/stripe"
	"github.com/microcosm-cc/bluemonday"
)

type SharedCartService interface {
	GetMergedCartDetail(ctx context.Context, cartID int64) (*models.MergedCartDetail, error)
	ListSharedCarts(ctx context.Context) ([]models.SharedCartSummary, error)
	Invite(ctx context.Context, cartID int64, req *models.InviteRequest) (*models.InviteResponse, error)
	GetPendingInvitations(ctx context.Context, cartID int64) ([]models.PendingInvitation, error)
	Checkout(ctx context.Context, cartID int64, req *models.CheckoutRequest) (*models.CheckoutResult, error)
	CheckoutStatus(ctx context.Context, cartID int64) (*models.CheckoutStatusResponse, error)
	CloseCart(ctx context.Context, cartID int64) (*models.CartUpdateResponse, error)
	CancelCart(ctx context.Context, cartID int64) (*models.CartUpdateResponse, error)
	HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error
}

type Dependencies struct {
	Client       storefront.Client
	State        *CoreState
	Reconciler   *Reconciler
	Orchestrator *CheckoutOrchestrator
	// Lists caches the per-user cart listing; nil disables it.
	Lists cache.Cache
	// Limiter throttles invitations; nil disables it.
	Limiter  repository.RateLimitRepository
	Verifier stripe.WebhookVerifier
}

type sharedCartService struct {
	cfg          *config.Config
	client       storefront.Client
	state        *CoreState
	reconciler   *Reconciler
	orchestrator *CheckoutOrchestrator
	lists        cache.Cache
	limiter      repository.RateLimitRepository
	verifier     stripe.WebhookVerifier
	sanitizer    *bluemonday.Policy
}

func NewSharedCartService(cfg *config.Config, deps Dependencies) SharedCartService {
	return &sharedCartService{
		cfg:          cfg,
		client:       deps.Client,
		state:        deps.State,
		reconciler:   deps.Reconciler,
		orchestrator: deps.Orchestrator,
		lists:        deps.Lists,
		limiter:      deps.Limiter,
		verifier:     deps.Verifier,
		sanitizer:    bluemonday.StrictPolicy(),
	}
}

// requireCaller fails before any I/O when the request carries no identity.
func requireCaller(ctx context.Context) (*models.Claims, error) {
	claims, ok := middleware.ClaimsFromContext(ctx)
	if !ok {
		return nil, appErrors.UnauthenticatedError("Sign in to use shared carts")
	}

	return claims, nil
}

func validCartID(cartID int64) error {
	if cartID <= 0 {
		return appErrors.BadRequestError("Invalid shared cart ID")
	}

	return nil
}

// GetMergedCartDetail implements SharedCartService.
func (s *sharedCartService) GetMergedCartDetail(ctx context.Context, cartID int64) (*models.MergedCartDetail, error) {
	if _, err := requireCaller(ctx); err != nil {
		return nil, err
	}

	if err := validCartID(cartID); err != nil {
		return nil, err
	}

	return s.reconciler.Refresh(ctx, cartID)
}

// ListSharedCarts implements SharedCartService.
func (s *sharedCartService) ListSharedCarts(ctx context.Context) ([]models.SharedCartSummary, error) {
	claims, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	logger := middleware.LoggerFromContext(ctx)
	key := listKey(claims.UserID)

	if s.lists != nil {
		var cached []models.SharedCartSummary

		found, err := s.lists.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("Shared cart list cache unavailable", slog.Any("error", err))
		} else if found {
			return cached, nil
		}
	}

	carts, err := s.client.FetchSharedCartList(ctx)
	if err != nil {
		return nil, appErrors.ThirdPartyError("Failed to fetch shared carts").WithError(err)
	}

	if s.lists != nil {
		s.cacheList(ctx, claims.UserID, carts)
	}

	return carts, nil
}

// Invite implements SharedCartService.
func (s *sharedCartService) Invite(ctx context.Context, cartID int64, req *models.InviteRequest) (*models.InviteResponse, error) {
	claims, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	if err := validCartID(cartID); err != nil {
		return nil, err
	}

	logger := middleware.LoggerFromContext(ctx).With(slog.Int64("cartId", cartID))

	identifiers, err := s.cleanIdentifiers(req.Identifiers)
	if err != nil {
		return nil, err
	}

	if len(identifiers) == 0 {
		return nil, appErrors.ValidationError("At least one identifier is required")
	}

	if s.limiter != nil {
		allowed, _, retryAfter, err := s.limiter.CheckInviteRateLimit(ctx, claims.UserID, cartID)
		switch {
		case err != nil:
			logger.Warn("Invitation rate limiter unavailable, allowing request", slog.Any("error", err))
		case !allowed:
			return nil, appErrors.TooManyRequestsError("Too many invitations, please slow down").
				WithDetail(fmt.Sprintf("Retry after %d seconds", retryAfter))
		}
	}

	resolved, err := s.client.InviteParticipants(ctx, cartID, identifiers)
	if err != nil {
		if errors.Is(err, storefront.ErrUserNotFound) {
			return nil, appErrors.InviteeNotFoundError("No matching user found").WithError(err)
		}

		return nil, appErrors.ThirdPartyError("Failed to send invitations").WithError(err)
	}

	s.state.Ledger.RecordInvites(cartID, identifiers)
	for _, r := range resolved {
		s.state.Ledger.Resolve(cartID, r.Identifier, r.UserID)
	}

	logger.Info("Invitations sent",
		slog.Int("invited", len(identifiers)),
		slog.Int("resolved", len(resolved)))

	// membership may already be visible; a failed refresh leaves the entries pending
	if _, err := s.reconciler.Refresh(ctx, cartID); err != nil {
		logger.Warn("Refresh after invite failed", slog.Any("error", err))
	}

	return &models.InviteResponse{PendingInvitations: s.state.Ledger.Snapshot(cartID)}, nil
}

// cleanIdentifiers trims and dedupes identifiers case-insensitively. Identifiers are
// passed on verbatim; the sanitizer only detects markup, which rejects the request.
func (s *sharedCartService) cleanIdentifiers(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}

		// the policy escapes text it keeps, so compare unescaped
		if html.UnescapeString(s.sanitizer.Sanitize(id)) != id {
			return nil, appErrors.ValidationError("Identifiers must not contain markup").WithDetail(id)
		}

		key := strings.ToLower(id)
		if _, dup := seen[key]; dup {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, id)
	}

	return out, nil
}

// GetPendingInvitations implements SharedCartService.
func (s *sharedCartService) GetPendingInvitations(ctx context.Context, cartID int64) ([]models.PendingInvitation, error) {
	if _, err := requireCaller(ctx); err != nil {
		return nil, err
	}

	if err := validCartID(cartID); err != nil {
		return nil, err
	}

	return s.state.Ledger.Snapshot(cartID), nil
}

// Checkout implements SharedCartService.
func (s *sharedCartService) Checkout(ctx context.Context, cartID int64, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	claims, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	if err := validCartID(cartID); err != nil {
		return nil, err
	}

	if !s.cfg.Checkout.IsPaymentMethodAllowed(req.PaymentMethod) {
		return nil, appErrors.ValidationError("Unsupported payment method").
			WithDetail(fmt.Sprintf("Allowed methods: %s", strings.Join(s.cfg.Checkout.PaymentMethods, ", ")))
	}

	result, err := s.orchestrator.Checkout(ctx, cartID, req.PaymentMethod, s.reconciler.Current(cartID))
	if err != nil {
		return nil, err
	}

	s.invalidateLists(ctx, cartID, claims.UserID)

	return result, nil
}

// CheckoutStatus implements SharedCartService.
func (s *sharedCartService) CheckoutStatus(ctx context.Context, cartID int64) (*models.CheckoutStatusResponse, error) {
	if _, err := requireCaller(ctx); err != nil {
		return nil, err
	}

	if err := validCartID(cartID); err != nil {
		return nil, err
	}

	return &models.CheckoutStatusResponse{CartID: cartID, State: s.orchestrator.State(cartID)}, nil
}

// CloseCart implements SharedCartService.
func (s *sharedCartService) CloseCart(ctx context.Context, cartID int64) (*models.CartUpdateResponse, error) {
	return s.finish(ctx, cartID, "close", s.client.CloseCart)
}

// CancelCart implements SharedCartService.
func (s *sharedCartService) CancelCart(ctx context.Context, cartID int64) (*models.CartUpdateResponse, error) {
	return s.finish(ctx, cartID, "cancel", s.client.CancelCart)
}

// finish ends the cart's OPEN phase remotely, then drops local invitation state. The
// acknowledgement is returned even when the follow-up refresh fails.
func (s *sharedCartService) finish(ctx context.Context, cartID int64, action string, call func(context.Context, int64) error) (*models.CartUpdateResponse, error) {
	claims, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}

	if err := validCartID(cartID); err != nil {
		return nil, err
	}

	logger := middleware.LoggerFromContext(ctx).With(slog.Int64("cartId", cartID), slog.String("action", action))

	if err := call(ctx, cartID); err != nil {
		logger.Error("Shared cart update failed", slog.Any("error", err))
		return nil, backendError(err, fmt.Sprintf("Failed to %s shared cart", action))
	}

	s.state.Ledger.Purge(cartID)
	s.invalidateLists(ctx, cartID, claims.UserID)

	resp := &models.CartUpdateResponse{CartID: cartID, Action: action}

	merged, err := s.reconciler.Refresh(ctx, cartID)
	if err != nil {
		logger.Warn("Refresh after update failed", slog.Any("error", err))
		return resp, nil
	}

	resp.Refreshed = true
	resp.Cart = merged

	return resp, nil
}

// HandlePaymentWebhook implements SharedCartService. Off-site payments complete the
// cart without a user request, so the reconciliation runs with the service identity.
func (s *sharedCartService) HandlePaymentWebhook(ctx context.Context, payload []byte, signature string) error {
	logger := middleware.LoggerFromContext(ctx)

	event, err := s.verifier.VerifyWebhookSignature(payload, signature)
	if err != nil {
		logger.Warn("Rejected payment webhook", slog.Any("error", err))
		return appErrors.BadRequestError("Invalid webhook signature").WithError(err)
	}

	cartID, err := stripe.SharedCartID(event)
	if err != nil {
		logger.Debug("Payment webhook not related to a shared cart",
			slog.String("eventId", event.ID),
			slog.String("eventType", string(event.Type)))
		return nil
	}

	logger = logger.With(slog.Int64("cartId", cartID), slog.String("eventType", string(event.Type)))

	if _, err := s.reconciler.Refresh(ctx, cartID); err != nil {
		logger.Error("Reconciliation after payment webhook failed", slog.Any("error", err))
		return err
	}

	s.invalidateLists(ctx, cartID)

	logger.Info("Shared cart reconciled after payment webhook")

	return nil
}

// cacheList stores the caller's listing and registers the caller as a viewer of every
// cart in it, so a status change of one cart can drop all listings that show it.
// Viewer sets are read-modify-write; a lost registration only means that listing lives
// until ListTTL.
func (s *sharedCartService) cacheList(ctx context.Context, userID int64, carts []models.SharedCartSummary) {
	logger := middleware.LoggerFromContext(ctx)

	if err := s.lists.Set(ctx, listKey(userID), carts, s.cfg.Cache.ListTTL); err != nil {
		logger.Warn("Failed to cache shared cart list", slog.Any("error", err))
		return
	}

	for _, cart := range carts {
		key := viewersKey(cart.ID)

		var viewers []int64
		if _, err := s.lists.Get(ctx, key, &viewers); err != nil {
			logger.Warn("Failed to read shared cart list viewers", slog.Int64("cartId", cart.ID), slog.Any("error", err))
			continue
		}

		if slices.Contains(viewers, userID) {
			continue
		}

		if err := s.lists.Set(ctx, key, append(viewers, userID), s.cfg.Cache.ListTTL); err != nil {
			logger.Warn("Failed to record shared cart list viewer", slog.Int64("cartId", cart.ID), slog.Any("error", err))
		}
	}
}

// invalidateLists drops every cached listing that shows cartID, plus the listings of
// the given users.
func (s *sharedCartService) invalidateLists(ctx context.Context, cartID int64, userIDs ...int64) {
	if s.lists == nil {
		return
	}

	logger := middleware.LoggerFromContext(ctx).With(slog.Int64("cartId", cartID))

	var viewers []int64
	if _, err := s.lists.Get(ctx, viewersKey(cartID), &viewers); err != nil {
		logger.Warn("Failed to read shared cart list viewers", slog.Any("error", err))
	}

	keys := []string{viewersKey(cartID)}
	for _, id := range slices.Concat(userIDs, viewers) {
		keys = append(keys, listKey(id))
	}

	for _, key := range keys {
		if err := s.lists.Delete(ctx, key); err != nil {
			logger.Warn("Failed to invalidate shared cart list", slog.String("key", key), slog.Any("error", err))
		}
	}
}

func listKey(userID int64) string {
	return cache.Key(cache.ListKeyPrefix, strconv.FormatInt(userID, 10))
}

func viewersKey(cartID int64) string {
	return cache.Key(cache.ListViewersKeyPrefix, strconv.FormatInt(cartID, 10))
}

func backendError(err error, message string) *appErrors.AppError {
	if errors.Is(err, storefront.ErrNotFound) {
		return appErrors.NotFoundError("Shared cart not found").WithError(err)
	}

	var statusErr *storefront.StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.StatusCode {
		case http.StatusNotFound:
			return appErrors.NotFoundError("Shared cart not found").WithError(err)
		case http.StatusForbidden:
			return appErrors.ForbiddenError("Only the cart owner can do this").WithError(err)
		case http.StatusConflict, http.StatusBadRequest:
			return appErrors.BadRequestError(message).WithDetail(statusErr.Body).WithError(err)
		}
	}

	return appErrors.ThirdPartyError(message).WithError(err)
}
