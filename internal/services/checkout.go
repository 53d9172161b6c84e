package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/config"
	appErrors "github.com/aaravmahajanofficial/shared-cart-service/internal/errors"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/metrics"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/utils"
	"github.com/aaravmahajanofficial/shared-cart-service/pkg/storefront"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Where the item list written before submission came from.
const (
	SourceCurrent = "current"
	SourceCache   = "cache"
	SourceFetch   = "fetch"
	SourceNone    = "none"
)

// Scheduler runs fn once after d. time.AfterFunc in production.
type Scheduler func(d time.Duration, fn func())

func defaultScheduler(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

type OrchestratorOption func(*CheckoutOrchestrator)

func WithScheduler(s Scheduler) OrchestratorOption {
	return func(o *CheckoutOrchestrator) {
		o.schedule = s
	}
}

// CheckoutOrchestrator drives one checkout attempt per cart through
// IDLE -> SNAPSHOTTING -> SUBMITTING -> SUCCEEDED | FAILED.
//
// The item snapshot is written before the backend is asked to check out, because the
// backend deletes the item rows as part of finalizing the order.
type CheckoutOrchestrator struct {
	client     storefront.Client
	state      *CoreState
	reconciler *Reconciler
	delay      time.Duration
	timeout    time.Duration
	schedule   Scheduler
	tracer     trace.Tracer

	mu     sync.Mutex
	states map[int64]models.CheckoutState
}

func NewCheckoutOrchestrator(client storefront.Client, state *CoreState, reconciler *Reconciler, cfg config.Checkout, opts ...OrchestratorOption) *CheckoutOrchestrator {
	o := &CheckoutOrchestrator{
		client:     client,
		state:      state,
		reconciler: reconciler,
		delay:      cfg.ReconcileDelay,
		timeout:    cfg.ReconcileTimeout,
		schedule:   defaultScheduler,
		tracer:     otel.Tracer(tracerName),
		states:     make(map[int64]models.CheckoutState),
	}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// Checkout runs one attempt. current is the caller's latest merged view and may be nil.
func (o *CheckoutOrchestrator) Checkout(ctx context.Context, cartID int64, paymentMethod string, current *models.MergedCartDetail) (*models.CheckoutResult, error) {
	if !o.begin(cartID) {
		return nil, appErrors.CheckoutInProgressError("A checkout for this cart is already in progress")
	}

	ctx, span := o.tracer.Start(ctx, "CheckoutOrchestrator.Checkout", trace.WithAttributes(
		attribute.Int64("cart.id", cartID),
		attribute.String("payment.method", paymentMethod)))
	defer span.End()

	logger := middleware.LoggerFromContext(ctx).With(slog.Int64("cartId", cartID))

	// SNAPSHOTTING
	source := o.snapshot(ctx, cartID, current)
	span.SetAttributes(attribute.String("checkout.snapshot_source", source))

	o.transition(cartID, models.CheckoutStateSubmitting)

	redirectURL, err := o.client.CheckoutSharedCart(ctx, cartID, paymentMethod)
	if err != nil {
		o.transition(cartID, models.CheckoutStateFailed)
		metrics.CheckoutOutcome(string(models.CheckoutStateFailed), source)

		span.RecordError(err)
		span.SetStatus(codes.Error, "checkout failed")
		logger.Error("Shared cart checkout failed", slog.String("paymentMethod", paymentMethod), slog.Any("error", err))

		if errors.Is(err, storefront.ErrNotFound) {
			return nil, appErrors.NotFoundError("Shared cart not found").WithError(err)
		}

		return nil, appErrors.ThirdPartyError("Checkout failed, please try again").WithError(err)
	}

	o.transition(cartID, models.CheckoutStateSucceeded)
	metrics.CheckoutOutcome(string(models.CheckoutStateSucceeded), source)

	o.scheduleReconcile(ctx, cartID)

	result := &models.CheckoutResult{
		State:          models.CheckoutStateSucceeded,
		SnapshotSource: source,
	}

	if redirectURL != nil {
		result.RedirectURL = *redirectURL
		result.RedirectRequired = true
	}

	logger.Info("Shared cart checkout submitted",
		slog.String("paymentMethod", paymentMethod),
		slog.Bool("redirectRequired", result.RedirectRequired),
		slog.String("snapshotSource", source))

	return result, nil
}

// State returns the latest checkout state of cartID.
func (o *CheckoutOrchestrator) State(cartID int64) models.CheckoutState {
	o.mu.Lock()
	defer o.mu.Unlock()

	if s, ok := o.states[cartID]; ok {
		return s
	}

	return models.CheckoutStateIdle
}

func (o *CheckoutOrchestrator) begin(cartID int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.states[cartID].InFlight() {
		return false
	}

	o.states[cartID] = models.CheckoutStateSnapshotting

	return true
}

func (o *CheckoutOrchestrator) transition(cartID int64, s models.CheckoutState) {
	o.mu.Lock()
	o.states[cartID] = s
	o.mu.Unlock()
}

// snapshot finds the best item list and has written it to the durable tier on return.
func (o *CheckoutOrchestrator) snapshot(ctx context.Context, cartID int64, current *models.MergedCartDetail) string {
	items, source := o.findItems(ctx, cartID, current)

	if len(items) == 0 {
		middleware.LoggerFromContext(ctx).Warn("No item list found before checkout, completed cart will have nothing to restore",
			slog.Int64("cartId", cartID))

		return SourceNone
	}

	o.state.Items.Put(ctx, cartID, items)

	return source
}

func (o *CheckoutOrchestrator) findItems(ctx context.Context, cartID int64, current *models.MergedCartDetail) ([]models.SharedCartItem, string) {
	if current != nil && current.Cart.ID == cartID && len(current.Items) > 0 {
		return current.Items, SourceCurrent
	}

	if items, ok := o.state.Items.Get(ctx, cartID); ok {
		return items, SourceCache
	}

	detail, err := o.client.FetchSharedCartDetail(ctx, cartID)
	if err != nil {
		middleware.LoggerFromContext(ctx).Warn("Item fetch before checkout failed",
			slog.Int64("cartId", cartID),
			slog.Any("error", err))

		return nil, SourceNone
	}

	return detail.Items, SourceFetch
}

func (o *CheckoutOrchestrator) scheduleReconcile(ctx context.Context, cartID int64) {
	o.schedule(o.delay, func() {
		bgCtx, cancel := utils.Detached(ctx, o.timeout)
		defer cancel()

		if _, err := o.reconciler.Refresh(bgCtx, cartID); err != nil {
			middleware.LoggerFromContext(bgCtx).Warn("Post-checkout reconciliation failed",
				slog.Int64("cartId", cartID),
				slog.Any("error", err))
		}
	})
}
