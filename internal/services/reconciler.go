package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/shared-cart-service/internal/errors"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/metrics"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/utils"
	"github.com/aaravmahajanofficial/shared-cart-service/pkg/storefront"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const tracerName = "github.com/aaravmahajanofficial/shared-cart-service/internal/services"

// upper bound for a shared refresh, which no longer follows any single caller's deadline
const refreshTimeout = 30 * time.Second

// Reconciler turns the backend's view of a shared cart into the merged view the UI reads.
//
// Every refresh runs the same pipeline: fetch, reconcile pending invitations, keep the
// item snapshot current while the cart is OPEN, and restore items the backend dropped
// after completing the cart. Given the same backend answer the output is the same, so
// concurrent refreshes converge.
type Reconciler struct {
	client storefront.Client
	state  *CoreState
	tracer trace.Tracer
	group  singleflight.Group

	mu        sync.RWMutex
	published map[int64]*models.MergedCartDetail
}

func NewReconciler(client storefront.Client, state *CoreState) *Reconciler {
	return &Reconciler{
		client:    client,
		state:     state,
		tracer:    otel.Tracer(tracerName),
		published: make(map[int64]*models.MergedCartDetail),
	}
}

// Refresh fetches the cart and publishes the merged result. Concurrent refreshes of the
// same cart by the same caller share one backend call. A caller that gives up gets its
// own context error; the shared call keeps running for the others.
func (r *Reconciler) Refresh(ctx context.Context, cartID int64) (*models.MergedCartDetail, error) {
	ch := r.group.DoChan(flightKey(ctx, cartID), func() (any, error) {
		flightCtx, cancel := utils.Detached(ctx, refreshTimeout)
		defer cancel()

		return r.refresh(flightCtx, cartID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return cloneMerged(res.Val.(*models.MergedCartDetail)), nil
	}
}

// Current returns the last merged view published for cartID, or nil.
func (r *Reconciler) Current(cartID int64) *models.MergedCartDetail {
	r.mu.RLock()
	defer r.mu.RUnlock()

	merged, ok := r.published[cartID]
	if !ok {
		return nil
	}

	return cloneMerged(merged)
}

func (r *Reconciler) refresh(ctx context.Context, cartID int64) (*models.MergedCartDetail, error) {
	ctx, span := r.tracer.Start(ctx, "Reconciler.Refresh", trace.WithAttributes(attribute.Int64("cart.id", cartID)))
	defer span.End()

	logger := middleware.LoggerFromContext(ctx)

	detail, err := r.client.FetchSharedCartDetail(ctx, cartID)
	if err != nil {
		span.RecordError(err)

		if errors.Is(err, storefront.ErrNotFound) {
			return nil, appErrors.NotFoundError("Shared cart not found").WithError(err)
		}

		logger.Error("Failed to fetch shared cart detail", slog.Int64("cartId", cartID), slog.Any("error", err))
		return nil, appErrors.ThirdPartyError("Failed to fetch shared cart").WithError(err)
	}

	r.state.Ledger.Reconcile(ctx, cartID, detail.Participants)
	if !detail.Cart.Status.IsOpen() {
		r.state.Ledger.Purge(cartID)
	}

	items, restored := r.reconcileItems(ctx, detail)

	merged := &models.MergedCartDetail{
		Cart:               detail.Cart,
		Items:              items,
		Participants:       detail.Participants,
		PendingInvitations: r.state.Ledger.Snapshot(cartID),
		ItemsRestored:      restored,
	}

	span.SetAttributes(
		attribute.String("cart.status", string(detail.Cart.Status)),
		attribute.Int("cart.items", len(items)),
		attribute.Bool("cart.items_restored", restored))

	r.mu.Lock()
	r.published[cartID] = merged
	r.mu.Unlock()

	return merged, nil
}

func (r *Reconciler) reconcileItems(ctx context.Context, detail *models.SharedCartDetail) ([]models.SharedCartItem, bool) {
	cart := detail.Cart

	switch {
	case cart.Status == models.CartStatusOpen && len(detail.Items) > 0:
		r.state.Items.Put(ctx, cart.ID, detail.Items)

	case cart.Status == models.CartStatusCompleted && len(detail.Items) == 0 && cart.TotalItems > 0:
		logger := middleware.LoggerFromContext(ctx).With(
			slog.Int64("cartId", cart.ID),
			slog.Int("declaredItems", cart.TotalItems))

		items, ok := r.state.Items.Get(ctx, cart.ID)
		if !ok {
			logger.Warn("Completed cart reported without items and no snapshot exists")
			metrics.ItemRestoration("missing")

			return []models.SharedCartItem{}, false
		}

		logger.Warn("Completed cart reported without items, restored from snapshot", slog.Int("restoredItems", len(items)))
		metrics.ItemRestoration("restored")

		return items, true
	}

	if detail.Items == nil {
		return []models.SharedCartItem{}, false
	}

	return detail.Items, false
}

// flights are per caller: the backend authorizes each fetch with the caller's token
func flightKey(ctx context.Context, cartID int64) string {
	caller := "service"
	if claims, ok := middleware.ClaimsFromContext(ctx); ok {
		caller = strconv.FormatInt(claims.UserID, 10)
	}

	return strconv.FormatInt(cartID, 10) + ":" + caller
}

func cloneMerged(m *models.MergedCartDetail) *models.MergedCartDetail {
	out := *m
	out.Items = append([]models.SharedCartItem(nil), m.Items...)
	out.Participants = append([]models.Participant(nil), m.Participants...)
	out.PendingInvitations = append([]models.PendingInvitation(nil), m.PendingInvitations...)

	if out.Items == nil {
		out.Items = []models.SharedCartItem{}
	}
	if out.Participants == nil {
		out.Participants = []models.Participant{}
	}
	if out.PendingInvitations == nil {
		out.PendingInvitations = []models.PendingInvitation{}
	}

	return &out
}
