package service_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/cache"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/config"
	appErrors "github.com/aaravmahajanofficial/shared-cart-service/internal/errors"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/ledger"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
	service "github.com/aaravmahajanofficial/shared-cart-service/internal/services"
	"github.com/aaravmahajanofficial/shared-cart-service/pkg/storefront/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callLog records the order in which collaborators were reached.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.calls = append(l.calls, call)
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.calls...)
}

// memoryStore is an in-process durable tier that JSON-encodes values like the real ones.
type memoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
	log  *callLog
}

func newMemoryStore(log *callLog) *memoryStore {
	return &memoryStore{data: make(map[string][]byte), log: log}
}

func (m *memoryStore) Get(_ context.Context, key string, value any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[key]
	if !ok {
		return false, nil
	}

	return true, json.Unmarshal(data, value)
}

func (m *memoryStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.data[key] = data
	m.mu.Unlock()

	if m.log != nil {
		m.log.add("cache.set")
	}

	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)

	return nil
}

func (m *memoryStore) Close() error {
	return nil
}

type fixture struct {
	client       *mocks.MockClient
	store        *memoryStore
	state        *service.CoreState
	reconciler   *service.Reconciler
	orchestrator *service.CheckoutOrchestrator
	log          *callLog

	mu        sync.Mutex
	scheduled []func()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{client: mocks.NewMockClient(t), log: &callLog{}}
	f.store = newMemoryStore(f.log)
	f.state = service.NewCoreState(cache.NewItemCache(f.store, time.Hour), ledger.New())
	f.reconciler = service.NewReconciler(f.client, f.state)
	f.orchestrator = service.NewCheckoutOrchestrator(f.client, f.state, f.reconciler, testConfig().Checkout,
		service.WithScheduler(func(d time.Duration, fn func()) {
			f.mu.Lock()
			defer f.mu.Unlock()

			f.scheduled = append(f.scheduled, fn)
		}))

	return f
}

// runScheduled fires every delayed reconciliation queued so far.
func (f *fixture) runScheduled() int {
	f.mu.Lock()
	pending := f.scheduled
	f.scheduled = nil
	f.mu.Unlock()

	for _, fn := range pending {
		fn()
	}

	return len(pending)
}

func testConfig() *config.Config {
	return &config.Config{
		Checkout: config.Checkout{
			ReconcileDelay:   1500 * time.Millisecond,
			ReconcileTimeout: time.Second,
			PaymentMethods:   []string{"COD", "VNPAY", "STRIPE"},
		},
		Cache: config.CacheConfig{ListTTL: time.Minute},
	}
}

func authedContext(t *testing.T, userID int64) context.Context {
	t.Helper()

	ctx := middleware.WithLogger(t.Context(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	return middleware.WithClaims(ctx, &models.Claims{UserID: userID, Email: "olivia@x.com", Username: "olivia"}, "user-token")
}

func cartItems() []models.SharedCartItem {
	return []models.SharedCartItem{
		{ID: 5, ProductID: 1, ProductName: "Espresso beans", Quantity: 2, UnitPrice: 50000, Subtotal: 100000, AddedBy: "olivia"},
	}
}

func owner() models.Participant {
	return models.Participant{UserID: 1, Name: "Olivia", Username: "olivia", Email: "olivia@x.com", IsOwner: true}
}

func openDetail(cartID int64, items []models.SharedCartItem, participants ...models.Participant) *models.SharedCartDetail {
	return &models.SharedCartDetail{
		Cart: models.SharedCart{
			ID:         cartID,
			Title:      "Office coffee",
			Status:     models.CartStatusOpen,
			Owner:      models.ParticipantRef{UserID: 1, Name: "Olivia"},
			TotalItems: len(items),
		},
		Items:        items,
		Participants: append([]models.Participant{owner()}, participants...),
	}
}

// completedDetail is what the backend reports once checkout purged the item rows.
func completedDetail(cartID int64, declaredItems int) *models.SharedCartDetail {
	return &models.SharedCartDetail{
		Cart: models.SharedCart{
			ID:         cartID,
			Title:      "Office coffee",
			Status:     models.CartStatusCompleted,
			Owner:      models.ParticipantRef{UserID: 1, Name: "Olivia"},
			TotalItems: declaredItems,
		},
		Items:        []models.SharedCartItem{},
		Participants: []models.Participant{owner()},
	}
}

func requireAppError(t *testing.T, err error, code string) *appErrors.AppError {
	t.Helper()

	require.Error(t, err)

	appErr, ok := appErrors.IsAppError(err)
	require.True(t, ok, "expected *AppError, got %T", err)
	assert.Equal(t, code, appErr.Code)

	return appErr
}
