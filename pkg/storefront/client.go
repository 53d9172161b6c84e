package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aaravmahajanofficial/shared-cart-service/internal/api/middleware"
	"github.com/aaravmahajanofficial/shared-cart-service/internal/models"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxResponseBytes = 4 << 20

var (
	// ErrNotFound means the backend does not know the shared cart.
	ErrNotFound = errors.New("shared cart not found")
	// ErrUserNotFound means none of the invited identifiers matched a registered user.
	ErrUserNotFound = errors.New("no matching user found")
)

// StatusError is a non-2xx answer from the backend.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("storefront responded %d: %s", e.StatusCode, e.Body)
}

// Client is the remote storefront backend that owns shared carts.
type Client interface {
	FetchSharedCartDetail(ctx context.Context, cartID int64) (*models.SharedCartDetail, error)
	FetchSharedCartList(ctx context.Context) ([]models.SharedCartSummary, error)
	InviteParticipants(ctx context.Context, cartID int64, identifiers []string) ([]models.ResolvedInvitation, error)
	// CheckoutSharedCart returns the payment redirect URL, or nil when the order settled without one.
	CheckoutSharedCart(ctx context.Context, cartID int64, paymentMethod string) (*string, error)
	CloseCart(ctx context.Context, cartID int64) error
	CancelCart(ctx context.Context, cartID int64) error
	Ping(ctx context.Context) error
}

type Options struct {
	BaseURL      string
	ServiceToken string
	Timeout      time.Duration
	// breaker trips after this many consecutive transport or 5xx failures
	MaxFailures    uint32
	BreakerTimeout time.Duration
}

type httpClient struct {
	baseURL      string
	serviceToken string
	http         *http.Client
	breaker      *gobreaker.CircuitBreaker[[]byte]
}

func NewClient(opts Options) Client {
	maxFailures := opts.MaxFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "storefront",
		Timeout: opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}

			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				return statusErr.StatusCode < http.StatusInternalServerError
			}

			return false
		},
	})

	return &httpClient{
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		serviceToken: opts.ServiceToken,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
	}
}

func (c *httpClient) FetchSharedCartDetail(ctx context.Context, cartID int64) (*models.SharedCartDetail, error) {
	var payload wireDetail

	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/shared-carts/%d", cartID), nil, &payload); err != nil {
		if isStatus(err, http.StatusNotFound) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("fetch shared cart %d: %w", cartID, err)
	}

	detail := payload.toModel()

	return &detail, nil
}

func (c *httpClient) FetchSharedCartList(ctx context.Context) ([]models.SharedCartSummary, error) {
	var payload []wireSummary

	if err := c.do(ctx, http.MethodGet, "/shared-carts", nil, &payload); err != nil {
		return nil, fmt.Errorf("fetch shared carts: %w", err)
	}

	out := make([]models.SharedCartSummary, 0, len(payload))
	for _, s := range payload {
		out = append(out, s.toModel())
	}

	return out, nil
}

func (c *httpClient) InviteParticipants(ctx context.Context, cartID int64, identifiers []string) ([]models.ResolvedInvitation, error) {
	var payload wireInviteResponse

	body := wireInviteRequest{Identifiers: identifiers}

	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/shared-carts/%d/invitations", cartID), body, &payload); err != nil {
		switch {
		case isStatus(err, http.StatusNotFound):
			return nil, ErrUserNotFound
		default:
			return nil, fmt.Errorf("invite to shared cart %d: %w", cartID, err)
		}
	}

	return payload.Resolved, nil
}

func (c *httpClient) CheckoutSharedCart(ctx context.Context, cartID int64, paymentMethod string) (*string, error) {
	var payload wireCheckoutResponse

	body := wireCheckoutRequest{PaymentMethod: paymentMethod}

	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/shared-carts/%d/checkout", cartID), body, &payload); err != nil {
		return nil, fmt.Errorf("checkout shared cart %d: %w", cartID, err)
	}

	if payload.RedirectURL == nil || *payload.RedirectURL == "" {
		return nil, nil
	}

	return payload.RedirectURL, nil
}

func (c *httpClient) CloseCart(ctx context.Context, cartID int64) error {
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/shared-carts/%d/close", cartID), nil, nil); err != nil {
		return fmt.Errorf("close shared cart %d: %w", cartID, err)
	}

	return nil
}

func (c *httpClient) CancelCart(ctx context.Context, cartID int64) error {
	if err := c.do(ctx, http.MethodPost, fmt.Sprintf("/shared-carts/%d/cancel", cartID), nil, nil); err != nil {
		return fmt.Errorf("cancel shared cart %d: %w", cartID, err)
	}

	return nil
}

func (c *httpClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

// caller's token when the request is user-initiated, otherwise the service token
func (c *httpClient) token(ctx context.Context) string {
	if token := middleware.TokenFromContext(ctx); token != "" {
		return token
	}

	return c.serviceToken
}

func (c *httpClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}

		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if token := c.token(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	data, err := c.breaker.Execute(func() ([]byte, error) {
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return nil, &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
		}

		return data, nil
	})
	if err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func isStatus(err error, code int) bool {
	var statusErr *StatusError

	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
