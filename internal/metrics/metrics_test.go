package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/shared-carts/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	handler := Middleware(mux)

	t.Run("Labels by route pattern", func(t *testing.T) {
		counter := httpRequestsTotal.WithLabelValues("404", http.MethodGet, "GET /api/v1/shared-carts/{id}")
		before := testutil.ToFloat64(counter)

		for _, path := range []string{"/api/v1/shared-carts/1", "/api/v1/shared-carts/2"} {
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, rr.Code)
		}

		assert.Equal(t, before+2, testutil.ToFloat64(counter))
		assert.Equal(t, 0.0, testutil.ToFloat64(httpRequestsInFlight))
	})
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(itemRestorations.WithLabelValues("restored"))

	ItemRestoration("restored")

	assert.Equal(t, before+1, testutil.ToFloat64(itemRestorations.WithLabelValues("restored")))

	beforeCheckout := testutil.ToFloat64(checkoutOutcomes.WithLabelValues("FAILED", "cache"))

	CheckoutOutcome("FAILED", "cache")

	assert.Equal(t, beforeCheckout+1, testutil.ToFloat64(checkoutOutcomes.WithLabelValues("FAILED", "cache")))
}
