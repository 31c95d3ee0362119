package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware_CountsByRouteAndStatus(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	e := echo.New()
	e.Use(m.Middleware())
	e.GET("/products/:id", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/fail", func(c echo.Context) error { return echo.NewHTTPError(http.StatusNotFound) })

	for _, p := range []string{"/products/1", "/products/2", "/fail"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/products/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/fail", "404")))
}

func TestObserveCheckout_AndExposition(t *testing.T) {
	m, err := New()
	require.NoError(t, err)

	m.ObserveCheckout(CheckoutOK, 25.5)
	m.ObserveCheckout(CheckoutEmpty, 0)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.checkouts.WithLabelValues(CheckoutOK)))
	assert.Equal(t, 25.5, testutil.ToFloat64(m.revenue))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shop_checkouts_total{result="empty_cart"} 1`)

	var nilMetrics *Metrics
	assert.NotPanics(t, func() { nilMetrics.ObserveCheckout(CheckoutOK, 1) })
}
