package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-pricing/internal/config"
	"github.com/noah-isme/booking-pricing/internal/obs"
	"github.com/noah-isme/booking-pricing/internal/rates"
)

const testRates = `
coupons:
  - code: FESTIVE
    kind: flat
    value: 200
    active: true
distance:
  global:
    - minKm: 0
      maxKm: 20
      addition: 300
`

func newTestServer(t *testing.T, rateMax int) (*httptest.Server, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	set, err := rates.Parse([]byte(testRates))
	require.NoError(t, err)

	cfg := &config.Config{
		AppEnv:         "test",
		TaxRate:        decimal.RequireFromString("0.18"),
		QuoteCacheTTL:  time.Minute,
		RateLimitWin:   time.Minute,
		RateLimitMax:   rateMax,
		BodyLimitBytes: 1 << 16,
		Obs:            config.Obs{ReadyTimeout: 100 * time.Millisecond},
	}
	srv := httptest.NewServer(newRouter(deps{
		cfg:         cfg,
		logger:      zerolog.Nop(),
		redis:       client,
		rates:       set,
		httpMetrics: obs.NewHTTPMetrics("router_test", nil, prometheus.NewRegistry()),
	}))
	t.Cleanup(srv.Close)
	return srv, mr
}

func TestQuoteEndToEnd(t *testing.T) {
	srv, mr := newTestServer(t, 100)
	body := `{"bookingType":"rental","paymentType":"full",
		"items":[{"id":"lehenga","unitPrice":"2000","quantity":1,"securityDeposit":"1000"}],
		"couponCode":"festive","distance":{"km":5}}`

	resp, err := http.Post(srv.URL+"/api/v1/quotes", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	require.NotEmpty(t, resp.Header.Get("X-RateLimit-Remaining"))

	var out struct {
		Data struct {
			Quote struct {
				AfterAdjustments string `json:"afterAdjustments"`
				TotalPayable     string `json:"totalPayable"`
				PayNow           string `json:"payNow"`
			} `json:"quote"`
			Coupon struct {
				Code string `json:"code"`
			} `json:"coupon"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	// 2000 + 300 surcharge - 200 coupon = 2100, +18% = 2478, + 1000 deposit
	require.Equal(t, "2100.00", out.Data.Quote.AfterAdjustments)
	require.Equal(t, "3478.00", out.Data.Quote.TotalPayable)
	require.Equal(t, "3478.00", out.Data.Quote.PayNow)
	require.Equal(t, "FESTIVE", out.Data.Coupon.Code)

	for _, key := range mr.Keys() {
		require.False(t, strings.HasPrefix(key, "quote:"), "coupon quotes are not cached")
	}
}

func TestRoutes(t *testing.T) {
	srv, _ := newTestServer(t, 100)

	cases := []struct {
		method, path, body string
		status             int
		contains           string
	}{
		{http.MethodGet, "/health/live", "", http.StatusOK, "ok"},
		{http.MethodGet, "/health/ready", "", http.StatusOK, `"rates":"ok"`},
		{http.MethodGet, "/api/v1/payment-types?bookingType=rental", "", http.StatusOK, "advance_with_deposit"},
		{http.MethodGet, "/api/v1/distance-pricing/compute?km=10&base=1000", "", http.StatusOK, `"source":"global"`},
		{http.MethodPost, "/api/v1/coupons/validate", `{"code":"festive","orderValue":"1000"}`, http.StatusOK, `"valid":true`},
		{http.MethodPost, "/api/v1/quotes", `{"bookingType":"direct_sale","paymentType":"advance_with_deposit"}`, http.StatusUnprocessableEntity, "INVALID_CONFIGURATION"},
		{http.MethodPost, "/api/v1/quotes", `{"bookingType":"rental","couponCode":"NOPE"}`, http.StatusUnprocessableEntity, "COUPON_REJECTED"},
	}
	for _, tc := range cases {
		req, err := http.NewRequest(tc.method, srv.URL+tc.path, strings.NewReader(tc.body))
		require.NoError(t, err)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		require.NoError(t, err)
		require.Equal(t, tc.status, resp.StatusCode, tc.path)
		require.Contains(t, string(data), tc.contains, tc.path)
	}
}

func TestQuoteRateLimited(t *testing.T) {
	srv, _ := newTestServer(t, 1)
	body := `{"bookingType":"rental"}`

	first, err := http.Post(srv.URL+"/api/v1/quotes", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	first.Body.Close()
	require.Equal(t, http.StatusOK, first.StatusCode)

	second, err := http.Post(srv.URL+"/api/v1/quotes", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	second.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, second.StatusCode)
	require.NotEmpty(t, second.Header.Get("Retry-After"))
}
