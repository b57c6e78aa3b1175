package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/booking-pricing/internal/config"
)

func TestRunWritesQuote(t *testing.T) {
	ratesPath := filepath.Join(t.TempDir(), "rates.yaml")
	require.NoError(t, os.WriteFile(ratesPath, []byte("coupons:\n  - code: TEN\n    kind: percentage\n    value: 10\n    active: true\n"), 0o600))

	in := strings.NewReader(`{"bookingType":"direct_sale","paymentType":"partial","paymentAmount":"500",
		"items":[{"unitPrice":"1000","quantity":2}],"couponCode":"ten"}`)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), ratesPath, "0.10", "-", in, &out))

	var resp struct {
		Quote struct {
			TotalPayable string `json:"totalPayable"`
			PayNow       string `json:"payNow"`
			PayLater     string `json:"payLater"`
		} `json:"quote"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	// 2000 - 200 coupon = 1800, +10% tax
	require.Equal(t, "1980.00", resp.Quote.TotalPayable)
	require.Equal(t, "500.00", resp.Quote.PayNow)
	require.Equal(t, "1480.00", resp.Quote.PayLater)
}

func TestRunReportsErrorCode(t *testing.T) {
	in := strings.NewReader(`{"bookingType":"direct_sale","paymentType":"advance_with_deposit"}`)
	err := run(context.Background(), "", "0.18", "-", in, &bytes.Buffer{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "INVALID_CONFIGURATION")

	err = run(context.Background(), "", "abc", "-", strings.NewReader(`{}`), &bytes.Buffer{})
	require.Error(t, err)
}

func TestDefaultOptionsFollowConfig(t *testing.T) {
	cfg, err := config.LoadForTests(map[string]string{
		"PRICING_TAX_RATE":   "0.05",
		"PRICING_RATES_FILE": "/etc/pricing/rates.yaml",
	})
	require.NoError(t, err)

	opts := defaultOptions(cfg)
	require.Equal(t, "0.05", opts.taxRate)
	require.Equal(t, "/etc/pricing/rates.yaml", opts.ratesFile)

	cfg, err = config.LoadForTests(map[string]string{"PRICING_TAX_RATE": ""})
	require.NoError(t, err)
	require.Equal(t, "0.18", defaultOptions(cfg).taxRate)
}
