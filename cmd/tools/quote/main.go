// Command quote prices a booking offline. It reads a quote request as JSON from
// stdin (or -in) and writes the result to stdout.
//
//	echo '{"bookingType":"rental","items":[{"unitPrice":"1000","quantity":1}]}' | quote -rates rates.yaml
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/shopspring/decimal"

	"github.com/noah-isme/booking-pricing/internal/common"
	"github.com/noah-isme/booking-pricing/internal/config"
	"github.com/noah-isme/booking-pricing/internal/coupon"
	"github.com/noah-isme/booking-pricing/internal/obs"
	"github.com/noah-isme/booking-pricing/internal/quote"
	"github.com/noah-isme/booking-pricing/internal/rates"
)

// options holds flag defaults taken from the same environment the API server reads.
type options struct {
	ratesFile string
	taxRate   string
}

func defaultOptions(cfg *config.Config) options {
	return options{ratesFile: cfg.RatesFile, taxRate: cfg.TaxRate.String()}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(2)
	}
	defaults := defaultOptions(cfg)

	var (
		ratesFile = flag.String("rates", defaults.ratesFile, "YAML file with coupons and distance tiers")
		taxRate   = flag.String("tax", defaults.taxRate, "default tax rate as a fraction")
		inPath    = flag.String("in", "-", "request file, - for stdin")
		logLevel  = flag.String("log-level", "warn", "log level written to stderr")
	)
	flag.Parse()

	logger := obs.NewLoggerTo(os.Stderr, "console", *logLevel)

	if err := run(context.Background(), *ratesFile, *taxRate, *inPath, os.Stdin, os.Stdout); err != nil {
		logger.Error().Err(err).Msg("quote failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, ratesFile, taxRate, inPath string, stdin io.Reader, stdout io.Writer) error {
	rate, err := decimal.NewFromString(taxRate)
	if err != nil {
		return fmt.Errorf("parse tax rate: %w", err)
	}
	set, err := rates.Load(ratesFile)
	if err != nil {
		return err
	}

	in := stdin
	if inPath != "" && inPath != "-" {
		f, err := os.Open(inPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	var req quote.Request
	dec := json.NewDecoder(in)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	if err := common.ValidateStruct(req); err != nil {
		return describe(err)
	}

	svc := quote.NewService(quote.ServiceConfig{
		Coupons:  &coupon.Service{Store: set.Coupons},
		Distance: set.Distance,
		TaxRate:  rate,
	})
	resp, err := svc.Quote(ctx, req)
	if err != nil {
		return describe(err)
	}
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func describe(err error) error {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		if appErr.Details != nil {
			return fmt.Errorf("%s: %s (%v)", appErr.Code, appErr.Message, appErr.Details)
		}
		return fmt.Errorf("%s: %s", appErr.Code, appErr.Message)
	}
	return err
}
