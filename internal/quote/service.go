package quote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/booking-pricing/internal/common"
	"github.com/noah-isme/booking-pricing/internal/coupon"
	"github.com/noah-isme/booking-pricing/internal/distance"
	"github.com/noah-isme/booking-pricing/internal/obs"
	"github.com/noah-isme/booking-pricing/internal/pricing"
)

// Service assembles pricing inputs from a request and runs the engine.
type Service struct {
	coupons  *coupon.Service
	distance *distance.Table
	cache    *Cache
	taxRate  decimal.Decimal
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// ServiceConfig groups Service dependencies. Coupons, Distance and Cache are optional.
type ServiceConfig struct {
	Coupons  *coupon.Service
	Distance *distance.Table
	Cache    *Cache
	TaxRate  decimal.Decimal
	Logger   zerolog.Logger
}

// NewService constructs a quote service.
func NewService(cfg ServiceConfig) *Service {
	return &Service{
		coupons:  cfg.Coupons,
		distance: cfg.Distance,
		cache:    cfg.Cache,
		taxRate:  cfg.TaxRate,
		logger:   cfg.Logger,
		tracer:   obs.Tracer("quote"),
	}
}

// TaxRate returns the rate applied when a request does not carry one.
func (s *Service) TaxRate() decimal.Decimal { return s.taxRate }

// Quote prices req. Failures are returned as *common.AppError.
func (s *Service) Quote(ctx context.Context, req Request) (Response, error) {
	start := time.Now()
	req = req.normalize(s.taxRate)
	ctx, span := s.tracer.Start(ctx, "quote.compute", trace.WithAttributes(
		attribute.String("booking_type", string(req.BookingType)),
		attribute.String("payment_type", string(req.PaymentType)),
		attribute.Int("items", len(req.Items)),
		attribute.Bool("coupon", req.CouponCode != ""),
	))
	defer span.End()
	log := s.log(ctx)

	// coupon eligibility depends on the clock and on usage counts, so those quotes are never cached
	cacheable := s.cache.Enabled() && req.CouponCode == ""
	var key string
	if cacheable {
		k, err := Key(req)
		if err != nil {
			log.Warn().Err(err).Msg("quote cache key")
			cacheable = false
		}
		key = k
	}
	if cacheable {
		var cached Response
		hit, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("quote cache get")
		}
		if hit {
			cached.Cached = true
			span.SetAttributes(attribute.Bool("cache_hit", true))
			obs.ObserveQuote(string(req.BookingType), string(req.PaymentType), "ok", time.Since(start))
			return cached, nil
		}
	}

	resp, err := s.compute(ctx, req)
	if err != nil {
		appErr := toAppError(err)
		obs.ObserveQuote(string(req.BookingType), string(req.PaymentType), resultLabel(err), time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, appErr.Code)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error().Err(err).Msg("quote failed")
		} else {
			log.Debug().Err(err).Str("code", appErr.Code).Msg("quote rejected")
		}
		return Response{}, appErr
	}

	obs.ObserveQuote(string(req.BookingType), string(req.PaymentType), "ok", time.Since(start))
	obs.ObservePayable(string(req.BookingType), resp.Quote.TotalPayable.Float64())
	span.SetAttributes(attribute.String("total_payable", resp.Quote.TotalPayable.String()))

	if cacheable {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("quote cache set")
		}
	}
	return resp, nil
}

func (s *Service) compute(ctx context.Context, req Request) (Response, error) {
	cart := pricing.Cart(req.Items)
	if err := cart.Validate(); err != nil {
		return Response{}, err
	}
	subtotal := pricing.ComputeSubtotal(cart)

	discount := pricing.Zero
	if req.Discount != nil {
		d, err := pricing.ResolveDiscount(req.Discount.Type, req.Discount.Value, subtotal)
		if err != nil {
			return Response{}, err
		}
		discount = d
	}

	var info *DistanceInfo
	surcharge := pricing.Zero
	switch {
	case req.DistanceSurcharge != nil:
		surcharge = *req.DistanceSurcharge
		info = &DistanceInfo{Source: SourceExplicit, Surcharge: surcharge}
	case req.Distance != nil:
		res, err := s.distance.Compute(req.Distance.VariantID, req.Distance.Km, subtotal)
		if err != nil {
			return Response{}, err
		}
		surcharge = res.Addon
		info = &DistanceInfo{Source: res.Source, Surcharge: res.Addon}
	}

	var applied *coupon.Applied
	couponDiscount := pricing.Zero
	if req.CouponCode != "" {
		if s.coupons == nil {
			return Response{}, fmt.Errorf("coupons are not enabled: %w", coupon.ErrNotFound)
		}
		base := subtotal.Add(surcharge).Sub(discount).ClampZero()
		a, err := s.coupons.Apply(ctx, req.CouponCode, base, req.CustomerID)
		if err != nil {
			return Response{}, err
		}
		applied = &a
		couponDiscount = a.Discount
	}

	result, err := pricing.Compute(cart, pricing.Config{
		BookingType:       req.BookingType,
		PaymentType:       req.PaymentType,
		TaxRate:           *req.TaxRate,
		PaymentAmount:     req.PaymentAmount,
		DiscountAmount:    discount,
		CouponDiscount:    couponDiscount,
		DistanceSurcharge: surcharge,
	})
	if err != nil {
		return Response{}, err
	}
	return Response{Quote: result, Coupon: applied, Distance: info}, nil
}

func (s *Service) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

// toAppError maps engine, coupon and distance errors onto API error codes.
func toAppError(err error) *common.AppError {
	var appErr *common.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, pricing.ErrInvalidArgument), errors.Is(err, distance.ErrInvalidInput):
		return common.NewAppError("INVALID_ARGUMENT", err.Error(), http.StatusBadRequest, err)
	case errors.Is(err, pricing.ErrInvalidConfiguration):
		return common.NewAppError("INVALID_CONFIGURATION", err.Error(), http.StatusUnprocessableEntity, err)
	case coupon.IsRejection(err):
		return common.NewAppError("COUPON_REJECTED", coupon.RejectionMessage(err), http.StatusUnprocessableEntity, err).
			WithDetails(map[string]string{"reason": err.Error()})
	default:
		return common.NewAppError("INTERNAL", "quote failed", http.StatusInternalServerError, err)
	}
}

func resultLabel(err error) string {
	switch toAppError(err).Code {
	case "INVALID_ARGUMENT":
		return "invalid_argument"
	case "INVALID_CONFIGURATION":
		return "invalid_configuration"
	case "COUPON_REJECTED":
		return "coupon_rejected"
	default:
		return "error"
	}
}
