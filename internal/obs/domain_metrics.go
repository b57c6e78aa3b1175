package obs

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// QuoteTotal counts quote calculations by booking type, payment type and outcome.
	QuoteTotal *prometheus.CounterVec
	// QuoteDuration records quote calculation latency in milliseconds.
	QuoteDuration *prometheus.HistogramVec
	// QuotePayableAmount observes the total payable of successful quotes in currency units.
	QuotePayableAmount *prometheus.HistogramVec
	// QuoteCacheTotal counts quote cache lookups by outcome.
	QuoteCacheTotal *prometheus.CounterVec
	// CouponValidationTotal counts coupon evaluations by outcome.
	CouponValidationTotal *prometheus.CounterVec
	// DistanceLookupTotal counts distance surcharge lookups by matched source.
	DistanceLookupTotal *prometheus.CounterVec
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		QuoteTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_total",
			Help:      "Count of pricing quotes by booking type, payment type and result.",
		}, []string{"booking_type", "payment_type", "result"})
		QuoteDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_duration_ms",
			Help:      "Latency of pricing quote calculation in milliseconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		}, []string{"result"})
		QuotePayableAmount = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quote_payable_amount",
			Help:      "Total payable of successful quotes in currency units.",
			Buckets:   []float64{1000, 5000, 10000, 25000, 50000, 100000, 250000, 500000},
		}, []string{"booking_type"})
		QuoteCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quote_cache_total",
			Help:      "Count of quote cache lookups by outcome.",
		}, []string{"result"})
		CouponValidationTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_validation_total",
			Help:      "Count of coupon evaluations by outcome.",
		}, []string{"result"})
		DistanceLookupTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "distance_lookup_total",
			Help:      "Count of distance surcharge lookups by matched source.",
		}, []string{"source"})

		register(reg, &QuoteTotal)
		register(reg, &QuoteDuration)
		register(reg, &QuotePayableAmount)
		register(reg, &QuoteCacheTotal)
		register(reg, &CouponValidationTotal)
		register(reg, &DistanceLookupTotal)
	})
}

// ObserveQuote records the outcome of one quote calculation. Safe to call before registration.
func ObserveQuote(bookingType, paymentType, result string, elapsed time.Duration) {
	if QuoteTotal != nil {
		QuoteTotal.WithLabelValues(labelOr(bookingType), labelOr(paymentType), result).Inc()
	}
	if QuoteDuration != nil {
		QuoteDuration.WithLabelValues(result).Observe(DurationMillis(elapsed))
	}
}

// ObservePayable records the payable total of a successful quote.
func ObservePayable(bookingType string, amount float64) {
	if QuotePayableAmount != nil {
		QuotePayableAmount.WithLabelValues(labelOr(bookingType)).Observe(amount)
	}
}

// ObserveQuoteCache counts a cache hit, miss or error.
func ObserveQuoteCache(result string) {
	if QuoteCacheTotal != nil {
		QuoteCacheTotal.WithLabelValues(result).Inc()
	}
}

// ObserveCoupon counts a coupon evaluation outcome.
func ObserveCoupon(result string) {
	if CouponValidationTotal != nil {
		CouponValidationTotal.WithLabelValues(result).Inc()
	}
}

// ObserveDistance counts which tier table served a distance lookup.
func ObserveDistance(source string) {
	if DistanceLookupTotal != nil {
		DistanceLookupTotal.WithLabelValues(source).Inc()
	}
}

func labelOr(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
