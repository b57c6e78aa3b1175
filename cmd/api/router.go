package main

import (
	"context"
	"crypto/subtle"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/booking-pricing/internal/config"
	"github.com/noah-isme/booking-pricing/internal/coupon"
	"github.com/noah-isme/booking-pricing/internal/distance"
	"github.com/noah-isme/booking-pricing/internal/health"
	"github.com/noah-isme/booking-pricing/internal/obs"
	"github.com/noah-isme/booking-pricing/internal/quote"
	"github.com/noah-isme/booking-pricing/internal/ratelimit"
	"github.com/noah-isme/booking-pricing/internal/rates"
	"github.com/noah-isme/booking-pricing/internal/resilience"
	"github.com/noah-isme/booking-pricing/internal/security"
)

// deps carries everything the router needs. Redis is optional.
type deps struct {
	cfg         *config.Config
	logger      zerolog.Logger
	redis       redis.UniversalClient
	rates       *rates.Set
	httpMetrics *obs.HTTPMetrics
	tracing     bool
}

func newRouter(d deps) http.Handler {
	var usage coupon.UsageCounter
	if d.redis != nil {
		usage = coupon.RedisUsage{Client: d.redis}
	}
	couponSvc := &coupon.Service{
		Store:  d.rates.Coupons,
		Usage:  usage,
		Logger: d.logger.With().Str("component", "coupon").Logger(),
	}
	quoteSvc := quote.NewService(quote.ServiceConfig{
		Coupons:  couponSvc,
		Distance: d.rates.Distance,
		Cache: quote.NewCache(d.redis, d.cfg.QuoteCacheTTL).WithBreaker(
			resilience.NewBreaker("quote_cache", 5, 0.5, 30*time.Second).WithLogger(d.logger),
		),
		TaxRate:  d.cfg.TaxRate,
		Logger:   d.logger.With().Str("component", "quote").Logger(),
	})
	quoteHandler := &quote.Handler{Svc: quoteSvc}
	couponHandler := &coupon.Handler{Svc: couponSvc}
	distanceHandler := &distance.Handler{Table: d.rates.Distance}

	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter()
	if d.redis != nil {
		limiter = ratelimit.RedisLimiter{Client: d.redis, Prefix: "ratelimit:"}
	}
	limit := ratelimit.Handler{
		Limiter: limiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ByRouteAndClientIP("pricing:"),
			Window: d.cfg.RateLimitWin,
			Max:    d.cfg.RateLimitMax,
		},
		OnError: func(err error) { d.logger.Warn().Err(err).Msg("rate limiter unavailable") },
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(obs.RoutePatternMiddleware)
	if d.tracing {
		r.Use(obs.TracingMiddleware)
	}
	if d.httpMetrics != nil {
		r.Use(obs.HTTPObs{Metrics: d.httpMetrics}.Middleware)
	}
	r.Use(obs.RequestLogger{Logger: d.logger}.Middleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(d.cfg),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: len(d.cfg.CORSAllowedOrigins) > 0,
		MaxAge:           300,
	}))
	r.Use(security.Headers{Enable: true, EnableHSTS: d.cfg.AppEnv == "production"}.Middleware)

	if d.httpMetrics != nil {
		r.Handle("/metrics", promhttp.Handler())
	}
	if d.cfg.Obs.PprofEnabled {
		r.Mount("/debug/pprof", protectPprof(newPprofMux(), d.cfg.Obs.PprofUser, d.cfg.Obs.PprofPass))
	}

	healthHandler := health.Handler{
		Checker:      readinessChecker{redis: d.redis, rates: d.rates},
		RedisTimeout: d.cfg.Obs.ReadyTimeout,
	}
	r.Get("/health/live", healthHandler.Live)
	r.Get("/health/ready", healthHandler.Ready)

	r.Route("/api/v1", func(v chi.Router) {
		v.Use(security.Headers{Enable: true, NoStore: true}.Middleware)
		v.Get("/payment-types", quoteHandler.PaymentTypes)
		v.Get("/distance-pricing/compute", distanceHandler.Compute)

		v.Group(func(g chi.Router) {
			g.Use(limit.Middleware)
			g.Use(security.BodyLimit{Max: d.cfg.BodyLimitBytes}.Middleware)
			g.Post("/quotes", quoteHandler.Create)
			g.Post("/coupons/validate", couponHandler.Validate)
		})
	})

	return r
}

func allowedOrigins(cfg *config.Config) []string {
	if len(cfg.CORSAllowedOrigins) == 0 {
		return []string{"*"}
	}
	return cfg.CORSAllowedOrigins
}

type readinessChecker struct {
	redis redis.UniversalClient
	rates *rates.Set
}

func (c readinessChecker) PingRedis(ctx context.Context, timeout time.Duration) error {
	if c.redis == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.redis.Ping(ctx).Err()
}

func (c readinessChecker) RatesLoaded() error {
	return c.rates.Ready()
}

func newPprofMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", pprof.Index)
	mux.HandleFunc("/cmdline", pprof.Cmdline)
	mux.HandleFunc("/profile", pprof.Profile)
	mux.HandleFunc("/symbol", pprof.Symbol)
	mux.HandleFunc("/trace", pprof.Trace)
	mux.Handle("/goroutine", pprof.Handler("goroutine"))
	mux.Handle("/heap", pprof.Handler("heap"))
	return mux
}

func protectPprof(handler http.Handler, user, pass string) http.Handler {
	user = strings.TrimSpace(user)
	pass = strings.TrimSpace(pass)
	if user == "" {
		return handler
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, p, ok := r.BasicAuth()
		if !ok || subtle.ConstantTimeCompare([]byte(u), []byte(user)) != 1 || subtle.ConstantTimeCompare([]byte(p), []byte(pass)) != 1 {
			w.Header().Set("WWW-Authenticate", "Basic realm=restricted")
			http.Error(w, "unauthorised", http.StatusUnauthorized)
			return
		}
		handler.ServeHTTP(w, r)
	})
}
