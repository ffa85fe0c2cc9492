package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"surfsup-server/internal/logging"
	"surfsup-server/internal/metrics"
	"surfsup-server/internal/utils"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 128
	unmatchedRoute  = "unmatched"
)

// Options configures the middleware chain. Nil Metrics and Limiter disable
// the corresponding middleware; nil Logger and Clock fall back to defaults.
type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Limiter *rate.Limiter
	Clock   clockwork.Clock
}

// Wrap applies the middleware chain to h. Instrumentation sits directly on
// the mux so it sees the request the mux annotates with the matched pattern.
func Wrap(h http.Handler, opts Options) http.Handler {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	h = instrument(opts.Metrics, opts.Clock)(h)
	h = rateLimit(opts.Limiter, opts.Metrics)(h)
	h = requestLogger(opts.Clock)(h)
	h = requestID(opts.Logger)(h)
	return h
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.wroteHeader {
		sr.status = code
		sr.wroteHeader = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wroteHeader {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}

func (sr *statusRecorder) Unwrap() http.ResponseWriter {
	return sr.ResponseWriter
}

// requestID propagates or assigns a request ID, echoes it in the response and
// attaches a request-scoped logger to the context.
func requestID(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(requestIDHeader)
			if id == "" || len(id) > maxRequestIDLen {
				id = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, id)

			ctx := logging.WithContext(r.Context(), base.With("request_id", id))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLogger(clock clockwork.Clock) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := clock.Now()

			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			logging.FromContext(r.Context()).Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"route", routeLabel(r),
				"status", sr.status,
				"duration_ms", clock.Since(start).Milliseconds(),
			)
		})
	}
}

// rateLimit returns 429 when the token bucket is exhausted.
func rateLimit(limiter *rate.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				logging.FromContext(r.Context()).Debug("rate limit denied")
				if m != nil {
					m.RateLimitDenied.Inc()
				}
				utils.WriteError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func instrument(m *metrics.Metrics, clock clockwork.Clock) func(http.Handler) http.Handler {
	if m == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := clock.Now()
			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sr, r)

			route := routeLabel(r)
			m.HTTPRequestsTotal.WithLabelValues(r.Method, route, statusClass(sr.status)).Inc()
			m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(clock.Since(start).Seconds())
		})
	}
}

// routeLabel uses the matched mux pattern so path parameters do not explode
// label cardinality.
func routeLabel(r *http.Request) string {
	if r.Pattern == "" {
		return unmatchedRoute
	}
	return r.Pattern
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}

// NewLimiter returns nil when rps is not positive.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}
