package api

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"padelclub/internal/config"
	"padelclub/internal/metrics"
	"padelclub/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"
)

type ctxKey int

const (
	ctxKeyUser ctxKey = iota
	ctxKeyToken
)

// SessionHeader carries the session token issued by login/register.
const SessionHeader = "X-Session-Token"

func userFrom(ctx context.Context) *models.User {
	user, _ := ctx.Value(ctxKeyUser).(*models.User)
	return user
}

func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(ctxKeyToken).(string)
	return token
}

// authenticate resolves the session header into a user and stashes
// both in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(SessionHeader)
		if token == "" {
			writeError(w, r, http.StatusUnauthorized, "missing session token")
			return
		}

		user, err := s.users.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUser, user)
		ctx = context.WithValue(ctx, ctxKeyToken, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// limiterPool hands out one token-bucket limiter per client.
type limiterPool struct {
	cfg      config.RateLimitConfig
	limiters sync.Map // clientKey -> *rate.Limiter
}

func newLimiterPool(cfg config.RateLimitConfig) *limiterPool {
	return &limiterPool{cfg: cfg}
}

func (p *limiterPool) get(key string) *rate.Limiter {
	if v, ok := p.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := p.cfg.Burst
	if burst <= 0 {
		burst = 5
	}
	lim := rate.NewLimiter(rate.Limit(p.cfg.RPS), burst)
	actual, loaded := p.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}

// authRateLimit throttles the unauthenticated auth endpoints by remote
// address through the state repository's sliding window. A failing
// state repository does not lock out logins.
func (s *Server) authRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimit.AuthRequests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}

		window := time.Duration(s.rateLimit.AuthWindowSec) * time.Second
		allowed, err := s.states.CheckRateLimit(r.Context(), "auth:"+host, s.rateLimit.AuthRequests, window)
		if err != nil {
			s.logger.Error().Err(err).Msg("auth rate limit check failed")
			next.ServeHTTP(w, r)
			return
		}
		if !allowed {
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) rateLimiter(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.rateLimit.RPS <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := tokenFrom(r.Context())
		if key == "" {
			if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
				key = host
			} else {
				key = "unknown"
			}
		}

		if !s.limiters.get(key).Allow() {
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		// route pattern, not the raw path, keeps the label set bounded
		endpoint := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				endpoint = pattern
			}
		}
		metrics.IncHTTP(endpoint)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

type errResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, errResponse{Error: message})
}
