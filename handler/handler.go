// Package handler implements the connection-handling state machine that sits
// between callers and the transport. Every call loops through
// attempt -> classify until it reaches a terminal state: a structural result,
// a fatal fault, or retry exhaustion when a cap is configured. Rate-limit
// responses and retryable transport faults never cross this boundary.
package handler

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/gaborage/replicon-go/config"
	"github.com/gaborage/replicon-go/httpclient"
	"github.com/gaborage/replicon-go/logger"
)

// Handler drives one request through the retry/backoff state machine.
// It is stateless between calls and safe for concurrent use.
type Handler struct {
	transport httpclient.Transport
	cfg       *config.Config
	log       logger.Logger
	limiter   *rate.Limiter
	anonymous bool
	now       func() time.Time
	sleep     func(context.Context, time.Duration) error
}

// Option configures the handler.
type Option func(*Handler)

// WithClock injects the wall clock and sleep function. Tests use this to
// observe backoff decisions without waiting them out.
func WithClock(now func() time.Time, sleep func(context.Context, time.Duration) error) Option {
	return func(h *Handler) {
		if now != nil {
			h.now = now
		}
		if sleep != nil {
			h.sleep = sleep
		}
	}
}

// WithRateLimiter installs a client-side throttle applied before every
// attempt, ahead of the reactive 429 handling.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(h *Handler) {
		h.limiter = l
	}
}

// WithAnonymous disables credential attachment. The tenant discovery
// endpoint is the one unauthenticated call this library makes.
func WithAnonymous() Option {
	return func(h *Handler) {
		h.anonymous = true
	}
}

// New creates a Handler bound to a validated configuration.
func New(transport httpclient.Transport, cfg *config.Config, log logger.Logger, opts ...Option) *Handler {
	h := &Handler{
		transport: transport,
		cfg:       cfg,
		log:       log,
		now:       time.Now,
		sleep:     sleepContext,
	}
	if cfg.API.RequestsPerSecond > 0 {
		h.limiter = rate.NewLimiter(rate.Limit(cfg.API.RequestsPerSecond), cfg.API.RequestsPerSecond)
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle sends payload to url and resolves the outcome. Rate-limited
// responses wait until the top of the next clock hour and try again;
// retryable transport faults wait the configured RetryWait and try again.
// Both branches loop without bound unless MaxAttempts is set. Fatal faults
// return unchanged after exactly one attempt. Application-level error bodies
// are results, never errors.
func (h *Handler) Handle(ctx context.Context, url string, payload httpclient.Payload) (*httpclient.Result, error) {
	req := &httpclient.Request{
		Method:      h.cfg.API.Method,
		URL:         url,
		Headers:     h.cfg.API.Headers,
		Payload:     payload,
		Credentials: h.credentials(),
	}

	attempts := 0
	for {
		if h.limiter != nil {
			if err := h.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		attempts++

		result, err := h.transport.Send(ctx, req)

		switch {
		case err == nil && !result.RateLimited():
			return result, nil

		case err == nil:
			wait := untilNextHour(h.now())
			h.log.Warn().
				Int("attempt", attempts).
				Dur("wait", wait).
				Interface("payload", map[string]any(payload)).
				Msg("rate limit reached, waiting for the next hour window")
			if exhausted := h.checkAttempts(attempts, result, nil); exhausted != nil {
				return nil, exhausted
			}
			if err := h.sleep(ctx, wait); err != nil {
				return nil, err
			}

		case httpclient.IsRetryable(err):
			h.log.Error().
				Err(err).
				Int("attempt", attempts).
				Dur("wait", h.cfg.API.RetryWait).
				Interface("payload", map[string]any(payload)).
				Msg("retryable transport fault, attempting the operation again")
			if exhausted := h.checkAttempts(attempts, nil, err); exhausted != nil {
				return nil, exhausted
			}
			if err := h.sleep(ctx, h.cfg.API.RetryWait); err != nil {
				return nil, err
			}

		default:
			h.log.Error().
				Err(err).
				Int("attempt", attempts).
				Interface("payload", map[string]any(payload)).
				Msg("fatal fault, giving up")
			return nil, err
		}
	}
}

// credentials computes the per-call authentication material. The basic-auth
// login joins company key and username with a backslash; the upstream
// service requires exactly this convention.
func (h *Handler) credentials() *httpclient.Credentials {
	if h.anonymous {
		return nil
	}
	tenant := &h.cfg.Tenant
	if tenant.UsesToken() {
		return &httpclient.Credentials{Token: tenant.AccessToken}
	}
	return &httpclient.Credentials{
		Basic: &httpclient.BasicAuth{
			Username: tenant.CompanyKey + `\` + tenant.Username,
			Password: tenant.Password,
		},
	}
}

// checkAttempts enforces the optional retry cap. Zero preserves the
// upstream's unbounded behavior.
func (h *Handler) checkAttempts(attempts int, last *httpclient.Result, cause error) error {
	if h.cfg.API.MaxAttempts <= 0 || attempts < h.cfg.API.MaxAttempts {
		return nil
	}
	exhausted := &RetryExhaustedError{Attempts: attempts, cause: cause}
	if last != nil {
		exhausted.LastStatus = last.StatusCode
	}
	return exhausted
}

// sleepContext blocks for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
