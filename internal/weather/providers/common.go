package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/time/rate"
)

const tracerName = "github.com/i474232898/weather-lookup/providers"

// HTTPClientConfig bundles the outbound HTTP client and its pacing.
type HTTPClientConfig struct {
	Client  *http.Client
	Limiter *rate.Limiter
}

var (
	errRateLimited  = errors.New("rate limited")
	errServerError  = errors.New("server error")
	errUnexpected   = errors.New("unexpected status code")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

func newCircuit(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:         name,
		MaxRequests:  5,
		Interval:     1 * time.Minute,
		Timeout:      2 * time.Minute,
		IsSuccessful: upstreamHealthy,
	})
}

// upstreamHealthy decides which outcomes count against the circuit. Caller
// cancellations and 4xx answers do not.
func upstreamHealthy(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, errUnexpected)
}

// getJSON performs a single GET and decodes the body into out. When cb is
// non-nil the call goes through the circuit breaker. There is no retry: a
// failed attempt is reported to the caller as is.
func getJSON(ctx context.Context, cfg HTTPClientConfig, cb *gobreaker.CircuitBreaker, op, rawURL string, out any) error {
	if cfg.Client == nil {
		return errNoHTTPClient
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, op)
	defer span.End()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return fail(fmt.Errorf("rate limit wait canceled: %w", err))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fail(fmt.Errorf("failed to create request: %w", err))
	}

	call := func() (interface{}, error) {
		resp, execErr := cfg.Client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, errRateLimited
		}
		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, resp.StatusCode)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode)
		}

		if decErr := json.NewDecoder(resp.Body).Decode(out); decErr != nil {
			return nil, fmt.Errorf("failed to decode response: %w", decErr)
		}
		return nil, nil
	}

	if cb != nil {
		span.SetAttributes(attribute.String("circuit", cb.Name()))
		_, err = cb.Execute(call)
	} else {
		_, err = call()
	}
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fail(fmt.Errorf("%w: %v", errCircuitOpen, err))
		}
		return fail(err)
	}
	return nil
}
