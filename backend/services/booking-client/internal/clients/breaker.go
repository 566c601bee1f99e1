package clients

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerSettings tunes the circuit breaker in front of the booking server.
type BreakerSettings struct {
	Name             string
	FailureThreshold uint32
	OpenTimeout      time.Duration
	HalfOpenRequests uint32
}

// DefaultBreakerSettings returns the settings used when none are configured.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		Name:             "booking-api",
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
		HalfOpenRequests: 1,
	}
}

var errUpstreamStatus = errors.New("upstream 5xx")

// BreakerDoer guards an HTTPDoer with a circuit breaker. Transport failures and 5xx
// answers count as failures; 4xx answers such as 409 do not.
type BreakerDoer struct {
	next   HTTPDoer
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// NewBreakerDoer wraps next.
func NewBreakerDoer(next HTTPDoer, s BreakerSettings, logger *zap.Logger) *BreakerDoer {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultBreakerSettings()
	if s.Name == "" {
		s.Name = def.Name
	}
	if s.FailureThreshold == 0 {
		s.FailureThreshold = def.FailureThreshold
	}
	if s.OpenTimeout <= 0 {
		s.OpenTimeout = def.OpenTimeout
	}
	if s.HalfOpenRequests == 0 {
		s.HalfOpenRequests = def.HalfOpenRequests
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        s.Name,
		MaxRequests: s.HalfOpenRequests,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return &BreakerDoer{next: next, cb: cb, logger: logger}
}

// Do executes req through the breaker.
func (d *BreakerDoer) Do(req *http.Request) (*http.Response, error) {
	result, err := d.cb.Execute(func() (interface{}, error) {
		resp, err := d.next.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return resp, errUpstreamStatus
		}
		return resp, nil
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		d.logger.Warn("booking api call rejected by circuit breaker",
			zap.String("url", req.URL.String()),
			zap.String("breaker", d.cb.Name()),
		)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	case errors.Is(err, errUpstreamStatus):
		return result.(*http.Response), nil
	case err != nil:
		return nil, err
	}
	return result.(*http.Response), nil
}
