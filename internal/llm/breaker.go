package llm

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/joestump/affilinks/internal/logger"
	"github.com/joestump/affilinks/internal/metrics"
)

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("AI service temporarily disabled after repeated failures")

// breakerDescriber stops calling a failing provider for a while so each
// page load does not wait for another timeout.
type breakerDescriber struct {
	next Describer
	cb   *gobreaker.CircuitBreaker[*DescribeResponse]
}

// NewBreaker wraps d with a circuit breaker that opens after five
// consecutive failures and probes again after 30 seconds.
func NewBreaker(name string, d Describer) Describer {
	cb := gobreaker.NewCircuitBreaker[*DescribeResponse](gobreaker.Settings{
		Name:        "llm-" + name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			// A model that answers badly is not an outage.
			return err == nil || errors.Is(err, ErrEmptyDescription) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Infow("llm circuit breaker state change", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &breakerDescriber{next: d, cb: cb}
}

func (b *breakerDescriber) Describe(ctx context.Context, req DescribeRequest) (*DescribeResponse, error) {
	start := time.Now()
	resp, err := b.cb.Execute(func() (*DescribeResponse, error) {
		return b.next.Describe(ctx, req)
	})
	metrics.DescriptionDuration.Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		metrics.DescriptionsTotal.WithLabelValues("ok").Inc()
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.DescriptionsTotal.WithLabelValues("rejected").Inc()
		return nil, ErrCircuitOpen
	case errors.Is(err, ErrOverloaded):
		metrics.DescriptionsTotal.WithLabelValues("overloaded").Inc()
	default:
		metrics.DescriptionsTotal.WithLabelValues("error").Inc()
	}
	return nil, err
}
