package analytics

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/amanjaiman/habit-server/server/ai"
)

// CallLimiter paces LLM calls per credential category with a token
// bucket, so slow calls are not punished with extra idle time the way
// a fixed inter-call sleep would.
type CallLimiter struct {
	limiters map[ai.Category]*rate.Limiter
}

// NewCallLimiter creates a limiter allowing callsPerSecond sustained
// calls per category, with a burst of one.
func NewCallLimiter(callsPerSecond float64) *CallLimiter {
	if callsPerSecond <= 0 {
		callsPerSecond = 1
	}
	limiters := make(map[ai.Category]*rate.Limiter, len(ai.Categories))
	for _, category := range ai.Categories {
		limiters[category] = rate.NewLimiter(rate.Limit(callsPerSecond), 1)
	}
	return &CallLimiter{limiters: limiters}
}

// Wait blocks until the category's bucket grants a token or ctx ends.
func (l *CallLimiter) Wait(ctx context.Context, category ai.Category) error {
	limiter, ok := l.limiters[category]
	if !ok {
		return nil
	}
	return limiter.Wait(ctx)
}
