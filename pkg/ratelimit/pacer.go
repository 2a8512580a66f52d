// Package ratelimit implements client-side request pacing for the
// research API. The API publishes no rate-limit headers, so pacing is a
// courtesy cap enforced on our side: a fixed-window counter in Redis
// shared by every worker (and every process pointed at the same Redis).
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis key prefix for per-second request windows.
const redisKeyWindowPrefix = "ngcpop:pacer:window:"

// windowTTL keeps spent windows around briefly so clocks slightly out
// of sync between processes still land on a live key.
const windowTTL = 2 * time.Second

// Prometheus metrics for request pacing.
var (
	pacerAdmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ngcpop_pacer_admitted_total",
		Help: "Total number of requests admitted by the pacer",
	})

	pacerThrottlesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ngcpop_pacer_throttles_total",
		Help: "Total number of times a request waited for the next window",
	})
)

// Pacer gates requests to at most rate per second.
type Pacer struct {
	redis  *redis.Client
	rate   int
	logger zerolog.Logger
}

// NewPacer creates a pacer admitting at most rate requests per second.
func NewPacer(redisClient *redis.Client, rate int, logger zerolog.Logger) *Pacer {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if rate <= 0 {
		panic(fmt.Sprintf("rate must be positive (got %d)", rate))
	}
	return &Pacer{
		redis:  redisClient,
		rate:   rate,
		logger: logger,
	}
}

// Rate returns the configured requests-per-second cap.
func (p *Pacer) Rate() int {
	return p.rate
}

// Wait blocks until the current one-second window has a free slot or
// the context is done. Counting is a plain INCR on a per-second key, so
// concurrent workers never over-admit.
func (p *Pacer) Wait(ctx context.Context) error {
	for {
		now := time.Now()
		key := windowKey(now)

		pipe := p.redis.TxPipeline()
		count := pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, windowTTL)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("pacer window incr: %w", err)
		}

		if count.Val() <= int64(p.rate) {
			pacerAdmittedTotal.Inc()
			return nil
		}

		pacerThrottlesTotal.Inc()
		untilNextWindow := now.Truncate(time.Second).Add(time.Second).Sub(now)

		p.logger.Debug().
			Int("rate", p.rate).
			Int64("window_count", count.Val()).
			Dur("wait", untilNextWindow).
			Msg("Pacer window full, waiting")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(untilNextWindow):
		}
	}
}

// windowKey returns the Redis key for the one-second window containing t.
func windowKey(t time.Time) string {
	return fmt.Sprintf("%s%d", redisKeyWindowPrefix, t.Unix())
}
