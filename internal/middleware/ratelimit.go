package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/AnshRaj112/videotube-backend/pkg/clientip"
	"github.com/AnshRaj112/videotube-backend/pkg/utils"
	"github.com/redis/go-redis/v9"
)

const (
	// RateLimitWindow is 120 seconds
	RateLimitWindow = 120 * time.Second
	// RateLimitMaxRequests is the maximum number of requests allowed in the window
	RateLimitMaxRequests = 25
	// RateLimitKeyPrefix is the Redis key prefix for rate limiting
	RateLimitKeyPrefix = "ratelimit:"
	// BlockedIPKeyPrefix is the Redis key prefix for blocked IPs
	BlockedIPKeyPrefix = "blocked_ip:"
	// BlockedIPDuration is how long an IP stays blocked after exceeding the window
	BlockedIPDuration = 15 * time.Minute
)

// RedisRateLimiter counts requests per IP in a fixed Redis window and blocks IPs
// that exceed it. Redis errors let the request through.
type RedisRateLimiter struct {
	client      redis.Cmdable
	logger      *slog.Logger
	window      time.Duration
	maxRequests int64
	blockFor    time.Duration
}

func NewRedisRateLimiter(client redis.Cmdable, logger *slog.Logger) *RedisRateLimiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRateLimiter{
		client:      client,
		logger:      logger,
		window:      RateLimitWindow,
		maxRequests: RateLimitMaxRequests,
		blockFor:    BlockedIPDuration,
	}
}

func (l *RedisRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		ip := clientip.RealClientIP(r)

		blocked, err := l.IsBlocked(ctx, ip)
		if err != nil {
			l.logger.WarnContext(ctx, "rate limit check failed, allowing request", "ip", ip, "error", err)
			next.ServeHTTP(w, r)
			return
		}
		if blocked {
			w.Header().Set("Retry-After", strconv.Itoa(int(l.blockFor.Seconds())))
			utils.WriteError(w, http.StatusTooManyRequests, "your IP has been temporarily blocked due to excessive requests")
			return
		}

		count, err := l.hit(ctx, ip)
		if err != nil {
			l.logger.WarnContext(ctx, "rate limit increment failed, allowing request", "ip", ip, "error", err)
			next.ServeHTTP(w, r)
			return
		}

		if count > l.maxRequests {
			if err := l.client.Set(ctx, BlockedIPKeyPrefix+ip, "1", l.blockFor).Err(); err != nil {
				l.logger.WarnContext(ctx, "failed to block IP", "ip", ip, "error", err)
			} else {
				l.logger.WarnContext(ctx, "IP blocked for exceeding rate limit", "ip", ip, "count", count)
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(l.blockFor.Seconds())))
			utils.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(l.maxRequests, 10))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(l.maxRequests-count, 10))
		next.ServeHTTP(w, r)
	})
}

// hit increments the window counter, starting the window on the first request.
func (l *RedisRateLimiter) hit(ctx context.Context, ip string) (int64, error) {
	key := RateLimitKeyPrefix + ip
	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			return 0, err
		}
	}
	return count, nil
}

// IsBlocked reports whether ip is currently blocked.
func (l *RedisRateLimiter) IsBlocked(ctx context.Context, ip string) (bool, error) {
	n, err := l.client.Exists(ctx, BlockedIPKeyPrefix+ip).Result()
	return n > 0, err
}
