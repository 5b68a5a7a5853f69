package ratelimiter

import (
	"context"
	"fmt"
	"strings"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

// ResourceLimiter is a fixed-window counter in redis, keyed by group and resource.
type ResourceLimiter struct {
	redis contracts.RedisRepository
	log   *zap.Logger
}

func NewResourceLimiter(redis contracts.RedisRepository, log *zap.Logger) *ResourceLimiter {
	return &ResourceLimiter{redis: redis, log: log}
}

type ApplyResourceLimiterInput struct {
	// ResourceName is the limited entity, e.g. a patient id.
	ResourceName string
	// LimiterGroupName namespaces the key, e.g. payment-order.
	LimiterGroupName string
	WindowDuration   time.Duration
	MaxQuota         int
	// NowUTC defaults to time.Now().UTC().
	NowUTC time.Time
}

type ApplyResourceLimiterOutput struct {
	Allowed    bool
	RetryAfter time.Duration
}

// ApplyResourceLimiter counts one hit. It reports Allowed=false with the wait until the next window once MaxQuota is exceeded.
func (l *ResourceLimiter) ApplyResourceLimiter(ctx context.Context, in *ApplyResourceLimiterInput) (*ApplyResourceLimiterOutput, error) {
	if in == nil {
		return nil, fmt.Errorf("nil limiter input")
	}
	if in.MaxQuota <= 0 {
		return &ApplyResourceLimiterOutput{Allowed: true}, nil
	}

	window := in.WindowDuration
	if window < time.Second {
		window = time.Minute
	}
	resource := strings.ToLower(strings.TrimSpace(in.ResourceName))
	group := strings.ToLower(strings.TrimSpace(in.LimiterGroupName))
	if resource == "" || group == "" {
		return &ApplyResourceLimiterOutput{Allowed: false, RetryAfter: window}, nil
	}

	now := in.NowUTC
	if now.IsZero() {
		now = time.Now().UTC()
	}

	windowSec := int64(window / time.Second)
	windowID := now.Unix() / windowSec
	key := fmt.Sprintf(constvars.RedisKeyRateLimitFormat, group, resource, windowID)

	count, err := l.redis.IncrementWithTTL(ctx, key, window+time.Second)
	if err != nil {
		l.log.Error("ResourceLimiter.ApplyResourceLimiter increment failed",
			zap.String(constvars.LoggingRedisKey, key),
			zap.Error(err),
		)
		return nil, err
	}

	if count > in.MaxQuota {
		nextWindow := time.Unix((windowID+1)*windowSec, 0)
		return &ApplyResourceLimiterOutput{Allowed: false, RetryAfter: nextWindow.Sub(now)}, nil
	}
	return &ApplyResourceLimiterOutput{Allowed: true}, nil
}
