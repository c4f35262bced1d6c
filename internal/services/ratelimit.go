package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/quickrec/internal/config"
)

type RateLimitInfo struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	ResetTime int64 `json:"reset_time"`
}

// RateLimitService is a Redis sliding-window limiter keyed by visitor.
type RateLimitService struct {
	config      config.RateLimitConfig
	prefix      string
	logger      *logrus.Logger
	redisClient redis.Cmdable
}

func NewRateLimitService(cfg config.RateLimitConfig, prefix string, logger *logrus.Logger, redisClient redis.Cmdable) *RateLimitService {
	if prefix == "" {
		prefix = "quickrec"
	}
	return &RateLimitService{
		config:      cfg,
		prefix:      prefix,
		logger:      logger,
		redisClient: redisClient,
	}
}

// IsAllowed records one request for visitor and reports whether it fits in the window.
// Redis failures fail open.
func (s *RateLimitService) IsAllowed(ctx context.Context, visitor string) (bool, *RateLimitInfo) {
	limit := s.config.Requests
	window := s.config.Window
	key := fmt.Sprintf("%s:rate_limit:%s", s.prefix, visitor)

	now := time.Now()
	windowStart := now.Add(-window)
	info := &RateLimitInfo{
		Limit:     limit,
		Remaining: limit - 1,
		ResetTime: now.Add(window).Unix(),
	}

	pipe := s.redisClient.Pipeline()

	// Remove expired entries
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))

	// Count current requests in window
	countCmd := pipe.ZCard(ctx, key)

	// Add current request
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})

	// Set expiration
	pipe.Expire(ctx, key, window)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to execute rate limit pipeline")
		return true, info
	}

	currentCount := int(countCmd.Val())
	info.Remaining = max(limit-currentCount-1, 0)

	return currentCount < limit, info
}
