// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package limiter throttles repeated attempts against the public credential
// endpoints (login, password reset and recovery).
package limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/go-identity-keeper/internal/config"
	"github.com/MKhiriev/go-identity-keeper/internal/logger"
)

const keyPrefix = "identity_keeper:attempts:"

var ErrInvalidLimits = errors.New("limiter attempts and window must be positive")

// Limiter decides whether another attempt identified by key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

// New returns a Redis-backed limiter, or a limiter that allows everything
// when no Redis address is configured.
func New(ctx context.Context, cfg config.Limiter, logger *logger.Logger) (Limiter, error) {
	if cfg.RedisAddress == "" {
		logger.Warn().Msg("limiter redis address is not set, attempts are not limited")
		return NewNopLimiter(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddress,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	logger.Info().Str("address", cfg.RedisAddress).Msg("connected to limiter redis")
	return NewRedisLimiter(client, cfg.Attempts, cfg.Window)
}

type redisLimiter struct {
	client   *redis.Client
	attempts int64
	window   time.Duration
}

// NewRedisLimiter counts attempts per key in Redis over a fixed window that
// starts with the first attempt. A key is blocked once it exceeds attempts and
// is released when the window ends, whether or not it keeps retrying.
func NewRedisLimiter(client *redis.Client, attempts int, window time.Duration) (Limiter, error) {
	if attempts < 1 || window <= 0 {
		return nil, ErrInvalidLimits
	}
	return &redisLimiter{client: client, attempts: int64(attempts), window: window}, nil
}

func (l *redisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := keyPrefix + key

	tx := l.client.TxPipeline()
	incr := tx.Incr(ctx, redisKey)
	tx.ExpireNX(ctx, redisKey, l.window)

	if _, err := tx.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to execute rate limit transaction: %w", err)
	}

	return incr.Val() <= l.attempts, nil
}

func (l *redisLimiter) Close() error {
	return l.client.Close()
}

type nopLimiter struct{}

func NewNopLimiter() Limiter {
	return nopLimiter{}
}

func (nopLimiter) Allow(context.Context, string) (bool, error) {
	return true, nil
}

func (nopLimiter) Close() error {
	return nil
}
