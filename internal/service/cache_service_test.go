package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Delete(ctx context.Context, keys ...string) error {
	return errors.New("redis down")
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(&memoryCacheRepo{entries: map[string][]byte{}}, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var out []string
	assert.False(t, svc.Get(ctx, "k", &out))

	svc.Set(ctx, "k", []string{"a"}, 0)
	require.True(t, svc.Get(ctx, "k", &out))
	assert.Equal(t, []string{"a"}, out)

	svc.Invalidate(ctx, "k")
	assert.False(t, svc.Get(ctx, "k", &out))

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestCacheServiceDisabledOrFailing(t *testing.T) {
	ctx := context.Background()
	var out []string

	disabled := NewCacheService(&memoryCacheRepo{entries: map[string][]byte{}}, nil, 0, nil, false)
	assert.False(t, disabled.Enabled())
	disabled.Set(ctx, "k", []string{"a"}, 0)
	assert.False(t, disabled.Get(ctx, "k", &out))

	var nilSvc *CacheService
	assert.False(t, nilSvc.Get(ctx, "k", &out))
	nilSvc.Invalidate(ctx, "k")

	failing := NewCacheService(failingCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	assert.False(t, failing.Get(ctx, "k", &out))
	failing.Set(ctx, "k", []string{"a"}, 0)
	failing.Invalidate(ctx, "k")
}
