package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRateLimitService(maxRequests int, window time.Duration) (*RateLimitService, *time.Time) {
	now := time.Now()

	svc := &RateLimitService{
		configs: map[string]*RateLimitConfig{
			"test": {
				EndpointType: "test",
				MaxRequests:  maxRequests,
				Window:       window,
				IsActive:     true,
			},
		},
		history:       make(map[string][]time.Time),
		now:           func() time.Time { return now },
		monitoringSvc: &MonitoringService{},
	}

	return svc, &now
}

func TestRateLimitAllowsUpToMax(t *testing.T) {
	t.Parallel()
	svc, _ := newTestRateLimitService(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, info := svc.Check("ip:203.0.113.7", "test")
		require.True(t, allowed, "request %d", i+1)
		require.Equal(t, 3, info.Limit)
		require.Equal(t, 3-i-1, info.Remaining)
	}

	allowed, info := svc.Check("ip:203.0.113.7", "test")
	require.False(t, allowed)
	require.Zero(t, info.Remaining)
}

func TestRateLimitRejectedRequestNotCounted(t *testing.T) {
	t.Parallel()
	svc, now := newTestRateLimitService(2, time.Minute)

	svc.Check("ip:203.0.113.7", "test")
	svc.Check("ip:203.0.113.7", "test")

	// Hammering while limited must not extend the lockout.
	for i := 0; i < 5; i++ {
		allowed, _ := svc.Check("ip:203.0.113.7", "test")
		require.False(t, allowed)
	}

	// Once the first two requests age out, the budget is fresh.
	*now = now.Add(time.Minute + time.Second)
	allowed, info := svc.Check("ip:203.0.113.7", "test")
	require.True(t, allowed)
	require.Equal(t, 1, info.Remaining)
}

func TestRateLimitResetIsOldestPlusWindow(t *testing.T) {
	t.Parallel()
	svc, now := newTestRateLimitService(2, time.Minute)

	first := *now
	svc.Check("ip:203.0.113.7", "test")

	*now = now.Add(10 * time.Second)
	svc.Check("ip:203.0.113.7", "test")

	*now = now.Add(10 * time.Second)
	allowed, info := svc.Check("ip:203.0.113.7", "test")
	require.False(t, allowed)
	require.Equal(t, first.Add(time.Minute).Unix(), info.Reset)
}

func TestRateLimitWindowBoundaryExcluded(t *testing.T) {
	t.Parallel()
	svc, now := newTestRateLimitService(1, time.Minute)

	svc.Check("ip:203.0.113.7", "test")

	// Exactly one window later the old request sits on the boundary and no
	// longer counts.
	*now = now.Add(time.Minute)
	allowed, _ := svc.Check("ip:203.0.113.7", "test")
	require.True(t, allowed)
}

func TestRateLimitIdentifiersIsolated(t *testing.T) {
	t.Parallel()
	svc, _ := newTestRateLimitService(1, time.Minute)

	allowed, _ := svc.Check("user:alice", "test")
	require.True(t, allowed)
	allowed, _ = svc.Check("user:alice", "test")
	require.False(t, allowed)

	allowed, _ = svc.Check("user:bob", "test")
	require.True(t, allowed)
}

func TestRateLimitUnknownEndpointTypeAllowed(t *testing.T) {
	t.Parallel()
	svc, _ := newTestRateLimitService(1, time.Minute)

	for i := 0; i < 10; i++ {
		allowed, info := svc.Check("ip:203.0.113.7", "nonexistent")
		require.True(t, allowed)
		require.Equal(t, -1, info.Remaining)
	}
}

func TestRateLimitReset(t *testing.T) {
	t.Parallel()
	svc, _ := newTestRateLimitService(1, time.Minute)

	svc.Check("ip:203.0.113.7", "test")
	allowed, _ := svc.Check("ip:203.0.113.7", "test")
	require.False(t, allowed)

	require.True(t, svc.Reset("ip:203.0.113.7", "test"))
	require.False(t, svc.Reset("ip:203.0.113.7", "test"))

	allowed, _ = svc.Check("ip:203.0.113.7", "test")
	require.True(t, allowed)
}

func TestRateLimitCleanupStaleBuckets(t *testing.T) {
	t.Parallel()
	svc, now := newTestRateLimitService(5, time.Minute)

	svc.Check("ip:203.0.113.7", "test")
	svc.Check("ip:203.0.113.8", "test")
	require.Equal(t, 2, svc.TrackedIdentifiers())

	*now = now.Add(2 * time.Minute)
	svc.Check("ip:203.0.113.9", "test")

	removed := svc.cleanupStaleBuckets()
	require.Equal(t, 2, removed)
	require.Equal(t, 1, svc.TrackedIdentifiers())
}
