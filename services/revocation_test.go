package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestRevocationService() *RevocationService {
	// No janitor goroutine during tests, sweeps are driven manually.
	backend := &memoryRevoker{
		entries: make(map[string]time.Time),
		now:     time.Now,
		closed:  make(chan struct{}),
	}

	return &RevocationService{
		backend:       backend,
		retention:     time.Hour,
		monitoringSvc: &MonitoringService{},
	}
}

func TestRevokeAndIsRevoked(t *testing.T) {
	t.Parallel()
	svc := newTestRevocationService()

	require.False(t, svc.IsRevoked("some.token.value"))

	require.True(t, svc.Revoke("some.token.value"))
	require.True(t, svc.IsRevoked("some.token.value"))

	// Another token is unaffected.
	require.False(t, svc.IsRevoked("other.token.value"))
}

func TestRevokeEmptyToken(t *testing.T) {
	t.Parallel()
	svc := newTestRevocationService()

	require.False(t, svc.Revoke(""))
	require.False(t, svc.IsRevoked(""))
}

func TestUnrevoke(t *testing.T) {
	t.Parallel()
	svc := newTestRevocationService()

	require.True(t, svc.Revoke("some.token.value"))
	require.True(t, svc.Unrevoke("some.token.value"))
	require.False(t, svc.IsRevoked("some.token.value"))

	// Removing again reports nothing removed.
	require.False(t, svc.Unrevoke("some.token.value"))
}

func TestClear(t *testing.T) {
	t.Parallel()
	svc := newTestRevocationService()

	svc.Revoke("token-a")
	svc.Revoke("token-b")
	svc.Clear()

	require.False(t, svc.IsRevoked("token-a"))
	require.False(t, svc.IsRevoked("token-b"))
}

func TestRevocationRetentionExpiry(t *testing.T) {
	t.Parallel()
	svc := newTestRevocationService()
	backend := svc.backend.(*memoryRevoker)

	now := time.Now()
	backend.now = func() time.Time { return now }

	svc.Revoke("short.lived.token")
	require.True(t, svc.IsRevoked("short.lived.token"))

	// Past the retention deadline the entry evicts lazily.
	now = now.Add(svc.retention + time.Second)
	require.False(t, svc.IsRevoked("short.lived.token"))

	// The lazy lookup dropped the entry for good.
	backend.mutex.RLock()
	_, ok := backend.entries[fingerprint("short.lived.token")]
	backend.mutex.RUnlock()
	require.False(t, ok)
}

func TestRevocationSweep(t *testing.T) {
	t.Parallel()
	svc := newTestRevocationService()
	backend := svc.backend.(*memoryRevoker)

	now := time.Now()
	backend.now = func() time.Time { return now }

	svc.Revoke("token-a")
	svc.Revoke("token-b")

	now = now.Add(svc.retention + time.Second)
	backend.sweep()

	backend.mutex.RLock()
	remaining := len(backend.entries)
	backend.mutex.RUnlock()
	require.Zero(t, remaining)
}

func TestFingerprintStable(t *testing.T) {
	t.Parallel()

	require.Equal(t, fingerprint("abc"), fingerprint("abc"))
	require.NotEqual(t, fingerprint("abc"), fingerprint("abd"))
	require.Len(t, fingerprint("abc"), 64)
}
