package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"sync"
	"time"

	appContext "github.com/alphabatem/common/context"
	log "github.com/sirupsen/logrus"
)

// RevocationService tracks revoked tokens by SHA-256 fingerprint. The raw
// token string is never stored. Entries expire after the retention period
// (default: the refresh-token TTL, the longest-lived token the gateway
// issues) so the set cannot grow without bound.
type RevocationService struct {
	appContext.DefaultService

	backend   tokenRevoker
	retention time.Duration

	backendName   string
	monitoringSvc *MonitoringService
}

const REVOCATION_SVC = "revocation_svc"

const (
	revocationBackendMemory = "memory"
	revocationBackendRedis  = "redis"
)

type tokenRevoker interface {
	revoke(fingerprint string, ttl time.Duration) error
	isRevoked(fingerprint string) (bool, error)
	unrevoke(fingerprint string) (bool, error)
	clear() error
	stop()
}

func (svc RevocationService) Id() string {
	return REVOCATION_SVC
}

func (svc *RevocationService) Configure(ctx *appContext.Context) error {
	svc.backendName = os.Getenv("REVOCATION_BACKEND")
	if svc.backendName == "" {
		svc.backendName = revocationBackendMemory
	}
	svc.retention = envSeconds("REVOCATION_RETENTION_SECONDS", 0)
	return svc.DefaultService.Configure(ctx)
}

func (svc *RevocationService) Start() error {
	if svc.retention <= 0 {
		jwtSvc := svc.Service(JWT_SVC).(*JWTService)
		svc.retention = jwtSvc.RefreshTokenDuration
	}
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	switch svc.backendName {
	case revocationBackendRedis:
		redisSvc := svc.Service(REDIS_SVC).(*RedisService)
		svc.backend = newRedisRevoker(redisSvc)
	default:
		svc.backend = newMemoryRevoker()
	}

	log.WithFields(log.Fields{
		"backend":   svc.backendName,
		"retention": svc.retention.String(),
	}).Info("Revocation store started")
	return nil
}

func (svc *RevocationService) Shutdown() {
	if svc.backend != nil {
		svc.backend.stop()
	}
}

// Revoke fingerprints the token and adds it to the revoked set. Best-effort:
// a backend failure is logged and reported as false, never raised.
func (svc *RevocationService) Revoke(token string) bool {
	if token == "" {
		return false
	}

	if err := svc.backend.revoke(fingerprint(token), svc.retention); err != nil {
		log.WithError(err).Warn("Failed to revoke token")
		return false
	}

	svc.monitoringSvc.RecordTokenRevoked()
	return true
}

// IsRevoked reports whether the token's fingerprint is in the revoked set.
// A backend failure is logged and treated as not revoked.
func (svc *RevocationService) IsRevoked(token string) bool {
	if token == "" {
		return false
	}

	revoked, err := svc.backend.isRevoked(fingerprint(token))
	if err != nil {
		log.WithError(err).Warn("Revocation lookup failed")
		return false
	}
	return revoked
}

// Unrevoke removes the token's fingerprint, reporting whether anything was
// removed.
func (svc *RevocationService) Unrevoke(token string) bool {
	if token == "" {
		return false
	}

	removed, err := svc.backend.unrevoke(fingerprint(token))
	if err != nil {
		log.WithError(err).Warn("Failed to unrevoke token")
		return false
	}
	return removed
}

// Clear empties the revoked set. Administrative/test use only.
func (svc *RevocationService) Clear() {
	if err := svc.backend.clear(); err != nil {
		log.WithError(err).Warn("Failed to clear revocation store")
	}
}

func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// ==================== MEMORY BACKEND ====================

// memoryRevoker is the reference single-instance backend: a fingerprint set
// with per-entry eviction deadlines. Lookups prune lazily; an hourly janitor
// sweeps identifiers nothing looks up anymore.
type memoryRevoker struct {
	mutex   sync.RWMutex
	entries map[string]time.Time

	now    func() time.Time
	closed chan struct{}
}

func newMemoryRevoker() *memoryRevoker {
	r := &memoryRevoker{
		entries: make(map[string]time.Time),
		now:     time.Now,
		closed:  make(chan struct{}),
	}
	go r.janitor()
	return r
}

func (r *memoryRevoker) revoke(fp string, ttl time.Duration) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries[fp] = r.now().Add(ttl)
	return nil
}

func (r *memoryRevoker) isRevoked(fp string) (bool, error) {
	r.mutex.RLock()
	deadline, ok := r.entries[fp]
	r.mutex.RUnlock()

	if !ok {
		return false, nil
	}

	if r.now().After(deadline) {
		r.mutex.Lock()
		delete(r.entries, fp)
		r.mutex.Unlock()
		return false, nil
	}

	return true, nil
}

func (r *memoryRevoker) unrevoke(fp string) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, ok := r.entries[fp]; !ok {
		return false, nil
	}
	delete(r.entries, fp)
	return true, nil
}

func (r *memoryRevoker) clear() error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.entries = make(map[string]time.Time)
	return nil
}

func (r *memoryRevoker) stop() {
	close(r.closed)
}

func (r *memoryRevoker) janitor() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.closed:
			return
		}
	}
}

func (r *memoryRevoker) sweep() {
	now := r.now()

	r.mutex.Lock()
	defer r.mutex.Unlock()
	for fp, deadline := range r.entries {
		if now.After(deadline) {
			delete(r.entries, fp)
		}
	}
}

// ==================== REDIS BACKEND ====================

const revokedKeyPrefix = "revoked:"

// redisRevoker keeps the fingerprint set in redis, with eviction delegated
// to key TTLs. Still single-instance semantics; redis only makes the set
// survive process restarts.
type redisRevoker struct {
	redisSvc *RedisService
}

func newRedisRevoker(redisSvc *RedisService) *redisRevoker {
	return &redisRevoker{redisSvc: redisSvc}
}

func (r *redisRevoker) revoke(fp string, ttl time.Duration) error {
	return r.redisSvc.Set(context.Background(), revokedKeyPrefix+fp, "", ttl)
}

func (r *redisRevoker) isRevoked(fp string) (bool, error) {
	return r.redisSvc.Exists(context.Background(), revokedKeyPrefix+fp)
}

func (r *redisRevoker) unrevoke(fp string) (bool, error) {
	removed, err := r.redisSvc.Delete(context.Background(), revokedKeyPrefix+fp)
	return removed > 0, err
}

func (r *redisRevoker) clear() error {
	ctx := context.Background()
	keys, err := r.redisSvc.Keys(ctx, revokedKeyPrefix+"*")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	_, err = r.redisSvc.Delete(ctx, keys...)
	return err
}

func (r *redisRevoker) stop() {}
