package services

import (
	"net"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"

	"github.com/nimbus-sec/authgate/dto"
	"github.com/nimbus-sec/authgate/shared"
)

// RateLimitService is a sliding-window limiter: only requests inside the
// trailing window count toward the limit. State is in-memory and
// process-wide; a single lock makes the read-prune-append sequence atomic so
// parallel requests cannot overrun the limit.
type RateLimitService struct {
	context.DefaultService

	configs map[string]*RateLimitConfig
	cfgMu   sync.RWMutex

	history map[string][]time.Time
	mutex   sync.Mutex

	now    func() time.Time
	closed chan struct{}

	monitoringSvc *MonitoringService
}

// RateLimitConfig represents rate limiting configuration for one endpoint
// type.
type RateLimitConfig struct {
	EndpointType string        `json:"endpoint_type"`
	MaxRequests  int           `json:"max_requests"`
	Window       time.Duration `json:"window"`
	Description  string        `json:"description"`
	IsActive     bool          `json:"is_active"`
}

const RATE_LIMIT_SVC = "rate_limit_svc"

// EndpointTypeGeneral is the default budget applied to every request.
const EndpointTypeGeneral = "api_general"

func (svc RateLimitService) Id() string {
	return RATE_LIMIT_SVC
}

func (svc *RateLimitService) Configure(ctx *context.Context) error {
	svc.configs = make(map[string]*RateLimitConfig)
	svc.history = make(map[string][]time.Time)
	svc.now = time.Now
	svc.closed = make(chan struct{})
	return svc.DefaultService.Configure(ctx)
}

func (svc *RateLimitService) Start() error {
	svc.monitoringSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	svc.initDefaultConfigs()

	go svc.startCleanupJob()

	return nil
}

func (svc *RateLimitService) Shutdown() {
	close(svc.closed)
}

// ==================== CONFIGURATION MANAGEMENT ====================

func (svc *RateLimitService) initDefaultConfigs() {
	perMinute := 60
	if v := os.Getenv("RATE_LIMIT_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			perMinute = n
		}
	}

	svc.cfgMu.Lock()
	defer svc.cfgMu.Unlock()

	svc.configs = map[string]*RateLimitConfig{
		EndpointTypeGeneral: {
			EndpointType: EndpointTypeGeneral,
			MaxRequests:  perMinute,
			Window:       time.Minute,
			Description:  "General rate limit per caller",
			IsActive:     true,
		},
		"login": {
			EndpointType: "login",
			MaxRequests:  10,
			Window:       15 * time.Minute,
			Description:  "Login attempts rate limit",
			IsActive:     true,
		},
		"register": {
			EndpointType: "register",
			MaxRequests:  5,
			Window:       15 * time.Minute,
			Description:  "Registration rate limit",
			IsActive:     true,
		},
		"refresh": {
			EndpointType: "refresh",
			MaxRequests:  20,
			Window:       15 * time.Minute,
			Description:  "Token refresh rate limit",
			IsActive:     true,
		},
		"forgot_password": {
			EndpointType: "forgot_password",
			MaxRequests:  3,
			Window:       15 * time.Minute,
			Description:  "Password reset request rate limit",
			IsActive:     true,
		},
		"reset_password": {
			EndpointType: "reset_password",
			MaxRequests:  5,
			Window:       15 * time.Minute,
			Description:  "Password reset rate limit",
			IsActive:     true,
		},
		"profile_update": {
			EndpointType: "profile_update",
			MaxRequests:  10,
			Window:       time.Hour,
			Description:  "Profile update rate limit",
			IsActive:     true,
		},
	}
}

func (svc *RateLimitService) Configs() map[string]dto.RateLimitConfigInfo {
	svc.cfgMu.RLock()
	defer svc.cfgMu.RUnlock()

	configs := make(map[string]dto.RateLimitConfigInfo, len(svc.configs))
	for k, v := range svc.configs {
		configs[k] = dto.RateLimitConfigInfo{
			EndpointType:  v.EndpointType,
			MaxRequests:   v.MaxRequests,
			WindowSeconds: int(v.Window.Seconds()),
			Description:   v.Description,
			IsActive:      v.IsActive,
		}
	}
	return configs
}

// ==================== CORE RATE LIMITING LOGIC ====================

// Check prunes the identifier's history to the half-open window
// (now-window, now], then either rejects (reset = oldest surviving request
// + window) or records the request (reset = now + window).
func (svc *RateLimitService) Check(identifier, endpointType string) (bool, *dto.RateLimitInfo) {
	svc.cfgMu.RLock()
	config, exists := svc.configs[endpointType]
	svc.cfgMu.RUnlock()

	if !exists || !config.IsActive {
		// No config means no budget to enforce.
		return true, &dto.RateLimitInfo{Allowed: true, Remaining: -1}
	}

	now := svc.now()
	windowStart := now.Add(-config.Window)
	key := endpointType + ":" + identifier

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	// A request landing exactly at windowStart falls outside the window.
	hist := svc.history[key]
	kept := hist[:0]
	for _, ts := range hist {
		if ts.After(windowStart) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= config.MaxRequests {
		svc.history[key] = kept
		oldest := kept[0]
		return false, &dto.RateLimitInfo{
			Allowed:   false,
			Limit:     config.MaxRequests,
			Remaining: 0,
			Reset:     oldest.Add(config.Window).Unix(),
		}
	}

	svc.history[key] = append(kept, now)
	return true, &dto.RateLimitInfo{
		Allowed:   true,
		Limit:     config.MaxRequests,
		Remaining: config.MaxRequests - len(kept) - 1,
		Reset:     now.Add(config.Window).Unix(),
	}
}

// Reset drops the recorded history for one identifier/endpoint pair.
func (svc *RateLimitService) Reset(identifier, endpointType string) bool {
	key := endpointType + ":" + identifier

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	if _, ok := svc.history[key]; !ok {
		return false
	}
	delete(svc.history, key)
	return true
}

// TrackedIdentifiers reports how many identifier buckets currently exist.
func (svc *RateLimitService) TrackedIdentifiers() int {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()
	return len(svc.history)
}

// ==================== MIDDLEWARE ====================

// Limit enforces the named budget on each request. The caller identity is
// the authenticated subject when the auth gate already ran, otherwise the
// forwarded client IP, otherwise a shared "unknown" bucket.
func (svc *RateLimitService) Limit(endpointType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identifier := svc.identifierFromCtx(c)

		allowed, info := svc.Check(identifier, endpointType)

		svc.addRateLimitHeaders(c, info)

		if !allowed {
			svc.monitoringSvc.RecordRateLimitRejection(endpointType)
			log.WithFields(log.Fields{
				"identifier":    identifier,
				"endpoint_type": endpointType,
			}).Warn("Rate limit exceeded")
			return shared.NewTooManyRequestsError("too many requests, please try again later")
		}

		return c.Next()
	}
}

func (svc *RateLimitService) identifierFromCtx(c *fiber.Ctx) string {
	if userID, ok := c.Locals(shared.UserID).(string); ok && userID != "" {
		return "user:" + userID
	}

	if ip := forwardedClientIP(c); ip != "" {
		return "ip:" + ip
	}

	// Unidentifiable traffic shares one budget.
	return "unknown"
}

func (svc *RateLimitService) addRateLimitHeaders(c *fiber.Ctx, info *dto.RateLimitInfo) {
	if info == nil || info.Remaining < 0 {
		return
	}

	c.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	c.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	c.Set("X-RateLimit-Reset", strconv.FormatInt(info.Reset, 10))

	if !info.Allowed {
		retryAfter := info.Reset - svc.now().Unix()
		if retryAfter > 0 {
			c.Set("Retry-After", strconv.FormatInt(retryAfter, 10))
		}
	}
}

// forwardedClientIP resolves the caller address from proxy headers, falling
// back to the socket peer.
func forwardedClientIP(c *fiber.Ctx) string {
	forwarded := c.Get("X-Forwarded-For")
	if forwarded != "" {
		ips := strings.Split(forwarded, ",")
		if len(ips) > 0 {
			if ip := strings.TrimSpace(ips[0]); ip != "" {
				return ip
			}
		}
	}

	if realIP := c.Get("X-Real-IP"); realIP != "" {
		return realIP
	}

	if cfIP := c.Get("CF-Connecting-IP"); cfIP != "" {
		return cfIP
	}

	remote := c.Context().RemoteAddr().String()
	ip, _, err := net.SplitHostPort(remote)
	if err != nil {
		return remote
	}
	return ip
}

// ==================== BACKGROUND JOBS ====================

// startCleanupJob sweeps identifier buckets whose entire history has aged
// out, so callers that went quiet do not pin memory forever.
func (svc *RateLimitService) startCleanupJob() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			removed := svc.cleanupStaleBuckets()
			log.WithField("removed", removed).Debug("Rate limit cleanup completed")
		case <-svc.closed:
			return
		}
	}
}

func (svc *RateLimitService) cleanupStaleBuckets() int {
	maxWindow := time.Minute
	svc.cfgMu.RLock()
	for _, config := range svc.configs {
		if config.Window > maxWindow {
			maxWindow = config.Window
		}
	}
	svc.cfgMu.RUnlock()

	cutoff := svc.now().Add(-maxWindow)

	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	removed := 0
	for key, hist := range svc.history {
		if len(hist) == 0 || !hist[len(hist)-1].After(cutoff) {
			delete(svc.history, key)
			removed++
		}
	}
	return removed
}
