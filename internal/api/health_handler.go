package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/meta-audience-relay/internal/config"
	"github.com/ignite/meta-audience-relay/internal/pkg/httputil"
)

// HealthStatus represents the overall health of the relay.
type HealthStatus struct {
	Status  string                    `json:"status"` // "healthy", "degraded", "unhealthy"
	Version string                    `json:"version"`
	Uptime  string                    `json:"uptime"`
	Checks  map[string]ComponentCheck `json:"checks"`
}

// ComponentCheck represents the health of a single component.
type ComponentCheck struct {
	Status  string `json:"status"` // "up", "down", "degraded"
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

const (
	healthVersion    = "1.0.0"
	msgNotConfigured = "not configured"
)

// HealthChecker reports on the Meta credentials and the optional Redis cache.
type HealthChecker struct {
	redisClient *redis.Client
	meta        config.MetaConfig
	startTime   time.Time
}

// NewHealthChecker creates a new HealthChecker. redisClient may be nil.
func NewHealthChecker(redisClient *redis.Client, meta config.MetaConfig) *HealthChecker {
	return &HealthChecker{
		redisClient: redisClient,
		meta:        meta,
		startTime:   time.Now(),
	}
}

// HandleHealth returns the status of every component. It always answers 200;
// the status field carries the verdict.
//
//	GET /health
func (hc *HealthChecker) HandleHealth(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())

	httputil.OK(w, HealthStatus{
		Status:  determineOverallStatus(checks),
		Version: healthVersion,
		Uptime:  formatUptime(time.Since(hc.startTime)),
		Checks:  checks,
	})
}

// HandleLiveness always returns 200 while the process is running.
//
//	GET /health/live
func (hc *HealthChecker) HandleLiveness(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string]interface{}{
		"status": "alive",
		"uptime": formatUptime(time.Since(hc.startTime)),
	})
}

// HandleReadiness returns 503 when the relay cannot serve requests.
//
//	GET /health/ready
func (hc *HealthChecker) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	checks := hc.runAllChecks(r.Context())
	overall := determineOverallStatus(checks)

	ready := overall != "unhealthy"
	httpStatus := http.StatusOK
	if !ready {
		httpStatus = http.StatusServiceUnavailable
	}

	httputil.JSON(w, httpStatus, map[string]interface{}{
		"ready":  ready,
		"status": overall,
		"checks": checks,
	})
}

func (hc *HealthChecker) runAllChecks(ctx context.Context) map[string]ComponentCheck {
	return map[string]ComponentCheck{
		"meta":  hc.checkMeta(),
		"redis": hc.checkRedis(ctx),
	}
}

// checkMeta reports whether credentials are present. It never calls the
// Graph API so probes do not spend platform quota.
func (hc *HealthChecker) checkMeta() ComponentCheck {
	if hc.meta.AccessToken == "" || hc.meta.AccountID() == "" {
		return ComponentCheck{Status: "down", Message: "credentials missing"}
	}
	return ComponentCheck{
		Status:  "up",
		Message: fmt.Sprintf("account act_%s, api %s", hc.meta.AccountID(), hc.meta.APIVersion),
	}
}

// checkRedis pings Redis with a 2-second timeout.
func (hc *HealthChecker) checkRedis(ctx context.Context) ComponentCheck {
	if hc.redisClient == nil {
		return ComponentCheck{Status: "down", Message: msgNotConfigured}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	start := time.Now()
	err := hc.redisClient.Ping(pingCtx).Err()
	latency := time.Since(start)

	if err != nil {
		return ComponentCheck{
			Status:  "down",
			Latency: latency.String(),
			Message: fmt.Sprintf("ping failed: %v", err),
		}
	}

	status := "up"
	msg := "connected"
	if latency > 500*time.Millisecond {
		status = "degraded"
		msg = fmt.Sprintf("slow response (%s)", latency)
	}

	return ComponentCheck{
		Status:  status,
		Latency: latency.String(),
		Message: msg,
	}
}

// determineOverallStatus derives the aggregate status:
//   - "unhealthy" if Meta credentials are missing
//   - "degraded"  if the cache is configured but slow or unreachable
//   - "healthy"   otherwise
func determineOverallStatus(checks map[string]ComponentCheck) string {
	if m, ok := checks["meta"]; ok && m.Status == "down" {
		return "unhealthy"
	}

	for _, c := range checks {
		if c.Status == "degraded" {
			return "degraded"
		}
		if c.Status == "down" && c.Message != msgNotConfigured {
			return "degraded"
		}
	}

	return "healthy"
}

// formatUptime produces a human-readable uptime string like "3d 4h 12m 5s".
func formatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	}
	if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
