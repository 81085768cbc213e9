package handler

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/mstgnz/posgate/infra/config"
	"github.com/mstgnz/posgate/infra/response"
	"github.com/mstgnz/posgate/provider"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	paymentService *provider.PaymentService
	secretStore    *config.SQLiteSecretStore
	startTime      time.Time
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status      string                     `json:"status"`
	Version     string                     `json:"version"`
	Timestamp   time.Time                  `json:"timestamp"`
	Uptime      string                     `json:"uptime"`
	Environment string                     `json:"environment"`
	Providers   map[string]*ProviderHealth `json:"providers"`
	SecretStore *SecretStoreHealth         `json:"secret_store"`
	System      *SystemHealth              `json:"system"`
}

// ProviderHealth represents payment provider health
type ProviderHealth struct {
	Status     string `json:"status"`
	Configured bool   `json:"configured"`
}

// SecretStoreHealth represents the secret store backend health
type SecretStoreHealth struct {
	Status  string `json:"status"`
	Backend string `json:"backend"`
	Error   string `json:"error,omitempty"`
}

// SystemHealth represents system resource health
type SystemHealth struct {
	Alloc      string `json:"alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
	GoRoutines int    `json:"goroutines"`
}

// NewHealthHandler creates a new health handler. The SQLite secret store
// may be nil when secrets come from the environment.
func NewHealthHandler(paymentService *provider.PaymentService, secretStore *config.SQLiteSecretStore) *HealthHandler {
	return &HealthHandler{
		paymentService: paymentService,
		secretStore:    secretStore,
		startTime:      time.Now(),
	}
}

// CheckHealth performs health checks on providers and the secret store
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	health := &HealthStatus{
		Version:     "1.0.0",
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startTime).String(),
		Environment: config.GetEnv("ENVIRONMENT", "development"),
		Providers:   make(map[string]*ProviderHealth),
	}

	for _, name := range h.paymentService.Providers() {
		health.Providers[name] = &ProviderHealth{
			Status:     "ok",
			Configured: true,
		}
	}

	health.SecretStore = h.checkSecretStore()
	health.System = checkSystem()

	health.Status = "ok"
	statusCode := http.StatusOK
	if health.SecretStore.Status != "ok" {
		health.Status = "degraded"
		statusCode = http.StatusServiceUnavailable
	}

	response.Success(w, statusCode, "Health check completed", health)
}

func (h *HealthHandler) checkSecretStore() *SecretStoreHealth {
	if h.secretStore == nil {
		return &SecretStoreHealth{Status: "ok", Backend: "env"}
	}

	if _, err := h.secretStore.GetStats(); err != nil {
		return &SecretStoreHealth{
			Status:  "error",
			Backend: "sqlite",
			Error:   err.Error(),
		}
	}
	return &SecretStoreHealth{Status: "ok", Backend: "sqlite"}
}

func checkSystem() *SystemHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemHealth{
		Alloc:      formatBytes(m.Alloc),
		Sys:        formatBytes(m.Sys),
		GCRuns:     m.NumGC,
		GoRoutines: runtime.NumGoroutine(),
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
