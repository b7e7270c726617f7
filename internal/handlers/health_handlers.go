package handlers

import (
	"context"
	"net/http"
	"time"

	"elafcatalog/internal/caching"
	"elafcatalog/internal/services"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const checkTimeout = 2 * time.Second

// Execer is the part of the database pool the readiness probe needs.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// HealthHandlers handles health check endpoints
type HealthHandlers struct {
	db     Execer
	cache  caching.TreeCache
	store  services.SnapshotStore
	bucket string
	logger *zap.Logger
	start  time.Time
}

// NewHealthHandlers creates a new health handlers instance
func NewHealthHandlers(db Execer, cache caching.TreeCache, store services.SnapshotStore, bucket string, logger *zap.Logger) *HealthHandlers {
	return &HealthHandlers{
		db:     db,
		cache:  cache,
		store:  store,
		bucket: bucket,
		logger: logger.Named("health"),
		start:  time.Now(),
	}
}

// ReadinessStatus reports the state of every dependency
type ReadinessStatus struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

// LivenessCheck reports that the process is serving requests.
//
//	@Summary	Liveness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func (h *HealthHandlers) LivenessCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "alive",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(h.start).Round(time.Second).String(),
	})
}

// ReadinessCheck probes PostgreSQL, Redis and object storage.
//
//	@Summary	Readiness probe
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	ReadinessStatus
//	@Failure	503	{object}	ReadinessStatus
//	@Router		/health/ready [get]
func (h *HealthHandlers) ReadinessCheck(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	status := &ReadinessStatus{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services:  make(map[string]string, 3),
	}

	checks := []struct {
		name  string
		probe func(context.Context) error
	}{
		{"database", h.checkDatabase},
		{"redis", h.cache.Ping},
		{"storage", h.checkStorage},
	}
	for _, check := range checks {
		if err := check.probe(ctx); err != nil {
			h.logger.Warn("dependency unhealthy", zap.String("service", check.name), zap.Error(err))
			status.Services[check.name] = "unhealthy"
			status.Status = "not_ready"
			continue
		}
		status.Services[check.name] = "healthy"
	}

	code := http.StatusOK
	if status.Status != "ready" {
		code = http.StatusServiceUnavailable
	}
	return c.JSON(code, status)
}

func (h *HealthHandlers) checkDatabase(ctx context.Context) error {
	_, err := h.db.Exec(ctx, "SELECT 1")
	return err
}

func (h *HealthHandlers) checkStorage(ctx context.Context) error {
	return h.store.Ping(ctx, h.bucket)
}
