package health

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Status is the health report returned by /health.
type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Uptime   string `json:"uptime"`
}

type HealthChecker struct {
	pool    *pgxpool.Pool
	started time.Time
}

func NewHealthChecker(pool *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{pool: pool, started: time.Now()}
}

// Check pings the database and reports overall status.
func (h *HealthChecker) Check(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	s := Status{
		Status:   "ok",
		Database: "up",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
	}

	if err := h.pool.Ping(ctx); err != nil {
		s.Status = "degraded"
		s.Database = "down"
	}

	return s
}
