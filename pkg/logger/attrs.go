package logger

import (
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
)

// defaultInstanceID derives a stable-enough per-process id when the config
// leaves it empty. Hostname plus a short random suffix keeps replicas apart.
func defaultInstanceID(v string) string {
	if v != "" {
		return v
	}

	hn, _ := os.Hostname()
	return hn + "-" + uuid.New().String()[:8]
}

// serviceAttrs is stamped onto every record by the handler, so individual
// log calls never repeat the deployment identity.
func serviceAttrs(cfg Config) []slog.Attr {
	return []slog.Attr{
		slog.String("service", cfg.Service),
		slog.String("env", string(cfg.Env)),
		slog.String("version", cfg.Version),
		slog.String("instance_id", cfg.InstanceID),
		slog.Time("started_at", time.Now()),
	}
}
