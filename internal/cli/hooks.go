package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// logHooks reports arrangement passes and cache traffic at debug level.
// Installed by --verbose.
type logHooks struct {
	logger *log.Logger
}

func (h *logHooks) OnArrangeStart(ctx context.Context, gridID string, items int) {
	h.logger.Debug("arrange", "grid", gridID, "items", items)
}

func (h *logHooks) OnPhase(ctx context.Context, gridID, phase string, d time.Duration, cached bool, err error) {
	if err != nil {
		h.logger.Debug("phase failed", "grid", gridID, "phase", phase, "error", err)
		return
	}
	h.logger.Debug("phase", "grid", gridID, "phase", phase, "cached", cached, "took", d)
}

func (h *logHooks) OnArrangeComplete(ctx context.Context, gridID string, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Debug("arranged", "grid", gridID, "took", d.Round(time.Microsecond))
}

func (h *logHooks) OnCacheHit(ctx context.Context, keyType string) {
	h.logger.Debug("cache hit", "kind", keyType)
}

func (h *logHooks) OnCacheMiss(ctx context.Context, keyType string) {
	h.logger.Debug("cache miss", "kind", keyType)
}

func (h *logHooks) OnCacheSet(ctx context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "kind", keyType, "bytes", size)
}
