package observability

import (
	"log/slog"

	"github.com/aretw0/flock/pkg/domain"
)

// LoggingHooks returns lifecycle hooks that emit structured logs. Entity
// failures are logged at warn level, everything else at debug.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSlotOpen: func(e *domain.SlotEvent) {
			logger.Debug("slot_open", "combinator", e.Combinator, "index", e.Index, "open", e.Open)
		},
		OnSlotClose: func(e *domain.SlotEvent) {
			logger.Debug("slot_close", "combinator", e.Combinator, "index", e.Index, "open", e.Open)
		},
		OnEntityEnd: func(e *domain.EntityEvent) {
			if e.Err != nil {
				logger.Warn("entity_failed",
					"id", e.Entity.ID,
					"kind", e.Entity.Kind,
					"err", e.Err,
				)
				return
			}
			logger.Debug("entity_end",
				"id", e.Entity.ID,
				"kind", e.Entity.Kind,
				"reason", e.Reason,
			)
		},
		OnCollision: func(c *domain.Collision) {
			logger.Debug("collision", "ship", c.Ship.ID, "shot", c.Shot.ID)
		},
	}
}
