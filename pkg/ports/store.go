package ports

import (
	"context"

	"github.com/aretw0/flock/pkg/domain"
)

// SceneSink consumes composed scenes. Publish is called off the driver
// goroutine and may block on I/O.
type SceneSink interface {
	Publish(ctx context.Context, scene domain.Scene) error
}

// SceneStore is a sink that remembers the latest scene.
type SceneStore interface {
	SceneSink

	// Latest returns the most recently published scene.
	// Returns domain.ErrNoScene before the first Publish.
	Latest(ctx context.Context) (domain.Scene, error)
}
