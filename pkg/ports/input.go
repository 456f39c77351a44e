package ports

import "github.com/aretw0/flock/pkg/stream"

// InputSource supplies raw input events. Both streams must be hot and emit on
// the driver goroutine.
type InputSource interface {
	// PointerMoves emits the horizontal pointer position.
	PointerMoves() stream.Stream[float64]

	// Fires emits once per fire request (click, key press).
	Fires() stream.Stream[struct{}]
}
