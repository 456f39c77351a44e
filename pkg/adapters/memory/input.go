package memory

import (
	"math"

	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/stream"
)

// Input is an InputSource backed by subjects. Move and Fire must be called
// on the driver goroutine.
type Input struct {
	moves *stream.Subject[float64]
	fires *stream.Subject[struct{}]
}

// NewInput creates an idle input source.
func NewInput() *Input {
	return &Input{
		moves: stream.NewSubject[float64](),
		fires: stream.NewSubject[struct{}](),
	}
}

// PointerMoves implements ports.InputSource.
func (in *Input) PointerMoves() stream.Stream[float64] {
	return in.moves
}

// Fires implements ports.InputSource.
func (in *Input) Fires() stream.Stream[struct{}] {
	return in.fires
}

// Move reports a pointer position.
func (in *Input) Move(x float64) {
	in.moves.Next(x)
}

// Fire reports a fire request.
func (in *Input) Fire() {
	in.fires.Next(struct{}{})
}

// AutopilotOption configures Autopilot.
type AutopilotOption func(*autopilot)

type autopilot struct {
	fireEvery uint64
	period    uint64
}

// WithFireEvery fires once every n ticks. Zero disables firing.
func WithFireEvery(n uint64) AutopilotOption {
	return func(a *autopilot) {
		a.fireEvery = n
	}
}

// WithSweepPeriod sets how many ticks one full left-right-left sweep takes.
func WithSweepPeriod(ticks uint64) AutopilotOption {
	return func(a *autopilot) {
		a.period = ticks
	}
}

// Autopilot drives in from ticks: the pointer sweeps across [0, width] and
// fires at a fixed cadence. It is the scripted stand-in for a human player
// in headless runs. Dispose the result to stop it.
func Autopilot(in *Input, ticks stream.Stream[domain.Tick], width float64, opts ...AutopilotOption) stream.Subscription {
	a := autopilot{fireEvery: 5, period: 200}
	for _, opt := range opts {
		opt(&a)
	}

	return ticks.Subscribe(stream.Observer[domain.Tick]{
		Next: func(t domain.Tick) {
			phase := 2 * math.Pi * float64(t.Seq%a.period) / float64(a.period)
			in.Move(width / 2 * (1 + math.Sin(phase)))
			if a.fireEvery > 0 && t.Seq%a.fireEvery == 0 {
				in.Fire()
			}
		},
	})
}
