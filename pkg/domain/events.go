package domain

// SlotEvent describes a slot being opened or closed by a combinator.
type SlotEvent struct {
	Combinator string `json:"combinator"`
	Index      int    `json:"index"`
	Open       int    `json:"open"` // open slots after the change
}

// SnapshotEvent describes one emitted snapshot array.
type SnapshotEvent struct {
	Combinator string `json:"combinator"`
	Size       int    `json:"size"`
}

// EntityEvent describes the end of one entity's animation.
type EntityEvent struct {
	Entity Entity `json:"entity"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// Reasons reported in EntityEvent.
const (
	ReasonOutOfBounds = "out_of_bounds"
	ReasonTerminated  = "terminated"
	ReasonStepFailed  = "step_failed"
	ReasonDisposed    = "disposed"
)

// LifecycleHooks defines callbacks for core observability.
// Hooks run on the driver goroutine and must not block.
type LifecycleHooks struct {
	OnSlotOpen  func(*SlotEvent)
	OnSlotClose func(*SlotEvent)
	OnSnapshot  func(*SnapshotEvent)
	OnEntityEnd func(*EntityEvent)
	OnCollision func(*Collision)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSlotOpen:  chain(h.OnSlotOpen, other.OnSlotOpen),
		OnSlotClose: chain(h.OnSlotClose, other.OnSlotClose),
		OnSnapshot:  chain(h.OnSnapshot, other.OnSnapshot),
		OnEntityEnd: chain(h.OnEntityEnd, other.OnEntityEnd),
		OnCollision: chain(h.OnCollision, other.OnCollision),
	}
}

func chain[E any](a, b func(*E)) func(*E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e *E) {
		a(e)
		b(e)
	}
}
