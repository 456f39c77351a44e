package domain

import "time"

// Kind categorises entities.
type Kind string

const (
	KindEnemy Kind = "enemy"
	KindShot  Kind = "shot"
	KindHero  Kind = "hero"
)

// Entity is one animated, finitely-lived thing. Y is the scalar position the
// animator steps on every tick. Values of Entity are snapshots: the animator
// owns the working copy and nobody else mutates it.
//
// Terminated is set on the final state reported for an entity ended by a
// terminate request, and on both sides of a Collision. Live snapshots do not
// carry it: a terminated entity leaves the scene on its next tick.
type Entity struct {
	ID         uint64  `json:"id"`
	Kind       Kind    `json:"kind"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Terminated bool    `json:"terminated,omitempty"`
}

// Tick is one pulse of a clock.
type Tick struct {
	Seq uint64    `json:"seq"`
	At  time.Time `json:"at"`
}

// Star is a background particle.
type Star struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Size float64 `json:"size"`
}

// Collision pairs a shot with the enemy it hit.
type Collision struct {
	Ship Entity `json:"ship"`
	Shot Entity `json:"shot"`
}
