// Package scene composes the headless spaceships simulation: enemies that
// drift down, a hero that follows the pointer, shots fired upward, a star
// field, collisions and a score, joined into one stream of domain.Scene.
//
// Every stream here runs on the driver goroutine. Build a Simulation, subscribe
// to Scenes, and connect the clocks last.
package scene

import (
	"io"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/aretw0/flock/pkg/animate"
	"github.com/aretw0/flock/pkg/combine"
	"github.com/aretw0/flock/pkg/config"
	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/ports"
	"github.com/aretw0/flock/pkg/stream"
)

// Clocks are the tick sources the simulation is driven by.
type Clocks struct {
	// Tick advances every animation and the star field.
	Tick stream.Stream[domain.Tick]
	// Spawn releases one enemy per tick.
	Spawn stream.Stream[domain.Tick]
	// Fire samples pending fire requests.
	Fire stream.Stream[domain.Tick]
}

// Simulation holds the shared streams of one game.
type Simulation struct {
	cfg    config.Config
	clocks Clocks
	input  ports.InputSource

	sched  stream.Scheduler
	hooks  domain.LifecycleHooks
	logger *slog.Logger
	rng    *rand.Rand

	enemyAnimator *animate.Animator
	shotAnimator  *animate.Animator

	hero       stream.Stream[domain.Entity]
	enemies    stream.Stream[[]domain.Entity]
	shots      stream.Stream[[]domain.Entity]
	stars      stream.Stream[[]domain.Star]
	collisions stream.Stream[[]domain.Collision]
	score      stream.Stream[int]
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithScheduler coalesces combinator snapshots and scenes per scheduler turn.
// Pass the driver loop here.
func WithScheduler(s stream.Scheduler) Option {
	return func(sim *Simulation) {
		sim.sched = s
	}
}

// WithLifecycleHooks registers observability hooks on every combinator and
// animator of the simulation.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(sim *Simulation) {
		sim.hooks = hooks
	}
}

// WithLogger sets the simulation logger.
func WithLogger(logger *slog.Logger) Option {
	return func(sim *Simulation) {
		sim.logger = logger
	}
}

// New wires the simulation streams. Nothing runs until Scenes is subscribed
// and the clocks are connected.
func New(cfg config.Config, clocks Clocks, input ports.InputSource, opts ...Option) *Simulation {
	sim := &Simulation{
		cfg:    cfg,
		clocks: clocks,
		input:  input,
		sched:  stream.Immediate,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(sim)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	sim.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	sim.enemyAnimator = animate.NewAnimator(domain.KindEnemy, clocks.Tick,
		sim.advance(cfg.Motion.EnemySpeed), sim.visible,
		animate.WithLifecycleHooks(sim.hooks))
	sim.shotAnimator = animate.NewAnimator(domain.KindShot, clocks.Tick,
		sim.advance(-cfg.Motion.ShotSpeed), sim.visible,
		animate.WithLifecycleHooks(sim.hooks))

	sim.hero = sim.heroStream()
	sim.enemies = sim.population("enemies", sim.enemyAnimator, sim.enemyArrivals())
	sim.shots = sim.population("shots", sim.shotAnimator, sim.shotArrivals())
	sim.stars = sim.starStream()
	sim.collisions = stream.Share(stream.CombineLatest2(sim.shots, sim.enemies, sim.collide))
	sim.score = stream.StartWith(stream.Scan(sim.collisions, 0, func(total int, hits []domain.Collision) int {
		return total + len(hits)
	}), 0)

	return sim
}

// Hero emits the hero ship, starting at the centre of the bottom edge.
func (sim *Simulation) Hero() stream.Stream[domain.Entity] { return sim.hero }

// Enemies emits the live enemies; it starts with an empty list.
func (sim *Simulation) Enemies() stream.Stream[[]domain.Entity] { return sim.enemies }

// Shots emits the live hero shots; it starts with an empty list.
func (sim *Simulation) Shots() stream.Stream[[]domain.Entity] { return sim.shots }

// Stars emits the star field once per animation tick.
func (sim *Simulation) Stars() stream.Stream[[]domain.Star] { return sim.stars }

// Collisions emits the hits newly resolved by each shots/enemies update.
func (sim *Simulation) Collisions() stream.Stream[[]domain.Collision] { return sim.collisions }

// Score emits the running number of hits, starting at zero.
func (sim *Simulation) Score() stream.Stream[int] { return sim.score }

// Live returns the number of animating enemies and shots.
func (sim *Simulation) Live() (enemies, shots int) {
	return sim.enemyAnimator.Live(), sim.shotAnimator.Live()
}

// Scenes joins every constituent with latest-value semantics. Frames are
// numbered per subscription from 1 and coalesced to one per scheduler turn.
func (sim *Simulation) Scenes() stream.Stream[domain.Scene] {
	type actors struct {
		enemies []domain.Entity
		shots   []domain.Entity
		score   int
	}

	moving := stream.CombineLatest3(sim.enemies, sim.shots, sim.score,
		func(enemies, shots []domain.Entity, score int) actors {
			return actors{enemies: enemies, shots: shots, score: score}
		})
	joined := stream.CombineLatest3(sim.stars, sim.hero, moving,
		func(stars []domain.Star, hero domain.Entity, a actors) domain.Scene {
			return domain.Scene{
				Stars:   stars,
				Hero:    hero,
				Enemies: a.enemies,
				Shots:   a.shots,
				Score:   a.score,
			}
		})
	numbered := stream.Scan(stream.Coalesce(joined, sim.sched), domain.Scene{},
		func(prev, next domain.Scene) domain.Scene {
			next.Frame = prev.Frame + 1
			return next
		})
	return numbered
}

func (sim *Simulation) advance(delta float64) animate.StepFunc {
	return func(y float64) (float64, error) {
		return y + delta, nil
	}
}

func (sim *Simulation) visible(y float64) bool {
	return sim.cfg.Field.Visible(y)
}

// population runs one animation per arrival and exposes the live snapshot.
// The combinator is shared so collisions and scenes observe the same slots.
func (sim *Simulation) population(name string, a *animate.Animator, arrivals stream.Stream[domain.Entity]) stream.Stream[[]domain.Entity] {
	active := combine.Active(a.Each(arrivals),
		combine.WithName(name),
		combine.WithScheduler(sim.sched),
		combine.WithEmitOnRemoval(),
		combine.WithLifecycleHooks(sim.hooks),
	)
	return stream.StartWith(stream.Share(active), []domain.Entity{})
}

func (sim *Simulation) enemyArrivals() stream.Stream[domain.Entity] {
	return stream.Map(sim.clocks.Spawn, func(domain.Tick) domain.Entity {
		return domain.Entity{
			X: sim.rng.Float64() * sim.cfg.Field.Width,
			Y: sim.cfg.Motion.EnemyStartY,
		}
	})
}

// shotArrivals fires from the hero's current position, at most once per
// fire-sample period.
func (sim *Simulation) shotArrivals() stream.Stream[domain.Entity] {
	requests := stream.Sample(sim.input.Fires(), sim.clocks.Fire)
	return stream.WithLatestFrom(requests, sim.hero, func(_ struct{}, hero domain.Entity) domain.Entity {
		return domain.Entity{X: hero.X, Y: hero.Y}
	})
}

func (sim *Simulation) heroStream() stream.Stream[domain.Entity] {
	hero := domain.Entity{
		ID:   animate.NextID(),
		Kind: domain.KindHero,
		X:    sim.cfg.Field.Width / 2,
		Y:    sim.cfg.Field.Height - sim.cfg.Motion.HeroOffset,
	}
	moves := stream.Map(sim.input.PointerMoves(), func(x float64) domain.Entity {
		e := hero
		e.X = math.Max(0, math.Min(x, sim.cfg.Field.Width))
		return e
	})
	return stream.StartWith(moves, hero)
}

func (sim *Simulation) starStream() stream.Stream[[]domain.Star] {
	initial := make([]domain.Star, sim.cfg.StarCount)
	for i := range initial {
		initial[i] = domain.Star{
			X:    sim.rng.Float64() * sim.cfg.Field.Width,
			Y:    sim.rng.Float64() * sim.cfg.Field.Height,
			Size: 1 + sim.rng.Float64()*2,
		}
	}

	height, speed := sim.cfg.Field.Height, sim.cfg.Motion.StarSpeed
	moved := stream.Scan(sim.clocks.Tick, initial, func(prev []domain.Star, _ domain.Tick) []domain.Star {
		next := make([]domain.Star, len(prev))
		for i, s := range prev {
			s.Y += speed
			if s.Y >= height {
				s.Y = 0
			}
			next[i] = s
		}
		return next
	})
	return stream.StartWith(moved, initial)
}

// collide finds hits between live shots and live enemies and sends the
// terminate command to both sides. A pair already resolved in an earlier
// update is not counted again.
func (sim *Simulation) collide(shots, enemies []domain.Entity) []domain.Collision {
	var hits []domain.Collision
	box := sim.cfg.HitBox
	for _, shot := range shots {
		if !sim.shotAnimator.Alive(shot.ID) {
			continue
		}
		for _, ship := range enemies {
			if !sim.enemyAnimator.Alive(ship.ID) {
				continue
			}
			if math.Abs(ship.X-shot.X) >= box || math.Abs(ship.Y-shot.Y) >= box {
				continue
			}
			sim.shotAnimator.Terminate(shot.ID)
			sim.enemyAnimator.Terminate(ship.ID)

			ship.Terminated, shot.Terminated = true, true
			hit := domain.Collision{Ship: ship, Shot: shot}
			hits = append(hits, hit)
			sim.logger.Debug("collision", "ship", ship.ID, "shot", shot.ID)
			if sim.hooks.OnCollision != nil {
				sim.hooks.OnCollision(&hit)
			}
			break
		}
	}
	return hits
}
