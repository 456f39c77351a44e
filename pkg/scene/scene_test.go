package scene_test

import (
	"testing"
	"time"

	"github.com/aretw0/flock/internal/testutils"
	"github.com/aretw0/flock/pkg/adapters/memory"
	"github.com/aretw0/flock/pkg/clock"
	"github.com/aretw0/flock/pkg/config"
	"github.com/aretw0/flock/pkg/domain"
	"github.com/aretw0/flock/pkg/loop"
	"github.com/aretw0/flock/pkg/scene"
	"github.com/aretw0/flock/pkg/stream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	loop   *loop.Loop
	tick   *clock.Manual
	spawn  *clock.Manual
	fire   *clock.Manual
	input  *memory.Input
	sim    *scene.Simulation
	scenes *testutils.Recorder[domain.Scene]
	sub    stream.Subscription
}

// narrowField keeps every enemy within hit range horizontally, so shots from
// the centre always line up.
func narrowField() config.Config {
	cfg := config.Default()
	cfg.Field = config.Field{Width: 1, Height: 100}
	cfg.Motion.EnemySpeed = 0
	cfg.Motion.EnemyStartY = 30
	cfg.Motion.ShotSpeed = 15
	cfg.Motion.HeroOffset = 30
	cfg.StarCount = 3
	cfg.Seed = 7
	return cfg
}

func newHarness(t *testing.T, cfg config.Config, hooks domain.LifecycleHooks) *harness {
	t.Helper()
	h := &harness{
		loop:  loop.New(),
		tick:  clock.NewManual(40 * time.Millisecond),
		spawn: clock.NewManual(time.Second),
		fire:  clock.NewManual(200 * time.Millisecond),
		input: memory.NewInput(),
	}
	h.sim = scene.New(cfg, scene.Clocks{
		Tick:  h.tick.Stream(),
		Spawn: h.spawn.Stream(),
		Fire:  h.fire.Stream(),
	}, h.input, scene.WithScheduler(h.loop), scene.WithLifecycleHooks(hooks))

	h.loop.Do(func() {
		h.scenes, h.sub = testutils.Record(h.sim.Scenes())
	})
	require.NoError(t, h.tick.Connect())
	require.NoError(t, h.spawn.Connect())
	require.NoError(t, h.fire.Connect())
	return h
}

func (h *harness) do(fn func()) {
	h.loop.Do(fn)
}

func (h *harness) last(t *testing.T) domain.Scene {
	t.Helper()
	return h.scenes.Last(t)
}

func TestScenes_InitialFrame(t *testing.T) {
	h := newHarness(t, narrowField(), domain.LifecycleHooks{})

	require.Len(t, h.scenes.Values, 1, "initial join is coalesced into one frame")
	s := h.last(t)
	assert.Equal(t, uint64(1), s.Frame)
	assert.Equal(t, 0.5, s.Hero.X)
	assert.Equal(t, 70.0, s.Hero.Y)
	assert.Equal(t, domain.KindHero, s.Hero.Kind)
	assert.Empty(t, s.Enemies)
	assert.Empty(t, s.Shots)
	assert.Zero(t, s.Score)
	assert.Len(t, s.Stars, 3)
}

func TestScenes_HeroFollowsPointerWithinField(t *testing.T) {
	cfg := narrowField()
	cfg.Field.Width = 200
	h := newHarness(t, cfg, domain.LifecycleHooks{})

	h.do(func() { h.input.Move(50) })
	assert.Equal(t, 50.0, h.last(t).Hero.X)

	h.do(func() { h.input.Move(-10) })
	assert.Equal(t, 0.0, h.last(t).Hero.X)

	h.do(func() { h.input.Move(999) })
	assert.Equal(t, 200.0, h.last(t).Hero.X)
}

func TestScenes_EnemiesLeaveTheField(t *testing.T) {
	cfg := narrowField()
	cfg.Motion.EnemySpeed = 50
	var ended []*domain.EntityEvent
	h := newHarness(t, cfg, domain.LifecycleHooks{
		OnEntityEnd: func(e *domain.EntityEvent) { ended = append(ended, e) },
	})

	h.do(func() { h.spawn.Tick() })
	require.Len(t, h.last(t).Enemies, 1)
	assert.Equal(t, 30.0, h.last(t).Enemies[0].Y)

	h.do(func() { h.tick.Tick() })
	assert.Equal(t, 80.0, h.last(t).Enemies[0].Y)

	h.do(func() { h.tick.Tick() }) // 130 is outside the field
	assert.Empty(t, h.last(t).Enemies)
	enemies, _ := h.sim.Live()
	assert.Zero(t, enemies)

	require.Len(t, ended, 1)
	assert.Equal(t, domain.ReasonOutOfBounds, ended[0].Reason)
	assert.Equal(t, 80.0, ended[0].Entity.Y, "last accepted position")
}

func TestScenes_FireIsSampled(t *testing.T) {
	h := newHarness(t, narrowField(), domain.LifecycleHooks{})

	h.do(func() {
		h.input.Fire()
		h.input.Fire()
	})
	assert.Empty(t, h.last(t).Shots, "nothing fires before the sample tick")

	h.do(func() { h.fire.Tick() })
	shots := h.last(t).Shots
	require.Len(t, shots, 1, "requests within one period fire once")
	assert.Equal(t, domain.KindShot, shots[0].Kind)
	assert.Equal(t, 0.5, shots[0].X)
	assert.Equal(t, 70.0, shots[0].Y)

	h.do(func() { h.fire.Tick() })
	assert.Len(t, h.last(t).Shots, 1, "no new request, no new shot")
}

func TestScenes_CollisionTerminatesBothAndScores(t *testing.T) {
	var hits []*domain.Collision
	h := newHarness(t, narrowField(), domain.LifecycleHooks{
		OnCollision: func(c *domain.Collision) { hits = append(hits, c) },
	})

	h.do(func() { h.spawn.Tick() })
	h.do(func() { h.input.Fire() })
	h.do(func() { h.fire.Tick() })

	h.do(func() { h.tick.Tick() }) // shot at 55, out of range
	assert.Zero(t, h.last(t).Score)
	assert.Empty(t, hits)

	h.do(func() { h.tick.Tick() }) // shot at 40, hit
	s := h.last(t)
	assert.Equal(t, 1, s.Score)
	require.Len(t, hits, 1)
	assert.Equal(t, 40.0, hits[0].Shot.Y)
	assert.Equal(t, 30.0, hits[0].Ship.Y)
	assert.True(t, hits[0].Ship.Terminated)
	assert.True(t, hits[0].Shot.Terminated)
	for _, e := range s.Enemies {
		assert.False(t, e.Terminated, "scene snapshots are taken before the terminate command")
	}

	h.do(func() { h.tick.Tick() }) // both end on the next tick
	s = h.last(t)
	assert.Empty(t, s.Enemies)
	assert.Empty(t, s.Shots)
	assert.Equal(t, 1, s.Score, "a resolved pair is never counted twice")
	assert.Len(t, hits, 1)

	enemies, shots := h.sim.Live()
	assert.Zero(t, enemies)
	assert.Zero(t, shots)
}

func TestScenes_StarsScrollAndWrap(t *testing.T) {
	h := newHarness(t, narrowField(), domain.LifecycleHooks{})
	before := h.last(t).Stars

	h.do(func() { h.tick.Tick() })
	after := h.last(t).Stars
	require.Len(t, after, len(before))
	for i := range after {
		if before[i].Y+3 >= 100 {
			assert.Zero(t, after[i].Y)
		} else {
			assert.InDelta(t, before[i].Y+3, after[i].Y, 1e-9)
		}
		assert.Equal(t, before[i].X, after[i].X)
	}
}

func TestScenes_OneFramePerTurn(t *testing.T) {
	h := newHarness(t, narrowField(), domain.LifecycleHooks{})

	h.do(func() { h.spawn.Tick() })
	h.do(func() {
		h.tick.Tick()
		h.spawn.Tick()
		h.input.Move(0)
	})

	require.Len(t, h.scenes.Values, 3)
	for i, s := range h.scenes.Values {
		assert.Equal(t, uint64(i+1), s.Frame)
	}
	assert.Len(t, h.last(t).Enemies, 2)
}

func TestScenes_SeedIsDeterministic(t *testing.T) {
	a := newHarness(t, narrowField(), domain.LifecycleHooks{})
	b := newHarness(t, narrowField(), domain.LifecycleHooks{})
	assert.Equal(t, a.last(t).Stars, b.last(t).Stars)
}

func TestScenes_DisposeReleasesClocks(t *testing.T) {
	h := newHarness(t, narrowField(), domain.LifecycleHooks{})
	h.do(func() { h.spawn.Tick() })

	h.sub.Dispose()
	assert.Zero(t, h.tick.Subscribers())
	assert.Zero(t, h.spawn.Subscribers())
	assert.Zero(t, h.fire.Subscribers())
	enemies, _ := h.sim.Live()
	assert.Zero(t, enemies)
}
