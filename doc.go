/*
Package flock models a population of independently animated, finitely lived
entities as push-based streams, and ships a headless "spaceships" simulation
built from them.

# Concept

Every entity is animated by its own stream: it starts from an initial value,
steps on each tick of a shared clock and completes as soon as its
continuation predicate rejects the next position. A dynamic fan-in
combinator (pkg/combine) joins a changing set of such streams into one
snapshot array with stable slots, dropping each entity the moment its stream
completes. The composition layer (pkg/scene) joins enemies, shots, the hero,
stars and the score into a Scene per frame.

# Concurrency

A single driver loop (pkg/loop) runs every stream callback. Timers, HTTP
handlers and other producers only post tasks to it, so entity state needs no
locks. Scenes leave the loop through a latest-wins relay and reach sinks such
as the in-memory store, Redis or the SSE stream without ever blocking a tick.

# Usage

	cfg := config.Default()
	cfg.MaxTicks = 500

	store := memory.NewStore()
	eng, err := flock.New(cfg,
		flock.WithSink("memory", store),
		flock.WithAutopilot(true),
	)
	if err != nil {
		log.Fatal(err)
	}

	stats, err := eng.Run(context.Background())
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("score:", stats.Score)
*/
package flock
