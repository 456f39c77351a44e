/*
Package domain contains the core value types shared by every flock package.

It is kept pure and free of stream, I/O or persistence concerns, following the
same Hexagonal Architecture split as the rest of the module: adapters depend on
domain, never the other way around.

# Key Types

  - Entity: a finitely-lived, animated thing with a scalar position (Y).
  - Tick: one pulse of the shared clock.
  - Scene: the composed value consumed by renderers and sinks.
  - LifecycleHooks: observability callbacks fired by the core.
*/
package domain
