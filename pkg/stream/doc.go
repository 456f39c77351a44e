/*
Package stream defines the push-based stream abstraction used across flock.

A Stream delivers zero or more values to an Observer, followed by at most one
terminal signal (Error or Complete). Subscribing returns a Subscription whose
Dispose releases every resource the subscription acquired.

Streams are not safe for concurrent use. All callbacks are expected to run on a
single driver goroutine (see package loop); producers living on other goroutines
must post their work to that driver instead of calling Next directly.

# Key Types

  - Stream / Func: the source contract and its function adapter.
  - Create: builds a Stream from a producer with exactly-once teardown.
  - Subject: a hot multicast source (used for clocks and input events).
  - Scheduler: defers work to the end of the current driver turn.

Operators are free functions (Map, Filter, Scan, StartWith, Sample,
WithLatestFrom, CombineLatest2, CombineLatest3, Share, Coalesce).
*/
package stream
