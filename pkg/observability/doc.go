/*
Package observability provides tools for monitoring the flock simulation.

It exposes Prometheus collectors and structured-log emitters as
domain.LifecycleHooks, so any combinator, animator or simulation can be
instrumented without knowing about either backend.
*/
package observability
