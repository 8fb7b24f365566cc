// Package source provides the producers that feed a route.
//
// Sources are pull-based: the engine opens a Source once per start and pulls
// exchanges through its Iterator until it is exhausted or the admission
// context is cancelled. Pulling is the backpressure point: a source is never
// pulled more than one exchange ahead of the engine's in-flight bound.
//
//   - Simple: a finite list of bodies, one exchange each
//   - Timer: an unbounded tick source, optionally limited
//   - Channel: exchanges read from a Go channel until it is closed
//   - From / FromFunc: adapt any custom Iterator
package source
