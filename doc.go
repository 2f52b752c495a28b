// Package spawnpool provides a pooled spawn/despawn runtime for game servers
// and frame-stepped simulations: per-template object pools with
// reference-counted retention, a lifecycle state machine for spawned
// instances, and cooperative scheduling of delayed despawns.
//
// # Architecture
//
// The runtime is organized around four ideas:
//
// 1. Deterministic pooling: pool.Pool[T] is a LIFO free list, not a
// sync.Pool — despawn-then-spawn is guaranteed to reuse the same instance,
// the cache can be bounded, cleared, and inspected, and nothing is dropped
// behind the caller's back.
//
// 2. Explicit identity and ownership: templates are identified by opaque
// string keys, the spawn.Manager is a constructed service rather than a
// global singleton, and capabilities like persistence are explicit fields
// rather than runtime type discovery.
//
// 3. Host decoupling: everything engine-bound — instantiation, activation,
// placement — sits behind the host.Services contracts. An in-memory
// host.World ships for tests and the demo binary.
//
// 4. Cooperative time: delayed despawns are frame-stepped timers driven by
// Manager.Advance. No goroutines touch pool state; background monitoring
// (the memory watcher) only raises flags the frame loop consumes.
//
// # Package Layout
//
//   - pkg/spawn: manager, handlers, instances, refs, scheduler
//   - pkg/pool: the generic free-list cache
//   - pkg/host: host collaborator contracts and the in-memory world
//   - pkg/persist: persistence hooks and the JSON-lines journal
//   - pkg/config, pkg/logger, pkg/metrics, pkg/observability: ambient stack
//   - pkg/performance: gopsutil-backed memory-pressure watcher
//   - internal/sim, cmd/spawnpool: synthetic workload driver and CLI
package spawnpool
