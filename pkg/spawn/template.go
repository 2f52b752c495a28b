// Package spawn implements the pooled spawn/despawn lifecycle runtime: a
// registry of pool handlers keyed by template identity, reference-counted
// retention of warm pools, and the instance state machine that moves objects
// between spawned, despawned, and destroyed.
//
// The runtime is single-threaded by design. Every operation — Spawn,
// Despawn, Retain, Release, FlushInactive, Advance — belongs to one logical
// frame loop, with no internal locking. Delayed despawns are cooperative
// timers driven by Advance, not goroutines.
//
// Typical use:
//
//	world := host.NewWorld()
//	mgr := spawn.NewManager(world)
//
//	enemy := spawn.NewTemplate("enemy")
//	inst, err := mgr.Spawn(enemy, &spawn.Params{Position: host.Vec3{X: 4}})
//	...
//	mgr.DespawnAfter(inst, 3*time.Second)
//
//	// each frame:
//	mgr.Advance(frameDelta)
package spawn

import (
	"github.com/ajitpratap0/spawnpool/pkg/pool"
)

// Template identifies a prototype that pools produce copies of. Identity is
// the opaque Key string, assigned once at construction — never the Go
// pointer, so templates survive serialization and process boundaries.
type Template struct {
	// Key is the stable identity of this template. All pools, handlers,
	// and registry entries for the template share it.
	Key string
}

// NewTemplate creates a template with the given key. An empty key is
// replaced with a generated one in "tpl-N" form.
func NewTemplate(key string) *Template {
	if key == "" {
		key = pool.GenerateID("tpl")
	}
	return &Template{Key: key}
}
