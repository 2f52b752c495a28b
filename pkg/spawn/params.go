package spawn

import (
	"github.com/ajitpratap0/spawnpool/pkg/host"
	"github.com/ajitpratap0/spawnpool/pkg/persist"
)

// Params carries everything a caller can specify about where and how an
// instance appears. The zero value spawns at the origin with identity scale,
// unparented, in the instantiator's default scene.
type Params struct {
	Position host.Vec3
	Rotation host.Vec3
	// Scale of zero means identity scale.
	Scale host.Vec3
	// Parent places the instance under another object. Zero means root.
	Parent host.ObjectID
	// InWorldSpace interprets Position/Rotation in world space even when
	// Parent is set.
	InWorldSpace bool
	// Scene moves the instance into a named scene. Empty leaves it in the
	// instantiator's default scene.
	Scene string
	// Persistence, when non-nil, attaches a persistence hook to the
	// instance: SetupDynamicInstance fires on this spawn and
	// RegisterDestroyed on the eventual despawn.
	Persistence persist.Hook
}

// At is shorthand for spawning at a position with otherwise default params.
func At(position host.Vec3) *Params {
	return &Params{Position: position}
}

func (p *Params) placement() host.Placement {
	return host.Placement{
		Position:     p.Position,
		Rotation:     p.Rotation,
		Scale:        p.Scale,
		Parent:       p.Parent,
		InWorldSpace: p.InWorldSpace,
		Scene:        p.Scene,
	}
}
