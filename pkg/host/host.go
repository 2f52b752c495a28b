// Package host defines the collaborator contracts the spawn runtime requires
// from its embedding environment: object instantiation, activation, and
// placement. A game server backs these with its entity system; tests and the
// demo use the in-memory World implementation in this package.
package host

// ObjectID identifies a concrete object owned by the host. Zero is never a
// valid ID.
type ObjectID uint64

// Vec3 is a position, Euler rotation, or scale component.
type Vec3 struct {
	X, Y, Z float64
}

// One is the identity scale.
var One = Vec3{X: 1, Y: 1, Z: 1}

// Placement describes where and how an object should be placed when spawned.
type Placement struct {
	Position Vec3
	Rotation Vec3
	Scale    Vec3
	// Parent places the object under another object. Zero means no parent.
	Parent ObjectID
	// InWorldSpace interprets Position/Rotation in world space even when a
	// parent is set.
	InWorldSpace bool
	// Scene moves the object into a named scene. Empty leaves it where the
	// instantiator put it.
	Scene string
}

// Instantiator creates and permanently frees host objects.
type Instantiator interface {
	// Instantiate produces a new inactive object cloned from the named
	// template, parented under parent (zero for root).
	Instantiate(templateKey string, parent ObjectID) (ObjectID, error)
	// Destroy permanently frees an object. The ID must not be reused.
	Destroy(id ObjectID) error
}

// Activator toggles an object's active state. Inactive objects are invisible
// to the host's update loop.
type Activator interface {
	SetActive(id ObjectID, active bool) error
	IsActive(id ObjectID) bool
}

// Placer applies placement to an object.
type Placer interface {
	Place(id ObjectID, p Placement) error
}

// Services bundles the three collaborator contracts. The spawn runtime takes
// one of these rather than three separate values because every real host
// implements all of them on the same object.
type Services interface {
	Instantiator
	Activator
	Placer
}
