package spawn

import (
	"github.com/ajitpratap0/spawnpool/pkg/host"
	"github.com/ajitpratap0/spawnpool/pkg/persist"
)

// State is an instance's position in the lifecycle.
type State int

const (
	// StateUnspawned is the initial state: constructed but never activated.
	StateUnspawned State = iota
	// StateSpawned means the instance is active and in use.
	StateSpawned
	// StateDespawned means the instance is inactive, cached for reuse.
	StateDespawned
	// StateDestroyed is terminal: the backing object has been freed.
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateUnspawned:
		return "unspawned"
	case StateSpawned:
		return "spawned"
	case StateDespawned:
		return "despawned"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Observer receives lifecycle notifications for one instance. Observers are
// registered explicitly on the instance; there is no broadcast dispatch.
type Observer interface {
	OnSpawned(*Instance)
	OnDespawned(*Instance)
}

// Instance is a concrete object produced from a template. It wraps the host
// object with the lifecycle state machine, the owning handler reference, an
// explicit observer list, and an optional persistence hook.
type Instance struct {
	// ID uniquely identifies this instance for persistence and scheduling.
	ID string
	// Object is the backing host object.
	Object host.ObjectID

	templateKey string
	state       State
	handler     Handler
	hook        persist.Hook
	observers   []Observer
}

// State returns the instance's current lifecycle state.
func (in *Instance) State() State {
	return in.state
}

// IsSpawned reports whether the instance is currently spawned.
func (in *Instance) IsSpawned() bool {
	return in.state == StateSpawned
}

// IsDespawned reports whether the instance is currently despawned (cached).
func (in *Instance) IsDespawned() bool {
	return in.state == StateDespawned
}

// TemplateKey returns the key of the template this instance was produced
// from.
func (in *Instance) TemplateKey() string {
	return in.templateKey
}

// Handler returns the pool handler that owns this instance, or nil when the
// instance was constructed outside pooling.
func (in *Instance) Handler() Handler {
	return in.handler
}

// SetPersistence attaches (or, with nil, detaches) the persistence hook for
// this instance. The capability is an explicit field, checked with a nil
// test on the lifecycle paths.
func (in *Instance) SetPersistence(hook persist.Hook) {
	in.hook = hook
}

// Persistence returns the attached persistence hook, or nil.
func (in *Instance) Persistence() persist.Hook {
	return in.hook
}

// AddObserver registers an observer for this instance's lifecycle events.
func (in *Instance) AddObserver(o Observer) {
	in.observers = append(in.observers, o)
}

// RemoveObserver unregisters a previously added observer.
func (in *Instance) RemoveObserver(o Observer) {
	for i, existing := range in.observers {
		if existing == o {
			in.observers = append(in.observers[:i], in.observers[i+1:]...)
			return
		}
	}
}

// wasSpawned transitions the instance to spawned and notifies observers.
// Callers cancel any pending delayed despawn before invoking this.
func (in *Instance) wasSpawned() {
	in.state = StateSpawned
	for _, o := range in.observers {
		o.OnSpawned(in)
	}
}

// wasDespawned transitions the instance to despawned and notifies observers.
func (in *Instance) wasDespawned() {
	in.state = StateDespawned
	for _, o := range in.observers {
		o.OnDespawned(in)
	}
}

// markDestroyed records the terminal transition. No notification fires;
// destruction is a pool policy decision, not a gameplay event.
func (in *Instance) markDestroyed() {
	in.state = StateDestroyed
}
