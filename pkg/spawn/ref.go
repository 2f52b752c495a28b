package spawn

import (
	"github.com/goccy/go-json"

	"github.com/ajitpratap0/spawnpool/pkg/metrics"
	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
)

// Ref is a serializable reference to a template: just the key on the wire,
// plus retain bookkeeping in memory so the template's pool can be kept warm
// for as long as anything holds the reference.
//
// A Ref must be retained before it can spawn:
//
//	ref := spawn.NewRef("enemy")
//	if err := ref.Retain(mgr); err != nil { ... }
//	defer ref.Release()
//
//	inst, err := ref.Spawn(nil)
//
// Retain resolves the handler once and caches it; later retains reuse the
// cached resolution.
type Ref struct {
	// Key is the referenced template's key.
	Key string

	manager  *Manager
	handler  Handler
	resolved bool
	retains  int
}

// NewRef creates a reference to the template with the given key.
func NewRef(key string) *Ref {
	return &Ref{Key: key}
}

// Retain resolves the template's shared handler through the manager
// (creating it if absent) and adds a user keeping its cache warm. The first
// Retain binds the ref to the manager; the resolution is cached for
// subsequent calls.
func (r *Ref) Retain(m *Manager) error {
	if r.Key == "" {
		return spawnerrors.New(spawnerrors.ErrorTypeValidation, "spawn ref has no template key")
	}
	if !r.resolved {
		r.manager = m
		r.handler = m.handlerFor(NewTemplate(r.Key))
		r.resolved = true
	}
	r.handler.Retain()
	r.retains++
	return nil
}

// Spawn produces an instance from the referenced template. Spawning through
// an un-retained ref is a reported error returning no instance.
func (r *Ref) Spawn(params *Params) (*Instance, error) {
	if r.retains == 0 || r.handler == nil {
		err := spawnerrors.New(spawnerrors.ErrorTypeInvalidState, "spawn ref used without retain").
			WithDetail("key", r.Key)
		metrics.InvalidOpsTotal.WithLabelValues("spawn_ref").Inc()
		return nil, err
	}
	return r.manager.spawnWith(r.handler, params)
}

// Release removes this ref's hold on the handler's cache. Releasing a
// never-retained or already-released ref is a safe no-op; the handler's own
// over-release protection covers deeper imbalances.
func (r *Ref) Release() error {
	if r.retains == 0 {
		return nil
	}
	r.retains--
	return r.handler.Release()
}

// Retained reports whether the ref currently holds at least one retain.
func (r *Ref) Retained() bool {
	return r.retains > 0
}

// MarshalJSON serializes the ref as its bare template key.
func (r *Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Key)
}

// UnmarshalJSON restores a ref from its template key. The restored ref is
// unresolved; Retain must be called before spawning.
func (r *Ref) UnmarshalJSON(data []byte) error {
	var key string
	if err := json.Unmarshal(data, &key); err != nil {
		return err
	}
	*r = Ref{Key: key}
	return nil
}
