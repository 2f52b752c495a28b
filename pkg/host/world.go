package host

import (
	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
)

// Node is one object in the in-memory world.
type Node struct {
	ID          ObjectID
	TemplateKey string
	Active      bool
	Parent      ObjectID
	Scene       string
	Position    Vec3
	Rotation    Vec3
	Scale       Vec3
	freed       bool
}

// World is an in-memory implementation of Services: a flat node table with
// parenting, active flags, and named scenes. It exists for tests, benchmarks,
// and the demo binary; production embeddings supply their own Services.
//
// World is fail-loud: any operation against a freed or unknown ObjectID
// returns a structured error instead of silently succeeding.
type World struct {
	nodes  map[ObjectID]*Node
	nextID ObjectID

	// counters for tests and the demo report
	instantiated int
	destroyed    int
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		nodes: make(map[ObjectID]*Node),
	}
}

// Instantiate creates a new inactive node cloned from the named template.
func (w *World) Instantiate(templateKey string, parent ObjectID) (ObjectID, error) {
	if parent != 0 {
		if _, err := w.lookup(parent); err != nil {
			return 0, spawnerrors.Wrap(err, spawnerrors.ErrorTypeHost, "instantiate under invalid parent")
		}
	}

	w.nextID++
	id := w.nextID
	w.nodes[id] = &Node{
		ID:          id,
		TemplateKey: templateKey,
		Parent:      parent,
		Scale:       One,
	}
	w.instantiated++
	return id, nil
}

// Destroy permanently frees a node.
func (w *World) Destroy(id ObjectID) error {
	node, err := w.lookup(id)
	if err != nil {
		return err
	}
	node.freed = true
	delete(w.nodes, id)
	w.destroyed++
	return nil
}

// SetActive toggles a node's active flag.
func (w *World) SetActive(id ObjectID, active bool) error {
	node, err := w.lookup(id)
	if err != nil {
		return err
	}
	node.Active = active
	return nil
}

// IsActive reports whether a node exists and is active.
func (w *World) IsActive(id ObjectID) bool {
	node, ok := w.nodes[id]
	return ok && node.Active
}

// Place applies placement to a node.
func (w *World) Place(id ObjectID, p Placement) error {
	node, err := w.lookup(id)
	if err != nil {
		return err
	}

	node.Position = p.Position
	node.Rotation = p.Rotation
	if p.Scale != (Vec3{}) {
		node.Scale = p.Scale
	}
	if p.Parent != 0 {
		if _, err := w.lookup(p.Parent); err != nil {
			return spawnerrors.Wrap(err, spawnerrors.ErrorTypeHost, "place under invalid parent")
		}
		node.Parent = p.Parent
	} else if p.InWorldSpace {
		node.Parent = 0
	}
	if p.Scene != "" {
		node.Scene = p.Scene
	}
	return nil
}

// Node returns the node for an ID, or nil when unknown. Intended for tests
// and diagnostics.
func (w *World) Node(id ObjectID) *Node {
	return w.nodes[id]
}

// Count returns the number of live nodes.
func (w *World) Count() int {
	return len(w.nodes)
}

// InstantiatedTotal returns the number of nodes ever created.
func (w *World) InstantiatedTotal() int {
	return w.instantiated
}

// DestroyedTotal returns the number of nodes ever destroyed.
func (w *World) DestroyedTotal() int {
	return w.destroyed
}

func (w *World) lookup(id ObjectID) (*Node, error) {
	node, ok := w.nodes[id]
	if !ok {
		return nil, spawnerrors.New(spawnerrors.ErrorTypeNotFound, "unknown or freed object").
			WithDetail("object", uint64(id))
	}
	return node, nil
}
