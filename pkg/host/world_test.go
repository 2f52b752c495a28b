package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
)

func TestWorldInstantiate(t *testing.T) {
	w := NewWorld()

	id, err := w.Instantiate("enemy", 0)
	require.NoError(t, err)
	require.NotZero(t, id)

	node := w.Node(id)
	require.NotNil(t, node)
	assert.Equal(t, "enemy", node.TemplateKey)
	assert.False(t, node.Active, "nodes start inactive")
	assert.Equal(t, One, node.Scale)
	assert.Equal(t, 1, w.Count())
	assert.Equal(t, 1, w.InstantiatedTotal())
}

func TestWorldInstantiateUnderParent(t *testing.T) {
	w := NewWorld()

	parent, err := w.Instantiate("container", 0)
	require.NoError(t, err)
	child, err := w.Instantiate("enemy", parent)
	require.NoError(t, err)
	assert.Equal(t, parent, w.Node(child).Parent)

	_, err = w.Instantiate("enemy", ObjectID(999))
	require.Error(t, err)
	assert.True(t, spawnerrors.IsType(err, spawnerrors.ErrorTypeHost))
}

func TestWorldDestroy(t *testing.T) {
	w := NewWorld()

	id, err := w.Instantiate("enemy", 0)
	require.NoError(t, err)
	require.NoError(t, w.Destroy(id))

	assert.Nil(t, w.Node(id))
	assert.Equal(t, 0, w.Count())
	assert.Equal(t, 1, w.DestroyedTotal())

	// Every operation against a freed ID fails loudly.
	err = w.Destroy(id)
	require.Error(t, err)
	assert.True(t, spawnerrors.IsType(err, spawnerrors.ErrorTypeNotFound))
	require.Error(t, w.SetActive(id, true))
	require.Error(t, w.Place(id, Placement{}))
	assert.False(t, w.IsActive(id))
}

func TestWorldSetActive(t *testing.T) {
	w := NewWorld()

	id, err := w.Instantiate("enemy", 0)
	require.NoError(t, err)
	assert.False(t, w.IsActive(id))

	require.NoError(t, w.SetActive(id, true))
	assert.True(t, w.IsActive(id))
	require.NoError(t, w.SetActive(id, false))
	assert.False(t, w.IsActive(id))
}

func TestWorldPlace(t *testing.T) {
	w := NewWorld()

	id, err := w.Instantiate("enemy", 0)
	require.NoError(t, err)

	require.NoError(t, w.Place(id, Placement{
		Position: Vec3{X: 1, Y: 2, Z: 3},
		Rotation: Vec3{Y: 90},
		Scale:    Vec3{X: 2, Y: 2, Z: 2},
		Scene:    "arena",
	}))

	node := w.Node(id)
	assert.Equal(t, Vec3{X: 1, Y: 2, Z: 3}, node.Position)
	assert.Equal(t, Vec3{Y: 90}, node.Rotation)
	assert.Equal(t, Vec3{X: 2, Y: 2, Z: 2}, node.Scale)
	assert.Equal(t, "arena", node.Scene)

	// Zero scale and empty scene leave the previous values in place.
	require.NoError(t, w.Place(id, Placement{Position: Vec3{X: 5}}))
	node = w.Node(id)
	assert.Equal(t, Vec3{X: 5}, node.Position)
	assert.Equal(t, Vec3{X: 2, Y: 2, Z: 2}, node.Scale)
	assert.Equal(t, "arena", node.Scene)
}

func TestWorldPlaceParenting(t *testing.T) {
	w := NewWorld()

	parent, err := w.Instantiate("container", 0)
	require.NoError(t, err)
	id, err := w.Instantiate("enemy", 0)
	require.NoError(t, err)

	require.NoError(t, w.Place(id, Placement{Parent: parent}))
	assert.Equal(t, parent, w.Node(id).Parent)

	// Reparenting under an unknown node fails and keeps the old parent.
	err = w.Place(id, Placement{Parent: ObjectID(999)})
	require.Error(t, err)
	assert.True(t, spawnerrors.IsType(err, spawnerrors.ErrorTypeHost))
	assert.Equal(t, parent, w.Node(id).Parent)

	// World-space placement detaches from the parent.
	require.NoError(t, w.Place(id, Placement{InWorldSpace: true}))
	assert.Zero(t, w.Node(id).Parent)
}
