package spawn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/spawnpool/pkg/config"
	"github.com/ajitpratap0/spawnpool/pkg/host"
	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
	"github.com/ajitpratap0/spawnpool/pkg/testutil"
)

func newTestManager(t *testing.T, opts ...ManagerOption) (*Manager, *host.World) {
	t.Helper()
	world := host.NewWorld()
	opts = append([]ManagerOption{WithLogger(testutil.TestLogger(t))}, opts...)
	return NewManager(world, opts...), world
}

func TestSpawnAutoCreatesRetainedHandler(t *testing.T) {
	m, world := newTestManager(t)
	enemy := NewTemplate("enemy")

	inst, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.NotNil(t, inst)

	assert.True(t, inst.IsSpawned())
	assert.Equal(t, "enemy", inst.TemplateKey())
	assert.True(t, world.IsActive(inst.Object))

	handler, ok := m.Handler("enemy")
	require.True(t, ok)
	assert.Equal(t, 1, handler.RetainCount())
	assert.Equal(t, 1, m.AutoCreatedCount())
}

func TestSpawnAppliesParams(t *testing.T) {
	m, world := newTestManager(t)

	parentID, err := world.Instantiate("container", 0)
	require.NoError(t, err)

	inst, err := m.Spawn(NewTemplate("enemy"), &Params{
		Position: host.Vec3{X: 1, Y: 2, Z: 3},
		Scale:    host.Vec3{X: 2, Y: 2, Z: 2},
		Parent:   parentID,
		Scene:    "arena",
	})
	require.NoError(t, err)

	node := world.Node(inst.Object)
	require.NotNil(t, node)
	assert.Equal(t, host.Vec3{X: 1, Y: 2, Z: 3}, node.Position)
	assert.Equal(t, host.Vec3{X: 2, Y: 2, Z: 2}, node.Scale)
	assert.Equal(t, parentID, node.Parent)
	assert.Equal(t, "arena", node.Scene)
}

func TestSpawnDespawnSpawnReusesInstance(t *testing.T) {
	m, _ := newTestManager(t)
	enemy := NewTemplate("enemy")

	a, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.NoError(t, m.Despawn(a))
	assert.True(t, a.IsDespawned())

	b, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.True(t, b.IsSpawned())
}

func TestDespawnOfNotSpawnedIsReportedNoOp(t *testing.T) {
	m, _ := newTestManager(t)
	enemy := NewTemplate("enemy")

	inst, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.NoError(t, m.Despawn(inst))

	handler, _ := m.Handler("enemy")
	freeBefore := handler.(*DefaultHandler).FreeCount()

	err = m.Despawn(inst)
	require.Error(t, err)
	assert.True(t, spawnerrors.IsType(err, spawnerrors.ErrorTypeInvalidState))
	assert.Equal(t, freeBefore, handler.(*DefaultHandler).FreeCount(), "pool state untouched")
	assert.True(t, inst.IsDespawned())
}

func TestDespawnNeverSpawnedInstance(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.Despawn(&Instance{ID: "ghost"})
	require.Error(t, err)
	assert.True(t, spawnerrors.IsType(err, spawnerrors.ErrorTypeInvalidState))
}

func TestSpawnKeyRequiresRegistration(t *testing.T) {
	m, _ := newTestManager(t)

	inst, err := m.SpawnKey("unregistered-key", nil)
	assert.Nil(t, inst)
	require.Error(t, err)
	assert.True(t, spawnerrors.IsType(err, spawnerrors.ErrorTypeNotFound))
	assert.Empty(t, m.Keys(), "registry unchanged")
}

func TestSpawnKeyUsesRegisteredHandler(t *testing.T) {
	m, world := newTestManager(t)

	h := NewDefaultHandler(NewTemplate("boss"), world)
	h.Retain()
	require.NoError(t, m.AddHandler("boss", h))

	inst, err := m.SpawnKey("boss", nil)
	require.NoError(t, err)
	assert.Equal(t, "boss", inst.TemplateKey())
}

func TestAddHandlerDuplicateFirstWins(t *testing.T) {
	m, world := newTestManager(t)

	first := NewDefaultHandler(NewTemplate("enemy"), world)
	second := NewDefaultHandler(NewTemplate("enemy"), world)

	require.NoError(t, m.AddHandler("enemy", first))
	err := m.AddHandler("enemy", second)
	require.Error(t, err)
	assert.True(t, spawnerrors.IsType(err, spawnerrors.ErrorTypeConflict))

	registered, ok := m.Handler("enemy")
	require.True(t, ok)
	assert.Same(t, Handler(first), registered)
}

func TestDespawnAfterFiresOnAdvance(t *testing.T) {
	m, _ := newTestManager(t)

	inst, err := m.Spawn(NewTemplate("enemy"), nil)
	require.NoError(t, err)
	require.NoError(t, m.DespawnAfter(inst, 50*time.Millisecond))

	m.Advance(30 * time.Millisecond)
	assert.True(t, inst.IsSpawned())

	m.Advance(30 * time.Millisecond)
	assert.True(t, inst.IsDespawned())
}

func TestRespawnCancelsPendingDespawn(t *testing.T) {
	m, _ := newTestManager(t)
	enemy := NewTemplate("enemy")

	a, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.NoError(t, m.DespawnAfter(a, 50*time.Millisecond))
	require.NoError(t, m.Despawn(a))

	// The reused instance must not inherit the old timer.
	b, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.Same(t, a, b)

	m.Advance(time.Second)
	assert.True(t, b.IsSpawned(), "stale delayed despawn must not fire")
}

func TestDespawnAfterNonPositiveDelayIsImmediate(t *testing.T) {
	m, _ := newTestManager(t)

	inst, err := m.Spawn(NewTemplate("enemy"), nil)
	require.NoError(t, err)
	require.NoError(t, m.DespawnAfter(inst, 0))
	assert.True(t, inst.IsDespawned())
}

func TestFlushInactiveDestroysCachedOnly(t *testing.T) {
	m, world := newTestManager(t)
	enemy := NewTemplate("enemy")

	live, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	cached, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.NoError(t, m.Despawn(cached))

	m.FlushInactive(FlushManual)

	assert.Equal(t, StateDestroyed, cached.State())
	assert.True(t, live.IsSpawned())
	assert.Equal(t, 1, world.Count())

	// Handler stays registered and usable after the flush.
	handler, ok := m.Handler("enemy")
	require.True(t, ok)
	assert.Equal(t, 1, handler.RetainCount())

	again, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	assert.NotNil(t, again)
}

func TestFlushInactiveSkipsManualHandlers(t *testing.T) {
	m, world := newTestManager(t)

	manual := NewDefaultHandler(NewTemplate("boss"), world)
	manual.Retain()
	require.NoError(t, m.AddHandler("boss", manual))

	inst, err := m.SpawnKey("boss", nil)
	require.NoError(t, err)
	require.NoError(t, m.Despawn(inst))
	require.Equal(t, 1, manual.FreeCount())

	m.FlushInactive(FlushManual)

	assert.Equal(t, 1, manual.FreeCount(), "manually registered handler untouched")
	assert.Equal(t, 1, manual.RetainCount())
}

func TestRemoveHandler(t *testing.T) {
	m, _ := newTestManager(t)
	enemy := NewTemplate("enemy")

	inst, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.NoError(t, m.Despawn(inst))

	require.NoError(t, m.RemoveHandler("enemy"))
	assert.Equal(t, StateDestroyed, inst.State(), "auto-created handler released on removal")
	assert.Equal(t, 0, m.AutoCreatedCount())

	err = m.RemoveHandler("enemy")
	require.Error(t, err)
	assert.True(t, spawnerrors.IsType(err, spawnerrors.ErrorTypeNotFound))
}

func TestManagerPoolingConfig(t *testing.T) {
	m, world := newTestManager(t, WithPooling(config.PoolingConfig{
		DefaultMaxCount: 1,
		PrewarmCount:    1,
	}))
	enemy := NewTemplate("enemy")

	a, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	// The prewarmed instance satisfies the first spawn without a fresh
	// instantiation.
	assert.Equal(t, 1, world.InstantiatedTotal())

	b, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.NoError(t, m.Despawn(a))
	require.NoError(t, m.Despawn(b))

	// DefaultMaxCount of one: the second despawn overflows and destroys.
	handler, _ := m.Handler("enemy")
	assert.Equal(t, 1, handler.(*DefaultHandler).FreeCount())
	assert.Equal(t, StateDestroyed, b.State())
}

type recordingObserver struct {
	spawned, despawned int
}

func (r *recordingObserver) OnSpawned(*Instance)   { r.spawned++ }
func (r *recordingObserver) OnDespawned(*Instance) { r.despawned++ }

func TestObserversNotified(t *testing.T) {
	m, _ := newTestManager(t)
	enemy := NewTemplate("enemy")

	inst, err := m.Spawn(enemy, nil)
	require.NoError(t, err)

	obs := &recordingObserver{}
	inst.AddObserver(obs)

	require.NoError(t, m.Despawn(inst))
	assert.Equal(t, 1, obs.despawned)

	again, err := m.Spawn(enemy, nil)
	require.NoError(t, err)
	require.Same(t, inst, again)
	assert.Equal(t, 1, obs.spawned)

	inst.RemoveObserver(obs)
	require.NoError(t, m.Despawn(inst))
	assert.Equal(t, 1, obs.despawned, "removed observer not notified")
}

type countingHook struct {
	setups    []string
	destroyed []string
}

func (h *countingHook) SetupDynamicInstance(id string) error {
	h.setups = append(h.setups, id)
	return nil
}

func (h *countingHook) RegisterDestroyed(id string) error {
	h.destroyed = append(h.destroyed, id)
	return nil
}

func TestPersistenceHookInvoked(t *testing.T) {
	m, _ := newTestManager(t)
	hook := &countingHook{}

	inst, err := m.Spawn(NewTemplate("enemy"), &Params{Persistence: hook})
	require.NoError(t, err)
	require.Equal(t, []string{inst.ID}, hook.setups)

	require.NoError(t, m.Despawn(inst))
	assert.Equal(t, []string{inst.ID}, hook.destroyed)
}
