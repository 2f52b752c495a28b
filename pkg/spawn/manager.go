package spawn

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/spawnpool/pkg/config"
	"github.com/ajitpratap0/spawnpool/pkg/host"
	"github.com/ajitpratap0/spawnpool/pkg/logger"
	"github.com/ajitpratap0/spawnpool/pkg/metrics"
	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
)

// Flush reasons, recorded on the flush metric.
const (
	FlushManual         = "manual"
	FlushMemoryPressure = "memory_pressure"
)

// Manager is the registry routing spawn and despawn calls to pool handlers.
// It maps template keys to handlers, auto-creating (and retaining) a
// DefaultHandler the first time an unregistered template is spawned.
//
// A Manager is an explicitly constructed service: create one per pool scope
// and pass it to whatever needs it. There is no package-level instance.
//
// All Manager methods belong to one logical frame loop; see the package
// documentation for the threading model.
type Manager struct {
	services    host.Services
	handlers    map[string]Handler
	autoCreated []Handler
	scheduler   *Scheduler
	pooling     config.PoolingConfig
	log         *zap.Logger
}

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithPooling sets the pooling policy applied to auto-created handlers.
func WithPooling(cfg config.PoolingConfig) ManagerOption {
	return func(m *Manager) { m.pooling = cfg }
}

// WithLogger replaces the manager's logger.
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) { m.log = log }
}

// NewManager creates a manager on top of the given host services.
func NewManager(services host.Services, opts ...ManagerOption) *Manager {
	m := &Manager{
		services:  services,
		handlers:  make(map[string]Handler),
		scheduler: NewScheduler(),
		log:       logger.Get().With(zap.String("component", "spawn_manager")),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Spawn produces an activated, placed instance of the template, creating and
// retaining a pool handler for it on first use.
func (m *Manager) Spawn(template *Template, params *Params) (*Instance, error) {
	if template == nil {
		return nil, spawnerrors.New(spawnerrors.ErrorTypeValidation, "spawn requires a template")
	}
	handler := m.handlerFor(template)
	return m.spawnWith(handler, params)
}

// SpawnKey spawns from an already-registered handler. Unlike Spawn it never
// auto-creates: an unknown key is a reported error and the registry is left
// untouched.
func (m *Manager) SpawnKey(key string, params *Params) (*Instance, error) {
	handler, ok := m.handlers[key]
	if !ok {
		err := spawnerrors.New(spawnerrors.ErrorTypeNotFound, "no pool handler registered for key").
			WithDetail("key", key)
		m.log.Error("spawn from unknown key", zap.String("key", key))
		metrics.InvalidOpsTotal.WithLabelValues("spawn_key").Inc()
		return nil, err
	}
	return m.spawnWith(handler, params)
}

func (m *Manager) spawnWith(handler Handler, params *Params) (*Instance, error) {
	timer := metrics.NewTimer()

	inst, err := handler.Spawn()
	if err != nil {
		m.log.Error("spawn failed", zap.String("template", handler.Key()), zap.Error(err))
		metrics.SpawnsTotal.WithLabelValues(handler.Key(), "failure").Inc()
		return nil, err
	}
	inst.handler = handler

	if params != nil {
		if err := m.services.Place(inst.Object, params.placement()); err != nil {
			// The instance is live but misplaced. Return it to the pool
			// rather than leaking an active object.
			despawnErr := handler.Despawn(inst)
			if despawnErr != nil {
				m.log.Error("cleanup despawn failed", zap.Error(despawnErr))
			}
			metrics.SpawnsTotal.WithLabelValues(handler.Key(), "failure").Inc()
			return nil, spawnerrors.Wrap(err, spawnerrors.ErrorTypeHost, "placement failed").
				WithDetail("template", handler.Key())
		}
		inst.SetPersistence(params.Persistence)
	}

	// A reused instance may still have a delayed despawn pending from its
	// previous life.
	m.scheduler.Cancel(inst.ID)
	inst.wasSpawned()

	if hook := inst.Persistence(); hook != nil {
		if err := hook.SetupDynamicInstance(inst.ID); err != nil {
			m.log.Error("persistence setup failed",
				zap.String("instance", inst.ID), zap.Error(err))
		}
	}

	metrics.SpawnsTotal.WithLabelValues(handler.Key(), "success").Inc()
	metrics.SpawnLatency.WithLabelValues(handler.Key()).Observe(float64(timer.Stop().Nanoseconds()))
	return inst, nil
}

// Despawn deactivates an instance and returns it to its pool. Despawning an
// instance that is not currently spawned — never spawned, already despawned,
// or destroyed — is a reported no-op: pool state is not touched and no
// lifecycle callbacks fire.
func (m *Manager) Despawn(inst *Instance) error {
	if inst == nil {
		return spawnerrors.New(spawnerrors.ErrorTypeValidation, "despawn requires an instance")
	}
	if !inst.IsSpawned() {
		err := spawnerrors.New(spawnerrors.ErrorTypeInvalidState, "despawn of instance that is not spawned").
			WithDetail("instance", inst.ID).
			WithDetail("state", inst.State().String())
		m.log.Error("invalid despawn ignored",
			zap.String("instance", inst.ID),
			zap.String("state", inst.State().String()))
		metrics.InvalidOpsTotal.WithLabelValues("despawn").Inc()
		return err
	}

	if hook := inst.Persistence(); hook != nil {
		if err := hook.RegisterDestroyed(inst.ID); err != nil {
			m.log.Error("persistence destroy registration failed",
				zap.String("instance", inst.ID), zap.Error(err))
		}
	}

	m.scheduler.Cancel(inst.ID)
	inst.wasDespawned()

	if inst.handler != nil {
		if err := inst.handler.Despawn(inst); err != nil {
			metrics.DespawnsTotal.WithLabelValues(inst.TemplateKey(), "failure").Inc()
			return err
		}
	} else {
		// Constructed outside pooling: free directly.
		inst.markDestroyed()
		if err := m.services.Destroy(inst.Object); err != nil {
			metrics.DespawnsTotal.WithLabelValues(inst.TemplateKey(), "failure").Inc()
			return spawnerrors.Wrap(err, spawnerrors.ErrorTypeHost, "destroy failed").
				WithDetail("instance", inst.ID)
		}
	}

	metrics.DespawnsTotal.WithLabelValues(inst.TemplateKey(), "success").Inc()
	return nil
}

// DespawnAfter schedules a despawn once delay has elapsed on the frame
// clock. A non-positive delay despawns immediately. The pending despawn is
// cancelled implicitly if the instance is spawned again first.
func (m *Manager) DespawnAfter(inst *Instance, delay time.Duration) error {
	if inst == nil {
		return spawnerrors.New(spawnerrors.ErrorTypeValidation, "despawn requires an instance")
	}
	if delay <= 0 {
		return m.Despawn(inst)
	}
	m.scheduler.After(inst.ID, delay, func() {
		if err := m.Despawn(inst); err != nil {
			m.log.Warn("scheduled despawn failed",
				zap.String("instance", inst.ID), zap.Error(err))
		}
	})
	return nil
}

// Advance moves the frame clock forward, running any delayed despawns that
// have come due. Call once per frame.
func (m *Manager) Advance(dt time.Duration) {
	m.scheduler.Advance(dt)
}

// AddHandler registers a handler under a key. Duplicate registration is a
// reported error; the first registration stays authoritative. Manually
// registered handlers are never touched by FlushInactive — their retention
// is the caller's business.
func (m *Manager) AddHandler(key string, handler Handler) error {
	if _, exists := m.handlers[key]; exists {
		err := spawnerrors.New(spawnerrors.ErrorTypeConflict, "pool handler already registered for key").
			WithDetail("key", key)
		m.log.Error("duplicate handler registration ignored", zap.String("key", key))
		metrics.InvalidOpsTotal.WithLabelValues("register").Inc()
		return err
	}
	m.handlers[key] = handler
	metrics.RegisteredHandlers.Set(float64(len(m.handlers)))
	m.log.Info("pool handler registered", zap.String("key", key))
	return nil
}

// RemoveHandler unregisters a handler. An auto-created handler is released
// (clearing its cache when that drops the retain count to zero) and dropped
// from the flush set. Unknown keys are a reported error.
func (m *Manager) RemoveHandler(key string) error {
	handler, ok := m.handlers[key]
	if !ok {
		return spawnerrors.New(spawnerrors.ErrorTypeNotFound, "no pool handler registered for key").
			WithDetail("key", key)
	}
	delete(m.handlers, key)
	metrics.RegisteredHandlers.Set(float64(len(m.handlers)))

	for i, auto := range m.autoCreated {
		if auto == handler {
			m.autoCreated = append(m.autoCreated[:i], m.autoCreated[i+1:]...)
			if err := handler.Release(); err != nil {
				return err
			}
			break
		}
	}
	return nil
}

// FlushInactive destroys the cached inactive instances of every auto-created
// handler while keeping the handlers registered and warm-capable — a soft GC
// for pooled memory. Manually registered handlers are untouched. Instances
// currently spawned are unaffected.
//
// The reason string labels the flush metric; use FlushManual or
// FlushMemoryPressure.
func (m *Manager) FlushInactive(reason string) {
	for _, handler := range m.autoCreated {
		if err := handler.Release(); err != nil {
			m.log.Error("flush release failed", zap.String("key", handler.Key()), zap.Error(err))
			continue
		}
		handler.Retain()
	}
	metrics.InactiveFlushesTotal.WithLabelValues(reason).Inc()
	m.log.Info("inactive instances flushed",
		zap.String("reason", reason),
		zap.Int("handlers", len(m.autoCreated)))
}

// Handler returns the registered handler for a key, if any.
func (m *Manager) Handler(key string) (Handler, bool) {
	h, ok := m.handlers[key]
	return h, ok
}

// Keys returns the registered handler keys.
func (m *Manager) Keys() []string {
	keys := make([]string, 0, len(m.handlers))
	for key := range m.handlers {
		keys = append(keys, key)
	}
	return keys
}

// AutoCreatedCount returns the number of handlers the manager created
// lazily (the set FlushInactive operates on).
func (m *Manager) AutoCreatedCount() int {
	return len(m.autoCreated)
}

// handlerFor returns the handler for a template, lazily creating and
// retaining a DefaultHandler when none is registered.
func (m *Manager) handlerFor(template *Template) Handler {
	if handler, ok := m.handlers[template.Key]; ok {
		return handler
	}

	var opts []HandlerOption
	if m.pooling.DefaultMaxCount > 0 {
		opts = append(opts, WithMaxCount(m.pooling.DefaultMaxCount))
	}
	if m.pooling.PrewarmCount > 0 {
		opts = append(opts, WithPrewarm(m.pooling.PrewarmCount))
	}
	if m.pooling.DisablePooling {
		opts = append(opts, WithPoolingDisabled())
	}

	handler := NewDefaultHandler(template, m.services, opts...)
	handler.Retain()
	m.handlers[template.Key] = handler
	m.autoCreated = append(m.autoCreated, handler)
	metrics.RegisteredHandlers.Set(float64(len(m.handlers)))
	m.log.Info("pool handler auto-created", zap.String("key", template.Key))
	return handler
}
