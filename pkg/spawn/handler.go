package spawn

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/spawnpool/pkg/host"
	"github.com/ajitpratap0/spawnpool/pkg/logger"
	"github.com/ajitpratap0/spawnpool/pkg/metrics"
	"github.com/ajitpratap0/spawnpool/pkg/pool"
	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
)

// Handler is the policy object deciding how one template's instances are
// created, cached, and destroyed.
//
// Retain and Release reference-count the handler's users: while at least one
// user holds a retain, despawned instances stay cached for reuse; when the
// count drops to zero the cache is cleared and its instances destroyed.
// Instances currently checked out are never affected by a clear — they stay
// valid until their own despawn.
type Handler interface {
	// Key returns the template key this handler serves.
	Key() string
	// Spawn produces an activated instance, reusing a cached one when
	// possible.
	Spawn() (*Instance, error)
	// Despawn deactivates an instance and returns it to the cache, or
	// destroys it when the handler no longer pools.
	Despawn(*Instance) error
	// Retain adds a user keeping the cache warm.
	Retain()
	// Release removes a user. Releasing below zero is a reported no-op
	// error; reaching zero clears the cache.
	Release() error
	// RetainCount returns the current number of users.
	RetainCount() int
	// ShouldPool reports whether despawned instances are cached at all.
	ShouldPool() bool
}

// DefaultHandler is the standard Handler: a Pool of instances bound to a
// single template, backed by the host's instantiation and activation
// services.
type DefaultHandler struct {
	key         string
	services    host.Services
	pool        *pool.Pool[*Instance]
	retainCount int
	shouldPool  bool
	prewarm     int
	log         *zap.Logger
}

// HandlerOption configures a DefaultHandler at construction time.
type HandlerOption func(*DefaultHandler)

// WithMaxCount bounds the handler's free list; despawns beyond the bound
// destroy the instance. Zero means unbounded.
func WithMaxCount(n int) HandlerOption {
	return func(h *DefaultHandler) {
		pool.WithMaxCount[*Instance](n)(h.pool)
	}
}

// WithPrewarm constructs n instances into the cache on the handler's first
// retain, paying instantiation cost up front instead of mid-frame.
func WithPrewarm(n int) HandlerOption {
	return func(h *DefaultHandler) { h.prewarm = n }
}

// WithPoolingDisabled makes every spawn construct a fresh instance and every
// despawn destroy it. Useful when hunting state-leak bugs in reset logic.
func WithPoolingDisabled() HandlerOption {
	return func(h *DefaultHandler) { h.shouldPool = false }
}

// NewDefaultHandler creates a handler for the template backed by the given
// host services.
func NewDefaultHandler(template *Template, services host.Services, opts ...HandlerOption) *DefaultHandler {
	h := &DefaultHandler{
		key:        template.Key,
		services:   services,
		shouldPool: true,
		log: logger.Get().With(
			zap.String("component", "pool_handler"),
			zap.String("template", template.Key),
		),
	}
	h.pool = pool.New(h.instantiate,
		pool.WithOnDestroy[*Instance](h.destroy),
	)
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Key returns the template key this handler serves.
func (h *DefaultHandler) Key() string {
	return h.key
}

// ShouldPool reports whether despawned instances are cached.
func (h *DefaultHandler) ShouldPool() bool {
	return h.shouldPool
}

// RetainCount returns the current number of users.
func (h *DefaultHandler) RetainCount() int {
	return h.retainCount
}

// FreeCount returns the number of cached inactive instances.
func (h *DefaultHandler) FreeCount() int {
	return h.pool.Len()
}

// instantiate constructs a new backing instance. Runs once per instance;
// per-cycle reset logic belongs in Spawn/Despawn.
func (h *DefaultHandler) instantiate() (*Instance, error) {
	obj, err := h.services.Instantiate(h.key, 0)
	if err != nil {
		return nil, spawnerrors.Wrap(err, spawnerrors.ErrorTypeHost, "instantiation failed").
			WithDetail("template", h.key)
	}
	return &Instance{
		ID:          uuid.NewString(),
		Object:      obj,
		templateKey: h.key,
	}, nil
}

// destroy permanently frees an instance's backing object.
func (h *DefaultHandler) destroy(inst *Instance) {
	inst.markDestroyed()
	if err := h.services.Destroy(inst.Object); err != nil {
		h.log.Error("failed to destroy instance object",
			zap.String("instance", inst.ID), zap.Error(err))
	}
}

// Spawn produces an activated instance. With pooling enabled the most
// recently despawned instance is reused; otherwise a fresh one is
// constructed.
func (h *DefaultHandler) Spawn() (*Instance, error) {
	var inst *Instance
	var err error

	if h.shouldPool {
		inst, err = h.pool.Get()
	} else {
		inst, err = h.instantiate()
	}
	if err != nil {
		return nil, err
	}

	if err := h.services.SetActive(inst.Object, true); err != nil {
		return nil, spawnerrors.Wrap(err, spawnerrors.ErrorTypeHost, "activation failed").
			WithDetail("template", h.key).
			WithDetail("instance", inst.ID)
	}

	metrics.PoolFreeInstances.WithLabelValues(h.key).Set(float64(h.pool.Len()))
	return inst, nil
}

// Despawn deactivates an instance and caches it for reuse while the handler
// is retained and pooling; otherwise the instance is destroyed.
func (h *DefaultHandler) Despawn(inst *Instance) error {
	// Direct handler use skips the manager's state bookkeeping.
	if inst.state == StateSpawned {
		inst.wasDespawned()
	}

	if err := h.services.SetActive(inst.Object, false); err != nil {
		h.log.Warn("deactivation failed, destroying instance",
			zap.String("instance", inst.ID), zap.Error(err))
		h.destroy(inst)
		return spawnerrors.Wrap(err, spawnerrors.ErrorTypeHost, "deactivation failed").
			WithDetail("template", h.key)
	}

	if h.shouldPool && h.retainCount > 0 {
		h.pool.Release(inst)
	} else {
		h.destroy(inst)
	}

	metrics.PoolFreeInstances.WithLabelValues(h.key).Set(float64(h.pool.Len()))
	return nil
}

// Retain adds a user keeping the cache warm. The first retain triggers
// prewarming when configured.
func (h *DefaultHandler) Retain() {
	h.retainCount++
	metrics.HandlerRetainCount.WithLabelValues(h.key).Set(float64(h.retainCount))

	if h.retainCount == 1 && h.prewarm > 0 && h.shouldPool {
		h.prewarmPool()
	}
}

func (h *DefaultHandler) prewarmPool() {
	for i := h.pool.Len(); i < h.prewarm; i++ {
		inst, err := h.instantiate()
		if err != nil {
			h.log.Error("prewarm instantiation failed",
				zap.Int("constructed", i), zap.Error(err))
			return
		}
		if err := h.services.SetActive(inst.Object, false); err != nil {
			h.log.Error("prewarm deactivation failed", zap.Error(err))
			h.destroy(inst)
			return
		}
		h.pool.Release(inst)
	}
	metrics.PoolFreeInstances.WithLabelValues(h.key).Set(float64(h.pool.Len()))
}

// Release removes a user. When the count reaches zero every cached inactive
// instance is destroyed; checked-out instances remain valid until their own
// despawn. Releasing an already-zero handler is a reported no-op.
func (h *DefaultHandler) Release() error {
	if h.retainCount <= 0 {
		err := spawnerrors.New(spawnerrors.ErrorTypeInvalidState, "pool handler released more times than retained").
			WithDetail("template", h.key)
		h.log.Error("over-release ignored", zap.Error(err))
		metrics.InvalidOpsTotal.WithLabelValues("release").Inc()
		return err
	}

	h.retainCount--
	metrics.HandlerRetainCount.WithLabelValues(h.key).Set(float64(h.retainCount))

	if h.retainCount == 0 {
		h.pool.Clear()
		metrics.PoolFreeInstances.WithLabelValues(h.key).Set(0)
	}
	return nil
}
