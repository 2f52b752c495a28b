// Package pool provides the free-list object cache that backs the spawnpool
// runtime. Unlike sync.Pool, a Pool[T] here is fully deterministic: released
// objects land on a LIFO free list, the most recently released object is the
// first one handed back out, and the free list can be bounded, cleared, or
// inspected at any time. That determinism is what the spawn lifecycle is
// built on — a caller that despawns an instance and immediately spawns again
// is guaranteed to receive the same underlying object.
//
// The package provides:
//   - Generic type-safe object caching with Pool[T]
//   - LIFO reuse with optional max-count eviction
//   - Get/Release/Destroy lifecycle callbacks
//   - Atomic statistics for monitoring
//
// Example usage:
//
//	p := pool.New(
//	    func() (*Projectile, error) { return &Projectile{}, nil },
//	    pool.WithOnRelease(func(pr *Projectile) { pr.Reset() }),
//	    pool.WithMaxCount[*Projectile](64),
//	)
//	obj, err := p.Get()
//	if err != nil {
//	    return err
//	}
//	defer p.Release(obj)
package pool

import (
	"sync/atomic"

	"github.com/ajitpratap0/spawnpool/pkg/spawnerrors"
)

// Pool is a deterministic free-list cache for objects of type T.
//
// Objects move between two conceptual sets: checked out (owned by the
// caller) and free (cached, awaiting reuse). Get moves an object from free
// to checked out, creating one when the free list is empty. Release moves
// it back, or destroys it when the free list is already at maxCount.
//
// Pool assumes the single-threaded, frame-driven ownership model used
// throughout spawnpool: all operations on one Pool happen on one logical
// goroutine. Statistics counters are atomic so monitoring can read them
// from elsewhere.
type Pool[T comparable] struct {
	free      []T
	create    func() (T, error)
	onGet     func(T)
	onRelease func(T)
	onDestroy func(T)
	maxCount  int

	stats struct {
		created   int64
		reused    int64
		destroyed int64
	}
}

// Option configures a Pool at construction time.
type Option[T comparable] func(*Pool[T])

// WithOnGet sets a callback invoked on every object handed out by Get,
// whether freshly created or reused from the free list.
func WithOnGet[T comparable](fn func(T)) Option[T] {
	return func(p *Pool[T]) { p.onGet = fn }
}

// WithOnRelease sets a callback invoked on every object passed to Release,
// before the object is cached or destroyed.
func WithOnRelease[T comparable](fn func(T)) Option[T] {
	return func(p *Pool[T]) { p.onRelease = fn }
}

// WithOnDestroy sets a callback invoked when the pool permanently discards
// an object: max-count eviction on Release, or Clear.
func WithOnDestroy[T comparable](fn func(T)) Option[T] {
	return func(p *Pool[T]) { p.onDestroy = fn }
}

// WithMaxCount bounds the free list. Releases beyond the bound destroy the
// object instead of caching it. Zero (the default) means unbounded.
func WithMaxCount[T comparable](n int) Option[T] {
	return func(p *Pool[T]) { p.maxCount = n }
}

// New creates a pool around a factory function. The factory is called
// whenever Get finds the free list empty; it must return a usable object or
// an error. A factory that returns the zero value with a nil error is
// treated as a factory failure — the pool fails fast rather than caching
// and recycling invalid objects.
func New[T comparable](create func() (T, error), opts ...Option[T]) *Pool[T] {
	p := &Pool[T]{create: create}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Get returns an object from the pool. If the free list is non-empty the
// most recently released object is returned (LIFO). Otherwise the factory
// is invoked. The onGet callback runs on every successful return path.
func (p *Pool[T]) Get() (T, error) {
	var zero T
	if n := len(p.free); n > 0 {
		obj := p.free[n-1]
		p.free[n-1] = zero
		p.free = p.free[:n-1]
		atomic.AddInt64(&p.stats.reused, 1)
		if p.onGet != nil {
			p.onGet(obj)
		}
		return obj, nil
	}

	obj, err := p.create()
	if err != nil {
		return zero, spawnerrors.Wrap(err, spawnerrors.ErrorTypeInternal, "pool factory failed")
	}
	if obj == zero {
		return zero, spawnerrors.New(spawnerrors.ErrorTypeInternal, "pool factory returned zero value")
	}
	atomic.AddInt64(&p.stats.created, 1)
	if p.onGet != nil {
		p.onGet(obj)
	}
	return obj, nil
}

// Release returns an object to the pool. The onRelease callback always runs
// first. If the free list is already at maxCount the object is destroyed
// instead of cached; this is eviction policy, not an error.
func (p *Pool[T]) Release(obj T) {
	if p.onRelease != nil {
		p.onRelease(obj)
	}
	if p.maxCount > 0 && len(p.free) >= p.maxCount {
		p.destroy(obj)
		return
	}
	p.free = append(p.free, obj)
}

// Clear destroys every cached object and empties the free list. Objects
// currently checked out are unaffected and may still be released afterward.
func (p *Pool[T]) Clear() {
	for _, obj := range p.free {
		p.destroy(obj)
	}
	p.free = p.free[:0]
}

// Remove drops an object from the free list without invoking any callback.
// It is an escape hatch for callers that take over an object's lifetime
// manually. Returns true if the object was cached.
func (p *Pool[T]) Remove(obj T) bool {
	var zero T
	for i, cached := range p.free {
		if cached == obj {
			n := len(p.free)
			copy(p.free[i:], p.free[i+1:])
			p.free[n-1] = zero
			p.free = p.free[:n-1]
			return true
		}
	}
	return false
}

// Len returns the number of objects currently cached on the free list.
func (p *Pool[T]) Len() int {
	return len(p.free)
}

// MaxCount returns the free-list bound, zero meaning unbounded.
func (p *Pool[T]) MaxCount() int {
	return p.maxCount
}

func (p *Pool[T]) destroy(obj T) {
	atomic.AddInt64(&p.stats.destroyed, 1)
	if p.onDestroy != nil {
		p.onDestroy(obj)
	}
}

// Stats reports lifetime counters for the pool: objects created by the
// factory, objects served from the free list, and objects destroyed by
// eviction or Clear.
func (p *Pool[T]) Stats() (created, reused, destroyed int64) {
	return atomic.LoadInt64(&p.stats.created),
		atomic.LoadInt64(&p.stats.reused),
		atomic.LoadInt64(&p.stats.destroyed)
}
