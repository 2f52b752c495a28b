// Package performance provides resource monitoring for spawnpool. Pools
// trade memory for instantiation cost, so a long-lived process needs a
// signal for when that trade has gone bad; the MemoryWatcher samples process
// and system memory via gopsutil and flags when cached inactive instances
// should be flushed.
package performance

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/ajitpratap0/spawnpool/pkg/logger"
)

// ResourceUsage contains a point-in-time memory sample.
type ResourceUsage struct {
	MemoryRSS             uint64
	MemoryVMS             uint64
	SystemMemoryPercent   float64
	SystemMemoryAvailable uint64
}

// MemoryWatcher samples memory usage on an interval and raises a flush flag
// when usage crosses the configured thresholds.
//
// The watcher never mutates pool state itself: pool operations belong to the
// frame loop, so the watcher only sets a flag that the frame loop consumes
// via ConsumeFlushSignal. This keeps the single-threaded ownership model of
// the pools intact while the sampling happens off-thread.
type MemoryWatcher struct {
	process          *process.Process
	usedPercentLimit float64
	rssLimit         uint64
	interval         time.Duration
	flushPending     atomic.Bool
	stopCh           chan struct{}
	stopOnce         sync.Once
	log              *zap.Logger
}

// NewMemoryWatcher creates a watcher. usedPercentLimit triggers on system
// memory usage percentage; rssLimit (bytes, zero disables) triggers on
// process resident set size.
func NewMemoryWatcher(usedPercentLimit float64, rssLimit uint64, interval time.Duration) *MemoryWatcher {
	proc, _ := process.NewProcess(int32(os.Getpid()))

	return &MemoryWatcher{
		process:          proc,
		usedPercentLimit: usedPercentLimit,
		rssLimit:         rssLimit,
		interval:         interval,
		stopCh:           make(chan struct{}),
		log:              logger.Get().With(zap.String("component", "memory_watcher")),
	}
}

// Start begins background sampling. Stop must be called to release the
// sampling goroutine.
func (w *MemoryWatcher) Start() {
	go w.sampleLoop()
}

// Stop halts background sampling.
func (w *MemoryWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
	})
}

func (w *MemoryWatcher) sampleLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			usage, err := w.Sample()
			if err != nil {
				w.log.Warn("memory sample failed", zap.Error(err))
				continue
			}
			if w.overThreshold(usage) {
				if w.flushPending.CompareAndSwap(false, true) {
					w.log.Info("memory pressure detected, requesting inactive flush",
						zap.Float64("system_used_percent", usage.SystemMemoryPercent),
						zap.Uint64("rss_bytes", usage.MemoryRSS))
				}
			}
		}
	}
}

// Sample takes a point-in-time memory reading.
func (w *MemoryWatcher) Sample() (*ResourceUsage, error) {
	usage := &ResourceUsage{}

	if w.process != nil {
		if memInfo, err := w.process.MemoryInfo(); err == nil {
			usage.MemoryRSS = memInfo.RSS
			usage.MemoryVMS = memInfo.VMS
		}
	}

	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return nil, err
	}
	usage.SystemMemoryPercent = vmStat.UsedPercent
	usage.SystemMemoryAvailable = vmStat.Available

	return usage, nil
}

func (w *MemoryWatcher) overThreshold(usage *ResourceUsage) bool {
	if w.usedPercentLimit > 0 && usage.SystemMemoryPercent >= w.usedPercentLimit {
		return true
	}
	if w.rssLimit > 0 && usage.MemoryRSS >= w.rssLimit {
		return true
	}
	return false
}

// ConsumeFlushSignal reports whether memory pressure has been detected since
// the last call, clearing the flag. The frame loop calls this once per frame
// and flushes inactive instances when it returns true.
func (w *MemoryWatcher) ConsumeFlushSignal() bool {
	return w.flushPending.Swap(false)
}

// RequestFlush raises the flush flag manually. Used by tests and by hosts
// that have their own pressure signal.
func (w *MemoryWatcher) RequestFlush() {
	w.flushPending.Store(true)
}
