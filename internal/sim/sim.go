// Package sim drives a spawnpool runtime through a synthetic frame loop for
// the demo binary and for exercising the full stack in tests: templates are
// spawned each frame, live out a scheduled lifetime, and despawn back into
// their pools while the memory watcher may force flushes between frames.
package sim

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/spawnpool/pkg/config"
	"github.com/ajitpratap0/spawnpool/pkg/host"
	"github.com/ajitpratap0/spawnpool/pkg/logger"
	"github.com/ajitpratap0/spawnpool/pkg/observability"
	"github.com/ajitpratap0/spawnpool/pkg/performance"
	"github.com/ajitpratap0/spawnpool/pkg/persist"
	"github.com/ajitpratap0/spawnpool/pkg/pool"
	"github.com/ajitpratap0/spawnpool/pkg/spawn"
)

// Config controls the synthetic workload.
type Config struct {
	// Templates is the number of distinct templates to cycle through.
	Templates int
	// SpawnsPerFrame is how many instances are spawned each frame,
	// round-robin across templates.
	SpawnsPerFrame int
	// LifetimeFrames is how many frames an instance lives before its
	// scheduled despawn fires.
	LifetimeFrames int
	// Frames is the total number of frames to run.
	Frames int
	// FrameTime is the simulated per-frame delta.
	FrameTime time.Duration
	// JournalPath, when non-empty, attaches a persistence journal to
	// every spawned instance.
	JournalPath string
}

// DefaultConfig returns a workload that exercises reuse heavily: instances
// live long enough to overlap, short enough to recycle.
func DefaultConfig() Config {
	return Config{
		Templates:      4,
		SpawnsPerFrame: 8,
		LifetimeFrames: 12,
		Frames:         600,
		FrameTime:      16 * time.Millisecond,
	}
}

// Report summarizes a completed run.
type Report struct {
	Frames          int           `json:"frames"`
	Spawns          int           `json:"spawns"`
	FailedSpawns    int           `json:"failed_spawns"`
	Instantiated    int           `json:"instantiated"`
	Destroyed       int           `json:"destroyed"`
	LiveObjects     int           `json:"live_objects"`
	ReuseRate       float64       `json:"reuse_rate"`
	Elapsed         time.Duration `json:"elapsed"`
	SpawnsPerSecond float64       `json:"spawns_per_second"`
}

// Sim owns one synthetic run: a world, a manager over it, and an optional
// memory watcher whose flush signal is consumed between frames.
type Sim struct {
	cfg     Config
	world   *host.World
	mgr     *spawn.Manager
	watcher *performance.MemoryWatcher
	journal *persist.Journal
	log     *zap.Logger
}

// New creates a sim with its own world and manager.
func New(cfg Config, pooling config.PoolingConfig, watcher *performance.MemoryWatcher) (*Sim, error) {
	s := &Sim{
		cfg:     cfg,
		world:   host.NewWorld(),
		watcher: watcher,
		log:     logger.Get().With(zap.String("component", "sim")),
	}
	s.mgr = spawn.NewManager(s.world, spawn.WithPooling(pooling))

	if cfg.JournalPath != "" {
		journal, err := persist.OpenJournal(cfg.JournalPath)
		if err != nil {
			return nil, err
		}
		s.journal = journal
	}
	return s, nil
}

// Manager exposes the sim's manager for test assertions.
func (s *Sim) Manager() *spawn.Manager {
	return s.mgr
}

// World exposes the sim's world for test assertions.
func (s *Sim) World() *host.World {
	return s.world
}

// Run executes the frame loop and returns a throughput report. The context
// is checked between frames; cancellation produces a partial report with a
// nil error.
func (s *Sim) Run(ctx context.Context) (*Report, error) {
	ctx, span := observability.NewSpan(ctx, "sim.run")
	defer span.End()
	span.SetAttribute("frames", s.cfg.Frames)
	span.SetAttribute("templates", s.cfg.Templates)

	refs := make([]*spawn.Ref, s.cfg.Templates)
	for i := range refs {
		refs[i] = spawn.NewRef(pool.GenerateID("sim"))
		if err := refs[i].Retain(s.mgr); err != nil {
			return nil, err
		}
	}
	defer func() {
		for _, ref := range refs {
			if err := ref.Release(); err != nil {
				s.log.Warn("ref release failed", zap.Error(err))
			}
		}
		if s.journal != nil {
			if err := s.journal.Close(); err != nil {
				s.log.Warn("journal close failed", zap.Error(err))
			}
		}
	}()

	report := &Report{}
	lifetime := time.Duration(s.cfg.LifetimeFrames) * s.cfg.FrameTime
	start := time.Now()

	for frame := 0; frame < s.cfg.Frames; frame++ {
		select {
		case <-ctx.Done():
			s.log.Info("run cancelled", zap.Int("frame", frame))
			return s.finish(report, frame, start), nil
		default:
		}

		for i := 0; i < s.cfg.SpawnsPerFrame; i++ {
			ref := refs[(frame*s.cfg.SpawnsPerFrame+i)%len(refs)]
			params := &spawn.Params{
				Position:    host.Vec3{X: float64(frame), Y: float64(i)},
				Persistence: s.hook(),
			}
			inst, err := ref.Spawn(params)
			if err != nil {
				report.FailedSpawns++
				continue
			}
			report.Spawns++
			if err := s.mgr.DespawnAfter(inst, lifetime); err != nil {
				s.log.Warn("schedule despawn failed", zap.Error(err))
			}
		}

		s.mgr.Advance(s.cfg.FrameTime)

		if s.watcher != nil && s.watcher.ConsumeFlushSignal() {
			s.mgr.FlushInactive(spawn.FlushMemoryPressure)
		}
	}

	return s.finish(report, s.cfg.Frames, start), nil
}

func (s *Sim) hook() persist.Hook {
	if s.journal == nil {
		return nil
	}
	return s.journal
}

func (s *Sim) finish(report *Report, frames int, start time.Time) *Report {
	report.Frames = frames
	report.Instantiated = s.world.InstantiatedTotal()
	report.Destroyed = s.world.DestroyedTotal()
	report.LiveObjects = s.world.Count()
	report.Elapsed = time.Since(start)
	if report.Spawns > 0 {
		report.ReuseRate = 1 - float64(report.Instantiated)/float64(report.Spawns)
	}
	if secs := report.Elapsed.Seconds(); secs > 0 {
		report.SpawnsPerSecond = float64(report.Spawns) / secs
	}
	return report
}
