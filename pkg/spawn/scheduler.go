package spawn

import (
	"sort"
	"time"
)

type scheduledTask struct {
	id  string
	due time.Duration
	seq uint64
	fn  func()
}

// Scheduler is a cooperative, frame-stepped timer queue. Tasks are keyed so
// a later registration under the same key replaces the earlier one, and keys
// can be cancelled — which is how a respawn implicitly cancels a pending
// delayed despawn.
//
// The scheduler has no goroutines and no clock of its own: time only moves
// when Advance is called from the frame loop.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	tasks map[string]*scheduledTask
}

// NewScheduler creates an empty scheduler at time zero.
func NewScheduler() *Scheduler {
	return &Scheduler{
		tasks: make(map[string]*scheduledTask),
	}
}

// After schedules fn to run once delay has elapsed. A task already
// scheduled under the same id is replaced. A non-positive delay runs on the
// next Advance call.
func (s *Scheduler) After(id string, delay time.Duration, fn func()) {
	s.seq++
	s.tasks[id] = &scheduledTask{
		id:  id,
		due: s.now + delay,
		seq: s.seq,
		fn:  fn,
	}
}

// Cancel removes a pending task. Returns true if one was pending.
func (s *Scheduler) Cancel(id string) bool {
	if _, ok := s.tasks[id]; ok {
		delete(s.tasks, id)
		return true
	}
	return false
}

// Pending reports whether a task is scheduled under id.
func (s *Scheduler) Pending(id string) bool {
	_, ok := s.tasks[id]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	return len(s.tasks)
}

// Advance moves time forward by dt and runs every task that has come due,
// in due-time order (registration order breaks ties). Tasks are removed
// before they run, so a task may re-schedule itself or schedule others;
// tasks scheduled during Advance run on a later Advance even if already due.
func (s *Scheduler) Advance(dt time.Duration) {
	s.now += dt

	var due []*scheduledTask
	for _, task := range s.tasks {
		if task.due <= s.now {
			due = append(due, task)
		}
	}
	if len(due) == 0 {
		return
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	for _, task := range due {
		delete(s.tasks, task.id)
	}
	for _, task := range due {
		task.fn()
	}
}

// Now returns the scheduler's accumulated time.
func (s *Scheduler) Now() time.Duration {
	return s.now
}
