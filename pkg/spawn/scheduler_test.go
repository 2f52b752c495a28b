package spawn

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsDueTasks(t *testing.T) {
	s := NewScheduler()
	var fired []string

	s.After("a", 30*time.Millisecond, func() { fired = append(fired, "a") })
	s.After("b", 10*time.Millisecond, func() { fired = append(fired, "b") })

	s.Advance(5 * time.Millisecond)
	assert.Empty(t, fired)

	s.Advance(10 * time.Millisecond)
	assert.Equal(t, []string{"b"}, fired)
	assert.Equal(t, 1, s.Len())

	s.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"b", "a"}, fired)
	assert.Equal(t, 0, s.Len())
}

func TestSchedulerDueOrder(t *testing.T) {
	s := NewScheduler()
	var fired []string

	s.After("late", 20*time.Millisecond, func() { fired = append(fired, "late") })
	s.After("early", 10*time.Millisecond, func() { fired = append(fired, "early") })
	s.After("tie", 20*time.Millisecond, func() { fired = append(fired, "tie") })

	s.Advance(50 * time.Millisecond)
	assert.Equal(t, []string{"early", "late", "tie"}, fired)
}

func TestSchedulerCancel(t *testing.T) {
	s := NewScheduler()
	fired := false

	s.After("x", 10*time.Millisecond, func() { fired = true })
	assert.True(t, s.Pending("x"))
	assert.True(t, s.Cancel("x"))
	assert.False(t, s.Pending("x"))
	assert.False(t, s.Cancel("x"))

	s.Advance(time.Second)
	assert.False(t, fired)
}

func TestSchedulerReplaceSameID(t *testing.T) {
	s := NewScheduler()
	var fired []string

	s.After("x", 10*time.Millisecond, func() { fired = append(fired, "first") })
	s.After("x", 30*time.Millisecond, func() { fired = append(fired, "second") })

	s.Advance(15 * time.Millisecond)
	assert.Empty(t, fired, "replaced task keeps the later deadline")

	s.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"second"}, fired)
}

func TestSchedulerTasksScheduledDuringAdvanceDeferred(t *testing.T) {
	s := NewScheduler()
	var fired []string

	s.After("outer", 10*time.Millisecond, func() {
		fired = append(fired, "outer")
		s.After("inner", 0, func() { fired = append(fired, "inner") })
	})

	s.Advance(20 * time.Millisecond)
	assert.Equal(t, []string{"outer"}, fired)

	s.Advance(time.Millisecond)
	assert.Equal(t, []string{"outer", "inner"}, fired)
}

func TestSchedulerNonPositiveDelay(t *testing.T) {
	s := NewScheduler()
	fired := false

	s.After("x", 0, func() { fired = true })
	s.Advance(time.Nanosecond)
	assert.True(t, fired)
}
