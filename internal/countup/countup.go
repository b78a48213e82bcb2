// Package countup animates a displayed score from 0 up to its true value.
//
// The displayed number is cosmetic. It is derived from the real score and
// never written back.
package countup

import (
	"math"
	"sync/atomic"
	"time"

	tea "charm.land/bubbletea/v2"
)

const (
	// Interval is the delay between two animation frames.
	Interval = 16 * time.Millisecond

	// DefaultDuration is how long a full count-up takes.
	DefaultDuration = 1200 * time.Millisecond
)

// Ease is a quadratic ease-out curve. t is clamped to [0, 1].
func Ease(t float64) float64 {
	switch {
	case t <= 0:
		return 0
	case t >= 1:
		return 1
	}
	return 1 - (1-t)*(1-t)
}

// Value returns the displayed number after elapsed out of duration.
func Value(target int, elapsed, duration time.Duration) int {
	if duration <= 0 || elapsed >= duration {
		return target
	}
	t := float64(elapsed) / float64(duration)
	return int(math.Round(Ease(t) * float64(target)))
}

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// TickMsg advances a running Counter. Ticks carry the generation they were
// scheduled for so stale ticks from a cancelled run are dropped.
type TickMsg struct {
	Time time.Time
	id   int
	gen  int
}

// Counter is a Bubble Tea model fragment owning one count-up run at a time.
type Counter struct {
	id       int
	gen      int
	target   int
	value    int
	duration time.Duration
	start    time.Time
	running  bool

	now func() time.Time
}

// New returns an idle counter. A non-positive duration uses DefaultDuration.
func New(duration time.Duration) Counter {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return Counter{
		id:       nextID(),
		duration: duration,
		now:      time.Now,
	}
}

// Start begins a new run towards target. Ticks of any earlier run are
// ignored from now on.
func (c *Counter) Start(target int) tea.Cmd {
	c.gen++
	c.target = target
	c.value = 0
	c.start = c.clock()
	c.running = true
	if target <= 0 {
		c.running = false
		c.value = target
		return nil
	}
	return c.tick()
}

// Cancel stops the current run. The value stays where it was.
func (c *Counter) Cancel() {
	c.gen++
	c.running = false
}

// Finish jumps straight to the target and stops.
func (c *Counter) Finish() {
	c.Cancel()
	c.value = c.target
}

// Update consumes a TickMsg belonging to the current run and schedules the
// next frame until the duration has elapsed.
func (c Counter) Update(msg tea.Msg) (Counter, tea.Cmd) {
	tick, ok := msg.(TickMsg)
	if !ok || tick.id != c.id || tick.gen != c.gen || !c.running {
		return c, nil
	}

	elapsed := tick.Time.Sub(c.start)
	c.value = Value(c.target, elapsed, c.duration)
	if elapsed >= c.duration {
		c.running = false
		return c, nil
	}
	return c, c.tick()
}

// Value returns the number to display.
func (c Counter) Value() int {
	return c.value
}

// Running reports whether a run is in progress.
func (c Counter) Running() bool {
	return c.running
}

func (c Counter) tick() tea.Cmd {
	id, gen := c.id, c.gen
	return tea.Tick(Interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t, id: id, gen: gen}
	})
}

func (c Counter) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}
