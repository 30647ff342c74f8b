package loop

import (
	"container/heap"
	"time"
)

// Timer is a one-shot or periodic callback scheduled on a Loop.
type Timer struct {
	l       *Loop
	fn      func()
	when    time.Time
	period  time.Duration
	seq     uint64
	index   int
	stopped bool
}

// AfterFunc runs fn once, d after the loop's current time.
func (l *Loop) AfterFunc(d time.Duration, fn func()) *Timer {
	t := &Timer{l: l, fn: fn, index: -1}
	l.schedule(t, l.now.Add(d))
	return t
}

// Every runs fn each period until the returned timer is stopped.
// A non-positive period is treated as one millisecond.
func (l *Loop) Every(period time.Duration, fn func()) *Timer {
	if period <= 0 {
		period = time.Millisecond
	}
	t := &Timer{l: l, fn: fn, period: period, index: -1}
	l.schedule(t, l.now.Add(period))
	return t
}

// Stop prevents the timer from firing again. It reports whether the timer
// was still scheduled. Stopping a periodic timer from its own callback is allowed.
func (t *Timer) Stop() bool {
	if t == nil || t.stopped {
		return false
	}
	t.stopped = true
	if t.index < 0 {
		return false
	}
	heap.Remove(&t.l.timers, t.index)
	return true
}

// Debouncer coalesces bursts of triggers into one call after a quiet period.
type Debouncer struct {
	l     *Loop
	delay time.Duration
	fn    func()
	timer *Timer
}

// Debounce returns a Debouncer that runs fn once delay has passed without
// another Trigger.
func (l *Loop) Debounce(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{l: l, delay: delay, fn: fn}
}

// Trigger restarts the quiet period.
func (d *Debouncer) Trigger() {
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.l.AfterFunc(d.delay, func() {
		d.timer = nil
		d.fn()
	})
}

// Pending reports whether a call is waiting for the quiet period to end.
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}

// Stop drops a pending call.
func (d *Debouncer) Stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

type timerQueue []*Timer

func (q timerQueue) Len() int { return len(q) }

func (q timerQueue) Less(i, j int) bool {
	if q[i].when.Equal(q[j].when) {
		return q[i].seq < q[j].seq
	}
	return q[i].when.Before(q[j].when)
}

func (q timerQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
	q[i].index = i
	q[j].index = j
}

func (q *timerQueue) Push(x any) {
	t := x.(*Timer)
	t.index = len(*q)
	*q = append(*q, t)
}

func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.index = -1
	*q = old[:n-1]
	return t
}
