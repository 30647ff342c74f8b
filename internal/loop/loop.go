// Package loop provides a cooperative single-goroutine scheduler for frame
// callbacks, timers and continuations posted from background goroutines.
//
// Only Post is safe for concurrent use. Every other method must be called
// from the goroutine that drives Advance and Frame.
package loop

import (
	"container/heap"
	"sync"
	"time"
)

// FrameFunc is called once for a requested frame with the frame timestamp.
type FrameFunc func(now time.Time)

// FrameID identifies a requested frame callback. The zero value is never issued.
type FrameID uint64

// Loop schedules frame callbacks, timers and posted work.
type Loop struct {
	mu     sync.Mutex
	posted []func()

	now time.Time

	nextID  FrameID
	pending map[FrameID]FrameFunc
	order   []FrameID
	batch   map[FrameID]FrameFunc // frame callbacks of the running Frame call

	timers timerQueue
	seq    uint64
}

// New returns an empty loop whose clock starts at the current time.
func New() *Loop {
	return NewAt(time.Now())
}

// NewAt returns an empty loop whose clock starts at start.
func NewAt(start time.Time) *Loop {
	return &Loop{
		now:     start,
		pending: make(map[FrameID]FrameFunc),
	}
}

// Now returns the time of the last Advance or Frame call.
func (l *Loop) Now() time.Time {
	return l.now
}

// RequestFrame schedules fn for the next Frame call. A callback requested
// while a frame is running waits for the following frame.
func (l *Loop) RequestFrame(fn FrameFunc) FrameID {
	l.nextID++
	id := l.nextID
	l.pending[id] = fn
	l.order = append(l.order, id)
	return id
}

// CancelFrame removes a requested callback. It reports whether the callback
// was still waiting to run.
func (l *Loop) CancelFrame(id FrameID) bool {
	if _, ok := l.pending[id]; ok {
		delete(l.pending, id)
		return true
	}
	if _, ok := l.batch[id]; ok {
		delete(l.batch, id)
		return true
	}
	return false
}

// PendingFrames returns the number of callbacks waiting for the next frame.
func (l *Loop) PendingFrames() int {
	return len(l.pending)
}

// Frame runs every callback requested before the call, in request order,
// and returns how many ran.
func (l *Loop) Frame(now time.Time) int {
	l.setNow(now)

	l.batch = l.pending
	order := l.order
	l.pending = make(map[FrameID]FrameFunc)
	l.order = nil

	ran := 0
	for _, id := range order {
		fn, ok := l.batch[id]
		if !ok {
			continue
		}
		delete(l.batch, id)
		fn(now)
		ran++
	}
	l.batch = nil
	return ran
}

// Post queues fn to run on the loop goroutine during the next Advance.
// It is safe to call from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.posted = append(l.posted, fn)
	l.mu.Unlock()
}

// Advance moves the clock to now, runs posted work and then every timer
// that is due. Timers created while advancing wait for the next call.
func (l *Loop) Advance(now time.Time) {
	l.setNow(now)

	l.mu.Lock()
	posted := l.posted
	l.posted = nil
	l.mu.Unlock()

	for _, fn := range posted {
		fn()
	}

	limit := l.seq
	for len(l.timers) > 0 {
		t := l.timers[0]
		if t.when.After(now) || t.seq > limit {
			break
		}
		heap.Pop(&l.timers)
		t.fn()
		if t.period > 0 && !t.stopped {
			next := t.when.Add(t.period)
			if !next.After(now) {
				next = now.Add(t.period)
			}
			l.schedule(t, next)
		}
	}
}

// NextDeadline reports when the earliest timer is due.
func (l *Loop) NextDeadline() (time.Time, bool) {
	if len(l.timers) == 0 {
		return time.Time{}, false
	}
	return l.timers[0].when, true
}

// Idle reports whether nothing is queued: no frames, timers or posted work.
func (l *Loop) Idle() bool {
	l.mu.Lock()
	posted := len(l.posted)
	l.mu.Unlock()
	return posted == 0 && len(l.pending) == 0 && len(l.timers) == 0
}

func (l *Loop) setNow(now time.Time) {
	if now.After(l.now) {
		l.now = now
	}
}

func (l *Loop) schedule(t *Timer, when time.Time) {
	l.seq++
	t.seq = l.seq
	t.when = when
	heap.Push(&l.timers, t)
}
