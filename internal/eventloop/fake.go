package eventloop

import (
	"time"
)

// Fake is an in-memory EventLoop for tests: it never runs anything on its
// own, the test drives it explicitly via FireRead/FireWrite/Advance/RunImmediate.
type Fake struct {
	nextHandle Handle
	reads      map[int]entry
	writes     map[int]entry
	timers     []timerEntry
	immediate  []entry
	now        int64 // fake monotonic clock, in nanoseconds
	cleared    map[Handle]bool
}

type entry struct {
	handle Handle
	fn     Callback
}

type timerEntry struct {
	entry
	fireAt int64
}

// NewFake constructs an empty Fake event loop.
func NewFake() *Fake {
	return &Fake{
		reads:   make(map[int]entry),
		writes:  make(map[int]entry),
		cleared: make(map[Handle]bool),
	}
}

func (f *Fake) alloc() Handle {
	f.nextHandle++
	return f.nextHandle
}

func (f *Fake) ArmRead(fd int, fn Callback) Handle {
	h := f.alloc()
	f.reads[fd] = entry{handle: h, fn: fn}
	return h
}

func (f *Fake) ArmWrite(fd int, fn Callback) Handle {
	h := f.alloc()
	f.writes[fd] = entry{handle: h, fn: fn}
	return h
}

func (f *Fake) After(d time.Duration, fn Callback) Handle {
	h := f.alloc()
	f.timers = append(f.timers, timerEntry{entry: entry{handle: h, fn: fn}, fireAt: f.now + int64(d)})
	return h
}

func (f *Fake) Schedule(fn Callback) Handle {
	h := f.alloc()
	f.immediate = append(f.immediate, entry{handle: h, fn: fn})
	return h
}

func (f *Fake) Clear(h Handle) {
	f.cleared[h] = true
}

// HasRead reports whether fd currently has an uncleared read callback
// registered — useful for asserting "re-armed CONN_READ" style
// invariants in tests.
func (f *Fake) HasRead(fd int) bool {
	e, ok := f.reads[fd]
	return ok && !f.cleared[e.handle]
}

func (f *Fake) HasWrite(fd int) bool {
	e, ok := f.writes[fd]
	return ok && !f.cleared[e.handle]
}

// FireRead invokes fd's armed read callback, if any and uncleared.
func (f *Fake) FireRead(fd int) {
	if e, ok := f.reads[fd]; ok && !f.cleared[e.handle] {
		delete(f.reads, fd)
		e.fn()
	}
}

// FireWrite invokes fd's armed write callback, if any and uncleared.
func (f *Fake) FireWrite(fd int) {
	if e, ok := f.writes[fd]; ok && !f.cleared[e.handle] {
		delete(f.writes, fd)
		e.fn()
	}
}

// RunImmediate drains every Schedule()'d callback, in FIFO order.
func (f *Fake) RunImmediate() {
	for len(f.immediate) > 0 {
		batch := f.immediate
		f.immediate = nil
		for _, e := range batch {
			if !f.cleared[e.handle] {
				e.fn()
			}
		}
	}
}

// Advance moves the fake clock forward by d and fires every timer whose
// deadline has passed, in deadline order. A callback that reschedules
// itself (CONN_INIT's retry, for instance) is re-scanned for on every
// pass, so a timer armed from inside a firing callback still fires within
// the same Advance if its deadline has already elapsed.
func (f *Fake) Advance(d time.Duration) {
	f.now += int64(d)
	for {
		idx := -1
		for i, te := range f.timers {
			if te.fireAt > f.now {
				continue
			}
			if idx == -1 || te.fireAt < f.timers[idx].fireAt {
				idx = i
			}
		}
		if idx == -1 {
			return
		}
		te := f.timers[idx]
		f.timers = append(f.timers[:idx], f.timers[idx+1:]...)
		if !f.cleared[te.handle] {
			te.fn()
		}
	}
}
