// Package debounce coalesces bursts of state changes into a single deferred
// action per stream.
package debounce

import (
	"sort"
	"sync"
	"time"
)

// DefaultDelay is the quiet period used when none is configured.
const DefaultDelay = 500 * time.Millisecond

// CancelFunc cancels the action it was returned for. Calling it after the
// action ran, or after a newer action replaced it, does nothing.
type CancelFunc func()

// Debouncer keeps at most one pending action per named stream. Scheduling on
// a stream replaces its pending action; streams never affect each other.
// Actions on one stream never overlap, and an older action never runs after
// a newer one on the same stream.
type Debouncer struct {
	clock Clock

	mu      sync.Mutex
	seq     uint64
	pending map[string]*pendingAction
	running map[string]*streamRun
	stopped bool

	inflight sync.WaitGroup
}

// streamRun serialises the actions of one stream. last is the id of the
// newest action that ran, guarded by mu.
type streamRun struct {
	mu   sync.Mutex
	last uint64
}

type pendingAction struct {
	stream string
	id     uint64
	timer  Timer
	fn     func()
}

// New creates a Debouncer on clock. A nil clock means RealClock.
func New(clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock{}
	}
	return &Debouncer{
		clock:   clock,
		pending: make(map[string]*pendingAction),
		running: make(map[string]*streamRun),
	}
}

// Schedule arranges for fn to run delay after now unless another Schedule on
// the same stream, Stop, or the returned CancelFunc gets there first.
func (d *Debouncer) Schedule(stream string, fn func(), delay time.Duration) CancelFunc {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return func() {}
	}

	if prev, ok := d.pending[stream]; ok {
		prev.timer.Stop()
		delete(d.pending, stream)
	}

	d.seq++
	id := d.seq
	timer := d.clock.AfterFunc(delay, func() { d.fire(stream, id) })
	d.pending[stream] = &pendingAction{stream: stream, id: id, timer: timer, fn: fn}

	return func() { d.cancel(stream, id) }
}

// Pending reports whether stream has an action waiting to run.
func (d *Debouncer) Pending(stream string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[stream]
	return ok
}

// Flush runs every pending action now, in the order they were scheduled.
// It returns once they have all completed.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	actions := make([]*pendingAction, 0, len(d.pending))
	for stream, p := range d.pending {
		p.timer.Stop()
		actions = append(actions, p)
		delete(d.pending, stream)
	}
	d.inflight.Add(len(actions))
	d.mu.Unlock()

	sort.Slice(actions, func(i, j int) bool { return actions[i].id < actions[j].id })
	for _, p := range actions {
		d.run(p)
	}
}

// Stop cancels every pending action and disables the Debouncer. Nothing
// scheduled before or after Stop will run, and Stop returns only after
// actions that had already started have finished. It must not be called
// from inside an action.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for stream, p := range d.pending {
		p.timer.Stop()
		delete(d.pending, stream)
	}
	d.mu.Unlock()

	d.inflight.Wait()
}

func (d *Debouncer) cancel(stream string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if p, ok := d.pending[stream]; ok && p.id == id {
		p.timer.Stop()
		delete(d.pending, stream)
	}
}

// fire runs the action for stream if id is still the current one. A timer
// that lost the race with Stop, Flush or a newer Schedule finds a different
// id.
func (d *Debouncer) fire(stream string, id uint64) {
	d.mu.Lock()
	p, ok := d.pending[stream]
	if !ok || p.id != id || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, stream)
	d.inflight.Add(1)
	d.mu.Unlock()

	d.run(p)
}

// run executes p under its stream's lock. An action older than one that
// already ran on the stream is dropped. The caller has already counted p in
// inflight.
func (d *Debouncer) run(p *pendingAction) {
	defer d.inflight.Done()

	sr := d.runState(p.stream)
	sr.mu.Lock()
	defer sr.mu.Unlock()
	if p.id < sr.last {
		return
	}
	sr.last = p.id
	p.fn()
}

func (d *Debouncer) runState(stream string) *streamRun {
	d.mu.Lock()
	defer d.mu.Unlock()
	sr, ok := d.running[stream]
	if !ok {
		sr = &streamRun{}
		d.running[stream] = sr
	}
	return sr
}
