package watch

import (
	"sync"
	"time"
)

// debouncer coalesces bursts of events per path. A path becomes due
// once it has been quiet for the full delay; a new event for a path
// that is already due pulls it back out until it settles again, so one
// burst never yields more than one delivery.
type debouncer struct {
	delay time.Duration

	// ready carries at most one token, set whenever the due set gains a
	// path. Consumers drain via take until it returns false.
	ready chan struct{}

	mu      sync.Mutex
	waiting map[string]*pendingPath
	due     map[string]struct{}
}

// pendingPath is a path inside its quiet period. gen voids settle calls
// from timers that had already gone off when a newer event superseded
// them.
type pendingPath struct {
	timer *time.Timer
	gen   uint64
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:   delay,
		ready:   make(chan struct{}, 1),
		waiting: make(map[string]*pendingPath),
		due:     make(map[string]struct{}),
	}
}

// bump restarts the quiet period for path.
func (d *debouncer) bump(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.due, path)

	p, ok := d.waiting[path]
	if !ok {
		p = &pendingPath{}
		d.waiting[path] = p
	} else {
		// Stop is best effort: a timer that already fired is voided by
		// the generation bump instead.
		p.timer.Stop()
	}
	p.gen++
	gen := p.gen
	p.timer = time.AfterFunc(d.delay, func() { d.settle(path, gen) })
}

// settle marks path due unless a later event superseded this timer.
func (d *debouncer) settle(path string, gen uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	p, ok := d.waiting[path]
	if !ok || p.gen != gen {
		return
	}
	delete(d.waiting, path)
	d.due[path] = struct{}{}

	select {
	case d.ready <- struct{}{}:
	default:
	}
}

// take removes and returns one due path, if any.
func (d *debouncer) take() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for path := range d.due {
		delete(d.due, path)
		return path, true
	}
	return "", false
}

// stop cancels all outstanding timers and drops pending state.
func (d *debouncer) stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, p := range d.waiting {
		p.timer.Stop()
	}
	d.waiting = make(map[string]*pendingPath)
	d.due = make(map[string]struct{})
}
