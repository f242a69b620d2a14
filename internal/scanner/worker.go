package scanner

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// State is the lifecycle state of a scan.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// worker owns the background goroutine of one controller. A started worker
// keeps its handle until Join, Stop or Clear reaps it, so a finished scan can
// still be joined.
type worker struct {
	log *logrus.Entry

	state  atomic.Int32
	cancel atomic.Bool

	mu      sync.Mutex // guards done, started and elapsed
	done    chan struct{}
	started time.Time
	elapsed time.Duration
}

func (w *worker) State() State {
	return State(w.state.Load())
}

// busy reports whether the walk is still executing.
func (w *worker) busy() bool {
	s := w.State()
	return s == StateRunning || s == StateStopping
}

// occupied reports whether a worker handle exists, reaped or not.
func (w *worker) occupied() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done != nil
}

func (w *worker) begin() (chan struct{}, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return nil, ErrAlreadyRunning
	}
	w.done = make(chan struct{})
	w.cancel.Store(false)
	w.started = time.Now()
	w.elapsed = 0
	w.state.Store(int32(StateRunning))
	return w.done, nil
}

func (w *worker) finish(done chan struct{}) {
	w.mu.Lock()
	w.elapsed = time.Since(w.started)
	w.mu.Unlock()
	w.state.Store(int32(StateFinished))
	close(done)
}

// launch runs fn on a new goroutine. reset runs first, once the worker slot
// is known to be free.
func (w *worker) launch(reset func(), fn func(cancel *atomic.Bool)) error {
	done, err := w.begin()
	if err != nil {
		return err
	}
	reset()
	w.log.Debug("scan started")
	go func() {
		fn(&w.cancel)
		w.finish(done)
		w.log.WithField("duration", w.duration()).Debug("scan finished")
	}()
	return nil
}

// runSync runs fn on the calling goroutine. The slot stays occupied while it
// runs, so concurrent starts fail and Stop can cancel it.
func (w *worker) runSync(reset func(), fn func(cancel *atomic.Bool)) error {
	done, err := w.begin()
	if err != nil {
		return err
	}
	reset()
	fn(&w.cancel)
	w.finish(done)
	w.reap(done)
	w.log.WithField("duration", w.duration()).Debug("collect finished")
	return nil
}

func (w *worker) reap(done chan struct{}) {
	w.mu.Lock()
	if w.done == done {
		w.done = nil
	}
	w.mu.Unlock()
}

func (w *worker) handle() chan struct{} {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.done
}

// stop requests cancellation and waits for the worker to exit.
func (w *worker) stop() error {
	done := w.handle()
	if done == nil {
		return ErrNotRunning
	}
	w.cancel.Store(true)
	w.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
	<-done
	w.reap(done)
	return nil
}

// join waits for the worker to exit on its own.
func (w *worker) join() error {
	done := w.handle()
	if done == nil {
		return ErrNotRunning
	}
	<-done
	w.reap(done)
	return nil
}

// clear reaps a finished worker and returns to the idle state.
func (w *worker) clear() error {
	if w.busy() {
		return ErrBusy
	}
	if done := w.handle(); done != nil {
		<-done
		w.reap(done)
	}
	w.mu.Lock()
	w.elapsed = 0
	w.started = time.Time{}
	w.mu.Unlock()
	w.state.Store(int32(StateIdle))
	return nil
}

// duration returns the running time, frozen once the worker finished.
func (w *worker) duration() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.busy() {
		return time.Since(w.started)
	}
	return w.elapsed
}
