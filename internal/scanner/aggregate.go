package scanner

import (
	"sync"

	"github.com/sadopc/gscandir/internal/model"
)

// flushEvery is how many processed entries the aggregator accumulates
// locally before publishing.
const flushEvery = 1000

// sharedStats is the statistics snapshot readers observe.
type sharedStats struct {
	mu    sync.Mutex
	stats model.Statistics
}

func (s *sharedStats) get() model.Statistics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats.Clone()
}

func (s *sharedStats) reset() {
	s.mu.Lock()
	s.stats = model.Statistics{}
	s.mu.Unlock()
}

// tally is one classified entry as the aggregator sees it.
type tally struct {
	kind     kind
	ext      bool
	size     uint64
	usage    uint64
	hardlink bool
	err      string
}

func tallyOf(r model.Result, k kind) tally {
	switch v := r.(type) {
	case model.ErrorEntry:
		return tally{kind: kindError, err: v.Error()}
	case model.ExtEntry:
		return tally{kind: k, ext: true, size: v.Size, usage: v.Usage, hardlink: v.Hardlink}
	}
	return tally{kind: k}
}

// aggregator accumulates counts on the worker goroutine and publishes them
// every flushEvery entries and once when the walk ends.
type aggregator struct {
	shared  *sharedStats
	local   model.Statistics
	errs    []string
	pending int
}

func newAggregator(shared *sharedStats) *aggregator {
	return &aggregator{shared: shared}
}

func (a *aggregator) count(t tally) {
	switch t.kind {
	case kindError:
		a.errs = append(a.errs, t.err)
	case kindDir:
		a.local.Dirs++
	case kindFile:
		a.local.Files++
	case kindSymlink:
		a.local.Slinks++
	case kindDevice:
		a.local.Devices++
	case kindPipe:
		a.local.Pipes++
	default:
		a.local.Others++
	}
	if t.ext && t.kind != kindError {
		if t.hardlink {
			a.local.Hlinks++
		}
		a.local.Size += t.size
		a.local.Usage += t.usage
	}

	a.pending++
	if a.pending >= flushEvery {
		a.flush()
	}
}

func (a *aggregator) flush() {
	a.shared.mu.Lock()
	errs := a.shared.stats.Errors
	a.shared.stats = a.local
	a.shared.stats.Errors = append(errs, a.errs...)
	a.shared.mu.Unlock()
	a.errs = nil
	a.pending = 0
}

func (a *aggregator) add(r model.Result, k kind) { a.count(tallyOf(r, k)) }
func (a *aggregator) addToc(model.DirToc)        {}
func (a *aggregator) dirDone()                   {}
func (a *aggregator) done()                      { a.flush() }
