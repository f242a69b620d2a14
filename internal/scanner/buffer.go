package scanner

import (
	"slices"
	"sync"
	"sync/atomic"

	"github.com/sadopc/gscandir/internal/model"
)

// buffer hands results from the worker to the controller. The worker appends
// to the pending lists; readers move pending items into the history, which
// they consume through per-kind cursors.
type buffer struct {
	mu sync.Mutex

	pendingEntries []model.Result
	pendingErrors  []model.ErrorEntry
	pendingTocs    []model.DirToc

	entries []model.Result
	errors  []model.ErrorEntry
	tocs    []model.DirToc

	entryCursor int
	errorCursor int
	tocCursor   int

	// History lengths as of the last pull, readable without the lock.
	entriesCnt atomic.Int64
	errorsCnt  atomic.Int64
	tocsCnt    atomic.Int64
}

func newBuffer() *buffer {
	return &buffer{}
}

// push is called by the worker.
func (b *buffer) push(entries []model.Result, errs []model.ErrorEntry, tocs []model.DirToc) {
	if len(entries) == 0 && len(errs) == 0 && len(tocs) == 0 {
		return
	}
	b.mu.Lock()
	b.pendingEntries = append(b.pendingEntries, entries...)
	b.pendingErrors = append(b.pendingErrors, errs...)
	b.pendingTocs = append(b.pendingTocs, tocs...)
	b.mu.Unlock()
}

// pull moves pending items into the history. b.mu must be held.
func (b *buffer) pull() {
	if len(b.pendingEntries) > 0 {
		b.entries = append(b.entries, b.pendingEntries...)
		b.pendingEntries = nil
	}
	if len(b.pendingErrors) > 0 {
		b.errors = append(b.errors, b.pendingErrors...)
		b.pendingErrors = nil
	}
	if len(b.pendingTocs) > 0 {
		b.tocs = append(b.tocs, b.pendingTocs...)
		b.pendingTocs = nil
	}
	b.entriesCnt.Store(int64(len(b.entries)))
	b.errorsCnt.Store(int64(len(b.errors)))
	b.tocsCnt.Store(int64(len(b.tocs)))
}

func (b *buffer) reset() {
	b.mu.Lock()
	b.pendingEntries, b.pendingErrors, b.pendingTocs = nil, nil, nil
	b.entries, b.errors, b.tocs = nil, nil, nil
	b.entryCursor, b.errorCursor, b.tocCursor = 0, 0, 0
	b.entriesCnt.Store(0)
	b.errorsCnt.Store(0)
	b.tocsCnt.Store(0)
	b.mu.Unlock()
}

// take returns either the whole history or the items after cursor, advancing
// cursor to the end of the history.
func take[T any](history []T, cursor *int, all bool) []T {
	from := *cursor
	if all {
		from = 0
	}
	*cursor = len(history)
	return slices.Clone(history[from:])
}

// results returns entries and errors together, advancing both cursors.
func (b *buffer) results(all bool) ([]model.Result, []model.ErrorEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pull()
	return take(b.entries, &b.entryCursor, all), take(b.errors, &b.errorCursor, all)
}

func (b *buffer) entriesOnly(all bool) []model.Result {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pull()
	return take(b.entries, &b.entryCursor, all)
}

func (b *buffer) errorsOnly(all bool) []model.ErrorEntry {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pull()
	return take(b.errors, &b.errorCursor, all)
}

func (b *buffer) tocList(all bool) []model.DirToc {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pull()
	return take(b.tocs, &b.tocCursor, all)
}

// snapshot returns the whole history without touching the cursors.
func (b *buffer) snapshot() ([]model.Result, []model.ErrorEntry, []model.DirToc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pull()
	return slices.Clone(b.entries), slices.Clone(b.errors), slices.Clone(b.tocs)
}

// counts reports the history lengths. With update the pending items are
// pulled first; otherwise the values cached at the last pull are returned.
func (b *buffer) counts(update bool) (entries, errs, tocs int) {
	if update {
		b.mu.Lock()
		b.pull()
		b.mu.Unlock()
	}
	return int(b.entriesCnt.Load()), int(b.errorsCnt.Load()), int(b.tocsCnt.Load())
}

// has reports whether there are items. With onlyNew only unread items count.
func (b *buffer) has(onlyNew bool) (entries, errs, tocs bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pull()
	if !onlyNew {
		return len(b.entries) > 0, len(b.errors) > 0, len(b.tocs) > 0
	}
	return b.entryCursor < len(b.entries), b.errorCursor < len(b.errors), b.tocCursor < len(b.tocs)
}

// batch collects a directory's worth of results on the worker side before
// they are pushed.
type batch struct {
	buf     *buffer
	entries []model.Result
	errs    []model.ErrorEntry
	tocs    []model.DirToc
}

func (s *batch) add(r model.Result, k kind) {
	if k == kindError {
		s.errs = append(s.errs, r.(model.ErrorEntry))
		return
	}
	s.entries = append(s.entries, r)
}

func (s *batch) addToc(t model.DirToc) {
	s.tocs = append(s.tocs, t)
}

func (s *batch) dirDone() {
	s.buf.push(s.entries, s.errs, s.tocs)
	s.entries, s.errs, s.tocs = nil, nil, nil
}

func (s *batch) done() {
	s.dirDone()
}

// entrySink keeps flat results only.
type entrySink struct{ batch }

func (s *entrySink) addToc(model.DirToc) {}

// tocSink keeps tables of contents and errors only.
type tocSink struct{ batch }

func (s *tocSink) add(r model.Result, k kind) {
	if k == kindError {
		s.errs = append(s.errs, r.(model.ErrorEntry))
	}
}
