package scanner

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/sadopc/gscandir/internal/model"
)

// Scandir produces one Entry or ExtEntry per filesystem object below the
// root, plus an ErrorEntry for every object that could not be read.
type Scandir struct {
	*base
	buf *buffer
}

// NewScandir creates a flat-entry scanner for root on the local filesystem.
func NewScandir(root string, opts Options) (*Scandir, error) {
	return NewScandirFS(Local(), root, opts)
}

// NewScandirFS creates a flat-entry scanner for root on fsys.
func NewScandirFS(fsys FS, root string, opts Options) (*Scandir, error) {
	opts.Shape = ShapeEntries
	b, err := newBase(fsys, root, opts)
	if err != nil {
		return nil, err
	}
	return &Scandir{base: b, buf: newBuffer()}, nil
}

func (s *Scandir) run(cancel *atomic.Bool) {
	walk(s.fsys, s.root, s.rules, cancel, &entrySink{batch{buf: s.buf}})
}

// Start launches the scan in the background. Previous results are discarded.
func (s *Scandir) Start() error {
	return s.w.launch(s.buf.reset, s.run)
}

// Collect runs the scan to completion on the calling goroutine and returns
// everything it produced.
func (s *Scandir) Collect() ([]model.Result, []model.ErrorEntry, error) {
	if err := s.w.runSync(s.buf.reset, s.run); err != nil {
		return nil, nil, err
	}
	entries, errs, _ := s.buf.snapshot()
	return entries, errs, nil
}

// Clear discards all results and returns to the idle state.
func (s *Scandir) Clear() error {
	if err := s.w.clear(); err != nil {
		return err
	}
	s.buf.reset()
	return nil
}

// Results returns entries and errors. With all=false only those not returned
// by a previous call are included.
func (s *Scandir) Results(all bool) ([]model.Result, []model.ErrorEntry) {
	return s.buf.results(all)
}

// Entries returns entries only, advancing only the entry cursor.
func (s *Scandir) Entries(all bool) []model.Result {
	return s.buf.entriesOnly(all)
}

// Errors returns errors only, advancing only the error cursor.
func (s *Scandir) Errors(all bool) []model.ErrorEntry {
	return s.buf.errorsOnly(all)
}

func (s *Scandir) HasResults(onlyNew bool) bool {
	e, errs, _ := s.buf.has(onlyNew)
	return e || errs
}

func (s *Scandir) HasEntries(onlyNew bool) bool {
	e, _, _ := s.buf.has(onlyNew)
	return e
}

func (s *Scandir) HasErrors(onlyNew bool) bool {
	_, errs, _ := s.buf.has(onlyNew)
	return errs
}

// ResultsCnt returns the number of entries and errors produced so far. Without
// update the value from the last read is returned.
func (s *Scandir) ResultsCnt(update bool) int {
	e, errs, _ := s.buf.counts(update)
	return e + errs
}

func (s *Scandir) EntriesCnt(update bool) int {
	e, _, _ := s.buf.counts(update)
	return e
}

func (s *Scandir) ErrorsCnt(update bool) int {
	_, errs, _ := s.buf.counts(update)
	return errs
}

// AsMap returns every entry produced so far keyed by relative path.
func (s *Scandir) AsMap() map[string]model.Result {
	entries, _, _ := s.buf.snapshot()
	m := make(map[string]model.Result, len(entries))
	for _, e := range entries {
		m[e.GetPath()] = e
	}
	return m
}

// Iter returns a single-use sequence of the scan's results. The scan starts
// when the sequence is first ranged over, so an unused sequence holds no
// worker. Errors are yielded as ErrorEntry values.
func (s *Scandir) Iter(ctx context.Context) (iter.Seq[model.Result], error) {
	return poll(ctx, &s.w, s.Start, func() []model.Result {
		entries, errs := s.buf.results(false)
		for _, e := range errs {
			entries = append(entries, e)
		}
		return entries
	})
}

// Scope starts the scan, calls fn and stops the scan when fn returns.
func (s *Scandir) Scope(fn func(*Scandir) error) error {
	return scope(&s.w, s.Start, func() error { return fn(s) })
}
