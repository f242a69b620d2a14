package scanner

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/sadopc/gscandir/internal/model"
)

// Walker produces one table of contents per visited directory.
type Walker struct {
	*base
	buf *buffer
}

// NewWalker creates a directory walker for root on the local filesystem.
func NewWalker(root string, opts Options) (*Walker, error) {
	return NewWalkerFS(Local(), root, opts)
}

// NewWalkerFS creates a directory walker for root on fsys.
func NewWalkerFS(fsys FS, root string, opts Options) (*Walker, error) {
	opts.Shape = ShapeToc
	b, err := newBase(fsys, root, opts)
	if err != nil {
		return nil, err
	}
	return &Walker{base: b, buf: newBuffer()}, nil
}

func (wk *Walker) run(cancel *atomic.Bool) {
	walk(wk.fsys, wk.root, wk.rules, cancel, &tocSink{batch{buf: wk.buf}})
}

func (wk *Walker) Start() error {
	return wk.w.launch(wk.buf.reset, wk.run)
}

// Collect walks the whole tree on the calling goroutine.
func (wk *Walker) Collect() ([]model.DirToc, error) {
	if err := wk.w.runSync(wk.buf.reset, wk.run); err != nil {
		return nil, err
	}
	_, _, tocs := wk.buf.snapshot()
	return tocs, nil
}

func (wk *Walker) Clear() error {
	if err := wk.w.clear(); err != nil {
		return err
	}
	wk.buf.reset()
	return nil
}

// Results returns the tables of contents. With all=false only those not
// returned by a previous call are included.
func (wk *Walker) Results(all bool) []model.DirToc {
	return wk.buf.tocList(all)
}

// Errors returns the per-entry errors, including unreadable directories.
func (wk *Walker) Errors(all bool) []model.ErrorEntry {
	return wk.buf.errorsOnly(all)
}

func (wk *Walker) HasResults(onlyNew bool) bool {
	_, _, tocs := wk.buf.has(onlyNew)
	return tocs
}

func (wk *Walker) HasErrors(onlyNew bool) bool {
	_, errs, _ := wk.buf.has(onlyNew)
	return errs
}

func (wk *Walker) ResultsCnt(update bool) int {
	_, _, tocs := wk.buf.counts(update)
	return tocs
}

func (wk *Walker) ErrorsCnt(update bool) int {
	_, errs, _ := wk.buf.counts(update)
	return errs
}

// Toc merges every table produced so far into one.
func (wk *Walker) Toc() model.Toc {
	_, _, tocs := wk.buf.snapshot()
	var all model.Toc
	for _, t := range tocs {
		all.Merge(t.Toc)
	}
	return all
}

// Iter returns a single-use sequence of tables of contents in visiting
// order. The walk starts when the sequence is first ranged over.
func (wk *Walker) Iter(ctx context.Context) (iter.Seq[model.DirToc], error) {
	return poll(ctx, &wk.w, wk.Start, func() []model.DirToc {
		return wk.buf.tocList(false)
	})
}

// Scope starts the walk, calls fn and stops the walk when fn returns.
func (wk *Walker) Scope(fn func(*Walker) error) error {
	return scope(&wk.w, wk.Start, func() error { return fn(wk) })
}
