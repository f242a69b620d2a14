package scanner

import (
	"sync/atomic"

	"github.com/sadopc/gscandir/internal/model"
)

// Count aggregates statistics over the tree below the root.
type Count struct {
	*base
	stats sharedStats
}

// NewCount creates a counter for root on the local filesystem.
func NewCount(root string, opts Options) (*Count, error) {
	return NewCountFS(Local(), root, opts)
}

// NewCountFS creates a counter for root on fsys.
func NewCountFS(fsys FS, root string, opts Options) (*Count, error) {
	opts.Shape = ShapeStats
	b, err := newBase(fsys, root, opts)
	if err != nil {
		return nil, err
	}
	return &Count{base: b}, nil
}

// parallel reports whether the count can use concurrent directory readers.
// A file limit needs a deterministic visiting order, so it disables them.
func (c *Count) parallel() bool {
	_, local := c.fsys.(localFS)
	return local && c.rules.maxFileCount == 0
}

func (c *Count) run(cancel *atomic.Bool) {
	agg := newAggregator(&c.stats)
	if !c.parallel() {
		walk(c.fsys, c.root, c.rules, cancel, agg)
		return
	}
	if err := fastCount(c.root, c.rules, cancel, agg); err != nil {
		c.log.WithError(err).Warn("parallel count failed")
		c.stats.mu.Lock()
		c.stats.stats.Errors = append(c.stats.stats.Errors, err.Error())
		c.stats.mu.Unlock()
	}
}

func (c *Count) Start() error {
	return c.w.launch(c.stats.reset, c.run)
}

// Collect counts the whole tree on the calling goroutine.
func (c *Count) Collect() (model.Statistics, error) {
	if err := c.w.runSync(c.stats.reset, c.run); err != nil {
		return model.Statistics{}, err
	}
	return c.stats.get(), nil
}

func (c *Count) Clear() error {
	if err := c.w.clear(); err != nil {
		return err
	}
	c.stats.reset()
	return nil
}

// Statistics returns a snapshot of the counts published so far. While the
// scan runs the snapshot lags by up to flushEvery entries.
func (c *Count) Statistics() model.Statistics {
	return c.stats.get()
}

// HasResults reports whether any entry has been counted.
func (c *Count) HasResults() bool {
	s := c.stats.get()
	return s.Entries() > 0 || len(s.Errors) > 0
}

// HasErrors reports whether any error has been recorded.
func (c *Count) HasErrors() bool {
	return len(c.stats.get().Errors) > 0
}

// AsMap renders the non-zero counters of the current snapshot.
func (c *Count) AsMap() map[string]any {
	return c.stats.get().AsMap()
}

// Progress returns the scan progress derived from the current snapshot.
func (c *Count) Progress() Progress {
	s := c.stats.get()
	c.w.mu.Lock()
	started := c.w.started
	c.w.mu.Unlock()
	return Progress{
		FilesScanned: int64(s.Entries() - s.Dirs),
		DirsScanned:  int64(s.Dirs),
		BytesFound:   int64(s.Usage),
		Errors:       int64(len(s.Errors)),
		Done:         c.Finished(),
		StartTime:    started,
		Duration:     c.Duration(),
	}
}
