package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// pollInterval is how long iteration sleeps when the buffer is empty but the
// worker is still busy.
const pollInterval = 10 * time.Millisecond

// Controller is the lifecycle surface shared by Scandir, Walker and Count.
type Controller interface {
	// ID returns the unique identifier of the controller.
	ID() string
	// Root returns the canonical scan root.
	Root() string
	Start() error
	Stop() error
	Join() error
	Clear() error
	Busy() bool
	Finished() bool
	State() State
	Duration() time.Duration
}

// New creates the controller matching opts.Shape on the local filesystem.
func New(root string, opts Options) (Controller, error) {
	return NewFS(Local(), root, opts)
}

// NewFS creates the controller matching opts.Shape on fsys.
func NewFS(fsys FS, root string, opts Options) (Controller, error) {
	switch opts.Shape {
	case ShapeEntries:
		return NewScandirFS(fsys, root, opts)
	case ShapeToc:
		return NewWalkerFS(fsys, root, opts)
	case ShapeStats:
		return NewCountFS(fsys, root, opts)
	}
	return nil, &Error{Kind: KindInvalidInput, Op: "new", Path: root, Err: fmt.Errorf("unknown shape %v", opts.Shape)}
}

// base holds what every controller shares: the validated configuration and
// the worker slot.
type base struct {
	id    string
	fsys  FS
	root  string
	opts  Options
	rules *rules
	log   *logrus.Entry
	w     worker
}

func newBase(fsys FS, root string, opts Options) (*base, error) {
	r, err := opts.compile()
	if err != nil {
		return nil, &Error{Kind: KindInvalidInput, Op: "new", Path: root, Err: err}
	}

	canon, err := fsys.Root(root)
	if err != nil {
		kind := KindIO
		switch {
		case errors.Is(err, fs.ErrNotExist):
			kind = KindNotFound
		case errors.Is(err, errNotDir):
			kind = KindInvalidInput
		}
		return nil, &Error{Kind: kind, Op: "new", Path: root, Err: err}
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	b := &base{
		id:    uuid.NewString(),
		fsys:  fsys,
		root:  canon,
		opts:  opts,
		rules: r,
	}
	b.log = logger.WithFields(logrus.Fields{
		"scan_id": b.id,
		"root":    canon,
		"shape":   opts.Shape.String(),
	})
	b.w.log = b.log
	return b, nil
}

func (b *base) ID() string   { return b.id }
func (b *base) Root() string { return b.root }

// Options returns the options the controller was created with.
func (b *base) Options() Options { return b.opts }

// Stop cancels the running scan and waits for it to exit.
func (b *base) Stop() error { return b.w.stop() }

// Join waits for the running scan to finish on its own.
func (b *base) Join() error { return b.w.join() }

// Busy reports whether the scan is running.
func (b *base) Busy() bool { return b.w.busy() }

// Finished reports whether the last scan ran to completion or was stopped.
func (b *base) Finished() bool { return b.w.State() == StateFinished }

func (b *base) State() State { return b.w.State() }

// Duration returns the elapsed time of the current or last scan.
func (b *base) Duration() time.Duration { return b.w.duration() }

// poll returns a single-use sequence over a scan that starts when the
// sequence is first ranged over. fetch returns the items produced since its
// previous call. Leaving the loop early or cancelling ctx stops the worker; a
// drained scan is joined. If the controller was started by other means in
// between, the sequence is empty.
func poll[T any](ctx context.Context, w *worker, start func() error, fetch func() []T) (iter.Seq[T], error) {
	if w.occupied() {
		return nil, ErrBusy
	}

	used := false
	return func(yield func(T) bool) {
		if used || ctx.Err() != nil {
			return
		}
		used = true
		if err := start(); err != nil {
			w.log.WithError(err).Debug("iteration could not start the scan")
			return
		}
		defer func() { _ = w.stop() }()

		for {
			busy := w.busy()
			items := fetch()
			for _, item := range items {
				if !yield(item) {
					return
				}
			}
			if len(items) > 0 {
				continue
			}
			if !busy {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(pollInterval):
			}
		}
	}, nil
}

// scope starts a scan, runs fn and always stops the scan afterwards.
func scope(w *worker, start func() error, fn func() error) error {
	if err := start(); err != nil {
		return err
	}
	defer func() { _ = w.stop() }()
	return fn()
}
