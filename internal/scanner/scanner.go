// Package scanner walks directory trees in the background and exposes the
// results through pollable controllers.
//
// Three controllers share one lifecycle: Scandir yields one entry per
// filesystem object, Walker one table of contents per directory, and Count
// aggregate statistics. Each runs at most one worker goroutine at a time and
// can be started, polled, stopped, joined and cleared repeatedly.
package scanner

import (
	"github.com/sadopc/gscandir/internal/model"
)

// CountTree counts root synchronously.
func CountTree(root string, opts Options) (model.Statistics, error) {
	c, err := NewCount(root, opts)
	if err != nil {
		return model.Statistics{}, err
	}
	return c.Collect()
}

// List scans root synchronously and returns its entries keyed by relative
// path, together with the errors encountered.
func List(root string, opts Options) (map[string]model.Result, []model.ErrorEntry, error) {
	s, err := NewScandir(root, opts)
	if err != nil {
		return nil, nil, err
	}
	entries, errs, err := s.Collect()
	if err != nil {
		return nil, nil, err
	}
	m := make(map[string]model.Result, len(entries))
	for _, e := range entries {
		m[e.GetPath()] = e
	}
	return m, errs, nil
}

// TocTree walks root synchronously and returns one table of contents per
// directory in visiting order.
func TocTree(root string, opts Options) ([]model.DirToc, error) {
	w, err := NewWalker(root, opts)
	if err != nil {
		return nil, err
	}
	return w.Collect()
}
