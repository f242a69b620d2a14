package scanner

import (
	"errors"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

var errCancelled = errors.New("count cancelled")

// fastCount counts a local tree with parallel directory readers. Callbacks
// classify entries concurrently and send tallies to the aggregator, which
// runs on the calling goroutine. Ordering is irrelevant for statistics, so
// the only rules applied are those that do not depend on it.
func fastCount(root string, r *rules, cancel *atomic.Bool, agg *aggregator) error {
	defer agg.done()

	special := runtime.GOOS != "windows"
	tallies := make(chan tally, 1024)

	conf := &fastwalk.Config{
		Follow: false,
	}

	walkErr := make(chan error, 1)
	go func() {
		defer close(tallies)
		walkErr <- fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
			if cancel.Load() {
				return errCancelled
			}

			rel := "."
			if path != root {
				rel, _ = filepath.Rel(root, path)
			}
			if err != nil {
				tallies <- tally{kind: kindError, err: rel + ": " + err.Error()}
				return nil
			}
			if path == root {
				return nil
			}

			isDir := d.IsDir()
			if !r.admit(d.Name(), isDir) {
				if isDir {
					return filepath.SkipDir
				}
				return nil
			}

			t := tally{kind: kindOf(d.Type(), special)}
			if r.metadata == MetadataExt {
				info, err := lstat(path)
				if err != nil {
					tallies <- tally{kind: kindError, err: rel + ": " + err.Error()}
					return nil
				}
				st := getStatInfo(info)
				t.ext = true
				t.size = uint64(max(info.Size(), 0))
				t.usage = st.Usage(t.size)
				t.hardlink = t.kind != kindDir && st.Nlink > 1
			}
			tallies <- t

			if isDir && !r.descend(strings.Count(rel, string(filepath.Separator))+1) {
				return filepath.SkipDir
			}
			return nil
		})
	}()

	for t := range tallies {
		agg.count(t)
	}

	if err := <-walkErr; err != nil && !errors.Is(err, errCancelled) {
		return err
	}
	return nil
}
