// Package ops persists scan results.
package ops

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sadopc/gscandir/internal/model"
)

// FormatVersion is bumped whenever the layout of an export changes
// incompatibly.
const FormatVersion = 1

// Export layout, one record per line inside each array:
//
//	{"format":1,"progname":"gscandir","progver":"1.0","timestamp":1234567890,
//	 "root":"/path","shape":"entries","metadata":"ext",
//	 "entries":[
//	  {"path":"a","is_dir":true,...},
//	  {"path":"a/b.txt",...}],
//	 "errors":[{"path":"c","error":"permission denied"}]}
//
// "toc" and "stats" replace "entries" for the other shapes.

// Report is one scan result set as stored on disk.
type Report struct {
	Root     string
	Shape    string
	Metadata string

	Entries []model.Result
	Errors  []model.ErrorEntry
	Toc     []model.DirToc
	Stats   *model.Statistics
}

type reportHeader struct {
	Format    int    `json:"format"`
	Progname  string `json:"progname"`
	Progver   string `json:"progver"`
	Timestamp int64  `json:"timestamp"`
	Root      string `json:"root"`
	Shape     string `json:"shape"`
	Metadata  string `json:"metadata,omitempty"`
}

// errWriter wraps an io.Writer and captures the first write error.
// Subsequent writes after an error are no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) WriteString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (ew *errWriter) Write(data []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(data)
	if err != nil {
		ew.err = err
	}
	return n, err
}

func (ew *errWriter) value(v any) {
	if ew.err != nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		ew.err = err
		return
	}
	_, _ = ew.Write(data)
}

// LockPath returns the lock file guarding path. Lock files live in the
// system temp directory, named after the absolute export path, so nothing is
// left next to the export.
func LockPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	name := uuid.NewSHA1(uuid.NameSpaceURL, []byte("file://"+filepath.ToSlash(path)))
	return filepath.Join(os.TempDir(), "gscandir-"+name.String()+".lock")
}

// ExportJSON writes rep to path, or to stdout when path is "-".
// File targets are written to a temp file first and atomically renamed on
// success, so a partial file is never left behind. Concurrent exports to the
// same path are serialized through an advisory lock on LockPath(path).
func ExportJSON(rep *Report, path string, version string) (retErr error) {
	if path == "-" {
		return exportToWriter(rep, os.Stdout, version)
	}

	lock := flock.New(LockPath(path))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("cannot lock export file %s: %w", path, err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil && retErr == nil {
			retErr = err
		}
	}()

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".gscandir-export-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create export file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := exportToWriter(rep, tmp, version); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		// On Windows, Rename cannot replace an existing destination.
		if runtime.GOOS != "windows" {
			return err
		}
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			return fmt.Errorf("cannot replace export file %s: %w", path, err)
		}
		if err := os.Rename(tmpPath, path); err != nil {
			return err
		}
	}
	return nil
}

func exportToWriter(rep *Report, out io.Writer, version string) error {
	if version == "" {
		version = "dev"
	}
	bw := bufio.NewWriterSize(out, 64*1024)
	ew := &errWriter{w: bw}

	header, err := json.Marshal(reportHeader{
		Format:    FormatVersion,
		Progname:  "gscandir",
		Progver:   version,
		Timestamp: time.Now().Unix(),
		Root:      rep.Root,
		Shape:     rep.Shape,
		Metadata:  rep.Metadata,
	})
	if err != nil {
		return err
	}
	// Splice the payload into the header object.
	_, _ = ew.Write(header[:len(header)-1])

	if rep.Entries != nil {
		ew.WriteString(`,"entries":`)
		writeArray(ew, len(rep.Entries), func(i int) any { return rep.Entries[i] })
	}
	if rep.Toc != nil {
		ew.WriteString(`,"toc":`)
		writeArray(ew, len(rep.Toc), func(i int) any { return rep.Toc[i] })
	}
	if rep.Stats != nil {
		ew.WriteString(`,"stats":`)
		ew.value(rep.Stats)
	}
	ew.WriteString(`,"errors":`)
	writeArray(ew, len(rep.Errors), func(i int) any { return rep.Errors[i] })

	ew.WriteString("}\n")
	if ew.err != nil {
		return ew.err
	}
	return bw.Flush()
}

func writeArray(ew *errWriter, n int, at func(int) any) {
	ew.WriteString("[")
	for i := 0; i < n && ew.err == nil; i++ {
		if i > 0 {
			ew.WriteString(",")
		}
		ew.WriteString("\n")
		ew.value(at(i))
	}
	ew.WriteString("]")
}
