package ops

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofrs/flock"
	"github.com/sadopc/gscandir/internal/model"
)

type rawReport struct {
	reportHeader
	Entries []json.RawMessage  `json:"entries"`
	Errors  []model.ErrorEntry `json:"errors"`
	Toc     []model.DirToc     `json:"toc"`
	Stats   *model.Statistics  `json:"stats"`
}

// ImportJSON reads a report written by ExportJSON. It holds a shared lock on
// LockPath(path) while reading so it never races a concurrent export.
func ImportJSON(path string) (*Report, error) {
	lock := flock.New(LockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("cannot lock import file %s: %w", path, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open import file: %w", err)
	}
	return decodeReport(data)
}

func decodeReport(data []byte) (*Report, error) {
	var raw rawReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if raw.Format != FormatVersion {
		return nil, fmt.Errorf("unsupported export format %d", raw.Format)
	}

	rep := &Report{
		Root:     raw.Root,
		Shape:    raw.Shape,
		Metadata: raw.Metadata,
		Errors:   raw.Errors,
		Toc:      raw.Toc,
		Stats:    raw.Stats,
	}
	if raw.Entries != nil {
		rep.Entries = make([]model.Result, 0, len(raw.Entries))
	}
	for i, msg := range raw.Entries {
		r, err := decodeEntry(msg, raw.Metadata == "ext")
		if err != nil {
			return nil, fmt.Errorf("cannot parse entry at index %d: %w", i, err)
		}
		rep.Entries = append(rep.Entries, r)
	}
	return rep, nil
}

func decodeEntry(msg json.RawMessage, ext bool) (model.Result, error) {
	if ext {
		var e model.ExtEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, err
		}
		return e, nil
	}
	var e model.Entry
	if err := json.Unmarshal(msg, &e); err != nil {
		return nil, err
	}
	return e, nil
}
