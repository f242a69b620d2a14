package model

import (
	"fmt"
	"slices"
)

// Statistics holds aggregate counts for a scanned tree. The scan root itself
// is not counted.
type Statistics struct {
	Dirs    uint64   `json:"dirs"`
	Files   uint64   `json:"files"`
	Slinks  uint64   `json:"slinks"`
	Hlinks  uint64   `json:"hlinks"`
	Devices uint64   `json:"devices"`
	Pipes   uint64   `json:"pipes"`
	Others  uint64   `json:"others"` // Sockets and other irregular nodes
	Size    uint64   `json:"size"`
	Usage   uint64   `json:"usage"`
	Errors  []string `json:"errors"`
}

// Entries returns the number of classified entries the statistics cover.
// Hard links are not a separate category and are not added.
func (s Statistics) Entries() uint64 {
	return s.Dirs + s.Files + s.Slinks + s.Devices + s.Pipes + s.Others
}

// Clone returns a deep copy.
func (s Statistics) Clone() Statistics {
	s.Errors = slices.Clone(s.Errors)
	return s
}

// AsMap renders only the non-zero fields.
func (s Statistics) AsMap() map[string]any {
	m := make(map[string]any)
	put := func(key string, v uint64) {
		if v > 0 {
			m[key] = v
		}
	}
	put("dirs", s.Dirs)
	put("files", s.Files)
	put("slinks", s.Slinks)
	put("hlinks", s.Hlinks)
	put("devices", s.Devices)
	put("pipes", s.Pipes)
	put("others", s.Others)
	put("size", s.Size)
	put("usage", s.Usage)
	if len(s.Errors) > 0 {
		m["errors"] = slices.Clone(s.Errors)
	}
	return m
}

func (s Statistics) String() string {
	return fmt.Sprintf("Statistics{dirs: %d, files: %d, slinks: %d, hlinks: %d, devices: %d, pipes: %d, others: %d, size: %d, usage: %d, errors: %d}",
		s.Dirs, s.Files, s.Slinks, s.Hlinks, s.Devices, s.Pipes, s.Others, s.Size, s.Usage, len(s.Errors))
}
