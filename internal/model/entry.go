package model

import "time"

// Result is one unit produced by a flat scan: an Entry, an ExtEntry or an
// ErrorEntry.
type Result interface {
	GetPath() string
	isResult()
}

// Entry holds the basic metadata of a filesystem object.
type Entry struct {
	Path      string  `json:"path"` // Relative to the scan root
	IsDir     bool    `json:"is_dir"`
	IsFile    bool    `json:"is_file"`
	IsSymlink bool    `json:"is_symlink"`
	Ctime     float64 `json:"ctime"` // Seconds since epoch
	Mtime     float64 `json:"mtime"`
	Atime     float64 `json:"atime"`
	Mode      uint32  `json:"mode"`
}

func (e Entry) GetPath() string { return e.Path }
func (Entry) isResult()         {}

// ExtEntry holds the extended metadata of a filesystem object.
type ExtEntry struct {
	Entry
	Ino     uint64 `json:"ino"`
	Dev     uint64 `json:"dev"`
	Nlink   uint64 `json:"nlink"`
	Size    uint64 `json:"size"`
	Blksize uint64 `json:"blksize"`
	Blocks  uint64 `json:"blocks"`
	UID     uint32 `json:"uid"`
	GID     uint32 `json:"gid"`
	Rdev    uint64 `json:"rdev"`

	// Derived by the platform classifier.
	Usage    uint64 `json:"usage"` // Disk usage in bytes
	Hardlink bool   `json:"hardlink,omitempty"`
	Device   bool   `json:"device,omitempty"`
	Pipe     bool   `json:"pipe,omitempty"`
}

func (ExtEntry) isResult() {}

// ErrorEntry is a per-entry failure that did not abort the walk.
type ErrorEntry struct {
	Path    string `json:"path"`
	Message string `json:"error"`
}

func (e ErrorEntry) GetPath() string { return e.Path }
func (ErrorEntry) isResult()         {}

// Error implements the error interface.
func (e ErrorEntry) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// EpochSeconds converts t to floating-point seconds since the Unix epoch.
// The zero time maps to 0.
func EpochSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / 1e9
}
