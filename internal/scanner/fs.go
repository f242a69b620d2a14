package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FS is the filesystem a scan reads from.
type FS interface {
	// Root validates the scan root and returns its canonical path.
	Root(root string) (string, error)
	// ReadDir lists dir in filesystem order. Children whose metadata could
	// not be read carry a non-nil Err. A listing that fails part way returns
	// the children read so far together with the error.
	ReadDir(dir string) ([]Dirent, error)
	// Join joins path elements with the filesystem's separator.
	Join(elem ...string) string
	// Inspect extracts platform stat information from info.
	Inspect(info fs.FileInfo) StatInfo
}

// Dirent is one child returned by FS.ReadDir. Info is lstat-like: symlinks
// are not followed.
type Dirent struct {
	Name string
	Info fs.FileInfo
	Err  error
}

// StatInfo holds platform-specific file metadata. The capability flags tell
// the classifier how to interpret the remaining fields.
type StatInfo struct {
	Ino     uint64
	Dev     uint64
	Nlink   uint64
	Blksize uint64
	Blocks  uint64
	UID     uint32
	GID     uint32
	Rdev    uint64
	Mode    uint32 // Raw platform mode bits
	Ctime   time.Time
	Atime   time.Time

	// HasBlocks means Blocks counts 512-byte units actually allocated.
	HasBlocks bool
	// HasSpecial means device and named-pipe mode bits are reported.
	HasSpecial bool
	// Align is the allocation granularity used to estimate usage when
	// HasBlocks is false. Zero means DefaultBlockAlign.
	Align uint64
}

const (
	// BlockUnit is the size of the units Blocks is reported in.
	BlockUnit = 512
	// DefaultBlockAlign is the allocation granularity assumed when a
	// platform does not report block counts.
	DefaultBlockAlign = 4096
)

// Usage returns the disk usage of a file of the given apparent size.
func (st StatInfo) Usage(size uint64) uint64 {
	if st.HasBlocks {
		return st.Blocks * BlockUnit
	}
	align := st.Align
	if align == 0 {
		align = DefaultBlockAlign
	}
	return (size + align - 1) / align * align
}

// Local returns the FS backed by the operating system.
func Local() FS {
	return localFS{}
}

type localFS struct{}

func (localFS) Root(root string) (string, error) {
	root = expandHome(root)
	absPath, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}

	// Use Stat (not Lstat) so symlinked roots like /tmp -> /private/tmp work
	info, err := os.Stat(absPath)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		return "", &os.PathError{Op: "scan", Path: absPath, Err: errNotDir}
	}
	if resolved, err := filepath.EvalSymlinks(absPath); err == nil {
		absPath = resolved
	}
	return absPath, nil
}

func (localFS) ReadDir(dir string) ([]Dirent, error) {
	return readDir(dir)
}

func (localFS) Join(elem ...string) string {
	return filepath.Join(elem...)
}

func (localFS) Inspect(info fs.FileInfo) StatInfo {
	return getStatInfo(info)
}

// readDirPortable lists dir with one Lstat per child.
func readDirPortable(dir string) ([]Dirent, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, listErr := f.Readdirnames(-1)
	out := make([]Dirent, 0, len(names))
	for _, name := range names {
		info, err := os.Lstat(filepath.Join(dir, name))
		out = append(out, Dirent{Name: name, Info: info, Err: err})
	}
	return out, listErr
}

// expandHome replaces a leading "~" with the user's home directory.
func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
