package scanner

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/sadopc/gscandir/internal/model"
	"github.com/stretchr/testify/require"
)

// makeTree creates the given slash paths below a temp dir. Paths ending in
// "/" become directories, everything else a file containing its own path.
func makeTree(t *testing.T, paths ...string) string {
	t.Helper()
	root := t.TempDir()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(p), 0o644))
	}
	return root
}

func pathsOf(rs []model.Result) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, filepath.ToSlash(r.GetPath()))
	}
	return out
}

func sortedPaths(rs []model.Result) []string {
	out := pathsOf(rs)
	slices.Sort(out)
	return out
}

func entryOf(t *testing.T, r model.Result) model.Entry {
	t.Helper()
	switch v := r.(type) {
	case model.Entry:
		return v
	case model.ExtEntry:
		return v.Entry
	}
	t.Fatalf("unexpected result %T", r)
	return model.Entry{}
}

// memFS is an in-memory FS rooted at "/".
type memFS struct {
	dirs map[string][]Dirent
	fail map[string]error
	// partial lists a directory and then reports the error.
	partial map[string]error
	// gate, when set, blocks every ReadDir until it is closed.
	gate chan struct{}
}

func newMemFS() *memFS {
	return &memFS{
		dirs: map[string][]Dirent{"/": nil},
		fail:    map[string]error{},
		partial: map[string]error{},
	}
}

func (m *memFS) add(p string, d Dirent) {
	parent := path.Dir(p)
	if _, ok := m.dirs[parent]; !ok {
		m.dir(parent)
	}
	d.Name = path.Base(p)
	m.dirs[parent] = append(m.dirs[parent], d)
}

func (m *memFS) dir(p string) *memFS {
	if _, ok := m.dirs[p]; ok {
		return m
	}
	m.dirs[p] = nil
	m.add(p, Dirent{Info: memInfo{name: path.Base(p), mode: fs.ModeDir | 0o755}})
	return m
}

func (m *memFS) file(p string, size int64) *memFS {
	m.add(p, Dirent{Info: memInfo{name: path.Base(p), size: size, mode: 0o644}})
	return m
}

func (m *memFS) special(p string, mode fs.FileMode) *memFS {
	m.add(p, Dirent{Info: memInfo{name: path.Base(p), mode: mode}})
	return m
}

func (m *memFS) broken(p string, err error) *memFS {
	m.add(p, Dirent{Err: err})
	return m
}

func (m *memFS) Root(root string) (string, error) {
	if _, ok := m.dirs[root]; !ok {
		return "", &fs.PathError{Op: "stat", Path: root, Err: fs.ErrNotExist}
	}
	return root, nil
}

func (m *memFS) ReadDir(dir string) ([]Dirent, error) {
	if m.gate != nil {
		<-m.gate
	}
	if err := m.fail[dir]; err != nil {
		return nil, err
	}
	return slices.Clone(m.dirs[dir]), m.partial[dir]
}

func (m *memFS) Join(elem ...string) string { return path.Join(elem...) }

func (m *memFS) Inspect(info fs.FileInfo) StatInfo {
	return StatInfo{Nlink: 1, Mode: uint32(info.Mode().Perm())}
}

type memInfo struct {
	name string
	size int64
	mode fs.FileMode
}

func (i memInfo) Name() string       { return i.name }
func (i memInfo) Size() int64        { return i.size }
func (i memInfo) Mode() fs.FileMode  { return i.mode }
func (i memInfo) ModTime() time.Time { return time.Unix(1_700_000_000, 0) }
func (i memInfo) IsDir() bool        { return i.mode.IsDir() }
func (i memInfo) Sys() any           { return nil }
