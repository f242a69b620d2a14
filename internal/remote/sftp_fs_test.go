package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	pathpkg "path"
	"syscall"
	"testing"
	"time"

	"github.com/pkg/sftp"
	"github.com/sadopc/gscandir/internal/model"
	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func quietOptions() scanner.Options {
	opts := scanner.DefaultOptions()
	l := logrus.New()
	l.SetOutput(io.Discard)
	opts.Logger = l
	return opts
}

func sampleTree() *fakeSFTP {
	return newFakeSFTP(map[string]fakeNode{
		"/root":                  {mode: os.ModeDir, children: []string{"keep", "skip", ".hidden", "file.txt", "link", "pipe"}},
		"/root/keep":             {mode: os.ModeDir, children: []string{"inside.txt", "denied"}},
		"/root/keep/inside.txt":  {mode: 0, size: 5},
		"/root/keep/denied":      {mode: os.ModeDir, errOnRead: true},
		"/root/skip":             {mode: os.ModeDir, children: []string{"ignored.txt"}},
		"/root/skip/ignored.txt": {mode: 0, size: 9},
		"/root/.hidden":          {mode: 0, size: 11},
		"/root/file.txt":         {mode: 0, size: 7},
		"/root/link":             {mode: os.ModeSymlink, size: 3, target: "/root/file.txt"},
		"/root/pipe":             {mode: os.ModeNamedPipe},
	})
}

func TestFS_Root(t *testing.T) {
	client := newFakeSFTP(map[string]fakeNode{
		"/root":       {mode: os.ModeDir},
		"/root/file":  {mode: 0, size: 1},
		"/alias":      {mode: os.ModeSymlink, target: "/root"},
		"/root/inner": {mode: os.ModeDir},
	})
	f := newFS(client, noopCloser{})

	got, err := f.Root("/alias/")
	require.NoError(t, err)
	assert.Equal(t, "/root", got, "symlinked root resolves")

	_, err = f.Root("/root/file")
	assert.ErrorIs(t, err, syscall.ENOTDIR)
	_, err = f.Root("/missing")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFS_ScandirOverSFTP(t *testing.T) {
	opts := quietOptions()
	opts.SkipHidden = true
	opts.DirExclude = []string{"skip"}
	opts.Sorted = true
	opts.Metadata = scanner.MetadataExt

	s, err := scanner.NewScandirFS(newFS(sampleTree(), noopCloser{}), "/root", opts)
	require.NoError(t, err)
	entries, errs, err := s.Collect()
	require.NoError(t, err)

	var paths []string
	byPath := map[string]model.ExtEntry{}
	for _, r := range entries {
		paths = append(paths, r.GetPath())
		byPath[r.GetPath()] = r.(model.ExtEntry)
	}
	assert.Equal(t, []string{"file.txt", "keep", "link", "pipe", "keep/denied", "keep/inside.txt"}, paths)

	require.Len(t, errs, 1)
	assert.Equal(t, "keep/denied", errs[0].Path)

	file := byPath["file.txt"]
	assert.Equal(t, uint64(7), file.Size)
	assert.Equal(t, uint64(defaultRemoteBlockSize), file.Usage)
	assert.True(t, byPath["link"].IsSymlink, "links are reported, not followed")
	assert.False(t, byPath["pipe"].Pipe, "pipes are not interpreted over SFTP")
}

func TestFS_CountOverSFTP(t *testing.T) {
	opts := quietOptions()
	opts.Metadata = scanner.MetadataExt

	c, err := scanner.NewCountFS(newFS(sampleTree(), noopCloser{}), "/root", opts)
	require.NoError(t, err)
	stats, err := c.Collect()
	require.NoError(t, err)

	want := model.Statistics{
		Dirs:   3,
		Files:  4,
		Slinks: 1,
		Others: 1,
		Size:   5 + 9 + 11 + 7 + 3,
		Usage:  5 * defaultRemoteBlockSize,
	}
	got := stats
	got.Errors = nil
	assert.Equal(t, want, got)
	assert.Len(t, stats.Errors, 1)
}

func TestFS_BlockSizeFromStatVFS(t *testing.T) {
	client := &vfsFakeSFTP{
		fakeSFTP: newFakeSFTP(map[string]fakeNode{
			"/root":      {mode: os.ModeDir, children: []string{"tiny"}},
			"/root/tiny": {mode: 0, size: 1},
		}),
		vfs: &sftp.StatVFS{Bsize: 8192, Frsize: 1024},
	}
	opts := quietOptions()
	opts.Metadata = scanner.MetadataExt

	c, err := scanner.NewCountFS(newFS(client, noopCloser{}), "/root", opts)
	require.NoError(t, err)
	stats, err := c.Collect()
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), stats.Usage, "usage rounds to the fragment size")
}

func TestFS_InspectUsesSFTPAttributes(t *testing.T) {
	f := newFS(newFakeSFTP(nil), noopCloser{})
	info := fakeInfo{name: "x", mode: 0o640, sys: &sftp.FileStat{Mode: 0o100640, UID: 1000, GID: 100, Atime: 1_700_000_100}}

	st := f.Inspect(info)
	assert.Equal(t, uint32(1000), st.UID)
	assert.Equal(t, uint32(100), st.GID)
	assert.Equal(t, uint32(0o100640), st.Mode)
	assert.Equal(t, int64(1_700_000_100), st.Atime.Unix())
	assert.False(t, st.HasBlocks || st.HasSpecial, "sftp reports neither block counts nor special nodes")
}

func TestRemoteBlockSize_Fallback(t *testing.T) {
	assert.Equal(t, uint64(defaultRemoteBlockSize), remoteBlockSize(newFakeSFTP(nil), "/"))

	client := &vfsFakeSFTP{fakeSFTP: newFakeSFTP(nil), vfs: &sftp.StatVFS{Bsize: 2048}}
	assert.Equal(t, uint64(2048), remoteBlockSize(client, "/"))

	client = &vfsFakeSFTP{fakeSFTP: newFakeSFTP(nil), err: errors.New("unsupported")}
	assert.Equal(t, uint64(defaultRemoteBlockSize), remoteBlockSize(client, "/"))
}

func TestDial_RejectsBadPort(t *testing.T) {
	_, err := Dial(context.Background(), Config{Target: "user@host", Port: 0})
	assert.Error(t, err, "port 0")
	_, err = Dial(context.Background(), Config{Target: "nobody", Port: 22})
	assert.Error(t, err, "target without user")
}

func TestConnectSSH_RespectsContextCancellation(t *testing.T) {
	origDial := dialContext
	origNewClientConn := sshNewClientConn
	t.Cleanup(func() {
		dialContext = origDial
		sshNewClientConn = origNewClientConn
	})

	dialCalled := false
	handshakeCalled := false

	dialContext = func(ctx context.Context, _, _ string) (net.Conn, error) {
		dialCalled = true
		<-ctx.Done()
		return nil, ctx.Err()
	}
	sshNewClientConn = func(net.Conn, string, *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
		handshakeCalled = true
		return nil, nil, nil, errors.New("unexpected handshake call")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := connectSSH(ctx, "example.com:22", &ssh.ClientConfig{
		User:            "user",
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, dialCalled)
	assert.False(t, handshakeCalled, "no handshake after a cancelled dial")
}

type noopCloser struct{}

func (noopCloser) Close() error { return nil }

type fakeNode struct {
	mode      os.FileMode
	size      int64
	mtime     time.Time
	target    string
	children  []string
	errOnRead bool // if true, ReadDir returns an error
}

type fakeSFTP struct {
	nodes map[string]fakeNode
}

func newFakeSFTP(nodes map[string]fakeNode) *fakeSFTP {
	cp := make(map[string]fakeNode, len(nodes))
	for k, v := range nodes {
		if v.mtime.IsZero() {
			v.mtime = time.Unix(1700000000, 0)
		}
		cp[cleanRemotePath(k)] = v
	}
	return &fakeSFTP{nodes: cp}
}

func (f *fakeSFTP) ReadDir(path string) ([]os.FileInfo, error) {
	node, err := f.get(path)
	if err != nil {
		return nil, err
	}
	if !node.mode.IsDir() {
		return nil, fmt.Errorf("not a directory")
	}
	if node.errOnRead {
		return nil, fmt.Errorf("permission denied")
	}

	out := make([]os.FileInfo, 0, len(node.children))
	for _, child := range node.children {
		childPath := cleanRemotePath(pathpkg.Join(cleanRemotePath(path), child))
		childNode, ok := f.nodes[childPath]
		if !ok {
			return nil, fmt.Errorf("missing child %s", childPath)
		}
		out = append(out, fakeInfo{name: child, size: childNode.size, mode: childNode.mode, mtime: childNode.mtime})
	}
	return out, nil
}

func (f *fakeSFTP) Stat(path string) (os.FileInfo, error) {
	resolved, err := f.RealPath(path)
	if err != nil {
		return nil, err
	}
	node, ok := f.nodes[resolved]
	if !ok {
		return nil, os.ErrNotExist
	}
	return fakeInfo{name: pathpkg.Base(resolved), size: node.size, mode: node.mode, mtime: node.mtime}, nil
}

func (f *fakeSFTP) RealPath(path string) (string, error) {
	clean := cleanRemotePath(path)
	return f.resolve(clean, map[string]bool{})
}

func (f *fakeSFTP) get(path string) (fakeNode, error) {
	node, ok := f.nodes[cleanRemotePath(path)]
	if !ok {
		return fakeNode{}, os.ErrNotExist
	}
	return node, nil
}

func (f *fakeSFTP) resolve(path string, seen map[string]bool) (string, error) {
	node, ok := f.nodes[path]
	if !ok {
		return "", os.ErrNotExist
	}
	if node.mode&os.ModeSymlink == 0 {
		return path, nil
	}
	if seen[path] {
		return "", fmt.Errorf("symlink cycle")
	}
	seen[path] = true

	target := node.target
	if !pathpkg.IsAbs(target) {
		target = pathpkg.Join(pathpkg.Dir(path), target)
	}
	return f.resolve(cleanRemotePath(target), seen)
}

type vfsFakeSFTP struct {
	*fakeSFTP
	vfs *sftp.StatVFS
	err error
}

func (f *vfsFakeSFTP) StatVFS(string) (*sftp.StatVFS, error) {
	return f.vfs, f.err
}

type fakeInfo struct {
	name  string
	size  int64
	mode  os.FileMode
	mtime time.Time
	sys   any
}

func (fi fakeInfo) Name() string       { return fi.name }
func (fi fakeInfo) Size() int64        { return fi.size }
func (fi fakeInfo) Mode() os.FileMode  { return fi.mode }
func (fi fakeInfo) ModTime() time.Time { return fi.mtime }
func (fi fakeInfo) IsDir() bool        { return fi.mode.IsDir() }
func (fi fakeInfo) Sys() any           { return fi.sys }
