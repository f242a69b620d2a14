//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly || solaris

package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"
)

var errNotDir = unix.ENOTDIR

// statFileInfo adapts a unix.Stat_t to fs.FileInfo.
type statFileInfo struct {
	name string
	st   unix.Stat_t
}

func (fi *statFileInfo) Name() string       { return fi.name }
func (fi *statFileInfo) Size() int64        { return fi.st.Size }
func (fi *statFileInfo) Mode() fs.FileMode  { return fileMode(uint32(fi.st.Mode)) }
func (fi *statFileInfo) ModTime() time.Time { return time.Unix(fi.st.Mtim.Unix()) }
func (fi *statFileInfo) IsDir() bool        { return fi.Mode().IsDir() }
func (fi *statFileInfo) Sys() any           { return &fi.st }

func fileMode(m uint32) fs.FileMode {
	mode := fs.FileMode(m & 0o777)
	switch m & unix.S_IFMT {
	case unix.S_IFBLK:
		mode |= fs.ModeDevice
	case unix.S_IFCHR:
		mode |= fs.ModeDevice | fs.ModeCharDevice
	case unix.S_IFDIR:
		mode |= fs.ModeDir
	case unix.S_IFIFO:
		mode |= fs.ModeNamedPipe
	case unix.S_IFLNK:
		mode |= fs.ModeSymlink
	case unix.S_IFSOCK:
		mode |= fs.ModeSocket
	case unix.S_IFREG:
	default:
		mode |= fs.ModeIrregular
	}
	if m&unix.S_ISUID != 0 {
		mode |= fs.ModeSetuid
	}
	if m&unix.S_ISGID != 0 {
		mode |= fs.ModeSetgid
	}
	if m&unix.S_ISVTX != 0 {
		mode |= fs.ModeSticky
	}
	return mode
}

// readDir lists dir and stats every child relative to the directory fd,
// without following symlinks.
func readDir(dir string) ([]Dirent, error) {
	dirFD, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: dir, Err: err}
	}
	d := os.NewFile(uintptr(dirFD), dir)
	defer d.Close()

	names, listErr := d.Readdirnames(-1)
	out := make([]Dirent, 0, len(names))
	for _, name := range names {
		fi := &statFileInfo{name: name}
		if err := unix.Fstatat(dirFD, name, &fi.st, unix.AT_SYMLINK_NOFOLLOW); err != nil {
			out = append(out, Dirent{Name: name, Err: &os.PathError{Op: "lstat", Path: filepath.Join(dir, name), Err: err}})
			continue
		}
		out = append(out, Dirent{Name: name, Info: fi})
	}
	return out, listErr
}

// lstat stats a single path without following symlinks.
func lstat(path string) (fs.FileInfo, error) {
	fi := &statFileInfo{name: filepath.Base(path)}
	if err := unix.Lstat(path, &fi.st); err != nil {
		return nil, &os.PathError{Op: "lstat", Path: path, Err: err}
	}
	return fi, nil
}

// getStatInfo extracts inode, device, block usage, ownership and timestamps.
func getStatInfo(info fs.FileInfo) StatInfo {
	st, ok := info.Sys().(*unix.Stat_t)
	if !ok {
		return StatInfo{Mode: uint32(info.Mode().Perm())}
	}
	return StatInfo{
		Ino:        uint64(st.Ino),
		Dev:        uint64(st.Dev),
		Nlink:      uint64(st.Nlink),
		Blksize:    uint64(st.Blksize),
		Blocks:     uint64(st.Blocks),
		UID:        st.Uid,
		GID:        st.Gid,
		Rdev:       uint64(st.Rdev),
		Mode:       uint32(st.Mode),
		Ctime:      time.Unix(st.Ctim.Unix()),
		Atime:      time.Unix(st.Atim.Unix()),
		HasBlocks:  true,
		HasSpecial: true,
	}
}
