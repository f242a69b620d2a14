//go:build windows

package scanner

import (
	"io/fs"
	"os"
	"syscall"
	"time"
)

var errNotDir = syscall.ENOTDIR

func readDir(dir string) ([]Dirent, error) {
	return readDirPortable(dir)
}

func lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

// getStatInfo on Windows estimates disk usage from the apparent size.
// Inode, device and block counts are not reported.
func getStatInfo(info fs.FileInfo) StatInfo {
	st := StatInfo{Mode: uint32(info.Mode().Perm()), Nlink: 1}
	if d, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		st.Ctime = time.Unix(0, d.CreationTime.Nanoseconds())
		st.Atime = time.Unix(0, d.LastAccessTime.Nanoseconds())
	}
	return st
}
