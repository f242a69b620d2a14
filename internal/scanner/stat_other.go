//go:build !windows && !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly && !solaris

package scanner

import (
	"errors"
	"io/fs"
	"os"
)

var errNotDir = errors.New("not a directory")

func readDir(dir string) ([]Dirent, error) {
	return readDirPortable(dir)
}

func lstat(path string) (fs.FileInfo, error) {
	return os.Lstat(path)
}

func getStatInfo(info fs.FileInfo) StatInfo {
	return StatInfo{Mode: uint32(info.Mode().Perm()), Nlink: 1, Ctime: info.ModTime(), Atime: info.ModTime()}
}
