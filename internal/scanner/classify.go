package scanner

import (
	"io/fs"

	"github.com/sadopc/gscandir/internal/model"
)

// kind is the category an entry is counted under.
type kind uint8

const (
	kindError kind = iota
	kindDir
	kindFile
	kindSymlink
	kindDevice
	kindPipe
	kindOther
)

// kindOf maps a file mode to its category. Devices and pipes fall back to
// kindOther on platforms that do not report them.
func kindOf(mode fs.FileMode, special bool) kind {
	switch {
	case mode.IsDir():
		return kindDir
	case mode.IsRegular():
		return kindFile
	case mode&fs.ModeSymlink != 0:
		return kindSymlink
	case special && mode&fs.ModeDevice != 0:
		return kindDevice
	case special && mode&fs.ModeNamedPipe != 0:
		return kindPipe
	default:
		return kindOther
	}
}

// classify turns one directory child into a result at the requested metadata
// level. rel is the path relative to the scan root.
func classify(fsys FS, rel string, d Dirent, level Metadata) (model.Result, kind) {
	if d.Err != nil {
		return model.ErrorEntry{Path: rel, Message: d.Err.Error()}, kindError
	}
	return describe(rel, d.Info, fsys.Inspect(d.Info), level)
}

func describe(rel string, info fs.FileInfo, st StatInfo, level Metadata) (model.Result, kind) {
	mode := info.Mode()
	k := kindOf(mode, st.HasSpecial)

	e := model.Entry{
		Path:      rel,
		IsDir:     k == kindDir,
		IsFile:    k == kindFile,
		IsSymlink: k == kindSymlink,
		Ctime:     model.EpochSeconds(st.Ctime),
		Mtime:     model.EpochSeconds(info.ModTime()),
		Atime:     model.EpochSeconds(st.Atime),
		Mode:      st.Mode,
	}
	if level == MetadataBasic {
		return e, k
	}

	size := uint64(max(info.Size(), 0))
	return model.ExtEntry{
		Entry:    e,
		Ino:      st.Ino,
		Dev:      st.Dev,
		Nlink:    st.Nlink,
		Size:     size,
		Blksize:  st.Blksize,
		Blocks:   st.Blocks,
		UID:      st.UID,
		GID:      st.GID,
		Rdev:     st.Rdev,
		Usage:    st.Usage(size),
		Hardlink: k != kindDir && st.Nlink > 1,
		Device:   k == kindDevice,
		Pipe:     k == kindPipe,
	}, k
}
