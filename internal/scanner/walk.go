package scanner

import (
	"slices"
	"sync/atomic"

	"github.com/sadopc/gscandir/internal/model"
)

// sink receives what a walk produces. Calls come from a single goroutine.
type sink interface {
	add(r model.Result, k kind)
	addToc(t model.DirToc)
	// dirDone is called after every directory has been listed.
	dirDone()
	// done is called once when the walk returns, cancelled or not.
	done()
}

type frame struct {
	abs   string
	rel   string
	depth int
}

// walk performs an iterative depth-first traversal below root. The root
// itself is never emitted. The children of a directory are emitted together,
// then its subdirectories are entered in listing order.
func walk(fsys FS, root string, r *rules, cancel *atomic.Bool, out sink) {
	defer out.done()

	files := 0
	stack := []frame{{abs: root}}
	for len(stack) > 0 {
		if cancel.Load() {
			return
		}
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := f.rel
		if key == "" {
			key = "."
		}

		// A listing error belongs to the directory itself; whatever was
		// listed before it is still walked.
		var toc model.Toc
		ents, err := fsys.ReadDir(f.abs)
		if err != nil {
			out.add(model.ErrorEntry{Path: key, Message: err.Error()}, kindError)
			toc.Errors = append(toc.Errors, err.Error())
			if len(ents) == 0 {
				out.addToc(model.DirToc{Path: key, Toc: toc})
				out.dirDone()
				continue
			}
		}
		if less := r.order.Less(); less != nil {
			slices.SortStableFunc(ents, func(a, b Dirent) int {
				switch {
				case less(a.Name, b.Name):
					return -1
				case less(b.Name, a.Name):
					return 1
				}
				return 0
			})
		}

		var subdirs []frame
		for _, d := range ents {
			if cancel.Load() {
				break
			}
			isDir := d.Err == nil && d.Info.IsDir()
			if d.Err != nil {
				if r.skipHidden && isHidden(d.Name) {
					continue
				}
			} else if !r.admit(d.Name, isDir) {
				continue
			}
			if !isDir && d.Err == nil && r.maxFileCount > 0 && files >= r.maxFileCount {
				continue
			}

			rel := fsys.Join(f.rel, d.Name)
			res, k := classify(fsys, rel, d, r.metadata)
			out.add(res, k)

			switch k {
			case kindError:
				toc.Errors = append(toc.Errors, res.(model.ErrorEntry).Message)
				continue
			case kindDir:
				toc.Dirs = append(toc.Dirs, d.Name)
				if r.descend(f.depth + 1) {
					subdirs = append(subdirs, frame{abs: fsys.Join(f.abs, d.Name), rel: rel, depth: f.depth + 1})
				}
				continue
			case kindFile:
				toc.Files = append(toc.Files, d.Name)
			case kindSymlink:
				toc.Symlinks = append(toc.Symlinks, d.Name)
			default:
				toc.Other = append(toc.Other, d.Name)
			}
			files++
		}

		out.addToc(model.DirToc{Path: key, Toc: toc})
		out.dirDone()

		// Push in reverse so the first listed subdirectory is visited next.
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}
}
