package model

// Toc groups the immediate children of one directory by type.
type Toc struct {
	Dirs     []string `json:"dirs"`
	Files    []string `json:"files"`
	Symlinks []string `json:"symlinks,omitempty"`
	Other    []string `json:"other,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// DirToc is the table of contents of the directory at Path ("." for the root).
type DirToc struct {
	Path string `json:"path"`
	Toc
}

// Len returns the number of names recorded in the table, errors excluded.
func (t *Toc) Len() int {
	return len(t.Dirs) + len(t.Files) + len(t.Symlinks) + len(t.Other)
}

// Merge appends the contents of o to t.
func (t *Toc) Merge(o Toc) {
	t.Dirs = append(t.Dirs, o.Dirs...)
	t.Files = append(t.Files, o.Files...)
	t.Symlinks = append(t.Symlinks, o.Symlinks...)
	t.Other = append(t.Other, o.Other...)
	t.Errors = append(t.Errors, o.Errors...)
}
