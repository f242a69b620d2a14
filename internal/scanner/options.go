package scanner

import (
	"fmt"

	"github.com/sadopc/gscandir/internal/filter"
	"github.com/sadopc/gscandir/internal/model"
	"github.com/sirupsen/logrus"
)

// Shape selects what a scan produces.
type Shape int

const (
	// ShapeEntries produces one result per entry.
	ShapeEntries Shape = iota
	// ShapeToc produces one table of contents per directory.
	ShapeToc
	// ShapeStats produces aggregate statistics only.
	ShapeStats
)

func (s Shape) String() string {
	switch s {
	case ShapeEntries:
		return "entries"
	case ShapeToc:
		return "toc"
	case ShapeStats:
		return "stats"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Metadata selects how much metadata is extracted per entry.
type Metadata int

const (
	// MetadataBasic extracts type flags, timestamps and mode.
	MetadataBasic Metadata = iota
	// MetadataExt additionally extracts inode, links, sizes, blocks and ownership.
	MetadataExt
)

func (m Metadata) String() string {
	switch m {
	case MetadataBasic:
		return "basic"
	case MetadataExt:
		return "ext"
	default:
		return fmt.Sprintf("Metadata(%d)", int(m))
	}
}

// Options configures a scan.
type Options struct {
	// Sorted orders the children of each directory by name. If Order is
	// OrderOS, lexical order is used.
	Sorted bool
	// Order selects the name ordering; a non-OS order implies Sorted.
	Order model.Order
	// SkipHidden skips entries whose name starts with a dot.
	SkipHidden bool
	// MaxDepth limits descent (0 = unlimited). The root has depth 0, its
	// children depth 1.
	MaxDepth int
	// MaxFileCount stops emitting non-directory entries once reached (0 = unlimited).
	MaxFileCount int

	DirInclude  []string
	DirExclude  []string
	FileInclude []string
	FileExclude []string
	// CaseSensitive makes filter patterns case sensitive.
	CaseSensitive bool

	Shape    Shape
	Metadata Metadata

	// Logger receives lifecycle logs. Defaults to the logrus standard logger.
	Logger logrus.FieldLogger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		Shape:    ShapeEntries,
		Metadata: MetadataBasic,
	}
}

// order resolves Sorted and Order into the effective ordering.
func (o *Options) order() model.Order {
	if o.Order != model.OrderOS {
		return o.Order
	}
	if o.Sorted {
		return model.OrderLexical
	}
	return model.OrderOS
}

// rules is the compiled, immutable form of Options used by the walk.
type rules struct {
	order        model.Order
	skipHidden   bool
	maxDepth     int
	maxFileCount int
	dirs         *filter.Set
	files        *filter.Set
	metadata     Metadata
}

func (o *Options) compile() (*rules, error) {
	if o.MaxDepth < 0 {
		return nil, fmt.Errorf("max depth must be >= 0, got %d", o.MaxDepth)
	}
	if o.MaxFileCount < 0 {
		return nil, fmt.Errorf("max file count must be >= 0, got %d", o.MaxFileCount)
	}
	switch o.Order {
	case model.OrderOS, model.OrderLexical, model.OrderNatural:
	default:
		return nil, fmt.Errorf("unknown order %v", o.Order)
	}
	switch o.Shape {
	case ShapeEntries, ShapeToc, ShapeStats:
	default:
		return nil, fmt.Errorf("unknown shape %v", o.Shape)
	}
	switch o.Metadata {
	case MetadataBasic, MetadataExt:
	default:
		return nil, fmt.Errorf("unknown metadata level %v", o.Metadata)
	}

	dirs, err := filter.New(o.DirInclude, o.DirExclude, o.CaseSensitive)
	if err != nil {
		return nil, fmt.Errorf("directory filter: %w", err)
	}
	files, err := filter.New(o.FileInclude, o.FileExclude, o.CaseSensitive)
	if err != nil {
		return nil, fmt.Errorf("file filter: %w", err)
	}

	return &rules{
		order:        o.order(),
		skipHidden:   o.SkipHidden,
		maxDepth:     o.MaxDepth,
		maxFileCount: o.MaxFileCount,
		dirs:         dirs,
		files:        files,
		metadata:     o.Metadata,
	}, nil
}

// admit reports whether an entry named name passes the hidden and filter rules.
func (r *rules) admit(name string, isDir bool) bool {
	if r.skipHidden && isHidden(name) {
		return false
	}
	if isDir {
		return r.dirs.Match(name)
	}
	return r.files.Match(name)
}

// descend reports whether the children of a directory at depth are walked.
func (r *rules) descend(depth int) bool {
	return r.maxDepth == 0 || depth < r.maxDepth
}

func isHidden(name string) bool {
	return len(name) > 0 && name[0] == '.'
}
