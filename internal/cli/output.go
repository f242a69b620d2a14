package cli

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/sadopc/gscandir/internal/model"
	"github.com/sadopc/gscandir/internal/util"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	dirColor     = color.New(color.FgBlue, color.Bold)
	linkColor    = color.New(color.FgCyan)
	otherColor   = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	mutedColor   = color.New(color.Faint)
	warningColor = color.New(color.FgYellow, color.Bold)
)

func printStats(w io.Writer, root string, s model.Statistics, elapsed time.Duration) {
	headerColor.Fprintf(w, "%s\n", root)

	row := func(label string, v uint64) {
		fmt.Fprintf(w, "  %-9s %s\n", label+":", util.FormatCount(v))
	}
	row("Dirs", s.Dirs)
	row("Files", s.Files)
	row("Symlinks", s.Slinks)
	if s.Hlinks > 0 {
		row("Hardlinks", s.Hlinks)
	}
	if s.Devices > 0 {
		row("Devices", s.Devices)
	}
	if s.Pipes > 0 {
		row("Pipes", s.Pipes)
	}
	if s.Others > 0 {
		row("Others", s.Others)
	}
	if s.Size > 0 || s.Usage > 0 {
		fmt.Fprintf(w, "  %-9s %s\n", "Size:", util.FormatSize(s.Size))
		fmt.Fprintf(w, "  %-9s %s\n", "Usage:", util.FormatSize(s.Usage))
	}
	if elapsed > 0 {
		mutedColor.Fprintf(w, "  %-9s %s\n", "Elapsed:", util.FormatDuration(elapsed))
	}

	if len(s.Errors) > 0 {
		errorColor.Fprintf(w, "  %d error(s):\n", len(s.Errors))
		for _, msg := range s.Errors {
			errorColor.Fprintf(w, "    %s\n", msg)
		}
	}
}

func printResult(w io.Writer, r model.Result) {
	switch e := r.(type) {
	case model.ErrorEntry:
		errorColor.Fprintf(w, "%-10s %9s  %s\n", "error", "", e.Error())
	case model.ExtEntry:
		fmt.Fprintf(w, "%s %9s  %s\n", util.FormatMode(e.Mode), util.FormatSize(e.Size), colorName(e.Entry, e.Device || e.Pipe))
	case model.Entry:
		fmt.Fprintf(w, "%s %9s  %s\n", util.FormatMode(e.Mode), "", colorName(e, false))
	}
}

func colorName(e model.Entry, special bool) string {
	switch {
	case e.IsDir:
		return dirColor.Sprint(e.Path)
	case e.IsSymlink:
		return linkColor.Sprint(e.Path)
	case special || !e.IsFile:
		return otherColor.Sprint(e.Path)
	}
	return e.Path
}

func printToc(w io.Writer, t model.DirToc) {
	headerColor.Fprintf(w, "%s\n", t.Path)
	for _, name := range t.Dirs {
		fmt.Fprintf(w, "  %s\n", dirColor.Sprint(name+"/"))
	}
	for _, name := range t.Files {
		fmt.Fprintf(w, "  %s\n", name)
	}
	for _, name := range t.Symlinks {
		fmt.Fprintf(w, "  %s\n", linkColor.Sprint(name+"@"))
	}
	for _, name := range t.Other {
		fmt.Fprintf(w, "  %s\n", otherColor.Sprint(name))
	}
	for _, msg := range t.Errors {
		fmt.Fprintf(w, "  %s\n", errorColor.Sprint("! "+msg))
	}
}

func printSummary(w io.Writer, parts ...string) {
	mutedColor.Fprintln(w, strings.Join(parts, ", "))
}

// printCategories prints the file counts per category, largest first.
func printCategories(w io.Writer, c model.CategoryCounts) {
	if len(c) == 0 {
		return
	}
	cats := make([]model.Category, 0, len(c))
	for cat := range c {
		cats = append(cats, cat)
	}
	slices.SortFunc(cats, func(a, b model.Category) int {
		if n := cmp.Compare(c[b], c[a]); n != 0 {
			return n
		}
		return cmp.Compare(a, b)
	})
	parts := make([]string, len(cats))
	for i, cat := range cats {
		parts[i] = fmt.Sprintf("%s %d", cat, c[cat])
	}
	mutedColor.Fprintf(w, "files by type: %s\n", strings.Join(parts, ", "))
}

func printInterrupted(w io.Writer) {
	warningColor.Fprintln(w, "interrupted: results are partial")
}
