package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/sadopc/gscandir/internal/ui/style"
	"github.com/sadopc/gscandir/internal/util"
)

// ProgressView is everything needed to draw one frame of the count view.
type ProgressView struct {
	Root     string
	Progress scanner.Progress
	Spinner  string
	Phase    float64
	Help     string
}

// RenderScanProgress renders the counting progress box.
func RenderScanProgress(theme style.Theme, v ProgressView, width int) string {
	boxWidth := 50
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	inner := max(boxWidth-4, 0)

	var lines []string

	title := "Counting..."
	if v.Progress.Done {
		title = theme.DoneText.Render("Done")
	} else {
		title = theme.TitleStyle.Render(strings.TrimSpace(v.Spinner + " " + title))
	}
	lines = append(lines, title)
	lines = append(lines, ansi.Truncate(theme.PathStyle.Render(v.Root), inner, "…"))
	lines = append(lines, "")

	p := v.Progress
	lines = append(lines, theme.StatStyle.Render(fmt.Sprintf("Files:  %s", util.FormatCount(uint64(p.FilesScanned)))))
	lines = append(lines, theme.StatStyle.Render(fmt.Sprintf("Dirs:   %s", util.FormatCount(uint64(p.DirsScanned)))))
	if p.BytesFound > 0 {
		lines = append(lines, theme.StatStyle.Render(fmt.Sprintf("Usage:  %s", util.FormatSize(uint64(p.BytesFound)))))
	}
	lines = append(lines, theme.StatStyle.Render(fmt.Sprintf("Speed:  %s items/s", util.FormatCount(uint64(p.ItemsPerSecond())))))

	if p.Errors > 0 {
		lines = append(lines, theme.ErrorText.Render(fmt.Sprintf("Errors: %d", p.Errors)))
	}

	lines = append(lines, "")
	if !p.Done {
		lines = append(lines, theme.ActivityBar(inner, v.Phase))
	}
	elapsed := fmt.Sprintf("Elapsed: %s", util.FormatDuration(p.Duration))
	lines = append(lines, lipgloss.NewStyle().Foreground(theme.TextMuted).Render(elapsed))
	if v.Help != "" && !p.Done {
		lines = append(lines, v.Help)
	}

	content := strings.Join(lines, "\n")
	if boxWidth <= 0 {
		return content
	}
	return theme.BoxStyle.Width(boxWidth).Render(content)
}
