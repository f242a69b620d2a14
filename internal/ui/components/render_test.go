package components

import (
	"testing"
	"time"

	"github.com/sadopc/gscandir/internal/scanner"
	"github.com/sadopc/gscandir/internal/ui/style"
	"github.com/stretchr/testify/assert"
)

func TestRenderScanProgress_SmallWidth(t *testing.T) {
	theme := style.DefaultTheme()
	v := ProgressView{Root: "/a/very/long/root/path/that/will/not/fit", Progress: scanner.Progress{}}
	for _, w := range []int{0, 1, 2, 5} {
		assert.NotPanics(t, func() { RenderScanProgress(theme, v, w) }, "width=%d", w)
	}
}

func TestRenderScanProgress_Content(t *testing.T) {
	theme := style.DefaultTheme()
	v := ProgressView{
		Root: "/data",
		Progress: scanner.Progress{
			FilesScanned: 1500,
			DirsScanned:  12,
			BytesFound:   2048,
			Errors:       3,
			Duration:     2 * time.Second,
		},
		Help: "q stop",
	}

	out := RenderScanProgress(theme, v, 80)
	for _, want := range []string{"Counting", "/data", "1.5K", "12", "2.0 KiB", "Errors: 3", "Elapsed: 2s", "q stop"} {
		assert.Contains(t, out, want)
	}

	v.Progress.Done = true
	out = RenderScanProgress(theme, v, 80)
	assert.Contains(t, out, "Done")
	assert.NotContains(t, out, "q stop", "no help once done")
}

func TestRenderScanProgress_HidesUsageWithoutExtMetadata(t *testing.T) {
	out := RenderScanProgress(style.DefaultTheme(), ProgressView{Root: "/data"}, 80)
	assert.NotContains(t, out, "Usage")
}
