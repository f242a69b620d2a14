package util

import (
	"fmt"
	"io/fs"
	"time"
)

// FormatSize returns a human-readable size string.
func FormatSize(bytes uint64) string {
	const (
		_          = iota
		kB float64 = 1 << (10 * iota)
		mB
		gB
		tB
		pB
	)

	b := float64(bytes)
	switch {
	case b >= pB:
		return fmt.Sprintf("%.1f PiB", b/pB)
	case b >= tB:
		return fmt.Sprintf("%.1f TiB", b/tB)
	case b >= gB:
		return fmt.Sprintf("%.1f GiB", b/gB)
	case b >= mB:
		return fmt.Sprintf("%.1f MiB", b/mB)
	case b >= kB:
		return fmt.Sprintf("%.1f KiB", b/kB)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatCount returns a human-readable count string.
func FormatCount(n uint64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1_000_000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	if n < 1_000_000_000 {
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	}
	return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000)
}

// FormatDuration rounds d for display: milliseconds below a second,
// tenths of a second above.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

// FormatMode renders raw unix mode bits as an fs.FileMode string, e.g.
// "drwxr-xr-x". Setuid, setgid and sticky bits are not shown.
func FormatMode(mode uint32) string {
	m := fs.FileMode(mode & 0o777)
	switch mode & 0o170000 {
	case 0o040000:
		m |= fs.ModeDir
	case 0o120000:
		m |= fs.ModeSymlink
	case 0o020000:
		m |= fs.ModeDevice | fs.ModeCharDevice
	case 0o060000:
		m |= fs.ModeDevice
	case 0o010000:
		m |= fs.ModeNamedPipe
	case 0o140000:
		m |= fs.ModeSocket
	}
	return m.String()
}
