package scanner

import "time"

// Progress reports counting progress.
type Progress struct {
	// FilesScanned is the number of non-directory entries counted so far.
	FilesScanned int64
	// DirsScanned is the number of directories counted so far.
	DirsScanned int64
	// BytesFound is the disk usage found so far. Zero unless extended
	// metadata is requested.
	BytesFound int64
	// Errors is the count of errors encountered.
	Errors int64
	// Done indicates counting is complete.
	Done bool
	// StartTime is when the count began.
	StartTime time.Time
	// Duration is elapsed time.
	Duration time.Duration
}

// ItemsPerSecond returns the scan rate.
func (p Progress) ItemsPerSecond() float64 {
	if p.Duration.Seconds() == 0 {
		return 0
	}
	return float64(p.FilesScanned+p.DirsScanned) / p.Duration.Seconds()
}
