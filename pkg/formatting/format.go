package formatting

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// Sizeable is a number of bytes that can be printed in a human readable format
type Sizeable uint64

// String prints the Sizeable in a human readable format
func (s Sizeable) String() string {
	return Size(uint64(s))
}

// Count takes a number and prints it in a human readable format,
// e.g. 1000 -> 1k, 1000000 -> 1M, 1000000000 -> 1G
func Count(val uint64) string {
	count := 0
	var valF = float64(val)

	units := []string{" ", "k", "M", "G", "T", "P", "E", "Z", "Y"}

	for val >= 1000 {
		val /= 1000
		valF /= 1000.0
		count++
	}

	return fmt.Sprintf("%.2f %s", valF, units[count])
}

// Size prints out size in a human-readable format (e.g. 10 MB)
func Size(size uint64) string {
	count := 0
	var sizeF = float64(size)

	units := []string{" B", "kB", "MB", "GB", "TB", "PB", "EB", "ZB", "YB"}

	for size > 1024 {
		size /= 1024
		sizeF /= 1024.0
		count++
	}

	return fmt.Sprintf("%.2f %s", sizeF, units[count])
}

// Throughput prints the rate at which n bytes were processed within d (e.g. 10.00 MB/s)
func Throughput(n int64, d time.Duration) string {
	if n <= 0 || d <= 0 {
		return Size(0) + "/s"
	}
	return Size(uint64(float64(n)/d.Seconds())) + "/s"
}

// Duration prints out d in a human-readable duration format. Sub-minute durations are
// printed with millisecond precision, longer ones are rounded to full seconds
func Duration(d time.Duration) string {
	if d < time.Second {
		if d <= 0 {
			return "0s"
		}
		return fmt.Sprintf("%dms", d/time.Millisecond)
	}

	d = d.Round(time.Millisecond)
	if d < time.Minute {
		return strconv.FormatFloat(d.Seconds(), 'f', -1, 64) + "s"
	}

	d = d.Round(time.Second)

	var b strings.Builder
	if days := d / day; days > 0 {
		fmt.Fprintf(&b, "%dd", days)
		d -= days * day
	}
	if hours := d / time.Hour; hours > 0 || b.Len() > 0 {
		fmt.Fprintf(&b, "%dh", hours)
		d -= hours * time.Hour
	}
	minutes := d / time.Minute
	d -= minutes * time.Minute
	fmt.Fprintf(&b, "%dm%ds", minutes, d/time.Second)

	return b.String()
}
