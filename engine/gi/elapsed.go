package gi

import (
	"fmt"
	"time"
)

// FormatElapsed renders a wall-clock duration for bake logs: "01m 15.000s" from one minute,
// "1.200s" from one second and "500.000ms" below that.
//
// Parameters:
//   - d: the duration
//
// Returns:
//   - string: the formatted duration
func FormatElapsed(d time.Duration) string {
	// Round to the printed precision before picking a unit so 59.9997s reads 01m 00.000s.
	ms := d.Round(time.Millisecond)
	switch {
	case ms >= time.Minute:
		minutes := ms / time.Minute
		seconds := (ms - minutes*time.Minute).Seconds()
		return fmt.Sprintf("%02dm %06.3fs", int64(minutes), seconds)
	case ms >= time.Second:
		return fmt.Sprintf("%.3fs", ms.Seconds())
	default:
		us := d.Round(time.Microsecond)
		return fmt.Sprintf("%.3fms", float64(us)/float64(time.Millisecond))
	}
}
