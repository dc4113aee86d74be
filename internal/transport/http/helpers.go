package httptransport

import (
	"strconv"
	"time"
)

// formatRetryAfter renders a backoff duration as whole seconds for the
// Retry-After header, never less than one second.
func formatRetryAfter(d time.Duration) string {
	secs := int(d / time.Second)
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}
