package timeutil

import "time"

// Layout is the wire format for play times in the status API.
const Layout = time.RFC3339Nano

// FromMillis converts feed epoch milliseconds to a UTC time. Zero stays the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// FormatMillis formats feed epoch milliseconds; zero formats as "".
func FormatMillis(ms int64) string {
	if ms == 0 {
		return ""
	}
	return FromMillis(ms).Format(Layout)
}

// Advance moves a feed timestamp forward by elapsed wall time, truncated to milliseconds.
func Advance(ms int64, elapsed time.Duration) int64 {
	return ms + elapsed.Milliseconds()
}
