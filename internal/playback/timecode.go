package playback

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimecode renders a millisecond offset as MM:SS, or HH:MM:SS once
// the offset reaches an hour. Sub-second remainders are floored, never
// rounded up, so a position only ticks over when the full second has
// elapsed. Negative offsets render as 00:00.
func FormatTimecode(ms int) string {
	if ms < 0 {
		ms = 0
	}
	secs := ms / 1000
	h := secs / 3600
	m := secs % 3600 / 60
	s := secs % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// ParseTimecode parses SS, MM:SS, or HH:MM:SS into milliseconds. The
// seconds component may carry a fractional part, which transport
// progress reports include.
func ParseTimecode(tc string) (int, error) {
	parts := strings.Split(strings.TrimSpace(tc), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid timecode: %q", tc)
	}

	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || secs < 0 {
		return 0, fmt.Errorf("invalid timecode: %q", tc)
	}

	total := secs
	multiplier := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid timecode: %q", tc)
		}
		total += float64(n) * multiplier
		multiplier *= 60
	}

	return int(total * 1000), nil
}
