package assist

import (
	"bytes"
	"fmt"
	"sync"
	"time"
)

// FormatDuration renders a run time compactly: "0.4s", "12.3s", "3m5s", "1h2m".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		tenths := d.Milliseconds() / 100
		return fmt.Sprintf("%d.%ds", tenths/10, tenths%10)
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// TruncateMiddle shortens s to at most maxLen runes, keeping the start and the
// end around a "..." marker. Labels are user text, so it never splits a rune.
func TruncateMiddle(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	keep := maxLen - 3
	head := (keep + 1) / 2
	return string(r[:head]) + "..." + string(r[len(r)-(keep-head):])
}

// cappedBuffer keeps the first limit bytes written to it and counts the rest.
type cappedBuffer struct {
	mu      sync.Mutex
	buf     bytes.Buffer
	limit   int
	dropped int
}

func (c *cappedBuffer) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := len(p)
	room := max(c.limit-c.buf.Len(), 0)
	if len(p) > room {
		c.dropped += len(p) - room
		p = p[:room]
	}
	if _, err := c.buf.Write(p); err != nil {
		return 0, err
	}
	// exec treats a short write as a failure, so claim the whole slice.
	return total, nil
}

func (c *cappedBuffer) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Dropped is the number of bytes written past the limit
func (c *cappedBuffer) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}
