package anthropic

import (
	"bufio"
	"io"
	"strings"
)

// maxSSELine bounds a single SSE line; long text deltas can exceed the
// bufio.Scanner default.
const maxSSELine = 1 << 20

// sseEvent is one Server-Sent Event.
type sseEvent struct {
	Event string
	Data  string
}

// sseScanner yields SSE events one at a time in the style of bufio.Scanner:
// call Next until it returns false, then check Err.
type sseScanner struct {
	lines *bufio.Scanner
	event sseEvent
	err   error
	done  bool
}

func newSSEScanner(r io.Reader) *sseScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), maxSSELine)
	return &sseScanner{lines: s}
}

// Next advances to the next event.
func (s *sseScanner) Next() bool {
	if s.done {
		return false
	}

	var cur sseEvent
	var data []string
	flush := func() bool {
		if cur.Event == "" && data == nil {
			return false
		}
		cur.Data = strings.Join(data, "\n")
		s.event = cur
		return true
	}

	for s.lines.Scan() {
		line := s.lines.Text()
		switch {
		case line == "":
			if flush() {
				return true
			}
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "event:"):
			cur.Event = strings.TrimSpace(line[len("event:"):])
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimSpace(line[len("data:"):]))
		}
	}

	s.err = s.lines.Err()
	s.done = true
	// stream ended without a trailing blank line
	return flush()
}

// Event returns the event read by the last call to Next.
func (s *sseScanner) Event() sseEvent {
	return s.event
}

// Err returns the first non-EOF read error.
func (s *sseScanner) Err() error {
	return s.err
}
