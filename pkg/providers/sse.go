package providers

import (
	"bufio"
	"io"
	"strings"
)

// maxFrameSize bounds a single line of a provider stream.
const maxFrameSize = 1024 * 1024

// SSEFrame is one Server-Sent Events block.
type SSEFrame struct {
	// Event is the "event:" field, empty if absent.
	Event string

	// Data is the "data:" payload; multiple data lines are joined by "\n".
	Data string
}

// SSEScanner reads SSE frames from a provider response body.
type SSEScanner struct {
	scanner *bufio.Scanner
}

// NewSSEScanner wraps r. Lines longer than 1MiB fail the scan.
func NewSSEScanner(r io.Reader) *SSEScanner {
	return &SSEScanner{scanner: NewLineScanner(r)}
}

// NewLineScanner returns a line scanner sized for provider frames.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return scanner
}

// Next returns the next frame. It returns io.EOF once the body is exhausted
// with no pending frame, and the scanner's error on read failure.
// Comment lines and the "id" and "retry" fields are ignored.
func (s *SSEScanner) Next() (*SSEFrame, error) {
	var (
		event     string
		dataLines []string
		seen      bool
	)

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if seen {
				return &SSEFrame{Event: event, Data: strings.Join(dataLines, "\n")}, nil
			}
			continue
		}

		field, value, _ := strings.Cut(line, ":")
		value = strings.TrimPrefix(value, " ")

		switch field {
		case "event":
			event = value
			seen = true
		case "data":
			dataLines = append(dataLines, value)
			seen = true
		}
	}

	if err := s.scanner.Err(); err != nil {
		return nil, err
	}
	if seen {
		return &SSEFrame{Event: event, Data: strings.Join(dataLines, "\n")}, nil
	}
	return nil, io.EOF
}
