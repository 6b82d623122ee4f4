package mainwindow

import "strings"

const defaultMaxLines = 2000

// logBuffer keeps the newest lines of the status log.
type logBuffer struct {
	lines    []string
	maxLines int
}

func newLogBuffer(maxLines int) *logBuffer {
	if maxLines <= 0 {
		maxLines = defaultMaxLines
	}
	return &logBuffer{maxLines: maxLines}
}

// Append adds line, which may itself span several lines, and drops the oldest
// entries past the limit.
func (buffer *logBuffer) Append(line string) {
	buffer.lines = append(buffer.lines, strings.Split(strings.TrimRight(line, "\r\n"), "\n")...)
	if overflow := len(buffer.lines) - buffer.maxLines; overflow > 0 {
		buffer.lines = append(buffer.lines[:0], buffer.lines[overflow:]...)
	}
}

func (buffer *logBuffer) String() string {
	return strings.Join(buffer.lines, "\n")
}

func (buffer *logBuffer) Len() int {
	return len(buffer.lines)
}
