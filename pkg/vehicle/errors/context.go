package errors

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// ExtractContext returns the lines surrounding location from source,
// with the offending line marked and a caret under the column.
func ExtractContext(source []byte, location Location, contextLines int) string {
	if !location.IsValid() || len(source) == 0 {
		return ""
	}

	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(source))
	scanner.Buffer(make([]byte, 0, 64*1024), len(source)+1)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if scanner.Err() != nil || location.Line > len(lines) {
		return ""
	}

	errorLine := location.Line - 1
	startLine := max(errorLine-contextLines, 0)
	endLine := min(errorLine+contextLines, len(lines)-1)

	var sb strings.Builder
	width := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, width, i+1, lines[i]))

		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", width), padding))
		}
	}

	return sb.String()
}

// WithSource enriches err with context taken from source. Two lines are
// shown before and after the offending line.
func WithSource(err *Error, source []byte) *Error {
	if err != nil && err.Context == "" {
		err.Context = ExtractContext(source, err.Location, 2)
	}
	return err
}
