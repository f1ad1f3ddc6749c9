package loader

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedLine is wrapped by every hex-dump parse error.
var ErrMalformedLine = errors.New("malformed hex dump line")

// ParseHexDump reads "addr: XXXXXXXX" lines and returns the halfwords in
// load order. The low 16 bits of each word come first, then the high 16
// bits. The address column is not interpreted. Blank lines are skipped.
func ParseHexDump(r io.Reader) ([]uint16, error) {
	var words []uint16

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		_, field, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("line %d: missing ':': %w", lineNo, ErrMalformedLine)
		}

		field = strings.TrimSpace(field)
		if len(field) != 8 {
			return nil, fmt.Errorf("line %d: want 8 hex digits, got %q: %w",
				lineNo, field, ErrMalformedLine)
		}

		word, err := strconv.ParseUint(field, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %w", lineNo, ErrMalformedLine, err)
		}

		words = append(words, uint16(word), uint16(word>>16))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hex dump: %w", err)
	}

	return words, nil
}
