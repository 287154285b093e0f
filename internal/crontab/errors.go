package crontab

import (
	"errors"
	"fmt"
)

// ErrMalformedLine is matched by every ParseError
var ErrMalformedLine = errors.New("malformed crontab line")

// ParseError describes a line that does not carry five schedule fields and a command
type ParseError struct {
	Line   int // 1-based, 0 when parsed outside of a block
	Text   string
	Fields int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: expected %d fields, got %d: %q", e.Line, ErrMalformedLine, fieldCount, e.Fields, e.Text)
	}
	return fmt.Sprintf("%s: expected %d fields, got %d: %q", ErrMalformedLine, fieldCount, e.Fields, e.Text)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrMalformedLine
}
