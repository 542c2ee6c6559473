package bf

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedProgram is wrapped by every bracket-matching failure.
var ErrMalformedProgram = errors.New("malformed program")

// ParseError reports a structural problem in program text.
type ParseError struct {
	Pos    Position
	Msg    string
	source string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "parse error at %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Msg)
	if frame := formatCodeFrame(e.source, e.Pos); frame != "" {
		b.WriteString("\n")
		b.WriteString(frame)
	}
	return b.String()
}

func (e *ParseError) Unwrap() error {
	return ErrMalformedProgram
}

func (p *parser) errorAt(pos Position, msg string) error {
	return &ParseError{Pos: pos, Msg: msg, source: p.source}
}
