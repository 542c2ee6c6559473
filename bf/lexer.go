package bf

import "unicode/utf8"

// lexer walks source text rune by rune and yields only instruction
// characters, tracking line and column for diagnostics.
type lexer struct {
	input string

	offset int
	width  int

	line   int
	column int

	ch  rune
	eof bool

	allowInput bool
}

func newLexer(input string, allowInput bool) *lexer {
	l := &lexer{input: input, line: 1, column: 0, allowInput: allowInput}
	l.readRune()
	return l
}

func (l *lexer) readRune() {
	if l.offset >= len(l.input) {
		l.width = 0
		l.ch = 0
		l.eof = true
		return
	}

	r, w := utf8.DecodeRuneInString(l.input[l.offset:])
	l.width = w
	l.offset += w

	if r == '\n' {
		l.line++
		l.column = 0
	} else {
		l.column++
	}

	l.ch = r
}

// next returns the next instruction op and its position. ok is false once the
// input is exhausted; pos then points just past the last rune.
func (l *lexer) next() (op Op, pos Position, ok bool) {
	for !l.eof {
		pos = Position{Line: l.line, Column: l.column}
		op, ok = opFor(l.ch, l.allowInput)
		l.readRune()
		if ok {
			return op, pos, true
		}
	}
	return OpEnd, Position{Line: l.line, Column: l.column + 1}, false
}
