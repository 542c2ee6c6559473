package bf

// Op identifies the kind of an instruction record.
type Op byte

const (
	OpEnd Op = iota
	OpRight
	OpLeft
	OpInc
	OpDec
	OpLoopOpen
	OpLoopClose
	OpOutput
	OpInput
)

// Instruction is one record of a parsed program. Count is the run length for
// repeatable ops and 1 for everything else.
type Instruction struct {
	Op    Op
	Count int
	Pos   Position
}

// Position identifies a line and column in the source text.
type Position struct {
	Line   int
	Column int
}

func opFor(ch rune, allowInput bool) (Op, bool) {
	switch ch {
	case '>':
		return OpRight, true
	case '<':
		return OpLeft, true
	case '+':
		return OpInc, true
	case '-':
		return OpDec, true
	case '[':
		return OpLoopOpen, true
	case ']':
		return OpLoopClose, true
	case '.':
		return OpOutput, true
	case ',':
		return OpInput, allowInput
	default:
		return OpEnd, false
	}
}

// Repeatable reports whether consecutive occurrences of op may be merged into
// one record.
func (op Op) Repeatable() bool {
	switch op {
	case OpRight, OpLeft, OpInc, OpDec:
		return true
	default:
		return false
	}
}

// Symbol returns the source character for op. OpEnd has no source form and
// renders as 'x'.
func (op Op) Symbol() rune {
	switch op {
	case OpRight:
		return '>'
	case OpLeft:
		return '<'
	case OpInc:
		return '+'
	case OpDec:
		return '-'
	case OpLoopOpen:
		return '['
	case OpLoopClose:
		return ']'
	case OpOutput:
		return '.'
	case OpInput:
		return ','
	default:
		return 'x'
	}
}

func (op Op) String() string {
	switch op {
	case OpEnd:
		return "end"
	case OpRight:
		return "move-right"
	case OpLeft:
		return "move-left"
	case OpInc:
		return "increment"
	case OpDec:
		return "decrement"
	case OpLoopOpen:
		return "loop-open"
	case OpLoopClose:
		return "loop-close"
	case OpOutput:
		return "output"
	case OpInput:
		return "input"
	default:
		return "unknown"
	}
}

// IsInstruction reports whether ch is one of the eight instruction characters.
func IsInstruction(ch rune) bool {
	_, ok := opFor(ch, true)
	return ok
}
