package bf

import (
	"fmt"
	"strings"
)

// Program is a parsed instruction stream and its jump table. It is immutable
// once returned by the parser and safe to share between executions.
type Program struct {
	instructions []Instruction
	jumps        map[int]int
	source       string
}

// Len returns the number of records, including the trailing end record.
func (p *Program) Len() int {
	return len(p.instructions)
}

// At returns the instruction at ip.
func (p *Program) At(ip int) (Instruction, bool) {
	if ip < 0 || ip >= len(p.instructions) {
		return Instruction{}, false
	}
	return p.instructions[ip], true
}

// Instructions returns a copy of the instruction stream.
func (p *Program) Instructions() []Instruction {
	return append([]Instruction(nil), p.instructions...)
}

// Jump returns the position of the bracket matching the one at ip.
func (p *Program) Jump(ip int) (int, bool) {
	target, ok := p.jumps[ip]
	return target, ok
}

// Loops returns the number of matched bracket pairs.
func (p *Program) Loops() int {
	return len(p.jumps) / 2
}

// Source returns the text the program was parsed from.
func (p *Program) Source() string {
	return p.source
}

// String renders one record per line as position, symbol and count, with
// jump targets shown for brackets.
func (p *Program) String() string {
	var b strings.Builder
	for i, ins := range p.instructions {
		fmt.Fprintf(&b, "%04d  %c", i, ins.Op.Symbol())
		switch {
		case ins.Op.Repeatable():
			fmt.Fprintf(&b, " x%d", ins.Count)
		case ins.Op == OpLoopOpen, ins.Op == OpLoopClose:
			fmt.Fprintf(&b, " -> %04d", p.jumps[i])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
