package bf

import "fmt"

type parser struct {
	l        *lexer
	source   string
	compress bool

	instructions []Instruction
	jumps        map[int]int
	open         []int
}

// Parse compiles source with compression and the input instruction enabled.
func Parse(source string) (*Program, error) {
	return parse(source, true, true)
}

func parse(source string, compress, allowInput bool) (*Program, error) {
	p := &parser{
		l:        newLexer(source, allowInput),
		source:   source,
		compress: compress,
		jumps:    make(map[int]int),
	}
	return p.parseProgram()
}

func (p *parser) parseProgram() (*Program, error) {
	for {
		op, pos, ok := p.l.next()
		if !ok {
			p.instructions = append(p.instructions, Instruction{Op: OpEnd, Count: 1, Pos: pos})
			break
		}

		if p.compress && op.Repeatable() {
			if last := len(p.instructions) - 1; last >= 0 && p.instructions[last].Op == op {
				p.instructions[last].Count++
				continue
			}
		}

		idx := len(p.instructions)
		p.instructions = append(p.instructions, Instruction{Op: op, Count: 1, Pos: pos})

		switch op {
		case OpLoopOpen:
			p.open = append(p.open, idx)
		case OpLoopClose:
			if err := p.closeLoop(idx, pos); err != nil {
				return nil, err
			}
		}
	}

	if len(p.open) > 0 {
		innermost := p.open[len(p.open)-1]
		msg := "unclosed '['"
		if extra := len(p.open) - 1; extra > 0 {
			msg = fmt.Sprintf("unclosed '[' (and %d more)", extra)
		}
		return nil, p.errorAt(p.instructions[innermost].Pos, msg)
	}

	return &Program{
		instructions: p.instructions,
		jumps:        p.jumps,
		source:       p.source,
	}, nil
}

func (p *parser) closeLoop(idx int, pos Position) error {
	if len(p.open) == 0 {
		return p.errorAt(pos, "unmatched ']' with no open loop")
	}
	start := p.open[len(p.open)-1]
	p.open = p.open[:len(p.open)-1]
	p.jumps[start] = idx
	p.jumps[idx] = start
	return nil
}
