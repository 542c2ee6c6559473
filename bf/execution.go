package bf

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
)

// TapeSize is the fixed number of cells on the tape.
const TapeSize = 65536

// Execution is the mutable state of one interpreter run: the tape, the data
// pointer and the instruction pointer into the loaded Program.
type Execution struct {
	program *Program
	tape    [TapeSize]byte
	ip      int
	dp      int
	steps   int
	halted  bool

	in     ByteSource
	out    ByteSink
	eof    EOFPolicy
	quota  int
	logger *slog.Logger
}

// NewExecution returns an execution with a zeroed tape bound to in and out.
// Either may be nil; see NewByteSource and NewByteSink.
func (e *Engine) NewExecution(in ByteSource, out ByteSink) *Execution {
	if in == nil {
		in = emptySource{}
	}
	if out == nil {
		out = NewByteSink(nil)
	}
	return &Execution{
		in:     in,
		out:    out,
		eof:    e.config.EOFPolicy,
		quota:  e.config.StepQuota,
		logger: e.logger,
	}
}

// Load points the execution at p and rewinds the instruction pointer. The
// tape and data pointer are kept, so successive programs share state.
func (exec *Execution) Load(p *Program) {
	exec.program = p
	exec.ip = 0
	exec.steps = 0
	exec.halted = false
}

// Reset zeroes the tape and both pointers.
func (exec *Execution) Reset() {
	clear(exec.tape[:])
	exec.ip = 0
	exec.dp = 0
	exec.steps = 0
	exec.halted = exec.program == nil
}

// SetInput replaces the input source.
func (exec *Execution) SetInput(in ByteSource) {
	if in == nil {
		in = emptySource{}
	}
	exec.in = in
}

// Run steps until the end record is reached or an error occurs.
func (exec *Execution) Run() error {
	for {
		halted, err := exec.Step()
		if err != nil {
			return err
		}
		if halted {
			return nil
		}
	}
}

// Step executes a single instruction and reports whether the program has
// halted.
func (exec *Execution) Step() (bool, error) {
	if exec.program == nil {
		return true, errNoProgram
	}
	if exec.halted {
		return true, nil
	}

	ins, ok := exec.program.At(exec.ip)
	if !ok {
		return true, exec.fail(ins, fmt.Errorf("%w: instruction pointer %d outside program", ErrMalformedProgram, exec.ip))
	}
	if ins.Op == OpEnd {
		exec.halted = true
		exec.logger.Debug("execution halted", "steps", exec.steps, "dp", exec.dp)
		return true, nil
	}

	exec.steps++
	if exec.quota > 0 && exec.steps > exec.quota {
		return true, exec.fail(ins, fmt.Errorf("%w (%d)", ErrStepQuotaExceeded, exec.quota))
	}

	switch ins.Op {
	case OpInc:
		exec.tape[exec.dp] += byte(ins.Count)
	case OpDec:
		exec.tape[exec.dp] -= byte(ins.Count)
	case OpRight:
		if ins.Count >= TapeSize-exec.dp {
			return true, exec.fail(ins, fmt.Errorf("%w: %d + %d past cell %d", ErrTapeOutOfBounds, exec.dp, ins.Count, TapeSize-1))
		}
		exec.dp += ins.Count
	case OpLeft:
		if ins.Count > exec.dp {
			return true, exec.fail(ins, fmt.Errorf("%w: %d - %d below cell 0", ErrTapeOutOfBounds, exec.dp, ins.Count))
		}
		exec.dp -= ins.Count
	case OpLoopOpen:
		if exec.tape[exec.dp] == 0 {
			if err := exec.jump(ins); err != nil {
				return true, err
			}
		}
	case OpLoopClose:
		if exec.tape[exec.dp] != 0 {
			if err := exec.jump(ins); err != nil {
				return true, err
			}
		}
	case OpOutput:
		if err := exec.write(); err != nil {
			return true, exec.fail(ins, fmt.Errorf("write output: %w", err))
		}
	case OpInput:
		if err := exec.read(); err != nil {
			return true, exec.fail(ins, fmt.Errorf("read input: %w", err))
		}
	default:
		return true, exec.fail(ins, fmt.Errorf("%w: unknown op %d", ErrMalformedProgram, ins.Op))
	}

	exec.ip++
	return false, nil
}

func (exec *Execution) jump(ins Instruction) error {
	target, ok := exec.program.Jump(exec.ip)
	if !ok {
		return exec.fail(ins, fmt.Errorf("%w: no matching bracket for position %d", ErrMalformedProgram, exec.ip))
	}
	exec.ip = target
	return nil
}

func (exec *Execution) write() error {
	if err := exec.out.WriteByte(exec.tape[exec.dp]); err != nil {
		return err
	}
	return exec.out.Flush()
}

func (exec *Execution) read() error {
	b, err := exec.in.ReadByte()
	if errors.Is(err, io.EOF) {
		if exec.eof == EOFZero {
			exec.tape[exec.dp] = 0
		}
		return nil
	}
	if err != nil {
		return err
	}
	exec.tape[exec.dp] = b
	return nil
}

// Cell returns the value of tape cell i.
func (exec *Execution) Cell(i int) (byte, bool) {
	if i < 0 || i >= TapeSize {
		return 0, false
	}
	return exec.tape[i], true
}

// Cells returns a copy of up to n cells starting at start, clamped to the
// tape.
func (exec *Execution) Cells(start, n int) []byte {
	start = min(max(start, 0), TapeSize)
	end := min(max(start+n, start), TapeSize)
	return append([]byte(nil), exec.tape[start:end]...)
}

// DataPointer returns the index of the current cell.
func (exec *Execution) DataPointer() int { return exec.dp }

// InstructionPointer returns the index of the next instruction.
func (exec *Execution) InstructionPointer() int { return exec.ip }

// Steps returns the number of instructions executed since the last Load.
func (exec *Execution) Steps() int { return exec.steps }

// Halted reports whether the loaded program has finished or failed.
func (exec *Execution) Halted() bool { return exec.halted }
