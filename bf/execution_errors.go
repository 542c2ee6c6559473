package bf

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrTapeOutOfBounds   = errors.New("tape pointer out of bounds")
	ErrStepQuotaExceeded = errors.New("step quota exceeded")
	errNoProgram         = errors.New("no program loaded")
)

// RuntimeError describes a fatal failure while executing a program. Err
// holds the underlying cause and is reachable through errors.Is and
// errors.As.
type RuntimeError struct {
	Message   string
	Op        Op
	IP        int
	DP        int
	Pos       Position
	CodeFrame string
	Err       error
}

func (re *RuntimeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "runtime error at ip=%d dp=%d (%s): %s", re.IP, re.DP, re.Op, re.Message)
	if re.CodeFrame != "" {
		b.WriteString("\n")
		b.WriteString(re.CodeFrame)
	}
	return b.String()
}

func (re *RuntimeError) Unwrap() error {
	return re.Err
}

func (exec *Execution) fail(ins Instruction, cause error) error {
	exec.halted = true
	codeFrame := ""
	if exec.program != nil {
		codeFrame = formatCodeFrame(exec.program.source, ins.Pos)
	}
	err := &RuntimeError{
		Message:   cause.Error(),
		Op:        ins.Op,
		IP:        exec.ip,
		DP:        exec.dp,
		Pos:       ins.Pos,
		CodeFrame: codeFrame,
		Err:       cause,
	}
	exec.logger.Debug("execution failed", "ip", exec.ip, "dp", exec.dp, "steps", exec.steps, "error", cause)
	return err
}
