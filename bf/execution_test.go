package bf

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func runSource(t *testing.T, engine *Engine, source, input string) (*Execution, string) {
	t.Helper()
	program, err := engine.Compile(source)
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	var out bytes.Buffer
	exec := engine.NewExecution(NewByteSource(strings.NewReader(input)), NewByteSink(&out))
	exec.Load(program)
	if err := exec.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return exec, out.String()
}

func assertTapeZero(t *testing.T, exec *Execution) {
	t.Helper()
	for i, cell := range exec.Cells(0, TapeSize) {
		if cell != 0 {
			t.Fatalf("expected zero tape, cell %d = %d", i, cell)
		}
	}
}

func TestRunMultiplyLoopOutputs64(t *testing.T) {
	exec, out := runSource(t, MustNewEngine(Config{}), "++++++++[>++++++++<-]>.", "")
	if out != "@" {
		t.Fatalf("expected single byte 64, got %q", out)
	}
	if cell, _ := exec.Cell(1); cell != 64 {
		t.Fatalf("expected cell 1 = 64, got %d", cell)
	}
	if cell, _ := exec.Cell(0); cell != 0 {
		t.Fatalf("expected cell 0 = 0, got %d", cell)
	}
	if exec.DataPointer() != 1 {
		t.Fatalf("expected data pointer 1, got %d", exec.DataPointer())
	}
}

func TestRunClearLoopLeavesTapeZero(t *testing.T) {
	exec, out := runSource(t, MustNewEngine(Config{}), "+[-]", "")
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	assertTapeZero(t, exec)
	if !exec.Halted() {
		t.Fatalf("expected execution to halt")
	}
}

func TestRunCommentOnlyProgramIsNoOp(t *testing.T) {
	exec, out := runSource(t, MustNewEngine(Config{}), "just a comment\n\t with whitespace", "")
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
	assertTapeZero(t, exec)
	if exec.Steps() != 0 {
		t.Fatalf("expected zero steps, got %d", exec.Steps())
	}
}

func TestRunEchoesInputByte(t *testing.T) {
	_, out := runSource(t, MustNewEngine(Config{}), ",.", "A")
	if out != "A" {
		t.Fatalf("expected %q, got %q", "A", out)
	}
}

func TestRunCopyLoopForEveryCellValue(t *testing.T) {
	engine := MustNewEngine(Config{})
	program, err := engine.Compile(",[->+<]")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	for value := 0; value < 256; value++ {
		exec := engine.NewExecution(NewByteSource(bytes.NewReader([]byte{byte(value)})), nil)
		exec.Load(program)
		if err := exec.Run(); err != nil {
			t.Fatalf("value %d: run failed: %v", value, err)
		}
		if src, _ := exec.Cell(0); src != 0 {
			t.Fatalf("value %d: expected source cell 0, got %d", value, src)
		}
		if dst, _ := exec.Cell(1); int(dst) != value {
			t.Fatalf("value %d: expected destination %d, got %d", value, value, dst)
		}
	}
}

func TestCompressedRunsMatchSingleSteps(t *testing.T) {
	compressed := MustNewEngine(Config{})
	single := MustNewEngine(Config{DisableCompression: true})
	for _, n := range []int{1, 2, 7, 255, 256, 257, 300, 511, 1000} {
		for _, op := range []string{"+", "-"} {
			source := strings.Repeat(op, n) + ">" + strings.Repeat(op, n/2+1)
			a, _ := runSource(t, compressed, source, "")
			b, _ := runSource(t, single, source, "")
			if !bytes.Equal(a.Cells(0, 4), b.Cells(0, 4)) {
				t.Fatalf("%q x%d: compressed %v != single %v", op, n, a.Cells(0, 4), b.Cells(0, 4))
			}
			want := byte(n % 256)
			if op == "-" {
				want = byte((256 - n%256) % 256)
			}
			if cell, _ := a.Cell(0); cell != want {
				t.Fatalf("%q x%d: expected %d, got %d", op, n, want, cell)
			}
		}
	}
}

func TestCompressedMovesMatchSingleSteps(t *testing.T) {
	source := ">>>>>+<<<++>>>>>>>>>>+++"
	a, _ := runSource(t, MustNewEngine(Config{}), source, "")
	b, _ := runSource(t, MustNewEngine(Config{DisableCompression: true}), source, "")
	if a.DataPointer() != 12 || b.DataPointer() != 12 {
		t.Fatalf("expected data pointer 12, got %d and %d", a.DataPointer(), b.DataPointer())
	}
	if !bytes.Equal(a.Cells(0, 16), b.Cells(0, 16)) {
		t.Fatalf("tapes differ: %v vs %v", a.Cells(0, 16), b.Cells(0, 16))
	}
}

func TestIncrementWrapsAt256(t *testing.T) {
	exec, _ := runSource(t, MustNewEngine(Config{}), "-", "")
	if cell, _ := exec.Cell(0); cell != 255 {
		t.Fatalf("expected decrement from 0 to wrap to 255, got %d", cell)
	}
	exec, _ = runSource(t, MustNewEngine(Config{}), strings.Repeat("+", 256), "")
	if cell, _ := exec.Cell(0); cell != 0 {
		t.Fatalf("expected 256 increments to wrap to 0, got %d", cell)
	}
}

func TestRunFailsMovingLeftOfTape(t *testing.T) {
	engine := MustNewEngine(Config{})
	err := engine.Execute("+<", nil, nil)
	if !errors.Is(err, ErrTapeOutOfBounds) {
		t.Fatalf("expected ErrTapeOutOfBounds, got %v", err)
	}
	var runtimeErr *RuntimeError
	if !errors.As(err, &runtimeErr) {
		t.Fatalf("expected *RuntimeError, got %T", err)
	}
	if runtimeErr.Op != OpLeft || runtimeErr.IP != 1 || runtimeErr.DP != 0 {
		t.Fatalf("unexpected runtime error fields: %+v", runtimeErr)
	}
	if !strings.Contains(err.Error(), "tape pointer out of bounds") {
		t.Fatalf("unexpected error text: %v", err)
	}
}

func TestRunFailsMovingRightOfTape(t *testing.T) {
	engine := MustNewEngine(Config{})
	if err := engine.Execute(strings.Repeat(">", TapeSize-1), nil, nil); err != nil {
		t.Fatalf("moving to the last cell should succeed: %v", err)
	}
	err := engine.Execute(strings.Repeat(">", TapeSize), nil, nil)
	if !errors.Is(err, ErrTapeOutOfBounds) {
		t.Fatalf("expected ErrTapeOutOfBounds, got %v", err)
	}
}

func TestEOFPolicies(t *testing.T) {
	exec, _ := runSource(t, MustNewEngine(Config{}), "+++,", "")
	if cell, _ := exec.Cell(0); cell != 3 {
		t.Fatalf("expected unchanged cell 3 at EOF, got %d", cell)
	}
	exec, _ = runSource(t, MustNewEngine(Config{EOFPolicy: EOFZero}), "+++,", "")
	if cell, _ := exec.Cell(0); cell != 0 {
		t.Fatalf("expected zeroed cell at EOF, got %d", cell)
	}
}

func TestStepQuotaStopsRunawayLoop(t *testing.T) {
	engine := MustNewEngine(Config{StepQuota: 100})
	err := engine.Execute("+[]", nil, nil)
	if !errors.Is(err, ErrStepQuotaExceeded) {
		t.Fatalf("expected ErrStepQuotaExceeded, got %v", err)
	}
}

func TestLoadKeepsTapeBetweenPrograms(t *testing.T) {
	engine := MustNewEngine(Config{})
	exec := engine.NewExecution(nil, nil)
	for _, source := range []string{"+++>", "++<", "[->+<]"} {
		program, err := engine.Compile(source)
		if err != nil {
			t.Fatalf("compile %q failed: %v", source, err)
		}
		exec.Load(program)
		if err := exec.Run(); err != nil {
			t.Fatalf("run %q failed: %v", source, err)
		}
	}
	if got := exec.Cells(0, 2); !bytes.Equal(got, []byte{0, 5}) {
		t.Fatalf("expected [0 5], got %v", got)
	}

	exec.Reset()
	assertTapeZero(t, exec)
	if exec.DataPointer() != 0 || exec.InstructionPointer() != 0 {
		t.Fatalf("reset left pointers at dp=%d ip=%d", exec.DataPointer(), exec.InstructionPointer())
	}
}

func TestStepWalksOneInstructionAtATime(t *testing.T) {
	engine := MustNewEngine(Config{})
	program, err := engine.Compile("++>+")
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	exec := engine.NewExecution(nil, nil)
	exec.Load(program)

	wantIP := []int{1, 2, 3}
	for i, want := range wantIP {
		halted, err := exec.Step()
		if err != nil || halted {
			t.Fatalf("step %d: halted=%t err=%v", i, halted, err)
		}
		if exec.InstructionPointer() != want {
			t.Fatalf("step %d: expected ip %d, got %d", i, want, exec.InstructionPointer())
		}
	}
	halted, err := exec.Step()
	if err != nil || !halted {
		t.Fatalf("expected halt at end record, halted=%t err=%v", halted, err)
	}
	if exec.Steps() != 3 {
		t.Fatalf("expected 3 steps, got %d", exec.Steps())
	}
}

func TestStepWithoutProgram(t *testing.T) {
	exec := MustNewEngine(Config{}).NewExecution(nil, nil)
	if _, err := exec.Step(); err == nil {
		t.Fatalf("expected error stepping without a program")
	}
}

func TestCellsClampsToTape(t *testing.T) {
	exec := MustNewEngine(Config{}).NewExecution(nil, nil)
	if got := len(exec.Cells(TapeSize-2, 10)); got != 2 {
		t.Fatalf("expected 2 cells at tape end, got %d", got)
	}
	if got := len(exec.Cells(-5, 3)); got != 3 {
		t.Fatalf("expected 3 cells from clamped start, got %d", got)
	}
	if _, ok := exec.Cell(TapeSize); ok {
		t.Fatalf("expected out of range cell lookup to fail")
	}
}
