package bf

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// EOFPolicy decides what an input instruction does once the source is
// exhausted.
type EOFPolicy string

const (
	// EOFUnchanged leaves the current cell as it was.
	EOFUnchanged EOFPolicy = "unchanged"
	// EOFZero stores 0 in the current cell.
	EOFZero EOFPolicy = "zero"
)

// ParseEOFPolicy converts a config or flag value into an EOFPolicy.
func ParseEOFPolicy(raw string) (EOFPolicy, error) {
	switch policy := EOFPolicy(strings.ToLower(strings.TrimSpace(raw))); policy {
	case "", EOFUnchanged:
		return EOFUnchanged, nil
	case EOFZero:
		return EOFZero, nil
	default:
		return "", fmt.Errorf("bf: unknown eof policy %q (want %q or %q)", raw, EOFUnchanged, EOFZero)
	}
}

// Config controls parsing and execution behaviour.
type Config struct {
	EOFPolicy          EOFPolicy
	DisableCompression bool
	// DisableInput treats ',' as a comment character.
	DisableInput bool
	// StepQuota caps executed instructions per Load; zero means unlimited.
	StepQuota int
	Logger    *slog.Logger
}

// Engine parses and runs programs under a fixed Config.
type Engine struct {
	config Config
	logger *slog.Logger
}

// NewEngine validates cfg and fills in defaults.
func NewEngine(cfg Config) (*Engine, error) {
	policy, err := ParseEOFPolicy(string(cfg.EOFPolicy))
	if err != nil {
		return nil, err
	}
	cfg.EOFPolicy = policy
	if cfg.StepQuota < 0 {
		return nil, fmt.Errorf("bf: step quota must not be negative, got %d", cfg.StepQuota)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Engine{config: cfg, logger: logger}, nil
}

// MustNewEngine constructs an Engine or panics if the config is invalid.
func MustNewEngine(cfg Config) *Engine {
	engine, err := NewEngine(cfg)
	if err != nil {
		panic(err)
	}
	return engine
}

// Compile parses source into a Program.
func (e *Engine) Compile(source string) (*Program, error) {
	program, err := parse(source, !e.config.DisableCompression, !e.config.DisableInput)
	if err != nil {
		e.logger.Debug("compile failed", "error", err)
		return nil, err
	}
	e.logger.Debug("program compiled", "instructions", program.Len(), "loops", program.Loops())
	return program, nil
}

// Run executes program against a fresh tape, reading from in and writing to
// out.
func (e *Engine) Run(program *Program, in io.Reader, out io.Writer) error {
	exec := e.NewExecution(NewByteSource(in), NewByteSink(out))
	exec.Load(program)
	return exec.Run()
}

// Execute compiles and runs source in one call.
func (e *Engine) Execute(source string, in io.Reader, out io.Writer) error {
	program, err := e.Compile(source)
	if err != nil {
		return err
	}
	return e.Run(program, in, out)
}

// ConfigSummary provides a human-readable description of the engine settings.
func (e *Engine) ConfigSummary() string {
	return fmt.Sprintf("eof=%s compress=%t input=%t steps=%d", e.config.EOFPolicy, !e.config.DisableCompression, !e.config.DisableInput, e.config.StepQuota)
}
