package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"

	"github.com/mgomes/bfi/bf"
)

func main() {
	if err := runCLI(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}

func runCLI(args []string) error {
	if len(args) < 2 {
		return usageError()
	}
	switch args[1] {
	case "run":
		return runCommand(args[2:])
	case "fmt":
		return fmtCommand(args[2:])
	case "analyze":
		return analyzeCommand(args[2:])
	case "repl":
		return runREPL()
	case "lsp":
		return runLSP()
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		return usageError()
	}
}

func runCommand(args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	checkOnly := fs.Bool("check", false, "only parse the program without executing")
	eof := fs.String("eof", "", "end-of-input policy for ',': unchanged or zero")
	noCompress := fs.Bool("no-compress", false, "disable run-length compression")
	noInput := fs.Bool("no-input", false, "treat ',' as a comment character")
	steps := fs.Int("steps", 0, "maximum instructions to execute (0 = unlimited)")
	configPath := fs.String("config", "", "YAML config file (default .bfi.yaml beside the program)")
	logPath := fs.String("log", "", "write JSON debug logs to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("bfi run: program path required")
	}

	programPath := remaining[0]
	source, err := readProgram(programPath)
	if err != nil {
		return err
	}

	fileCfg, err := loadConfig(*configPath, programPath)
	if err != nil {
		return err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["eof"] {
		fileCfg.EOF = *eof
	}
	if set["no-compress"] {
		fileCfg.Compress = boolPtr(!*noCompress)
	}
	if set["no-input"] {
		fileCfg.Input = boolPtr(!*noInput)
	}
	if set["steps"] {
		fileCfg.StepQuota = *steps
	}

	cfg, err := fileCfg.engineConfig()
	if err != nil {
		return err
	}
	if *logPath != "" {
		logger, err := openLogger(*logPath, fileCfg.LogLevel)
		if err != nil {
			return err
		}
		cfg.Logger = logger
	}

	engine, err := bf.NewEngine(cfg)
	if err != nil {
		return err
	}
	program, err := engine.Compile(source)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	if *checkOnly {
		return nil
	}
	if err := engine.Run(program, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	return nil
}

func readProgram(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read program from stdin: %w", err)
		}
		return string(data), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve program path: %w", err)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read program: %w", err)
	}
	return string(data), nil
}

func usageError() error {
	printUsage()
	return errors.New("invalid command")
}

func printUsage() {
	prog := filepath.Base(os.Args[0])
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags] [args...]\n", prog)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  run [flags] <program|->   parse and execute a program")
	fmt.Fprintln(os.Stderr, "  fmt [-w] [-check] [-minify] <paths...>")
	fmt.Fprintln(os.Stderr, "  analyze [-dump] <program>")
	fmt.Fprintln(os.Stderr, "  repl")
	fmt.Fprintln(os.Stderr, "  lsp")
	fmt.Fprintln(os.Stderr, "Run flags:")
	fmt.Fprintln(os.Stderr, "  -check            only parse the program without executing")
	fmt.Fprintln(os.Stderr, "  -eof string       end-of-input policy for ',': unchanged (default) or zero")
	fmt.Fprintln(os.Stderr, "  -no-compress      disable run-length compression")
	fmt.Fprintln(os.Stderr, "  -no-input         treat ',' as a comment character")
	fmt.Fprintln(os.Stderr, "  -steps int        maximum instructions to execute (0 = unlimited)")
	fmt.Fprintln(os.Stderr, "  -config string    YAML config file")
	fmt.Fprintln(os.Stderr, "  -log string       write JSON debug logs to this file")
}

type flagErrorSink struct{}

func (flagErrorSink) Write(p []byte) (int, error) {
	return len(p), nil
}

func boolPtr(v bool) *bool {
	return &v
}
