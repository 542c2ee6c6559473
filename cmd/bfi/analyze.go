package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mgomes/bfi/bf"
)

type lintWarning struct {
	Pos     bf.Position
	Message string
}

type programStats struct {
	Instructions int
	Records      int
	Loops        int
	MaxDepth     int
}

func analyzeCommand(args []string) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(new(flagErrorSink))
	dump := fs.Bool("dump", false, "print the compressed instruction listing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	remaining := fs.Args()
	if len(remaining) == 0 {
		return errors.New("bfi analyze: program path required")
	}

	programPath, err := filepath.Abs(remaining[0])
	if err != nil {
		return fmt.Errorf("resolve program path: %w", err)
	}
	input, err := os.ReadFile(programPath)
	if err != nil {
		return fmt.Errorf("read program: %w", err)
	}

	program, err := bf.Parse(string(input))
	if err != nil {
		return fmt.Errorf("analysis parse failed: %w", err)
	}

	stats := collectStats(program)
	fmt.Printf("instructions=%d records=%d loops=%d depth=%d\n", stats.Instructions, stats.Records, stats.Loops, stats.MaxDepth)
	if *dump {
		fmt.Print(program.String())
	}

	warnings := analyzeProgramWarnings(program)
	if len(warnings) == 0 {
		fmt.Println("No issues found")
		return nil
	}
	for _, warning := range warnings {
		fmt.Printf("%s:%d:%d: %s\n", programPath, warning.Pos.Line, warning.Pos.Column, warning.Message)
	}
	return fmt.Errorf("analysis found %d issue(s)", len(warnings))
}

func collectStats(program *bf.Program) programStats {
	stats := programStats{Loops: program.Loops()}
	depth := 0
	for _, ins := range program.Instructions() {
		switch ins.Op {
		case bf.OpEnd:
			continue
		case bf.OpLoopOpen:
			depth++
			stats.MaxDepth = max(stats.MaxDepth, depth)
		case bf.OpLoopClose:
			depth--
		}
		stats.Records++
		stats.Instructions += ins.Count
	}
	return stats
}

// analyzeProgramWarnings reports loops that can never be entered and
// adjacent runs that undo each other. Neither blocks execution.
func analyzeProgramWarnings(program *bf.Program) []lintWarning {
	warnings := make([]lintWarning, 0)
	instructions := program.Instructions()
	for i, ins := range instructions {
		if ins.Op == bf.OpLoopOpen {
			switch {
			case i == 0:
				warnings = append(warnings, lintWarning{Pos: ins.Pos, Message: "dead loop: cell is zero at program start"})
			case instructions[i-1].Op == bf.OpLoopClose:
				warnings = append(warnings, lintWarning{Pos: ins.Pos, Message: "dead loop: cell is zero after the preceding loop"})
			}
			continue
		}
		if i == 0 || !ins.Op.Repeatable() {
			continue
		}
		prev := instructions[i-1]
		if opposite(prev.Op) == ins.Op {
			warnings = append(warnings, lintWarning{
				Pos:     ins.Pos,
				Message: fmt.Sprintf("'%c' cancels preceding '%c'", ins.Op.Symbol(), prev.Op.Symbol()),
			})
		}
	}

	sort.SliceStable(warnings, func(i, j int) bool {
		if warnings[i].Pos.Line != warnings[j].Pos.Line {
			return warnings[i].Pos.Line < warnings[j].Pos.Line
		}
		return warnings[i].Pos.Column < warnings[j].Pos.Column
	})
	return warnings
}

func opposite(op bf.Op) bf.Op {
	switch op {
	case bf.OpInc:
		return bf.OpDec
	case bf.OpDec:
		return bf.OpInc
	case bf.OpRight:
		return bf.OpLeft
	case bf.OpLeft:
		return bf.OpRight
	default:
		return bf.OpEnd
	}
}
