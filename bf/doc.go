// Package bf implements a tape interpreter for the eight-instruction
// bracket language:
//   - `>` and `<` move the data pointer right and left.
//   - `+` and `-` increment and decrement the current cell, wrapping mod 256.
//   - `[` skips past its matching `]` when the current cell is zero.
//   - `]` jumps back to its matching `[` when the current cell is non-zero.
//   - `.` writes the current cell as one byte and flushes the sink.
//   - `,` reads one byte into the current cell.
//
// Every other character is a comment. Source is parsed in full into an
// immutable Program (a run-length compressed instruction stream plus a
// two-way jump table) before an Execution walks it against a 65536-cell
// tape. Unbalanced brackets fail at parse time and tape pointer overruns fail
// at run time; neither panics.
package bf
