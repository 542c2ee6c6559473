package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mgomes/bfi/bf"
)

const (
	severityError   = 1
	severityWarning = 2
)

var instructionDocs = map[rune]string{
	'>': "Move the data pointer one cell right.",
	'<': "Move the data pointer one cell left.",
	'+': "Increment the current cell, wrapping 255 to 0.",
	'-': "Decrement the current cell, wrapping 0 to 255.",
	'[': "Jump past the matching `]` when the current cell is zero.",
	']': "Jump back to the matching `[` when the current cell is non-zero.",
	'.': "Write the current cell as one byte.",
	',': "Read one byte into the current cell.",
}

const instructionOrder = "><+-[].,"

type lspInboundMessage struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
}

type lspResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type lspOutboundMessage struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      *json.RawMessage  `json:"id,omitempty"`
	Method  string            `json:"method,omitempty"`
	Params  any               `json:"params,omitempty"`
	Result  any               `json:"result,omitempty"`
	Error   *lspResponseError `json:"error,omitempty"`
}

type lspDidOpenParams struct {
	TextDocument struct {
		URI  string `json:"uri"`
		Text string `json:"text"`
	} `json:"textDocument"`
}

type lspDidChangeParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	ContentChanges []struct {
		Text string `json:"text"`
	} `json:"contentChanges"`
}

type lspTextDocumentPositionParams struct {
	TextDocument struct {
		URI string `json:"uri"`
	} `json:"textDocument"`
	Position struct {
		Line      int `json:"line"`
		Character int `json:"character"`
	} `json:"position"`
}

type lspServer struct {
	reader *bufio.Reader
	writer *bufio.Writer
	docs   map[string]string
}

func runLSP() error {
	return newLSPServer(os.Stdin, os.Stdout).serve()
}

func newLSPServer(r io.Reader, w io.Writer) *lspServer {
	return &lspServer{
		reader: bufio.NewReader(r),
		writer: bufio.NewWriter(w),
		docs:   make(map[string]string),
	}
}

func (s *lspServer) serve() error {
	for {
		payload, err := s.readPayload()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		var incoming lspInboundMessage
		if err := json.Unmarshal(payload, &incoming); err != nil {
			continue
		}

		for _, msg := range s.handleMessage(incoming) {
			if err := s.writePayload(msg); err != nil {
				return err
			}
		}

		if incoming.Method == "exit" {
			return nil
		}
	}
}

func (s *lspServer) handleMessage(incoming lspInboundMessage) []lspOutboundMessage {
	switch incoming.Method {
	case "initialize":
		return reply(incoming, map[string]any{
			"capabilities": map[string]any{
				"textDocumentSync": 1,
				"hoverProvider":    true,
				"completionProvider": map[string]any{
					"resolveProvider": false,
				},
			},
		})
	case "initialized", "exit":
		return nil
	case "shutdown":
		return reply(incoming, nil)
	case "textDocument/didOpen":
		var params lspDidOpenParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return nil
		}
		s.docs[params.TextDocument.URI] = params.TextDocument.Text
		return []lspOutboundMessage{publishDiagnostics(params.TextDocument.URI, params.TextDocument.Text)}
	case "textDocument/didChange":
		var params lspDidChangeParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil || len(params.ContentChanges) == 0 {
			return nil
		}
		latest := params.ContentChanges[len(params.ContentChanges)-1].Text
		s.docs[params.TextDocument.URI] = latest
		return []lspOutboundMessage{publishDiagnostics(params.TextDocument.URI, latest)}
	case "textDocument/completion":
		return reply(incoming, map[string]any{
			"isIncomplete": false,
			"items":        completionItems(),
		})
	case "textDocument/hover":
		if incoming.ID == nil {
			return nil
		}
		var params lspTextDocumentPositionParams
		if err := json.Unmarshal(incoming.Params, &params); err != nil {
			return []lspOutboundMessage{{
				JSONRPC: "2.0",
				ID:      incoming.ID,
				Error:   &lspResponseError{Code: -32602, Message: "invalid hover params"},
			}}
		}
		source := s.docs[params.TextDocument.URI]
		ch, ok := instructionAtPosition(source, params.Position.Line, params.Position.Character)
		if !ok {
			return reply(incoming, nil)
		}
		return reply(incoming, map[string]any{
			"contents": map[string]any{
				"kind":  "markdown",
				"value": fmt.Sprintf("`%c`\n\n%s", ch, instructionDocs[ch]),
			},
		})
	default:
		if incoming.ID == nil {
			return nil
		}
		return []lspOutboundMessage{{
			JSONRPC: "2.0",
			ID:      incoming.ID,
			Error:   &lspResponseError{Code: -32601, Message: "method not found"},
		}}
	}
}

func reply(incoming lspInboundMessage, result any) []lspOutboundMessage {
	if incoming.ID == nil {
		return nil
	}
	return []lspOutboundMessage{{JSONRPC: "2.0", ID: incoming.ID, Result: result}}
}

func publishDiagnostics(uri, source string) lspOutboundMessage {
	return lspOutboundMessage{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: map[string]any{
			"uri":         uri,
			"diagnostics": diagnosticsForSource(source),
		},
	}
}

// diagnosticsForSource reports a bracket error when the source does not
// parse, and analyzer warnings when it does.
func diagnosticsForSource(source string) []map[string]any {
	program, err := bf.Parse(source)
	if err != nil {
		var parseErr *bf.ParseError
		if errors.As(err, &parseErr) {
			return []map[string]any{
				newDiagnostic(parseErr.Pos, severityError, parseErr.Msg),
			}
		}
		return []map[string]any{newDiagnostic(bf.Position{}, severityError, err.Error())}
	}

	warnings := analyzeProgramWarnings(program)
	out := make([]map[string]any, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, newDiagnostic(warning.Pos, severityWarning, warning.Message))
	}
	return out
}

func newDiagnostic(pos bf.Position, severity int, message string) map[string]any {
	line := max(0, pos.Line-1)
	character := max(0, pos.Column-1)
	return map[string]any{
		"range": map[string]any{
			"start": map[string]any{
				"line":      line,
				"character": character,
			},
			"end": map[string]any{
				"line":      line,
				"character": character + 1,
			},
		},
		"severity": severity,
		"source":   "bfi-lsp",
		"message":  message,
	}
}

func completionItems() []map[string]any {
	items := make([]map[string]any, 0, len(instructionOrder))
	for _, ch := range instructionOrder {
		items = append(items, map[string]any{
			"label":         string(ch),
			"kind":          24, // Operator
			"detail":        instructionDocs[ch],
			"documentation": instructionDocs[ch],
		})
	}
	return items
}

// instructionAtPosition returns the instruction under the cursor, or the one
// just before it when the cursor sits at the end of a run.
func instructionAtPosition(source string, line, character int) (rune, bool) {
	lines := strings.Split(source, "\n")
	if line < 0 || line >= len(lines) {
		return 0, false
	}
	runes := []rune(lines[line])
	for _, idx := range []int{character, character - 1} {
		if idx >= 0 && idx < len(runes) && bf.IsInstruction(runes[idx]) {
			return runes[idx], true
		}
	}
	return 0, false
}

func (s *lspServer) readPayload() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		name, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid Content-Length: %w", err)
			}
			contentLength = n
		}
	}

	if contentLength < 0 {
		return nil, fmt.Errorf("missing Content-Length header")
	}
	payload := make([]byte, contentLength)
	if _, err := io.ReadFull(s.reader, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func (s *lspServer) writePayload(msg lspOutboundMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.writer, "Content-Length: %d\r\n\r\n", len(data)); err != nil {
		return err
	}
	if _, err := s.writer.Write(data); err != nil {
		return err
	}
	return s.writer.Flush()
}
