package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"lox-lang/internal/config"
	"lox-lang/internal/lexer"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/require"
)

// scriptedReader replays lines and records every prompt it was given.
type scriptedReader struct {
	lines   []string
	prompts []string
}

func (r *scriptedReader) Readline() (string, error) {
	if len(r.lines) == 0 {
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

func (r *scriptedReader) SetPrompt(p string) { r.prompts = append(r.prompts, p) }
func (r *scriptedReader) Close() error       { return nil }

func useSettings(t *testing.T) *bytes.Buffer {
	t.Helper()
	var stderr bytes.Buffer
	saved := current
	current = settings{
		cfg:    config.Defaults,
		logger: slog.New(slog.DiscardHandler),
		stderr: &stderr,
		color:  false,
	}
	t.Cleanup(func() { current = saved })
	return &stderr
}

func TestReplKeepsState(t *testing.T) {
	stderr := useSettings(t)
	var stdout bytes.Buffer
	in := &scriptedReader{lines: []string{
		"var a = 1;",
		"fun add(x) {",
		"  return a + x;",
		"}",
		"print add(2);",
		"print nope;",
		"print a;",
	}}
	repl(in, &stdout, "lox> ")

	require.Equal(t, "3\n1\n", stdout.String())
	require.Equal(t, "Undefined variable 'nope'.\n[line 1]\n", stderr.String())
	require.Equal(t, []string{"lox> ", "lox> ", continuePrompt, continuePrompt, "lox> ", "lox> ", "lox> ", "lox> "}, in.prompts)
}

func TestReplInterruptDropsPendingInput(t *testing.T) {
	useSettings(t)
	var stdout bytes.Buffer
	in := &scriptedReader{lines: []string{
		"{ print \"lost\";",
		"^C",
		"print \"kept\";",
		"exit",
		"print \"unreached\";",
	}}
	repl(in, &stdout, "> ")
	require.Equal(t, "kept\n", stdout.String())
}

func TestReplIgnoresBracesInStringsAndComments(t *testing.T) {
	useSettings(t)
	var stdout bytes.Buffer
	in := &scriptedReader{lines: []string{
		`print "{";`,
		"print 1; // {",
		"{",
		`  print "}";`,
		"}",
		"print 2;",
	}}
	repl(in, &stdout, "lox> ")

	require.Equal(t, "{\n1\n}\n2\n", stdout.String())
	require.Equal(t, []string{"lox> ", "lox> ", "lox> ", continuePrompt, continuePrompt, "lox> ", "lox> "}, in.prompts)
}

func TestOpenBraces(t *testing.T) {
	tests := []struct {
		source string
		want   int
	}{
		{"print 1;", 0},
		{"fun f() {", 1},
		{"{ {\n}", 1},
		{`print "{{";`, 0},
		{"// {\n", 0},
		{"}", -1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, openBraces(tt.source), tt.source)
	}
}

func TestPlainReaderLongLine(t *testing.T) {
	useSettings(t)
	long := strings.Repeat("x", 200*1024)
	in := newPlainReader(strings.NewReader("print \"" + long + "\";\nprint 1;\n"))
	var stdout bytes.Buffer
	repl(in, &stdout, "")
	require.Equal(t, long+"\n1\n", stdout.String())
}

func TestReplReportsReadErrors(t *testing.T) {
	stderr := useSettings(t)
	in := newPlainReader(strings.NewReader(strings.Repeat("x", maxLineSize+1)))
	var stdout bytes.Buffer
	repl(in, &stdout, "")
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "read input:")
	require.Contains(t, stderr.String(), "token too long")
}

func TestTokensTable(t *testing.T) {
	tokens, diags := lexer.Scan(`var x = "hi";`)
	require.Empty(t, diags)

	var buf bytes.Buffer
	writeTokensTable(&buf, tokens)
	out := buf.String()
	require.Contains(t, out, "Lexeme")
	require.Contains(t, out, "IDENTIFIER")
	require.Contains(t, out, `"hi"`)
	require.Contains(t, out, "EOF")
	require.Contains(t, out, "Span")
	require.Contains(t, out, "1:1-4")
	require.Contains(t, out, "keyword")
	require.Contains(t, out, "literal")
	require.Contains(t, out, "punct")
}

func TestTokensJSON(t *testing.T) {
	tokens, diags := lexer.Scan("1 @")
	var buf bytes.Buffer
	require.NoError(t, writeTokensJSON(&buf, tokens, diags))

	var decoded struct {
		Tokens      []tokenJSON              `json:"tokens"`
		Diagnostics []map[string]interface{} `json:"diagnostics"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Tokens, 2)
	require.Equal(t, "NUMBER", decoded.Tokens[0].Kind)
	require.Equal(t, 1.0, decoded.Tokens[0].Literal)
	require.Equal(t, "literal", decoded.Tokens[0].Class)
	require.Equal(t, 1, decoded.Tokens[0].Length)
	require.Equal(t, "eof", decoded.Tokens[1].Class)
	require.Len(t, decoded.Diagnostics, 1)
	require.Equal(t, "scan", decoded.Diagnostics[0]["phase"])
	require.True(t, strings.HasPrefix(decoded.Diagnostics[0]["message"].(string), "Unexpected character"))
}
