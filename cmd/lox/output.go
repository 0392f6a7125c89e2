package main

import (
	"encoding/json"
	"fmt"
	"io"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/token"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/urfave/cli.v1"
)

// ---- tokens command ----

func printTokens(ctx *cli.Context) error {
	source, err := readScript(ctx)
	if err != nil {
		return err
	}
	tokens, diags := lexer.Scan(source)
	if ctx.Bool(jsonFlag.Name) {
		err = writeTokensJSON(os.Stdout, tokens, diags)
	} else {
		writeTokensTable(os.Stdout, tokens)
		writeDiags(current.stderr, diags)
	}
	if err != nil {
		return err
	}
	return staticExit(diags)
}

func writeTokensTable(w io.Writer, tokens []token.Token) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Line", "Span", "Class", "Kind", "Lexeme", "Literal"})
	table.SetAutoFormatHeaders(false)
	for _, tok := range tokens {
		literal := ""
		if tok.Literal != nil {
			literal = fmt.Sprint(tok.Literal)
		}
		table.Append([]string{
			strconv.Itoa(tok.Line),
			tok.Span.String(),
			tokenClass(tok.Kind),
			tok.Kind.String(),
			tok.Lexeme,
			literal,
		})
	}
	table.Render()
}

// tokenClass groups kinds for display: keyword, literal, eof or punct.
func tokenClass(k token.Kind) string {
	switch {
	case k.IsKeyword():
		return "keyword"
	case k.IsLiteral():
		return "literal"
	case k == token.EOF:
		return "eof"
	default:
		return "punct"
	}
}

type tokenJSON struct {
	Kind    string      `json:"kind"`
	Class   string      `json:"class"`
	Lexeme  string      `json:"lexeme"`
	Literal interface{} `json:"literal,omitempty"`
	Line    int         `json:"line"`
	Column  int         `json:"column"`
	Offset  int         `json:"offset"`
	Length  int         `json:"length"`
}

func writeTokensJSON(w io.Writer, tokens []token.Token, diags []diag.Diagnostic) error {
	toks := make([]tokenJSON, 0, len(tokens))
	for _, tok := range tokens {
		toks = append(toks, tokenJSON{
			Kind:    tok.Kind.String(),
			Class:   tokenClass(tok.Kind),
			Lexeme:  tok.Lexeme,
			Literal: tok.Literal,
			Line:    tok.Line,
			Column:  tok.Span.Start.Column,
			Offset:  tok.Span.Start.Offset,
			Length:  tok.Span.Len(),
		})
	}
	return writeJSON(w, map[string]interface{}{
		"tokens":      toks,
		"diagnostics": diagsToSlice(diags),
	})
}

// ---- parse command ----

func printAST(ctx *cli.Context) error {
	source, err := readScript(ctx)
	if err != nil {
		return err
	}
	tokens, diags := lexer.Scan(source)
	stmts, parseDiags := parser.Parse(tokens)
	diags = append(diags, parseDiags...)
	err = writeJSON(os.Stdout, map[string]interface{}{
		"statements":  ast.StmtSlice(stmts),
		"diagnostics": diagsToSlice(diags),
	})
	if err != nil {
		return err
	}
	return staticExit(diags)
}

// ---- helpers ----

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("JSON encoding failed: %w", err)
	}
	return nil
}

func writeDiags(w io.Writer, diags []diag.Diagnostic) {
	report := diagReporter(current.color)
	for _, d := range diags {
		report(w, d)
	}
}

func diagsToSlice(diags []diag.Diagnostic) []map[string]interface{} {
	result := make([]map[string]interface{}, len(diags))
	for i, d := range diags {
		result[i] = map[string]interface{}{
			"code":    d.Code,
			"phase":   d.Phase.String(),
			"message": d.Message,
			"line":    d.Line,
		}
		if d.Where != "" {
			result[i]["where"] = d.Where
		}
	}
	return result
}

// staticExit returns the static-error exit status when diags is not empty.
func staticExit(diags []diag.Diagnostic) error {
	if len(diags) > 0 {
		return cli.NewExitError("", 65)
	}
	return nil
}
