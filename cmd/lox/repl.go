package main

import (
	"bufio"
	"fmt"
	"io"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/token"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/mattn/go-isatty"
	"gopkg.in/urfave/cli.v1"
)

const continuePrompt = "...   "

// lineReader yields one line of REPL input at a time.
type lineReader interface {
	// Readline returns io.EOF at end of input and readline.ErrInterrupt on ^C.
	Readline() (string, error)
	SetPrompt(prompt string)
	Close() error
}

// maxLineSize bounds one line of piped input.
const maxLineSize = 16 << 20

// plainReader reads piped input. It has no prompt.
type plainReader struct {
	scanner *bufio.Scanner
}

func newPlainReader(r io.Reader) *plainReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &plainReader{scanner: scanner}
}

func (r *plainReader) Readline() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}

func (r *plainReader) SetPrompt(string) {}
func (r *plainReader) Close() error     { return nil }

func runRepl(ctx *cli.Context) error {
	in, err := openInput(os.Stdin)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("readline init failed: %v", err), 1)
	}
	defer in.Close()
	repl(in, os.Stdout, current.cfg.REPL.Prompt)
	return nil
}

// openInput uses readline on a terminal and a plain line scanner otherwise.
func openInput(stdin *os.File) (lineReader, error) {
	if !isatty.IsTerminal(stdin.Fd()) {
		return newPlainReader(stdin), nil
	}
	history, err := current.cfg.REPL.HistoryPath()
	if err != nil {
		current.logger.Warn("history disabled", "err", err)
		history = ""
	}
	return readline.NewEx(&readline.Config{
		Prompt:            current.cfg.REPL.Prompt,
		HistoryFile:       history,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
}

// repl runs every complete entry in one session so definitions persist.
// An entry with unbalanced braces keeps reading until they close. Errors
// are reported and the loop goes on.
func repl(in lineReader, stdout io.Writer, prompt string) {
	session := newSession(stdout)
	current.logger.Debug("repl started", "session", session.ID)

	var accumulated strings.Builder
	braceDepth := 0
	for {
		if braceDepth > 0 {
			in.SetPrompt(continuePrompt)
		} else {
			in.SetPrompt(prompt)
		}

		line, err := in.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				accumulated.Reset()
				braceDepth = 0
				continue
			}
			if err != io.EOF {
				fmt.Fprintf(current.stderr, "read input: %v\n", err)
			}
			break
		}

		if braceDepth == 0 && strings.TrimSpace(line) == "exit" {
			break
		}

		accumulated.WriteString(line)
		accumulated.WriteString("\n")
		braceDepth = openBraces(accumulated.String())
		if braceDepth > 0 {
			continue
		}

		source := accumulated.String()
		accumulated.Reset()
		if strings.TrimSpace(source) == "" {
			continue
		}
		session.Run(source)
	}
}

// openBraces returns how many '{' tokens in source are still unclosed.
// Braces inside strings and comments are not tokens, so they never count.
func openBraces(source string) int {
	tokens, _ := lexer.Scan(source)
	depth := 0
	for _, tok := range tokens {
		switch tok.Kind {
		case token.LEFT_BRACE:
			depth++
		case token.RIGHT_BRACE:
			depth--
		}
	}
	return depth
}

// diagReporter prints diagnostics in red when enabled is set.
func diagReporter(enabled bool) func(io.Writer, diag.Diagnostic) {
	c := errorColor(enabled)
	return func(w io.Writer, d diag.Diagnostic) {
		c.Fprintln(w, d.String())
	}
}
