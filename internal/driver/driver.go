// Package driver wires the scanner, parser, resolver and interpreter into
// the run-source entry point shared by script execution and the REPL.
package driver

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/diag"
	"lox-lang/internal/lexer"
	"lox-lang/internal/parser"
	"lox-lang/internal/resolver"
	"lox-lang/internal/runtime"
	"os"
	"time"

	"github.com/go-stack/stack"
	"github.com/google/uuid"
)

// Status is the outcome of running one piece of source.
type Status int

const (
	StatusOK Status = iota
	StatusStaticError
	StatusRuntimeError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusStaticError:
		return "static-error"
	case StatusRuntimeError:
		return "runtime-error"
	default:
		return "unknown"
	}
}

// ExitCode maps the status to the process exit code for script runs.
func (s Status) ExitCode() int {
	switch s {
	case StatusStaticError:
		return 65
	case StatusRuntimeError:
		return 70
	default:
		return 0
	}
}

// Reporter writes one diagnostic to w.
type Reporter func(w io.Writer, d diag.Diagnostic)

// PlainReporter prints the diagnostic followed by a newline.
func PlainReporter(w io.Writer, d diag.Diagnostic) {
	fmt.Fprintln(w, d.String())
}

// Session runs successive sources against one interpreter, so globals and
// functions persist between runs. Error state does not: every Run starts
// with a fresh collector.
type Session struct {
	ID     string
	interp *runtime.Interpreter
	stderr io.Writer
	report Reporter
	log    *slog.Logger
}

// Option configures a Session.
type Option func(*sessionConfig)

type sessionConfig struct {
	report  Reporter
	log     *slog.Logger
	runtime []runtime.Option
}

// WithReporter replaces the diagnostic printer.
func WithReporter(r Reporter) Option {
	return func(c *sessionConfig) {
		if r != nil {
			c.report = r
		}
	}
}

// WithLogger routes phase and interpreter traces to l.
func WithLogger(l *slog.Logger) Option {
	return func(c *sessionConfig) {
		if l != nil {
			c.log = l
		}
	}
}

// WithRuntime passes options through to the interpreter.
func WithRuntime(opts ...runtime.Option) Option {
	return func(c *sessionConfig) {
		c.runtime = append(c.runtime, opts...)
	}
}

// NewSession creates a session printing program output to stdout and
// diagnostics to stderr.
func NewSession(stdout, stderr io.Writer, opts ...Option) *Session {
	cfg := sessionConfig{
		report: PlainReporter,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	id := uuid.New().String()
	log := cfg.log.With("session", id)
	rtOpts := append([]runtime.Option{runtime.WithLogger(log)}, cfg.runtime...)
	return &Session{
		ID:     id,
		interp: runtime.NewInterpreter(stdout, rtOpts...),
		stderr: stderr,
		report: cfg.report,
		log:    log,
	}
}

// Interpreter exposes the session interpreter, e.g. to define natives.
func (s *Session) Interpreter() *runtime.Interpreter {
	return s.interp
}

// Run scans, parses, resolves and executes source. Scan and parse errors
// are all reported and stop before resolution; resolution errors stop
// before execution; a runtime error halts the run. Every diagnostic is
// written to stderr and also returned.
func (s *Session) Run(source string) (status Status, diags []diag.Diagnostic) {
	c := diag.NewCollector()
	defer func() {
		if !c.HasErrors() {
			return
		}
		for _, d := range c.Diagnostics() {
			s.report(s.stderr, d)
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("internal error", "panic", r, "stack", fmt.Sprintf("%+v", stack.Trace().TrimRuntime()))
			c.Add(diag.Errorf("E4999", diag.Runtime, 0, "Internal error: %v", r))
			status, diags = StatusRuntimeError, c.Diagnostics()
		}
	}()

	start := time.Now()
	tokens, lexDiags := lexer.Scan(source)
	stmts, parseDiags := parser.Parse(tokens)
	c.Add(lexDiags...)
	c.Add(parseDiags...)
	s.log.Debug("parsed",
		"tokens", len(tokens),
		"statements", len(stmts),
		"diagnostics", c.Len(),
		"elapsed", time.Since(start))
	if c.HasStatic() {
		return StatusStaticError, c.Diagnostics()
	}

	start = time.Now()
	locals, resolveDiags := resolver.Resolve(stmts)
	c.Add(resolveDiags...)
	s.log.Debug("resolved",
		"locals", len(locals),
		"diagnostics", len(resolveDiags),
		"elapsed", time.Since(start))
	if c.HasStatic() {
		return StatusStaticError, c.Diagnostics()
	}

	start = time.Now()
	err := s.interp.Interpret(stmts, locals)
	s.log.Debug("interpreted", "elapsed", time.Since(start), "failed", err != nil)
	if err != nil {
		var rerr *runtime.RuntimeError
		if !errors.As(err, &rerr) {
			rerr = &runtime.RuntimeError{Message: err.Error()}
		}
		c.Add(rerr.Diagnostic())
		return StatusRuntimeError, c.Diagnostics()
	}
	return StatusOK, c.Diagnostics()
}

// RunFile reads and runs a script. The error is non-nil only when the
// file cannot be read.
func (s *Session) RunFile(path string) (Status, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return StatusOK, fmt.Errorf("read script: %w", err)
	}
	s.log.Debug("running file", "path", path, "bytes", len(source))
	status, _ := s.Run(string(source))
	return status, nil
}
