// Package diag provides diagnostic types shared by every interpreter phase.
package diag

import (
	"fmt"
	"lox-lang/internal/token"
)

// Phase identifies which stage of the pipeline produced a diagnostic.
type Phase int

const (
	Scan Phase = iota
	Parse
	Resolve
	Runtime
)

func (p Phase) String() string {
	switch p {
	case Scan:
		return "scan"
	case Parse:
		return "parse"
	case Resolve:
		return "resolve"
	case Runtime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Static reports whether the phase runs before execution. Static
// diagnostics prevent the program from running at all.
func (p Phase) Static() bool {
	return p != Runtime
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	Code    string `json:"code"`            // stable error code, e.g. "E1001"
	Phase   Phase  `json:"phase"`           // stage that reported it
	Message string `json:"message"`         // human-readable description
	Line    int    `json:"line"`            // 1-based source line
	Where   string `json:"where,omitempty"` // "", " at end" or " at 'lexeme'"
}

// String renders the diagnostic in the shape the driver prints.
//
//	[line 3] Error at ';': Expect expression.
//	Operands must be numbers.
//	[line 7]
func (d Diagnostic) String() string {
	if d.Phase == Runtime {
		return fmt.Sprintf("%s\n[line %d]", d.Message, d.Line)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", d.Line, d.Where, d.Message)
}

// Error implements the error interface so a Diagnostic can travel as one.
func (d Diagnostic) Error() string {
	return d.String()
}

// Errorf creates a diagnostic at a bare line with no token context.
func Errorf(code string, phase Phase, line int, format string, args ...interface{}) Diagnostic {
	return Diagnostic{
		Code:    code,
		Phase:   phase,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
	}
}

// AtToken creates a diagnostic located at tok, filling Where from it.
func AtToken(code string, phase Phase, tok token.Token, format string, args ...interface{}) Diagnostic {
	d := Errorf(code, phase, tok.Line, format, args...)
	d.Where = Where(tok)
	return d
}

// Where returns the location suffix used for token-anchored errors.
func Where(tok token.Token) string {
	if tok.Kind == token.EOF {
		return " at end"
	}
	return fmt.Sprintf(" at '%s'", tok.Lexeme)
}

// ============================================================
// Collector
// ============================================================

// Collector accumulates the diagnostics of one run. Each run gets a fresh
// collector, so failures on one REPL line do not leak into the next.
type Collector struct {
	diags []Diagnostic
}

// NewCollector returns an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Add records diagnostics.
func (c *Collector) Add(ds ...Diagnostic) {
	c.diags = append(c.diags, ds...)
}

// HasErrors reports whether anything has been recorded.
func (c *Collector) HasErrors() bool {
	return len(c.diags) > 0
}

// HasStatic reports whether a scan, parse or resolve error was recorded.
func (c *Collector) HasStatic() bool {
	for _, d := range c.diags {
		if d.Phase.Static() {
			return true
		}
	}
	return false
}

// Len returns the number of recorded diagnostics.
func (c *Collector) Len() int {
	return len(c.diags)
}

// Diagnostics returns the recorded diagnostics in report order.
func (c *Collector) Diagnostics() []Diagnostic {
	return c.diags
}
