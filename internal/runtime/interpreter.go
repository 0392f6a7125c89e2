package runtime

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/resolver"
	"lox-lang/internal/token"
	"time"
)

// ============================================================
// Control flow signals
// ============================================================

// ExecSignal represents a control flow signal from statement execution.
type ExecSignal int

const (
	SigNone   ExecSignal = iota
	SigReturn            // return from function
)

// ExecResult carries a control flow signal and, for return, its value.
// Keyword is the return token, kept for reporting a stray return.
type ExecResult struct {
	Signal  ExecSignal
	Value   Value
	Keyword token.Token
}

var resultNone = ExecResult{Signal: SigNone}

// MaxCallDepth bounds nested user function calls so runaway recursion is a
// runtime error instead of exhausting the Go stack.
const MaxCallDepth = 8192

// ============================================================
// Runtime error
// ============================================================

// RuntimeError represents an error during interpretation. Token locates
// the operator, name or parenthesis the error is reported at.
type RuntimeError struct {
	Token   token.Token
	Message string
}

func (e *RuntimeError) Error() string {
	return e.Diagnostic().String()
}

// Diagnostic converts the error for the driver's report.
func (e *RuntimeError) Diagnostic() diag.Diagnostic {
	return diag.Errorf("E4001", diag.Runtime, e.Token.Line, "%s", e.Message)
}

func runtimeErr(tok token.Token, format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Token: tok, Message: fmt.Sprintf(format, args...)}
}

// ============================================================
// Interpreter
// ============================================================

// Interpreter walks the AST and executes it. One interpreter holds the
// globals of a whole session, so successive Interpret calls share state.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  resolver.Locals
	output  io.Writer
	log     *slog.Logger
	now     func() time.Time
	depth   int

	// audit, when set, observes every resolved local access with the
	// environment the distance selected and the one a chain search finds.
	audit func(name string, resolved, found *Environment)
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger routes debug traces to l.
func WithLogger(l *slog.Logger) Option {
	return func(i *Interpreter) {
		if l != nil {
			i.log = l
		}
	}
}

// WithClock replaces the time source used by the clock native.
func WithClock(now func() time.Time) Option {
	return func(i *Interpreter) {
		if now != nil {
			i.now = now
		}
	}
}

// NewInterpreter creates a new interpreter with built-in functions registered.
func NewInterpreter(output io.Writer, opts ...Option) *Interpreter {
	globals := NewEnvironment(nil)
	i := &Interpreter{
		globals: globals,
		env:     globals,
		locals:  make(resolver.Locals),
		output:  output,
		log:     slog.New(slog.DiscardHandler),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.registerBuiltins()
	return i
}

// Globals returns the global environment (useful for REPL).
func (i *Interpreter) Globals() *Environment {
	return i.globals
}

// Interpret executes a resolved program. Distances from locals are kept
// so functions declared by earlier calls still find theirs. Execution
// stops at the first runtime error, which is returned as *RuntimeError.
func (i *Interpreter) Interpret(stmts []ast.Stmt, locals resolver.Locals) error {
	// Entries are never released: a long session holds one per resolved
	// local access it has ever run, reachable or not. Any closure from an
	// earlier run may still need its entries.
	for expr, depth := range locals {
		i.locals[expr] = depth
	}

	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			i.env = i.globals
			var rerr *RuntimeError
			if errors.As(err, &rerr) {
				i.log.Debug("runtime error", "line", rerr.Token.Line, "message", rerr.Message)
			}
			return err
		}
		if result.Signal == SigReturn {
			return runtimeErr(result.Keyword, "Can't return from top-level code.")
		}
	}
	return nil
}

// ============================================================
// Statement execution
// ============================================================

func (i *Interpreter) execStmt(stmt ast.Stmt) (ExecResult, error) {
	switch s := stmt.(type) {
	case *ast.ExprStmt:
		_, err := i.evalExpr(s.Expression)
		return resultNone, err

	case *ast.PrintStmt:
		val, err := i.evalExpr(s.Expression)
		if err != nil {
			return resultNone, err
		}
		fmt.Fprintln(i.output, val.String())
		return resultNone, nil

	case *ast.VarStmt:
		return i.execVarDecl(s)

	case *ast.BlockStmt:
		return i.execBlock(s.Statements, NewEnvironment(i.env))

	case *ast.IfStmt:
		return i.execIf(s)

	case *ast.WhileStmt:
		return i.execWhile(s)

	case *ast.FunctionStmt:
		i.env.Define(s.Name.Lexeme, &FuncVal{Decl: s, Closure: i.env})
		return resultNone, nil

	case *ast.ReturnStmt:
		var val Value = NilVal{}
		if s.Value != nil {
			v, err := i.evalExpr(s.Value)
			if err != nil {
				return resultNone, err
			}
			val = v
		}
		return ExecResult{Signal: SigReturn, Value: val, Keyword: s.Keyword}, nil

	default:
		panic(fmt.Sprintf("runtime: unhandled statement type %T", stmt))
	}
}

func (i *Interpreter) execVarDecl(s *ast.VarStmt) (ExecResult, error) {
	var val Value = NilVal{}
	if s.Initializer != nil {
		v, err := i.evalExpr(s.Initializer)
		if err != nil {
			return resultNone, err
		}
		val = v
	}
	i.env.Define(s.Name.Lexeme, val)
	return resultNone, nil
}

func (i *Interpreter) execIf(s *ast.IfStmt) (ExecResult, error) {
	cond, err := i.evalExpr(s.Condition)
	if err != nil {
		return resultNone, err
	}

	if IsTruthy(cond) {
		return i.execStmt(s.Then)
	}
	if s.Else != nil {
		return i.execStmt(s.Else)
	}
	return resultNone, nil
}

func (i *Interpreter) execWhile(s *ast.WhileStmt) (ExecResult, error) {
	for {
		cond, err := i.evalExpr(s.Condition)
		if err != nil {
			return resultNone, err
		}
		if !IsTruthy(cond) {
			break
		}

		result, err := i.execStmt(s.Body)
		if err != nil {
			return resultNone, err
		}
		if result.Signal == SigReturn {
			return result, nil // propagate return
		}
	}
	return resultNone, nil
}

// execBlock runs stmts in blockEnv and restores the previous environment
// however the block exits.
func (i *Interpreter) execBlock(stmts []ast.Stmt, blockEnv *Environment) (ExecResult, error) {
	prevEnv := i.env
	i.env = blockEnv
	defer func() { i.env = prevEnv }()

	for _, stmt := range stmts {
		result, err := i.execStmt(stmt)
		if err != nil {
			return resultNone, err
		}
		if result.Signal != SigNone {
			return result, nil // propagate signal
		}
	}
	return resultNone, nil
}

// ============================================================
// Expression evaluation
// ============================================================

func (i *Interpreter) evalExpr(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return FromLiteral(e.Value), nil

	case *ast.GroupingExpr:
		return i.evalExpr(e.Expression)

	case *ast.UnaryExpr:
		return i.evalUnary(e)

	case *ast.BinaryExpr:
		return i.evalBinary(e)

	case *ast.LogicalExpr:
		return i.evalLogical(e)

	case *ast.VariableExpr:
		return i.lookUpVariable(e.Name, e)

	case *ast.AssignExpr:
		return i.evalAssign(e)

	case *ast.CallExpr:
		return i.evalCall(e)

	default:
		panic(fmt.Sprintf("runtime: unhandled expression type %T", expr))
	}
}

// lookUpVariable reads a resolved local at its recorded distance and
// anything else from globals.
func (i *Interpreter) lookUpVariable(name token.Token, expr ast.Expr) (Value, error) {
	if depth, ok := i.locals.Depth(expr); ok {
		i.observe(name.Lexeme, depth)
		return i.env.GetAt(depth, name)
	}
	return i.globals.Get(name)
}

func (i *Interpreter) evalAssign(e *ast.AssignExpr) (Value, error) {
	val, err := i.evalExpr(e.Value)
	if err != nil {
		return nil, err
	}

	if depth, ok := i.locals.Depth(e); ok {
		i.observe(e.Name.Lexeme, depth)
		err = i.env.AssignAt(depth, e.Name, val)
	} else {
		err = i.globals.Assign(e.Name, val)
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (i *Interpreter) observe(name string, depth int) {
	if i.audit != nil {
		i.audit(name, i.env.Ancestor(depth), i.env.Owner(name))
	}
}

func (i *Interpreter) evalUnary(e *ast.UnaryExpr) (Value, error) {
	operand, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Kind {
	case token.BANG:
		return BoolVal(!IsTruthy(operand)), nil
	case token.MINUS:
		n, ok := operand.(NumberVal)
		if !ok {
			return nil, runtimeErr(e.Operator, "Operand must be a number.")
		}
		return -n, nil
	default:
		panic(fmt.Sprintf("runtime: unknown unary operator %s", e.Operator.Kind))
	}
}

func (i *Interpreter) evalBinary(e *ast.BinaryExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := i.evalExpr(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Kind {
	case token.EQUAL_EQUAL:
		return BoolVal(valuesEqual(left, right)), nil
	case token.BANG_EQUAL:
		return BoolVal(!valuesEqual(left, right)), nil

	case token.PLUS:
		if l, ok := left.(NumberVal); ok {
			if r, ok := right.(NumberVal); ok {
				return l + r, nil
			}
		}
		if l, ok := left.(StringVal); ok {
			if r, ok := right.(StringVal); ok {
				return l + r, nil
			}
		}
		return nil, runtimeErr(e.Operator, "Operands must be two numbers or two strings.")
	}

	l, lok := left.(NumberVal)
	r, rok := right.(NumberVal)
	if !lok || !rok {
		return nil, runtimeErr(e.Operator, "Operands must be numbers.")
	}

	switch e.Operator.Kind {
	case token.MINUS:
		return l - r, nil
	case token.STAR:
		return l * r, nil
	case token.SLASH:
		return l / r, nil // IEEE: x/0 is ±Inf or NaN
	case token.GREATER:
		return BoolVal(l > r), nil
	case token.GREATER_EQUAL:
		return BoolVal(l >= r), nil
	case token.LESS:
		return BoolVal(l < r), nil
	case token.LESS_EQUAL:
		return BoolVal(l <= r), nil
	default:
		panic(fmt.Sprintf("runtime: unknown binary operator %s", e.Operator.Kind))
	}
}

// evalLogical returns the deciding operand itself, not a boolean.
func (i *Interpreter) evalLogical(e *ast.LogicalExpr) (Value, error) {
	left, err := i.evalExpr(e.Left)
	if err != nil {
		return nil, err
	}
	if e.Operator.Kind == token.OR {
		if IsTruthy(left) {
			return left, nil // short-circuit
		}
		return i.evalExpr(e.Right)
	}
	// AND
	if !IsTruthy(left) {
		return left, nil // short-circuit
	}
	return i.evalExpr(e.Right)
}

func (i *Interpreter) evalCall(e *ast.CallExpr) (Value, error) {
	callee, err := i.evalExpr(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]Value, len(e.Arguments))
	for idx, argExpr := range e.Arguments {
		val, err := i.evalExpr(argExpr)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}

	fn, ok := callee.(Callable)
	if !ok {
		return nil, runtimeErr(e.Paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, runtimeErr(e.Paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	if i.depth >= MaxCallDepth {
		return nil, runtimeErr(e.Paren, "Stack overflow.")
	}

	val, err := fn.Call(i, args)
	if err != nil {
		var rerr *RuntimeError
		if !errors.As(err, &rerr) {
			return nil, runtimeErr(e.Paren, "%s", err.Error())
		}
		return nil, err
	}
	return val, nil
}
