// Package resolver performs static scope resolution over a parsed program.
//
// For every variable read and assignment that refers to a local binding,
// the resolver records how many scopes lie between the use and the
// declaring scope. Names not found in any local scope are globals and get
// no entry; the interpreter looks those up in the global environment.
package resolver

import (
	"lox-lang/internal/ast"
	"lox-lang/internal/diag"
	"lox-lang/internal/token"
)

// Locals maps *ast.VariableExpr and *ast.AssignExpr nodes to their scope
// distance. It is built once per program and not modified afterwards.
type Locals map[ast.Expr]int

// Depth returns the recorded distance for expr, if any.
func (l Locals) Depth(expr ast.Expr) (int, bool) {
	d, ok := l[expr]
	return d, ok
}

// FuncKind tracks what body the resolver is currently inside.
type FuncKind uint8

const (
	FuncNone FuncKind = iota // top-level code
	FuncFunction
)

// scope maps a name to whether its initializer has finished resolving.
type scope map[string]bool

// Resolver walks statements with a stack of local scopes, innermost last.
// The global scope is never pushed.
type Resolver struct {
	scopes []scope
	locals Locals
	diags  []diag.Diagnostic

	current FuncKind
	// initializing is the top-level variable whose initializer is being
	// resolved, or "" outside one.
	initializing string
}

// New creates an empty resolver.
func New() *Resolver {
	return &Resolver{locals: make(Locals)}
}

// Resolve is shorthand for New().Resolve(stmts).
func Resolve(stmts []ast.Stmt) (Locals, []diag.Diagnostic) {
	return New().Resolve(stmts)
}

// Resolve annotates the program and returns the distance table along with
// any resolution errors.
func (r *Resolver) Resolve(stmts []ast.Stmt) (Locals, []diag.Diagnostic) {
	r.resolveStmts(stmts)
	return r.locals, r.diags
}

// ---- scope helpers ----

func (r *Resolver) beginScope() {
	r.scopes = append(r.scopes, make(scope))
}

func (r *Resolver) endScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

// declare adds name to the innermost scope as not yet ready.
func (r *Resolver) declare(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = false
}

// define marks name ready in the innermost scope.
func (r *Resolver) define(name token.Token) {
	if len(r.scopes) == 0 {
		return
	}
	r.scopes[len(r.scopes)-1][name.Lexeme] = true
}

// resolveLocal records the distance to the nearest scope declaring name.
func (r *Resolver) resolveLocal(expr ast.Expr, name token.Token) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if _, ok := r.scopes[i][name.Lexeme]; ok {
			r.locals[expr] = len(r.scopes) - 1 - i
			return
		}
	}
}

func (r *Resolver) error(code string, tok token.Token, msg string) {
	r.diags = append(r.diags, diag.AtToken(code, diag.Resolve, tok, "%s", msg))
}

// ============================================================
// Statements
// ============================================================

func (r *Resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *Resolver) resolveStmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		r.beginScope()
		r.resolveStmts(s.Statements)
		r.endScope()

	case *ast.VarStmt:
		r.declare(s.Name)
		if s.Initializer != nil {
			if len(r.scopes) == 0 {
				r.initializing = s.Name.Lexeme
			}
			r.resolveExpr(s.Initializer)
			r.initializing = ""
		}
		r.define(s.Name)

	case *ast.FunctionStmt:
		// Defined before the body so the function can call itself.
		r.declare(s.Name)
		r.define(s.Name)
		r.resolveFunction(s, FuncFunction)

	case *ast.ExprStmt:
		r.resolveExpr(s.Expression)

	case *ast.PrintStmt:
		r.resolveExpr(s.Expression)

	case *ast.IfStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Then)
		if s.Else != nil {
			r.resolveStmt(s.Else)
		}

	case *ast.WhileStmt:
		r.resolveExpr(s.Condition)
		r.resolveStmt(s.Body)

	case *ast.ReturnStmt:
		if r.current == FuncNone {
			r.error("E3002", s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			r.resolveExpr(s.Value)
		}
	}
}

// resolveFunction opens one scope holding the parameters and the body.
func (r *Resolver) resolveFunction(fn *ast.FunctionStmt, kind FuncKind) {
	enclosing, enclosingInit := r.current, r.initializing
	r.current, r.initializing = kind, ""
	defer func() { r.current, r.initializing = enclosing, enclosingInit }()

	r.beginScope()
	for _, p := range fn.Params {
		r.declare(p)
		r.define(p)
	}
	r.resolveStmts(fn.Body)
	r.endScope()
}

// ============================================================
// Expressions
// ============================================================

func (r *Resolver) resolveExpr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.VariableExpr:
		if r.readsOwnInitializer(e.Name) {
			r.error("E3001", e.Name, "Can't read local variable in its own initializer.")
		}
		r.resolveLocal(e, e.Name)

	case *ast.AssignExpr:
		r.resolveExpr(e.Value)
		r.resolveLocal(e, e.Name)

	case *ast.BinaryExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.LogicalExpr:
		r.resolveExpr(e.Left)
		r.resolveExpr(e.Right)

	case *ast.UnaryExpr:
		r.resolveExpr(e.Right)

	case *ast.GroupingExpr:
		r.resolveExpr(e.Expression)

	case *ast.CallExpr:
		r.resolveExpr(e.Callee)
		for _, a := range e.Arguments {
			r.resolveExpr(a)
		}

	case *ast.LiteralExpr:
		// nothing to resolve
	}
}

// readsOwnInitializer reports whether name is declared but not yet ready
// in the innermost scope. At top level it matches the global being
// initialized, so `var a = a;` is rejected there too.
func (r *Resolver) readsOwnInitializer(name token.Token) bool {
	if len(r.scopes) == 0 {
		return r.initializing != "" && r.initializing == name.Lexeme
	}
	ready, declared := r.scopes[len(r.scopes)-1][name.Lexeme]
	return declared && !ready
}
