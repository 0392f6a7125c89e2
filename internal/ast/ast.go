// Package ast defines the abstract syntax tree for Lox programs.
//
// Expr and Stmt are closed sets: the marker methods are unexported, so only
// the node types in this file implement them and every consumer can switch
// over them exhaustively.
package ast

import (
	"lox-lang/internal/token"
)

// ============================================================
// Node interfaces
// ============================================================

// Node is the interface implemented by all AST nodes.
type Node interface {
	nodeNode()
}

// Expr is the interface for expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is the interface for statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// ============================================================
// Base types (embedded to provide the marker methods)
// ============================================================

// ExprBase is embedded by all expression nodes.
type ExprBase struct{}

func (ExprBase) nodeNode() {}
func (ExprBase) exprNode() {}

// StmtBase is embedded by all statement nodes.
type StmtBase struct{}

func (StmtBase) nodeNode() {}
func (StmtBase) stmtNode() {}

// ============================================================
// Expressions
// ============================================================

// LiteralExpr is a constant: nil, a bool, a float64 or a string.
type LiteralExpr struct {
	ExprBase
	Value any
}

// GroupingExpr is a parenthesized expression.
type GroupingExpr struct {
	ExprBase
	Expression Expr
}

// UnaryExpr represents !x or -x.
type UnaryExpr struct {
	ExprBase
	Operator token.Token
	Right    Expr
}

// BinaryExpr represents an arithmetic, comparison or equality operation.
type BinaryExpr struct {
	ExprBase
	Left     Expr
	Operator token.Token
	Right    Expr
}

// LogicalExpr represents a short-circuiting `and` / `or`.
type LogicalExpr struct {
	ExprBase
	Left     Expr
	Operator token.Token
	Right    Expr
}

// VariableExpr is a read of a named variable.
type VariableExpr struct {
	ExprBase
	Name token.Token
}

// AssignExpr is `name = value`.
type AssignExpr struct {
	ExprBase
	Name  token.Token
	Value Expr
}

// CallExpr is `callee(arguments)`. Paren is the closing parenthesis, used
// to locate runtime errors raised by the call.
type CallExpr struct {
	ExprBase
	Callee    Expr
	Paren     token.Token
	Arguments []Expr
}

// ============================================================
// Statements
// ============================================================

// ExprStmt evaluates an expression for its side effects.
type ExprStmt struct {
	StmtBase
	Expression Expr
}

// PrintStmt evaluates an expression and prints it.
type PrintStmt struct {
	StmtBase
	Expression Expr
}

// VarStmt declares a variable; Initializer may be nil.
type VarStmt struct {
	StmtBase
	Name        token.Token
	Initializer Expr
}

// BlockStmt is `{ statements }` and opens a new scope.
type BlockStmt struct {
	StmtBase
	Statements []Stmt
}

// IfStmt is if/else; Else may be nil.
type IfStmt struct {
	StmtBase
	Condition Expr
	Then      Stmt
	Else      Stmt
}

// WhileStmt loops while Condition is truthy. For loops are desugared into it.
type WhileStmt struct {
	StmtBase
	Condition Expr
	Body      Stmt
}

// FunctionStmt declares a named function.
type FunctionStmt struct {
	StmtBase
	Name   token.Token
	Params []token.Token
	Body   []Stmt
}

// ReturnStmt returns from the enclosing function; Value may be nil.
type ReturnStmt struct {
	StmtBase
	Keyword token.Token
	Value   Expr
}
