package ast

import (
	"lox-lang/internal/token"
)

// NodeToMap converts an AST node to a map suitable for JSON serialization.
// This produces a tagged-union structure: every node has a "kind" field.
func NodeToMap(node Node) map[string]interface{} {
	if node == nil {
		return nil
	}

	switch n := node.(type) {
	// ---- Expressions ----
	case *LiteralExpr:
		return m("Literal", "value", n.Value)
	case *GroupingExpr:
		return m("Grouping", "expression", NodeToMap(n.Expression))
	case *UnaryExpr:
		return m("Unary", "op", n.Operator.Lexeme, "line", n.Operator.Line, "right", NodeToMap(n.Right))
	case *BinaryExpr:
		return m("Binary",
			"op", n.Operator.Lexeme,
			"line", n.Operator.Line,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *LogicalExpr:
		return m("Logical",
			"op", n.Operator.Lexeme,
			"line", n.Operator.Line,
			"left", NodeToMap(n.Left),
			"right", NodeToMap(n.Right))
	case *VariableExpr:
		return m("Variable", "name", n.Name.Lexeme, "line", n.Name.Line)
	case *AssignExpr:
		return m("Assign", "name", n.Name.Lexeme, "line", n.Name.Line, "value", NodeToMap(n.Value))
	case *CallExpr:
		return m("Call",
			"callee", NodeToMap(n.Callee),
			"line", n.Paren.Line,
			"arguments", exprSlice(n.Arguments))

	// ---- Statements ----
	case *ExprStmt:
		return m("Expression", "expression", NodeToMap(n.Expression))
	case *PrintStmt:
		return m("Print", "expression", NodeToMap(n.Expression))
	case *VarStmt:
		result := m("Var", "name", n.Name.Lexeme, "line", n.Name.Line)
		if n.Initializer != nil {
			result["initializer"] = NodeToMap(n.Initializer)
		}
		return result
	case *BlockStmt:
		return m("Block", "statements", StmtSlice(n.Statements))
	case *IfStmt:
		result := m("If", "condition", NodeToMap(n.Condition), "then", NodeToMap(n.Then))
		if n.Else != nil {
			result["else"] = NodeToMap(n.Else)
		}
		return result
	case *WhileStmt:
		return m("While", "condition", NodeToMap(n.Condition), "body", NodeToMap(n.Body))
	case *FunctionStmt:
		return m("Function",
			"name", n.Name.Lexeme,
			"line", n.Name.Line,
			"params", tokenNames(n.Params),
			"body", StmtSlice(n.Body))
	case *ReturnStmt:
		result := m("Return", "line", n.Keyword.Line)
		if n.Value != nil {
			result["value"] = NodeToMap(n.Value)
		}
		return result

	default:
		return map[string]interface{}{"kind": "Unknown"}
	}
}

// StmtSlice converts a statement list, e.g. a whole program.
func StmtSlice(stmts []Stmt) []interface{} {
	result := make([]interface{}, len(stmts))
	for i, s := range stmts {
		result[i] = NodeToMap(s)
	}
	return result
}

// ---- helpers ----

func m(kind string, kvs ...interface{}) map[string]interface{} {
	result := map[string]interface{}{"kind": kind}
	for i := 0; i+1 < len(kvs); i += 2 {
		result[kvs[i].(string)] = kvs[i+1]
	}
	return result
}

func exprSlice(exprs []Expr) []interface{} {
	result := make([]interface{}, len(exprs))
	for i, e := range exprs {
		result[i] = NodeToMap(e)
	}
	return result
}

func tokenNames(toks []token.Token) []string {
	names := make([]string, len(toks))
	for i, t := range toks {
		names[i] = t.Lexeme
	}
	return names
}
