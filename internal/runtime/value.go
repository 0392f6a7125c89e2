// Package runtime implements the interpreter and runtime value system for Lox.
package runtime

import (
	"fmt"
	"lox-lang/internal/ast"
	"math"
	"strconv"
)

// Value is the interface for all runtime values.
type Value interface {
	TypeName() string
	String() string
}

// ---- Primitive values ----

// NilVal represents nil.
type NilVal struct{}

func (v NilVal) TypeName() string { return "nil" }
func (v NilVal) String() string   { return "nil" }

// BoolVal represents a boolean value.
type BoolVal bool

func (v BoolVal) TypeName() string { return "boolean" }
func (v BoolVal) String() string   { return strconv.FormatBool(bool(v)) }

// NumberVal represents a number. All Lox numbers are float64.
type NumberVal float64

func (v NumberVal) TypeName() string { return "number" }
func (v NumberVal) String() string   { return formatNumber(float64(v)) }

// StringVal represents a string value.
type StringVal string

func (v StringVal) TypeName() string { return "string" }
func (v StringVal) String() string   { return string(v) }

// formatNumber prints integral values without a fraction and everything
// else in the shortest form that round-trips.
func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.IsNaN(f):
		return "NaN"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ---- Callable values ----

// Callable is implemented by every value that can appear before '('.
type Callable interface {
	Value
	Arity() int
	Call(in *Interpreter, args []Value) (Value, error)
}

// FuncVal is a user-defined function together with the environment that
// was current when its declaration executed.
type FuncVal struct {
	Decl    *ast.FunctionStmt
	Closure *Environment
}

func (v *FuncVal) TypeName() string { return "function" }
func (v *FuncVal) String() string   { return fmt.Sprintf("<fn %s>", v.Decl.Name.Lexeme) }

// Arity is the declared parameter count.
func (v *FuncVal) Arity() int { return len(v.Decl.Params) }

// Call binds the arguments in a fresh environment enclosed by the closure
// and runs the body there. A body that finishes without return yields nil.
func (v *FuncVal) Call(in *Interpreter, args []Value) (Value, error) {
	env := NewEnvironment(v.Closure)
	for idx, param := range v.Decl.Params {
		env.Define(param.Lexeme, args[idx])
	}

	in.depth++
	defer func() { in.depth-- }()
	in.log.Debug("function call",
		"function", v.Decl.Name.Lexeme,
		"arity", v.Arity(),
		"depth", in.depth)

	result, err := in.execBlock(v.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	if result.Signal == SigReturn {
		return result.Value, nil
	}
	return NilVal{}, nil
}

// BuiltinFn is the Go signature for native functions. A plain error
// returned here becomes a runtime error at the call site.
type BuiltinFn func(args []Value) (Value, error)

// BuiltinVal represents a native function.
type BuiltinVal struct {
	Name   string
	Params int
	Fn     BuiltinFn
}

func (v *BuiltinVal) TypeName() string { return "native" }
func (v *BuiltinVal) String() string   { return "<native fn>" }

// Arity is the fixed argument count of the native.
func (v *BuiltinVal) Arity() int { return v.Params }

// Call invokes the Go implementation.
func (v *BuiltinVal) Call(in *Interpreter, args []Value) (Value, error) {
	in.log.Debug("native call", "function", v.Name, "arity", v.Params)
	return v.Fn(args)
}

// ---- Conversions ----

// FromLiteral converts a scanner literal (nil, bool, float64, string) to a Value.
func FromLiteral(lit any) Value {
	switch v := lit.(type) {
	case nil:
		return NilVal{}
	case bool:
		return BoolVal(v)
	case float64:
		return NumberVal(v)
	case string:
		return StringVal(v)
	default:
		panic(fmt.Sprintf("runtime: unexpected literal %T", lit))
	}
}

// ---- Truthiness ----

// IsTruthy reports whether v counts as true: only nil and false are falsy.
func IsTruthy(v Value) bool {
	switch val := v.(type) {
	case NilVal:
		return false
	case BoolVal:
		return bool(val)
	default:
		return true
	}
}

// ---- Equality ----

// valuesEqual never coerces between types. Numbers compare as float64, so
// NaN is unequal to itself; functions compare by identity.
func valuesEqual(a, b Value) bool {
	switch av := a.(type) {
	case NilVal:
		_, ok := b.(NilVal)
		return ok
	case BoolVal:
		bv, ok := b.(BoolVal)
		return ok && av == bv
	case NumberVal:
		bv, ok := b.(NumberVal)
		return ok && av == bv
	case StringVal:
		bv, ok := b.(StringVal)
		return ok && av == bv
	}
	return a == b
}
