package runtime

import (
	"fmt"
	"time"
)

// registerBuiltins adds the standard natives to the global environment.
func (i *Interpreter) registerBuiltins() {
	i.DefineNative("clock", 0, func(args []Value) (Value, error) {
		now := i.now()
		return NumberVal(float64(now.UnixNano()) / float64(time.Second)), nil
	})
}

// DefineNative installs a Go function as a global callable. Natives are
// checked for arity like user functions before fn runs.
func (i *Interpreter) DefineNative(name string, arity int, fn BuiltinFn) {
	if arity < 0 {
		panic(fmt.Sprintf("runtime: native %q has negative arity", name))
	}
	i.globals.Define(name, &BuiltinVal{Name: name, Params: arity, Fn: fn})
}
