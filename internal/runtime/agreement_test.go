package runtime

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	fuzz "github.com/google/gofuzz"
)

// op is one fuzzed program step; Kind and Name are reduced modulo the
// number of choices when rendering.
type op struct {
	Kind uint8
	Name uint8
}

type program struct {
	Ops []op
}

var names = []string{"a", "b", "c"}

// render turns fuzzed ops into nested blocks of var, assignment and print
// statements. Every name is also a global, so each read finds a binding.
func (p program) render() string {
	var sb strings.Builder
	for i, n := range names {
		fmt.Fprintf(&sb, "var %s = %d;\n", n, i)
	}
	open := 0
	for i, o := range p.Ops {
		name := names[int(o.Name)%len(names)]
		switch o.Kind % 5 {
		case 0:
			sb.WriteString("{\n")
			open++
		case 1:
			if open > 0 {
				sb.WriteString("}\n")
				open--
			}
		case 2:
			fmt.Fprintf(&sb, "var %s = %d;\n", name, 100+i)
		case 3:
			other := names[(int(o.Name)+1)%len(names)]
			fmt.Fprintf(&sb, "%s = %s + 1;\n", name, other)
		case 4:
			fmt.Fprintf(&sb, "print %s;\n", name)
		}
	}
	sb.WriteString(strings.Repeat("}\n", open))
	return sb.String()
}

func TestResolvedDistanceMatchesChainSearch(t *testing.T) {
	audited := 0
	for seed := int64(0); seed < 300; seed++ {
		var p program
		fuzz.NewWithSeed(seed).NilChance(0).NumElements(5, 40).Fuzz(&p)
		source := p.render()

		var buf bytes.Buffer
		interp := NewInterpreter(&buf)
		var mismatches []string
		interp.audit = func(name string, resolved, found *Environment) {
			audited++
			if resolved != found {
				mismatches = append(mismatches, name)
			}
		}

		if err := runIn(interp, source); err != nil {
			t.Fatalf("seed %d: %v\n%s", seed, err, source)
		}
		if len(mismatches) > 0 {
			t.Errorf("seed %d: distance and chain search disagree for %v\n%s", seed, mismatches, source)
		}
	}
	if audited == 0 {
		t.Fatal("generated programs never touched a local variable")
	}
}

func TestAuditSeesClosureAccess(t *testing.T) {
	var buf bytes.Buffer
	interp := NewInterpreter(&buf)
	var seen []string
	interp.audit = func(name string, resolved, found *Environment) {
		if resolved != found {
			t.Errorf("%s: resolved and found environments differ", name)
		}
		seen = append(seen, name)
	}
	err := runIn(interp, `
fun outer() {
  var x = 1;
  fun inner() { x = x + 1; return x; }
  return inner;
}
print outer()();
`)
	if err != nil {
		t.Fatal(err)
	}
	if buf.String() != "2\n" {
		t.Errorf("got %q", buf.String())
	}
	if strings.Join(seen, ",") != "inner,x,x,x" {
		t.Errorf("unexpected audit sequence %v", seen)
	}
}
