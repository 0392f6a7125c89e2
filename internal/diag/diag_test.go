package diag

import (
	"lox-lang/internal/token"
	"testing"
)

func TestStaticFormat(t *testing.T) {
	tok := token.Token{Kind: token.SEMICOLON, Lexeme: ";", Line: 3}
	d := AtToken("E2001", Parse, tok, "Expect expression.")
	if got, want := d.String(), "[line 3] Error at ';': Expect expression."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestAtEnd(t *testing.T) {
	d := AtToken("E2001", Parse, token.Token{Kind: token.EOF, Line: 9}, "Expect ';' after value.")
	if got, want := d.String(), "[line 9] Error at end: Expect ';' after value."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestScanFormatHasNoWhere(t *testing.T) {
	d := Errorf("E1001", Scan, 1, "Unexpected character.")
	if got, want := d.String(), "[line 1] Error: Unexpected character."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRuntimeFormat(t *testing.T) {
	d := Errorf("E4001", Runtime, 12, "Operands must be numbers.")
	if got, want := d.String(), "Operands must be numbers.\n[line 12]"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestCollector(t *testing.T) {
	c := NewCollector()
	if c.HasErrors() {
		t.Fatal("fresh collector should be empty")
	}
	c.Add(Errorf("E4001", Runtime, 1, "boom"))
	if !c.HasErrors() || c.HasStatic() {
		t.Errorf("runtime-only collector: HasErrors=%v HasStatic=%v", c.HasErrors(), c.HasStatic())
	}
	c.Add(Errorf("E1001", Scan, 2, "Unterminated string."))
	if !c.HasStatic() {
		t.Error("expected HasStatic after a scan error")
	}
	if c.Len() != 2 {
		t.Errorf("expected 2 diagnostics, got %d", c.Len())
	}
}
