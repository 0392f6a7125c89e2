// Package span provides source positions shared by tokens and diagnostics.
package span

import "fmt"

// Position is a point in source text.
type Position struct {
	Offset int `json:"offset"` // byte offset into the source
	Line   int `json:"line"`   // from 1
	Column int `json:"column"` // from 1, in bytes
}

// String renders "line:column".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Span is the half-open range [Start, End) a token was scanned from.
type Span struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// String renders "3:5-9" for a span on one line and "3:5-4:2" for one that
// crosses lines, as multi-line strings do.
func (s Span) String() string {
	if s.End.Line == s.Start.Line {
		return fmt.Sprintf("%s-%d", s.Start, s.End.Column)
	}
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}

// Len is the number of source bytes covered.
func (s Span) Len() int {
	return s.End.Offset - s.Start.Offset
}
