package span

import "testing"

func TestSpanString(t *testing.T) {
	tests := []struct {
		name string
		span Span
		want string
		len  int
	}{
		{
			name: "single line",
			span: Span{Start: Position{Offset: 4, Line: 1, Column: 5}, End: Position{Offset: 7, Line: 1, Column: 8}},
			want: "1:5-8",
			len:  3,
		},
		{
			name: "multi line",
			span: Span{Start: Position{Offset: 0, Line: 1, Column: 1}, End: Position{Offset: 13, Line: 2, Column: 7}},
			want: "1:1-2:7",
			len:  13,
		},
		{
			name: "empty",
			span: Span{Start: Position{Offset: 9, Line: 3, Column: 2}, End: Position{Offset: 9, Line: 3, Column: 2}},
			want: "3:2-2",
			len:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.span.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
			if got := tt.span.Len(); got != tt.len {
				t.Errorf("Len() = %d, want %d", got, tt.len)
			}
		})
	}
}
