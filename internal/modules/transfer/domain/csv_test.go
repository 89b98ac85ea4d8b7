package domain

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		content string
		want    [][]string
	}{
		{
			name:    "plain cells",
			content: "a,b,c",
			want:    [][]string{{"a", "b", "c"}},
		},
		{
			name:    "blank lines dropped",
			content: "a,b\n\n   \nc,d\n",
			want:    [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:    "quoted comma stays in cell",
			content: `"one, two",three`,
			want:    [][]string{{"one, two", "three"}},
		},
		{
			name:    "doubled quote unescapes",
			content: `"say ""hi""",x`,
			want:    [][]string{{`say "hi"`, "x"}},
		},
		{
			name:    "empty interior and trailing cells preserved",
			content: "a,,c,",
			want:    [][]string{{"a", "", "c", ""}},
		},
		{
			name:    "fully quoted row",
			content: `"a","b","c"`,
			want:    [][]string{{"a", "b", "c"}},
		},
		{
			name:    "crlf line endings",
			content: "a,b\r\nc,d\r\n",
			want:    [][]string{{"a", "b"}, {"c", "d"}},
		},
		{
			name:    "unbalanced quote degrades without error",
			content: `"open,never closed`,
			want:    [][]string{{"open,never closed"}},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Parse(tt.content)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestFormatRowAlwaysQuotes(t *testing.T) {
	t.Parallel()
	got := FormatRow([]string{"plain", `with "quotes"`, "", "a,b"})
	want := `"plain","with ""quotes""","","a,b"`
	if got != want {
		t.Errorf("FormatRow = %s, want %s", got, want)
	}
}

func TestFormatRowParsesBack(t *testing.T) {
	t.Parallel()
	cells := []string{"27/01/2026", "09:00:00", `odd "title", really`, "3600", "4", "", "fitness", "completed"}
	rows := Parse(FormatRow(cells))
	if len(rows) != 1 || !reflect.DeepEqual(rows[0], cells) {
		t.Errorf("round trip = %v, want %v", rows, cells)
	}
}
