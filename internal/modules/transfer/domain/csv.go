package domain

import "strings"

// Column order of the interchange format. Export reproduces this header
// exactly; import requires it byte for byte.
var Header = []string{"Date", "Time", "Title", "Duration (seconds)", "Rating", "Comment", "Tag", "State"}

// Column indices into a parsed data row.
const (
	ColDate = iota
	ColTime
	ColTitle
	ColDuration
	ColRating
	ColComment
	ColTag
	ColState
)

// Parse tokenizes raw CSV text into rows of string cells. Lines are split
// first, so a quoted field cannot span lines. Blank lines are dropped rather
// than kept as empty rows. Malformed quoting never fails here; it just
// produces a different cell split for the validator to reject.
func Parse(content string) [][]string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	var rows [][]string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, parseLine(line))
	}
	return rows
}

func parseLine(line string) []string {
	var cells []string
	var cell strings.Builder
	inQuotes := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		switch ch := runes[i]; {
		case ch == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cell.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			cells = append(cells, cell.String())
			cell.Reset()
		default:
			cell.WriteRune(ch)
		}
	}
	cells = append(cells, cell.String())
	return cells
}

// FormatRow renders one CSV line with every cell quote-wrapped and embedded
// quotes doubled, whether or not quoting is needed for that cell. Downstream
// consumers depend on the always-quoted form.
func FormatRow(cells []string) string {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}
