package domain

import "fmt"

// Palette is the fixed tag color space, in assignment priority order. Its
// size caps how many tags can exist at once; colors are unique per tag.
var Palette = []string{
	"#767676", "#023E8A", "#276221", "#DC2626", "#EA580C", "#D97706",
	"#CA8A04", "#65A30D", "#16A34A", "#059669", "#0891B2", "#0284C7",
	"#2563EB", "#4F46E5", "#7C3AED", "#9333EA", "#C026D3", "#DB2777",
	"#E11D48", "#475569", "#64748B", "#78716C", "#A8A29E", "#EF4444",
}

// MaxTags is the tag cardinality cap, equal to len(Palette).
const MaxTags = 24

// ReservedColors is how many leading palette entries are set aside for the
// default tags seeded at first run.
const ReservedColors = 3

// DefaultTagNames are seeded once on an empty store, taking the reserved
// palette colors in order.
var DefaultTagNames = []string{"Work", "Study", "Personal"}

// Tag is a named, uniquely colored category attachable to sessions.
// TotalInstances counts sessions that completed while referencing it.
type Tag struct {
	Name           string
	Color          string
	DateCreated    int64 // epoch ms
	DateLastUsed   int64 // epoch ms
	TotalInstances int
}

func (t Tag) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("tag name is required")
	}
	if t.Color == "" {
		return fmt.Errorf("tag color is required")
	}
	if t.TotalInstances < 0 {
		return fmt.Errorf("tag instance counter must be non-negative")
	}
	return nil
}

// NextFreeColor returns the first palette color absent from used, in palette
// order. ok is false when every color is taken.
func NextFreeColor(used map[string]bool) (color string, ok bool) {
	for _, candidate := range Palette {
		if !used[candidate] {
			return candidate, true
		}
	}
	return "", false
}
