package domain_test

import (
	"testing"

	"tally/internal/modules/tracker/domain"
)

func TestPaletteMatchesCap(t *testing.T) {
	t.Parallel()
	if len(domain.Palette) != domain.MaxTags {
		t.Fatalf("palette size %d does not match cap %d", len(domain.Palette), domain.MaxTags)
	}
	seen := map[string]bool{}
	for _, color := range domain.Palette {
		if seen[color] {
			t.Fatalf("duplicate palette color %s", color)
		}
		seen[color] = true
	}
	if len(domain.DefaultTagNames) != domain.ReservedColors {
		t.Fatalf("expected %d default tags, got %d", domain.ReservedColors, len(domain.DefaultTagNames))
	}
}

func TestNextFreeColorFollowsPaletteOrder(t *testing.T) {
	t.Parallel()
	color, ok := domain.NextFreeColor(map[string]bool{})
	if !ok || color != domain.Palette[0] {
		t.Fatalf("expected first palette color, got %q ok=%t", color, ok)
	}

	used := map[string]bool{domain.Palette[0]: true, domain.Palette[1]: true, domain.Palette[2]: true}
	color, ok = domain.NextFreeColor(used)
	if !ok || color != domain.Palette[3] {
		t.Fatalf("expected fourth palette color, got %q ok=%t", color, ok)
	}
}

func TestNextFreeColorExhausted(t *testing.T) {
	t.Parallel()
	used := map[string]bool{}
	for _, color := range domain.Palette {
		used[color] = true
	}
	if _, ok := domain.NextFreeColor(used); ok {
		t.Fatalf("expected no free color when palette is exhausted")
	}
}
