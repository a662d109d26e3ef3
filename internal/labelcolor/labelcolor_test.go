package labelcolor

import (
	"math"
	"strings"
	"testing"
)

func inPalette(c Color) bool {
	for _, p := range palette {
		if p == c {
			return true
		}
	}
	return false
}

func TestColorFor_KnownLabels(t *testing.T) {
	cases := []struct {
		label string
		want  Color
	}{
		{"", "#FF6B6B"},
		{"a", "#FF4757"},
		{"ab", "#F7DC6F"},
		{"Work", "#52B788"},
	}
	for _, tc := range cases {
		if got := ColorFor(tc.label); got != tc.want {
			t.Errorf("ColorFor(%q) = %s, want %s", tc.label, got, tc.want)
		}
	}
}

func TestColorFor_Deterministic(t *testing.T) {
	labels := []string{"", "ideas", "Персональное", "🚀 launch", strings.Repeat("long label ", 500), "\xff\xfe"}
	for _, l := range labels {
		first := ColorFor(l)
		if !inPalette(first) {
			t.Errorf("ColorFor(%q) = %s, not a palette colour", l, first)
		}
		if second := ColorFor(l); second != first {
			t.Errorf("ColorFor(%q) not stable: %s then %s", l, first, second)
		}
	}
}

func TestHashLabel_Recurrence(t *testing.T) {
	// "ab" = 'b' + 31*'a'
	if got := hashLabel("ab"); got != 98+31*97 {
		t.Errorf("hashLabel(ab) = %d", got)
	}
}

func TestHashLabel_WrapsNegative(t *testing.T) {
	// Enough characters to overflow int32 several times over.
	h := hashLabel(strings.Repeat("z", 64))
	idx := paletteIndex(h)
	if idx < 0 || idx >= len(palette) {
		t.Fatalf("index %d out of range for hash %d", idx, h)
	}
}

func TestPaletteIndex_MinInt32(t *testing.T) {
	if got := paletteIndex(math.MinInt32); got != 8 {
		t.Errorf("paletteIndex(MinInt32) = %d, want 8", got)
	}
	if got := paletteIndex(-21); got != 1 {
		t.Errorf("paletteIndex(-21) = %d, want 1", got)
	}
}

func TestPalette_ReturnsCopy(t *testing.T) {
	p := Palette()
	if len(p) != 20 {
		t.Fatalf("len = %d, want 20", len(p))
	}
	p[0] = "#000000"
	if ColorFor("") != "#FF6B6B" {
		t.Error("mutating Palette() result leaked into the palette")
	}
}

func TestContrastFor_Bounds(t *testing.T) {
	cases := []struct {
		in   Color
		want Contrast
	}{
		{"#FFFFFF", ContrastDark},
		{"#000000", ContrastLight},
		{"ffffff", ContrastDark},
		{"#F7DC6F", ContrastDark},
		{"#5F27CD", ContrastLight},
		{"#FF6B6B", ContrastLight},
		{"not-a-colour", ContrastLight},
	}
	for _, tc := range cases {
		if got := ContrastFor(tc.in); got != tc.want {
			t.Errorf("ContrastFor(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestContrastFor_PaletteOnlyTwoValues(t *testing.T) {
	for _, c := range Palette() {
		got := ContrastFor(c)
		if got != ContrastLight && got != ContrastDark {
			t.Errorf("ContrastFor(%s) = %q", c, got)
		}
	}
}

func TestBadgeFor(t *testing.T) {
	b := BadgeFor("ab")
	if b.Background != "#F7DC6F" || b.Foreground != ContrastDark || b.TextColor != "black" {
		t.Errorf("badge = %+v", b)
	}
	u := UncategorizedBadge()
	if u.Background != Uncategorized || u.TextColor != "white" {
		t.Errorf("uncategorized badge = %+v", u)
	}
}
