// Package labelcolor assigns deterministic badge colours to folder and tag
// labels and picks a readable foreground for them.
package labelcolor

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is a "#RRGGBB" hex triple.
type Color string

// Uncategorized is the badge colour for ideas that live outside any folder.
const Uncategorized Color = "#71717A"

// luminanceThreshold separates light backgrounds (black text) from dark ones.
const luminanceThreshold = 0.6

// palette is fixed for the lifetime of the process. Index positions are part
// of the colour contract, so the duplicate at 13/16 stays.
var palette = [20]Color{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A", "#98D8C8",
	"#F7DC6F", "#BB8FCE", "#85C1E2", "#F8B739", "#52B788",
	"#FF9FF3", "#54A0FF", "#48DBFB", "#FF6348", "#1DD1A1",
	"#FFA502", "#FF6348", "#FF4757", "#5F27CD", "#00D2D3",
}

// Palette returns a copy of the label palette in index order.
func Palette() []Color {
	out := make([]Color, len(palette))
	copy(out, palette[:])
	return out
}

// ColorFor maps label to a palette colour. The result depends only on the
// label text, so it is stable across calls and restarts.
func ColorFor(label string) Color {
	return palette[paletteIndex(hashLabel(label))]
}

// hashLabel folds the label with hash = r + ((hash << 5) - hash) using
// wrapping 32-bit arithmetic.
func hashLabel(label string) int32 {
	var h int32
	for _, r := range label {
		h = int32(r) + ((h << 5) - h)
	}
	return h
}

// paletteIndex widens before taking the absolute value: -math.MinInt32 does
// not fit in an int32.
func paletteIndex(h int32) int {
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v % int64(len(palette)))
}

// Contrast is the foreground to draw on top of a badge colour.
type Contrast string

// Contrast values.
const (
	ContrastLight Contrast = "light" // white text
	ContrastDark  Contrast = "dark"  // black text
)

// CSS returns the CSS colour keyword for the foreground.
func (c Contrast) CSS() string {
	if c == ContrastDark {
		return "black"
	}
	return "white"
}

// Hex returns the foreground as a hex triple.
func (c Contrast) Hex() Color {
	if c == ContrastDark {
		return "#000000"
	}
	return "#FFFFFF"
}

// ContrastFor returns ContrastDark when the colour's relative luminance
// (linear Rec. 709 weights, no gamma correction) exceeds 0.6. Input that does
// not decode as a hex triple is treated as dark background.
func ContrastFor(c Color) Contrast {
	hex := string(c)
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	rgb, err := colorful.Hex(hex)
	if err != nil {
		return ContrastLight
	}
	if luminance(rgb) > luminanceThreshold {
		return ContrastDark
	}
	return ContrastLight
}

func luminance(c colorful.Color) float64 {
	return 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
}

// Badge is the styling for a single label.
type Badge struct {
	Label      string   `json:"label"`
	Background Color    `json:"background"`
	Foreground Contrast `json:"foreground"`
	TextColor  string   `json:"text_color"`
}

// BadgeFor resolves the badge styling for label.
func BadgeFor(label string) Badge {
	return badge(label, ColorFor(label))
}

// UncategorizedBadge is the badge shown for ideas without a folder.
func UncategorizedBadge() Badge {
	return badge("Uncategorized", Uncategorized)
}

func badge(label string, bg Color) Badge {
	fg := ContrastFor(bg)
	return Badge{
		Label:      label,
		Background: bg,
		Foreground: fg,
		TextColor:  fg.CSS(),
	}
}
