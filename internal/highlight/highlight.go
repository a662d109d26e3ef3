// Package highlight decides which displayed text fragments match a live
// search query and how each one should be emphasized.
package highlight

import (
	"fmt"
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

// nearFullRatio is the query/text length ratio above which a prefix match is
// treated as matching the whole fragment.
const nearFullRatio = 0.9

// Match classifies how a fragment matched the query.
type Match int

// Match kinds, weakest first.
const (
	MatchNone Match = iota
	MatchPartial
	MatchPrefix
	MatchStrong
)

var matchNames = [...]string{"none", "partial", "prefix", "strong"}

func (m Match) String() string {
	if int(m) < len(matchNames) {
		return matchNames[m]
	}
	return fmt.Sprintf("Match(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Match) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Match) UnmarshalText(b []byte) error {
	for i, name := range matchNames {
		if name == string(b) {
			*m = Match(i)
			return nil
		}
	}
	return fmt.Errorf("highlight: unknown match %q", b)
}

// Fragment is one unit of displayed text. ID must be stable across calls.
type Fragment struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Segment is a run of the original fragment text.
type Segment struct {
	Text       string `json:"text"`
	Emphasized bool   `json:"emphasized,omitempty"`
}

// Instruction tells the presentation layer how to draw one fragment.
// Concatenating the segment texts always yields the original text.
type Instruction struct {
	Match    Match     `json:"match"`
	Single   bool      `json:"single,omitempty"`
	Segments []Segment `json:"segments"`
}

// Text reassembles the fragment text from the segments.
func (ins Instruction) Text() string {
	var b strings.Builder
	for _, s := range ins.Segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Result maps fragment IDs to their render instructions.
type Result map[string]Instruction

// Normalize trims and lower-cases a raw query.
func Normalize(query string) string {
	return strings.TrimSpace(strings.ToLower(query))
}

// Matches reports whether text contains the normalized query q,
// case-insensitively. An empty q matches nothing.
func Matches(text, q string) bool {
	return q != "" && strings.Contains(fold(text).lower, q)
}

// folded is a lower-cased text plus, for every byte of lower, the byte
// offset in the original text of the rune it came from. offsets has one
// extra entry mapping len(lower) to len(text).
type folded struct {
	lower   string
	offsets []int
}

// fold lower-cases text one rune at a time, as strings.ToLower does, while
// recording where each lowered rune came from. Lowering can change a rune's
// byte length, so lowered offsets cannot be used on the original directly.
func fold(text string) folded {
	var b strings.Builder
	b.Grow(len(text))
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		n, _ := b.WriteRune(unicode.ToLower(r))
		for ; n > 0; n-- {
			offsets = append(offsets, i)
		}
	}
	return folded{lower: b.String(), offsets: append(offsets, len(text))}
}

// Highlight computes render instructions for every fragment. It never looks
// at earlier output: each call starts from the fragments' original text.
func Highlight(query string, fragments []Fragment) Result {
	out := make(Result, len(fragments))
	q := Normalize(query)

	var matched []Fragment
	for _, f := range fragments {
		if Matches(f.Text, q) {
			matched = append(matched, f)
			continue
		}
		out[f.ID] = plain(f.Text)
	}
	if len(matched) == 0 {
		return out
	}

	for _, f := range matched {
		ins := emphasize(f.Text, q)
		// The single-match tone loses to a strong match.
		if len(matched) == 1 && ins.Match != MatchStrong {
			ins.Single = true
		}
		out[f.ID] = ins
	}
	return out
}

func plain(text string) Instruction {
	return Instruction{Match: MatchNone, Segments: segments(Segment{Text: text})}
}

// emphasize handles a fragment already known to contain q. Occurrences are
// found in the lowered text and mapped back, so the runs emphasized are
// exactly the ones Matches saw.
func emphasize(text, q string) Instruction {
	f := fold(text)
	if strings.HasPrefix(f.lower, q) {
		ratio := float64(utf8.RuneCountInString(q)) / float64(utf8.RuneCountInString(f.lower))
		if f.lower == q || ratio > nearFullRatio {
			return Instruction{
				Match:    MatchStrong,
				Segments: []Segment{{Text: text, Emphasized: true}},
			}
		}
		cut := f.offsets[len(q)]
		return Instruction{
			Match: MatchPrefix,
			Segments: segments(
				Segment{Text: text[:cut], Emphasized: true},
				Segment{Text: text[cut:]},
			),
		}
	}

	var segs []Segment
	last, from := 0, 0
	for {
		i := strings.Index(f.lower[from:], q)
		if i < 0 {
			break
		}
		start, end := f.offsets[from+i], f.offsets[from+i+len(q)]
		segs = append(segs, Segment{Text: text[last:start]}, Segment{Text: text[start:end], Emphasized: true})
		last = end
		from += i + len(q)
	}
	segs = append(segs, Segment{Text: text[last:]})
	return Instruction{Match: MatchPartial, Segments: segments(segs...)}
}

// segments drops empty runs.
func segments(in ...Segment) []Segment {
	out := make([]Segment, 0, len(in))
	for _, s := range in {
		if s.Text != "" {
			out = append(out, s)
		}
	}
	return out
}

// RenderHTML renders an instruction as escaped HTML. Emphasized runs use the
// "typed-match" class; strong and single matches get an outer wrapper.
func RenderHTML(ins Instruction) string {
	var b strings.Builder
	for _, s := range ins.Segments {
		text := html.EscapeString(s.Text)
		if s.Emphasized && ins.Match != MatchStrong {
			b.WriteString(`<span class="typed-match">`)
			b.WriteString(text)
			b.WriteString(`</span>`)
			continue
		}
		b.WriteString(text)
	}
	switch {
	case ins.Match == MatchStrong:
		return `<span class="strong-match">` + b.String() + `</span>`
	case ins.Single:
		return `<span class="single-match">` + b.String() + `</span>`
	}
	return b.String()
}
