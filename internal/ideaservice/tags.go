package ideaservice

import "strings"

// ParseTags extracts tags from free text the way the capture form does:
// whitespace-separated tokens starting with '#' are tags, everything else is
// ignored. Tags are returned without the '#', de-duplicated in order.
func ParseTags(raw string) []string {
	var tags []string
	for _, tok := range strings.Fields(raw) {
		if strings.HasPrefix(tok, "#") {
			tags = append(tags, tok)
		}
	}
	return NormalizeTags(tags)
}

// NormalizeTags strips leading '#', drops empty tags and duplicates.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimLeft(strings.TrimSpace(t), "#")
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
