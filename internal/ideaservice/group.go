package ideaservice

import "time"

// DateLayout formats date group labels.
const DateLayout = "January 2, 2006"

// DateGroup is a run of ideas created on the same calendar day.
type DateGroup struct {
	Label string       `json:"label"`
	Date  string       `json:"date"`
	Ideas []IdeaDetail `json:"ideas"`
}

// GroupByDate buckets ideas by creation day in loc. Groups appear in the
// order their first idea appears, and ideas keep their relative order.
func GroupByDate(ideas []IdeaDetail, loc *time.Location) []DateGroup {
	if loc == nil {
		loc = time.UTC
	}
	out := []DateGroup{}
	index := map[string]int{}
	for _, i := range ideas {
		t := i.CreatedAt.In(loc)
		key := t.Format(time.DateOnly)
		pos, ok := index[key]
		if !ok {
			pos = len(out)
			index[key] = pos
			out = append(out, DateGroup{Label: t.Format(DateLayout), Date: key})
		}
		out[pos].Ideas = append(out[pos].Ideas, i)
	}
	return out
}
