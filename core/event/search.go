package event

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

type searchHit struct {
	event  Event
	prefix bool
	ratio  float64
}

// rank keeps the events whose name contains text (case-insensitive) and orders them:
// prefix matches first, then by similarity to text, then by name.
func rank(events []Event, text string) []Event {
	text = strings.ToLower(text)
	needle := strings.Split(text, "")

	hits := make([]searchHit, 0, len(events))
	for _, e := range events {
		name := strings.ToLower(e.Name)
		if !strings.Contains(name, text) {
			continue
		}
		hits = append(hits, searchHit{
			event:  e,
			prefix: strings.HasPrefix(name, text),
			ratio:  difflib.NewMatcher(needle, strings.Split(name, "")).Ratio(),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		hi, hj := hits[i], hits[j]
		if hi.prefix != hj.prefix {
			return hi.prefix
		}
		if hi.ratio != hj.ratio {
			return hi.ratio > hj.ratio
		}
		return hi.event.Name < hj.event.Name
	})

	ranked := make([]Event, 0, len(hits))
	for _, h := range hits {
		ranked = append(ranked, h.event)
	}
	return ranked
}
