package firestorerepos

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
)

// decodeSummary reads an event_summary map. Reports filed by the mobile app store every
// field as a list of strings, headcount included, so values are read leniently.
func decodeSummary(raw interface{}) (*event.Summary, error) {
	if raw == nil {
		return nil, nil
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		return nil, errors.Errorf("unexpected summary type %T", raw)
	}

	headcount, err := toInt(m["headcount"])
	if err != nil {
		return nil, errors.Wrap(err, "headcount")
	}
	return &event.Summary{
		Headcount:         headcount,
		Winners:           toStringList(m["winners"]),
		WinnersWithPrizes: toStringList(m["winnersWithPrizes"]),
		NotableProjects:   toStringList(m["notableProjects"]),
		Workshops:         toStringList(m["workshops"]),
		HackathonThemes:   toStringList(m["hackathonThemes"]),
		InnovativeIdeas:   toStringList(m["innovativeIdeas"]),
		GuestSpeakers:     toStringList(m["guestSpeakers"]),
		Performances:      toStringList(m["performances"]),
		IssuesFaced:       toText(m["issuesFaced"]),
		Suggestions:       toText(m["suggestions"]),
		Details:           toText(m["details"]),
	}, nil
}

// toInt accepts a number, a numeric string or a single-element list of either.
func toInt(v interface{}) (int, error) {
	switch val := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return int(val), nil
	case float64:
		return int(math.Round(val)), nil
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return 0, nil
		}
		n, err := strconv.Atoi(val)
		if err != nil {
			return 0, errors.Errorf("%q is not a number", val)
		}
		return n, nil
	case []interface{}:
		switch len(val) {
		case 0:
			return 0, nil
		case 1:
			return toInt(val[0])
		}
		return 0, errors.Errorf("expected one value, got %d", len(val))
	}
	return 0, errors.Errorf("unexpected type %T", v)
}

// toStringList accepts a list or a comma-separated string. Blank items are dropped.
func toStringList(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return core.SplitList(val)
	case []interface{}:
		list := make([]string, 0, len(val))
		for _, item := range val {
			if item == nil {
				continue
			}
			if s := core.CleanString(fmt.Sprint(item)); s != "" {
				list = append(list, s)
			}
		}
		return list
	}
	return nil
}

func toText(v interface{}) string {
	if list, ok := v.([]interface{}); ok {
		return strings.Join(toStringList(list), ", ")
	}
	if s, ok := v.(string); ok {
		return core.CleanString(s)
	}
	return ""
}
