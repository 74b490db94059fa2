package analytics

import (
	"math"
	"sort"

	"github.com/campuslink/campuslink/core/event"
)

const (
	uncategorized           = "Uncategorized"
	mostActiveOrganizersLen = 5
)

type OrganizerCount struct {
	Organizer string `json:"organizer" yaml:"organizer"`
	Count     int    `json:"count" yaml:"count"`
}

type HeadcountStats struct {
	Average  int          `json:"average" yaml:"average"`
	Max      int          `json:"max" yaml:"max"`
	Min      int          `json:"min" yaml:"min"`
	MaxEvent *event.Event `json:"maxEvent" yaml:"maxEvent"`
	MinEvent *event.Event `json:"minEvent" yaml:"minEvent"`
}

// Report aggregates the event collection for managers.
type Report struct {
	TotalEvents          int              `json:"totalEvents" yaml:"totalEvents"`
	TotalReviewedReports int              `json:"totalReviewedReports" yaml:"totalReviewedReports"`
	TotalViews           int64            `json:"totalViews" yaml:"totalViews"`
	ReportsByOrganizer   map[string]int   `json:"reportsByOrganizer" yaml:"reportsByOrganizer"`
	CategoryBreakdown    map[string]int   `json:"categoryBreakdown" yaml:"categoryBreakdown"`
	HeadcountStats       HeadcountStats   `json:"headcountStats" yaml:"headcountStats"`
	TopEngagedEvents     []event.Event    `json:"topEngagedEvents" yaml:"topEngagedEvents"`
	MostActiveOrganizers []OrganizerCount `json:"mostActiveOrganizers" yaml:"mostActiveOrganizers"`
}

// Compute reduces events into a Report. Reviewed reports are the events carrying a summary.
// Headcount stats are all zero when no event has a summary.
func Compute(events []event.Event) Report {
	rep := Report{
		TotalEvents:          len(events),
		ReportsByOrganizer:   make(map[string]int),
		CategoryBreakdown:    make(map[string]int),
		TopEngagedEvents:     make([]event.Event, 0),
		MostActiveOrganizers: make([]OrganizerCount, 0, mostActiveOrganizersLen),
	}

	for _, e := range events {
		rep.TotalViews += e.Views
		if e.OrganizedBy != "" {
			rep.ReportsByOrganizer[e.OrganizedBy]++
		}
		category := e.Category
		if category == "" {
			category = uncategorized
		}
		rep.CategoryBreakdown[category]++
		if e.HasSummary() {
			rep.TopEngagedEvents = append(rep.TopEngagedEvents, e)
		}
	}
	rep.TotalReviewedReports = len(rep.TopEngagedEvents)

	rep.HeadcountStats = headcountStats(rep.TopEngagedEvents)
	sort.SliceStable(rep.TopEngagedEvents, func(i, j int) bool {
		return rep.TopEngagedEvents[i].Summary.Headcount > rep.TopEngagedEvents[j].Summary.Headcount
	})
	rep.MostActiveOrganizers = mostActive(rep.ReportsByOrganizer, mostActiveOrganizersLen)
	return rep
}

// headcountStats keeps the first event found on ties.
func headcountStats(reports []event.Event) HeadcountStats {
	var stats HeadcountStats
	if len(reports) == 0 {
		return stats
	}

	var total int
	maxEvent, minEvent := reports[0], reports[0]
	for _, r := range reports {
		total += r.Summary.Headcount
		if r.Summary.Headcount > maxEvent.Summary.Headcount {
			maxEvent = r
		}
		if r.Summary.Headcount < minEvent.Summary.Headcount {
			minEvent = r
		}
	}

	stats.Average = int(math.Round(float64(total) / float64(len(reports))))
	stats.Max = maxEvent.Summary.Headcount
	stats.Min = minEvent.Summary.Headcount
	stats.MaxEvent = &maxEvent
	stats.MinEvent = &minEvent
	return stats
}

// mostActive returns the n organizers with the most events, ties broken by name.
func mostActive(counts map[string]int, n int) []OrganizerCount {
	organizers := make([]OrganizerCount, 0, len(counts))
	for org, count := range counts {
		organizers = append(organizers, OrganizerCount{Organizer: org, Count: count})
	}
	sort.Slice(organizers, func(i, j int) bool {
		if organizers[i].Count != organizers[j].Count {
			return organizers[i].Count > organizers[j].Count
		}
		return organizers[i].Organizer < organizers[j].Organizer
	})
	if len(organizers) > n {
		organizers = organizers[:n]
	}
	return organizers
}
