package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuslink/campuslink/core"
	"github.com/campuslink/campuslink/core/event"
	"github.com/campuslink/campuslink/storage/database/inmem"
)

func withSummary(e event.Event, headcount int) event.Event {
	e.Summary = &event.Summary{Headcount: headcount, Winners: []string{"w"}, HackathonThemes: []string{"t"}}
	return e
}

func TestCompute(t *testing.T) {
	hack := withSummary(event.Event{ID: "1", Name: "Hackathon", Category: "Tech", OrganizedBy: "Coding Club", Views: 10}, 120)
	talk := withSummary(event.Event{ID: "2", Name: "Talk", Category: "Tech", OrganizedBy: "Coding Club", Views: 3}, 40)
	dance := withSummary(event.Event{ID: "3", Name: "Dance", Category: "Culture", OrganizedBy: "Dance Club", Views: 7}, 41)
	fair := event.Event{ID: "4", Name: "Fair", OrganizedBy: "Robotics", Views: 1}
	quiz := withSummary(event.Event{ID: "5", Name: "Quiz", Category: "Tech", OrganizedBy: "Coding Club"}, 40)

	rep := Compute([]event.Event{hack, talk, dance, fair, quiz})

	assert.Equal(t, 5, rep.TotalEvents)
	assert.Equal(t, 4, rep.TotalReviewedReports)
	assert.Equal(t, int64(21), rep.TotalViews)
	assert.Equal(t, map[string]int{"Coding Club": 3, "Dance Club": 1, "Robotics": 1}, rep.ReportsByOrganizer)
	assert.Equal(t, map[string]int{"Tech": 3, "Culture": 1, "Uncategorized": 1}, rep.CategoryBreakdown)

	// (120 + 40 + 41 + 40) / 4 = 60.25
	assert.Equal(t, 60, rep.HeadcountStats.Average)
	assert.Equal(t, 120, rep.HeadcountStats.Max)
	assert.Equal(t, &hack, rep.HeadcountStats.MaxEvent)
	assert.Equal(t, 40, rep.HeadcountStats.Min)
	assert.Equal(t, &talk, rep.HeadcountStats.MinEvent, "first minimum wins")

	assert.Equal(t, []event.Event{hack, dance, talk, quiz}, rep.TopEngagedEvents)
	assert.Equal(t, []OrganizerCount{
		{Organizer: "Coding Club", Count: 3},
		{Organizer: "Dance Club", Count: 1},
		{Organizer: "Robotics", Count: 1},
	}, rep.MostActiveOrganizers)
}

func TestCompute_noReports(t *testing.T) {
	rep := Compute([]event.Event{{ID: "1", Name: "Fair", Category: "Tech"}})

	assert.Equal(t, 1, rep.TotalEvents)
	assert.Zero(t, rep.TotalReviewedReports)
	assert.Equal(t, HeadcountStats{}, rep.HeadcountStats)
	assert.Empty(t, rep.TopEngagedEvents)
	assert.Empty(t, rep.ReportsByOrganizer)
	assert.Empty(t, rep.MostActiveOrganizers)
}

func TestCompute_topFiveOrganizers(t *testing.T) {
	var events []event.Event
	add := func(org string, n int) {
		for i := 0; i < n; i++ {
			events = append(events, event.Event{OrganizedBy: org})
		}
	}
	add("F", 1)
	add("A", 6)
	add("B", 5)
	add("C", 2)
	add("D", 2)
	add("E", 3)
	add("G", 1)

	rep := Compute(events)
	assert.Equal(t, []OrganizerCount{
		{Organizer: "A", Count: 6},
		{Organizer: "B", Count: 5},
		{Organizer: "E", Count: 3},
		{Organizer: "C", Count: 2},
		{Organizer: "D", Count: 2},
	}, rep.MostActiveOrganizers)
}

func TestService_Report(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	events := inmemdb.NewEventRepository(db)
	_, err := events.CreateEvent(ctx, event.Event{Name: "Fair", Category: "Tech", Views: 4})
	require.NoError(t, err)
	svc := NewService(events)

	_, err = svc.Report(ctx, core.Principal{Email: "student@campus.edu"})
	assert.Equal(t, core.ErrForbidden, err)

	rep, err := svc.Report(ctx, core.Principal{Email: "boss@campus.edu", Roles: []string{core.RoleManager}})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.TotalEvents)
	assert.Equal(t, int64(4), rep.TotalViews)
}
