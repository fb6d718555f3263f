package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservedai/venuescout/pkg/types"
)

func sampleEvent() *types.EventDescription {
	return &types.EventDescription{
		EventName:              "Engineering Offsite 2026",
		EventType:              "Team Offsite",
		VenueType:              "Restaurant",
		StartDate:              "2026-10-12",
		EndDate:                "2026-10-12",
		OneDayEvent:            true,
		StartTime:              "18:00",
		Locations:              []string{"New York"},
		AddressProximity:       "350 5th Ave, New York",
		NeighborhoodPreference: "Midtown",
		Atmosphere:             "Upscale but relaxed",
		PrivacyPreference:      types.PrivacyPrivate,
		Attendees:              80,
		VenueBudget:            10000,
		MeetingRooms:           "80 pax classroom, 5 breakouts 20 pax",
		FoodBeverage:           "Plated dinner with open bar",
		DietaryRestrictions:    []string{"Vegetarian", "Gluten-Free"},
	}
}

func TestBuildQueriesDeterministic(t *testing.T) {
	event := sampleEvent()
	first := BuildQueries(event)
	second := BuildQueries(event)

	require.Len(t, first, 6)
	for i := range first {
		assert.Equal(t, first[i].Label, second[i].Label)
		assert.Equal(t, first[i].Text, second[i].Text, "query %s must be byte-identical across calls", first[i].Label)
	}
}

func TestBuildQueriesLabelOrder(t *testing.T) {
	queries := BuildQueries(sampleEvent())
	got := make([]types.QueryLabel, len(queries))
	for i, q := range queries {
		got[i] = q.Label
	}
	assert.Equal(t, types.QueryLabels, got)
}

func TestBuildQueriesIncludesEventFields(t *testing.T) {
	queries := BuildQueries(sampleEvent())
	byLabel := make(map[types.QueryLabel]string)
	for _, q := range queries {
		byLabel[q.Label] = q.Text
	}

	assert.Contains(t, byLabel[types.LabelOverall], "Engineering Offsite 2026")
	assert.Contains(t, byLabel[types.LabelOverall], "Must be within ~5 miles of 350 5th Ave, New York.")
	assert.Contains(t, byLabel[types.LabelOverall], "Strong preference for the Midtown area.")
	assert.Contains(t, byLabel[types.LabelOverall], "Venue Budget: $10000")
	assert.Contains(t, byLabel[types.LabelMeetingRooms], "MUST accommodate EXACTLY 80 attendees")
	assert.Contains(t, byLabel[types.LabelFood], "Vegetarian, Gluten-Free")
	assert.Contains(t, byLabel[types.LabelAtmosphere], "Upscale but relaxed")
	assert.Contains(t, byLabel[types.LabelBudget], "Hard budget ceiling of $10000")
	assert.Contains(t, byLabel[types.LabelBudget], "Venue rental for One Day Event")
}

func TestBuildQueriesPlaceholdersForMissingFields(t *testing.T) {
	queries := BuildQueries(&types.EventDescription{})
	byLabel := make(map[types.QueryLabel]string)
	for _, q := range queries {
		byLabel[q.Label] = q.Text
	}

	assert.Contains(t, byLabel[types.LabelOverall], "Desired Atmosphere: No specific vibe stated")
	assert.Contains(t, byLabel[types.LabelOverall], "Dietary Restrictions: N/A")
	assert.Contains(t, byLabel[types.LabelOverall], "Other Special Requirements: None")
	assert.Contains(t, byLabel[types.LabelOverall], "Distance Query: No strict distance constraint specified.")
	assert.Contains(t, byLabel[types.LabelAtmosphere], "Professional yet comfortable")
	assert.Contains(t, byLabel[types.LabelBudget], "Standard A/V")
	// Defaults fill in for capacity and budget.
	assert.Contains(t, byLabel[types.LabelOverall], "Exact Attendee Count: 30")
	assert.Contains(t, byLabel[types.LabelOverall], "Venue Budget: $10000")
}

func TestBuildQueriesMultiDayDuration(t *testing.T) {
	event := sampleEvent()
	event.OneDayEvent = false
	event.StartDate = "2026-10-12"
	event.EndDate = "2026-10-14"

	queries := BuildQueries(event)
	var budgetText string
	for _, q := range queries {
		if q.Label == types.LabelBudget {
			budgetText = q.Text
		}
	}
	assert.Contains(t, budgetText, "Multi-day Event (2026-10-12 to 2026-10-14)")
}
