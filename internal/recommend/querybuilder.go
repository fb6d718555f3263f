// Package recommend implements the two-stage venue recommendation pipeline:
// deterministic criterion queries, embedding-based ranking with a cross-label
// diversity policy, LLM shortlist curation with an algorithmic fallback, and
// per-venue narrative generation.
package recommend

import (
	"fmt"
	"strings"

	"github.com/reservedai/venuescout/pkg/types"
)

// Query pairs a criterion label with the text blob that gets embedded.
type Query struct {
	Label types.QueryLabel
	Text  string
}

// Defaults applied when optional event fields are empty. These also appear
// verbatim in the query text, so changing one changes every embedding.
const (
	defaultEventName    = "Corporate Event"
	defaultEventType    = "Meeting"
	defaultVenueType    = "Any"
	defaultAttendees    = 30
	defaultBudget       = 10000
	defaultMeetingRooms = "Conference style"
	defaultFoodBeverage = "Basic Catering"
	defaultLocation     = "New York"
)

// BuildQueries derives the six criterion queries from an event description.
// Output is purely a function of the input: no timestamps, no randomness, no
// provider calls. Order follows types.QueryLabels.
func BuildQueries(event *types.EventDescription) []Query {
	eventName := orDefault(event.EventName, defaultEventName)
	eventType := orDefault(event.EventType, defaultEventType)
	venueType := orDefault(event.VenueType, defaultVenueType)
	atmosphere := event.Atmosphere
	privacy := string(event.PrivacyPreference)
	if privacy == "" {
		privacy = string(types.PrivacyNoPreference)
	}
	attendees := event.Attendees
	if attendees <= 0 {
		attendees = defaultAttendees
	}
	budget := event.VenueBudget
	if budget <= 0 {
		budget = defaultBudget
	}
	meetingRooms := orDefault(event.MeetingRooms, defaultMeetingRooms)
	foodBeverage := orDefault(event.FoodBeverage, defaultFoodBeverage)
	locations := event.LocationText()
	if locations == "" {
		locations = defaultLocation
	}
	dietary := event.DietaryText()

	distanceQuery := buildDistanceQuery(event)
	duration := "One Day Event"
	if !event.OneDayEvent {
		duration = fmt.Sprintf("Multi-day Event (%s to %s)", event.StartDate, event.EndDate)
	}

	overall := fmt.Sprintf(`COMPREHENSIVE VENUE REQUIREMENTS:
- Event Name: %s
- Event Type: %s
- Venue Category: %s
- Date Range: %s to %s
- One Day Event?: %t
- Locations: %s
- Distance Query: %s
- Desired Atmosphere: %s
- Private vs Semi-Private Preference: %s
- Exact Attendee Count: %d
- Venue Budget: $%.0f
- Meeting Room Configuration: %s
- Food & Beverage Needs: %s
- Dietary Restrictions: %s
- Hotel Rooms Needed: %d
- Other Special Requirements: %s
- Attendee Origins: %s
- Additional Notes: %s
- Decision Date: %s
- Event Time: %s

>>> PRIMARY GOAL: Return only those venues that (1) meet capacity and (2) fall within ~5 miles
of the specified address or neighborhood (if given), while also respecting the budget,
atmosphere/vibe, and other key factors above.`,
		eventName, eventType, venueType,
		event.StartDate, event.EndDate, event.OneDayEvent,
		locations, distanceQuery,
		orDefault(atmosphere, "No specific vibe stated"),
		privacy, attendees, budget, meetingRooms, foodBeverage,
		orDefault(dietary, "N/A"),
		event.HotelRooms,
		orDefault(event.SpecialRequirements, "None"),
		orDefault(event.AttendeeOrigins, "Mixed/Unknown"),
		orDefault(event.Notes, "N/A"),
		orDefault(event.DecisionDate, "N/A"),
		event.StartTime)

	meetingRoomsQuery := fmt.Sprintf(`PRIORITY: Meeting Space & Layout
- MUST accommodate EXACTLY %d attendees.
- Required Room Configuration: %s
- Private/Semi-Private Preference: %s
- Typical A/V Needs (projectors, microphones, etc.)
- Emphasize convenience of location: %s
- This is the PRIMARY focus of our venue search.`,
		attendees, orDefault(event.MeetingRooms, "Multiple breakouts"), privacy, distanceQuery)

	food := fmt.Sprintf(`PRIORITY: Food & Beverage
- Must be suitable for a %s event
- Specific F&B Requirements: %s
- Dietary Restrictions: %s
- Must comfortably serve %d people
- Emphasize quality, variety, and any special dietary needs
- Budget limit is $%.0f
- Prefer location: %s`,
		eventType, foodBeverage, orDefault(dietary, "N/A"), attendees, budget, distanceQuery)

	privacyLine := ""
	if privacy != string(types.PrivacyNoPreference) {
		privacyLine = fmt.Sprintf("Private/Semi-Private Space: %s", privacy)
	}

	location := fmt.Sprintf(`PRIORITY: Location & Accessibility
- Primary locations: %s
- %s
- Easy transportation access for %d attendees
- %s
- Suitable for %s events
- Close to hotels/accommodations if needed: %d rooms
- This is a CRITICAL factor in our venue selection.`,
		locations, distanceQuery, attendees, privacyLine, eventType, event.HotelRooms)

	atmosphereQuery := fmt.Sprintf(`PRIORITY: Ambiance & Atmosphere
- SPECIFIC ATMOSPHERE DESIRED: %s
- Must match the tone of a %s event
- Suitable for %d attendees
- Setting should facilitate %s activities
- %s
- Lighting, acoustics, and overall vibe are important considerations`,
		orDefault(atmosphere, "Professional yet comfortable"),
		eventType, attendees, eventType, privacyLine)

	budgetQuery := fmt.Sprintf(`PRIORITY: Budget & Cost
- Hard budget ceiling of $%.0f
- Venue + F&B must fit within this budget for %d attendees
- Seek all-inclusive or transparent pricing (avoid hidden fees)
- Keep location preference in mind: %s
- Budget needs to cover:
  - Venue rental for %s
  - Food & beverage: %s
  - Meeting space: %s
  - Any technical requirements: %s`,
		budget, attendees, distanceQuery, duration, foodBeverage, meetingRooms,
		orDefault(event.SpecialRequirements, "Standard A/V"))

	return []Query{
		{Label: types.LabelOverall, Text: overall},
		{Label: types.LabelMeetingRooms, Text: meetingRoomsQuery},
		{Label: types.LabelFood, Text: food},
		{Label: types.LabelLocation, Text: location},
		{Label: types.LabelAtmosphere, Text: atmosphereQuery},
		{Label: types.LabelBudget, Text: budgetQuery},
	}
}

// buildDistanceQuery renders the proximity constraint shared by several
// criterion queries.
func buildDistanceQuery(event *types.EventDescription) string {
	var b strings.Builder
	if event.AddressProximity != "" {
		fmt.Fprintf(&b, "Must be within ~5 miles of %s. ", event.AddressProximity)
	}
	if event.NeighborhoodPreference != "" {
		fmt.Fprintf(&b, "Strong preference for the %s area. ", event.NeighborhoodPreference)
	}
	if b.Len() == 0 {
		return "No strict distance constraint specified."
	}
	return strings.TrimSpace(b.String())
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
