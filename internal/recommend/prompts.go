package recommend

import (
	"encoding/json"
	"fmt"

	"github.com/reservedai/venuescout/pkg/types"
)

// poolRecord is the venue shape shown to the curation model and returned in
// shortlists. Score is the best similarity the venue achieved on any label.
type poolRecord struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Score        float64 `json:"score"`
	Address      string  `json:"address"`
	Neighborhood string  `json:"neighborhood"`
	Cuisine      string  `json:"cuisine"`
	Pricing      string  `json:"pricing"`
	RAGData      string  `json:"ragdata"`
}

// eventSummary renders the compact event block used by both stage prompts.
func eventSummary(event *types.EventDescription) string {
	attendees := event.Attendees
	if attendees <= 0 {
		attendees = defaultAttendees
	}
	budget := event.VenueBudget
	if budget <= 0 {
		budget = defaultBudget
	}
	locations := event.LocationText()
	if locations == "" {
		locations = defaultLocation
	}
	return fmt.Sprintf(`Event: %s
Type: %s
Attendees: %d
Budget: $%.0f
Meeting Configuration: %s
Food & Beverage: %s
Locations: %s`,
		orDefault(event.EventName, defaultEventName),
		orDefault(event.EventType, defaultEventType),
		attendees, budget,
		orDefault(event.MeetingRooms, defaultMeetingRooms),
		orDefault(event.FoodBeverage, defaultFoodBeverage),
		locations)
}

// buildShortlistPrompt renders the Stage 1 curation request. The pool is
// marshaled as a name-keyed object; Go's map marshaling sorts keys, so the
// prompt is deterministic for a fixed pool.
func buildShortlistPrompt(pool map[string]poolRecord, event *types.EventDescription) (string, error) {
	poolJSON, err := json.MarshalIndent(pool, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal venue pool: %w", err)
	}

	attendees := event.Attendees
	if attendees <= 0 {
		attendees = defaultAttendees
	}
	budget := event.VenueBudget
	if budget <= 0 {
		budget = defaultBudget
	}
	locations := event.LocationText()
	if locations == "" {
		locations = defaultLocation
	}
	privacy := string(event.PrivacyPreference)
	if privacy == "" {
		privacy = string(types.PrivacyNoPreference)
	}

	return fmt.Sprintf(`Select the %d best restaurant venues for this event from the list provided.

EVENT DETAILS:
%s

PRIORITY REQUIREMENTS (MOST IMPORTANT):
- Locations: %s
- Dietary Restrictions: %s
- Address Proximity: %s
- Neighborhood: %s
- Atmosphere: %s
- Private/Semi-Private: %s
- Must accommodate: %d attendees
- Budget limit: $%.0f

AVAILABLE VENUES:
%s

Task: Choose the %d best restaurant venues that:
1. Best meet the PRIORITY REQUIREMENTS above
2. Have suitable capacity for the attendee count
3. Fall within budget constraints
4. Are most convenient for the given location preferences

Return a JSON object with two fields:
1. "selected_restaurants": List of the %d best venue names
2. "reasoning": Brief explanation of your selection criteria`,
		ShortlistSize,
		eventSummary(event),
		locations,
		orDefault(event.DietaryText(), "None"),
		orDefault(event.AddressProximity, "Not specified"),
		orDefault(event.NeighborhoodPreference, "Not specified"),
		orDefault(event.Atmosphere, "Not specified"),
		privacy, attendees, budget,
		string(poolJSON),
		ShortlistSize, ShortlistSize), nil
}

// buildNarrativePrompt renders the Stage 2 per-venue request.
func buildNarrativePrompt(venue poolRecord, event *types.EventDescription, position int) (string, error) {
	venueJSON, err := json.MarshalIndent(venue, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal venue: %w", err)
	}

	return fmt.Sprintf(`Create a detailed recommendation for the restaurant %q for this event:

EVENT DETAILS:
%s

VENUE INFORMATION:
%s

Format your recommendation exactly like this:

### %d. %s
[Brief introduction to the restaurant]

**Why it's perfect for your event:**
- [Specific reason with reference to event requirements (1 line)]
- [Specific reason with reference to event requirements (1 line)]

**Meeting Space:** [How it meets meeting room requirements (1-2 lines)]

**Food & Beverage:** [How it meets food/beverage requirements (1-2 lines)]

**Considerations:** [Any limitations or things to be aware of (1-2 lines)]

**Confidence Score:** [X/10] - [Brief explanation in plain text (6-10)]`,
		venue.Name, eventSummary(event), string(venueJSON), position, venue.Name), nil
}
