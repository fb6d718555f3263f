package types

import "strings"

// PrivacyPreference expresses whether the event requires a private room,
// a semi-private space, or has no preference.
type PrivacyPreference string

const (
	PrivacyPrivate      PrivacyPreference = "Private Only"
	PrivacySemiPrivate  PrivacyPreference = "Semi-Private Only"
	PrivacyNoPreference PrivacyPreference = "No Preference"
)

// IsValidPrivacyPreference reports whether s is one of the recognized
// privacy preference values.
func IsValidPrivacyPreference(s string) bool {
	switch PrivacyPreference(s) {
	case PrivacyPrivate, PrivacySemiPrivate, PrivacyNoPreference:
		return true
	}
	return false
}

// EventDescription captures everything an organizer tells us about a corporate
// event. It is immutable for the duration of a recommendation run: the engine
// never mutates it mid-pipeline.
type EventDescription struct {
	EventName string `json:"event_name" yaml:"event_name"`
	EventType string `json:"event_type" yaml:"event_type"`
	VenueType string `json:"venue_type" yaml:"venue_type"`

	// Date range. OneDayEvent distinguishes a single-day booking from a
	// multi-day one when rendering queries and inquiry emails.
	StartDate   string `json:"start_date" yaml:"start_date"`
	EndDate     string `json:"end_date,omitempty" yaml:"end_date"`
	OneDayEvent bool   `json:"one_day_event" yaml:"one_day_event"`
	StartTime   string `json:"event_time,omitempty" yaml:"event_time"`
	EndTime     string `json:"event_endtime,omitempty" yaml:"event_endtime"`

	// Location preferences.
	Locations              []string `json:"locations" yaml:"locations"`
	AddressProximity       string   `json:"address_proximity,omitempty" yaml:"address_proximity"`
	NeighborhoodPreference string   `json:"neighborhood_preference,omitempty" yaml:"neighborhood_preference"`

	// Venue character.
	Atmosphere        string            `json:"atmosphere,omitempty" yaml:"atmosphere"`
	PrivacyPreference PrivacyPreference `json:"private_preference,omitempty" yaml:"private_preference"`

	// Capacity and budget.
	Attendees   int     `json:"attendees" yaml:"attendees"`
	VenueBudget float64 `json:"venue_budget" yaml:"venue_budget"`

	// Logistics.
	MeetingRooms        string   `json:"meeting_rooms,omitempty" yaml:"meeting_rooms"`
	FoodBeverage        string   `json:"food_beverage,omitempty" yaml:"food_beverage"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty" yaml:"dietary_restrictions"`
	HotelRooms          int      `json:"hotel_rooms,omitempty" yaml:"hotel_rooms"`
	SpecialRequirements string   `json:"special_requirements,omitempty" yaml:"special_requirements"`
	AttendeeOrigins     string   `json:"attendee_origins,omitempty" yaml:"attendee_origins"`
	Notes               string   `json:"notes,omitempty" yaml:"notes"`
	DecisionDate        string   `json:"decision_date,omitempty" yaml:"decision_date"`
}

// DietaryText returns the dietary restrictions as a comma-separated string,
// or the empty string when none are set.
func (e *EventDescription) DietaryText() string {
	return strings.Join(e.DietaryRestrictions, ", ")
}

// LocationText returns the target cities as a comma-separated string.
func (e *EventDescription) LocationText() string {
	return strings.Join(e.Locations, ", ")
}
