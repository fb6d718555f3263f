package mail

import (
	"context"
	"errors"
	"strings"
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
		StartDate:              "2026-09-14",
		OneDayEvent:            true,
		StartTime:              "18:00",
		EndTime:                "22:00",
		Locations:              []string{"New York"},
		NeighborhoodPreference: "Midtown",
		Atmosphere:             "Upscale but relaxed",
		PrivacyPreference:      types.PrivacyPrivate,
		Attendees:              80,
		VenueBudget:            10000,
		FoodBeverage:           "Full Dinner",
		DietaryRestrictions:    []string{"Vegetarian", "Gluten-Free"},
		DecisionDate:           "2026-08-31",
	}
}

func TestComposeSubjectFormat(t *testing.T) {
	c := NewComposer(nil, "Ava", "agent@reserved.events")

	email := c.Compose(context.Background(), "The Grove", sampleEvent())
	assert.Equal(t, "Reservation Request: The Grove at 2026-09-14 18:00", email.Subject)
}

func TestComposeTemplatePlainText(t *testing.T) {
	c := NewComposer(nil, "Ava", "agent@reserved.events")

	email := c.Compose(context.Background(), "The Grove", sampleEvent())

	assert.True(t, strings.HasPrefix(email.PlainText, "Dear Sir/Madam,"))
	assert.Contains(t, email.PlainText, "AI agent emailing on behalf of Reserved.ai")
	assert.Contains(t, email.PlainText, "Name: Engineering Offsite 2026")
	assert.Contains(t, email.PlainText, "Time: 18:00 to 22:00")
	assert.Contains(t, email.PlainText, "Number of Attendees: 80")
	assert.Contains(t, email.PlainText, "Total Budget: $10000")
	assert.Contains(t, email.PlainText, "Dietary Restrictions: Vegetarian, Gluten-Free")
	assert.Contains(t, email.PlainText, "We need to make a decision by 2026-08-31.")
	assert.Contains(t, email.PlainText, "Ava\nReserved.ai\nagent@reserved.events")
}

func TestComposeTemplateOmitsEmptyFields(t *testing.T) {
	c := NewComposer(nil, "", "")
	event := &types.EventDescription{
		EventName:    "Board Dinner",
		StartDate:    "2026-10-01",
		Attendees:    12,
		FoodBeverage: "Not needed",
	}

	email := c.Compose(context.Background(), "Harbor House", event)

	assert.NotContains(t, email.PlainText, "Food & Beverage")
	assert.NotContains(t, email.PlainText, "Total Budget")
	assert.NotContains(t, email.PlainText, "Dietary Restrictions")
	assert.NotContains(t, email.PlainText, "decision by")
	assert.Contains(t, email.PlainText, "AI Agent\nReserved.ai\nsupport@reserved.events")
}

func TestComposeTemplateHTML(t *testing.T) {
	c := NewComposer(nil, "Ava", "agent@reserved.events")
	event := sampleEvent()
	event.Notes = "Rooftop access would be a <big> plus"

	email := c.Compose(context.Background(), "The Grove", event)

	assert.Contains(t, email.HTML, "<!DOCTYPE html>")
	assert.Contains(t, email.HTML, "Venue Inquiry: Engineering Offsite 2026 at The Grove")
	assert.Contains(t, email.HTML, `<span class="label">Number of Attendees:</span> <strong>80</strong>`)
	assert.Contains(t, email.HTML, `<span class="highlight">2026-08-31</span>`)
	assert.Contains(t, email.HTML, "&lt;big&gt;", "notes are HTML-escaped")
	assert.NotContains(t, email.HTML, "<big>")
}

func TestComposeAIDraft(t *testing.T) {
	gen := &stubJSONGenerator{
		jsonResponse: `{"plain_text": "Dear Sir/Madam, drafted body.", "html": "<p>drafted body</p>"}`,
	}
	c := NewComposer(gen, "Ava", "agent@reserved.events")

	email := c.Compose(context.Background(), "The Grove", sampleEvent())

	assert.Equal(t, "Dear Sir/Madam, drafted body.", email.PlainText)
	assert.Equal(t, "<p>drafted body</p>", email.HTML)
	assert.Equal(t, "Reservation Request: The Grove at 2026-09-14 18:00", email.Subject)

	require.Len(t, gen.jsonPrompts, 1)
	assert.Contains(t, gen.jsonPrompts[0], "The Grove")
	assert.Contains(t, gen.jsonPrompts[0], "Engineering Offsite 2026")
	assert.Contains(t, gen.jsonPrompts[0], `{"plain_text": "Plain text version", "html": "HTML version"}`)
	assert.Empty(t, gen.prompts, "JSON-capable provider bypasses plain Complete")
}

func TestComposeAIFailureFallsBackToTemplate(t *testing.T) {
	gen := &stubGenerator{err: errors.New("provider down")}
	c := NewComposer(gen, "Ava", "agent@reserved.events")

	email := c.Compose(context.Background(), "The Grove", sampleEvent())

	assert.Contains(t, email.PlainText, "EVENT DETAILS:")
	assert.Contains(t, email.HTML, "<!DOCTYPE html>")
}

func TestComposeAIMalformedFallsBackToTemplate(t *testing.T) {
	gen := &stubGenerator{response: `{"plain_text": "body only"}`}
	c := NewComposer(gen, "Ava", "agent@reserved.events")

	email := c.Compose(context.Background(), "The Grove", sampleEvent())
	assert.Contains(t, email.PlainText, "EVENT DETAILS:")
}

func TestComposeEmptyVenueName(t *testing.T) {
	c := NewComposer(nil, "Ava", "agent@reserved.events")

	email := c.Compose(context.Background(), "", sampleEvent())
	assert.Contains(t, email.Subject, "Reservation Request: Selected Venue at")
	assert.Contains(t, email.PlainText, "at Selected Venue:")
}
