package mail

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"

	"github.com/reservedai/venuescout/internal/llm"
	"github.com/reservedai/venuescout/pkg/types"
)

// Composer builds reservation inquiry emails for a venue. When a text
// provider is configured it drafts the body with the LLM; any provider or
// parse failure falls back to the deterministic template, so Compose never
// fails.
type Composer struct {
	generator  llm.TextGenerator
	senderName string
	senderAddr string
}

// NewComposer creates a composer. generator may be nil, which forces the
// template path.
func NewComposer(generator llm.TextGenerator, senderName, senderAddr string) *Composer {
	if senderName == "" {
		senderName = "AI Agent"
	}
	if senderAddr == "" {
		senderAddr = "support@reserved.events"
	}
	return &Composer{generator: generator, senderName: senderName, senderAddr: senderAddr}
}

// Compose produces the inquiry email for one venue.
func (c *Composer) Compose(ctx context.Context, venueName string, event *types.EventDescription) Email {
	if venueName == "" {
		venueName = "Selected Venue"
	}
	subject := fmt.Sprintf("Reservation Request: %s at %s %s", venueName, event.StartDate, event.StartTime)

	if c.generator != nil {
		if email, err := c.composeWithAI(ctx, subject, venueName, event); err == nil {
			return email
		} else {
			log.Printf("composer: AI draft failed, using template: %v", err)
		}
	}

	return Email{
		Subject:   subject,
		PlainText: c.renderPlainText(venueName, event),
		HTML:      c.renderHTML(venueName, event),
	}
}

func (c *Composer) composeWithAI(ctx context.Context, subject, venueName string, event *types.EventDescription) (Email, error) {
	prompt := c.buildDraftPrompt(venueName, event)

	var raw string
	var err error
	if jg, ok := c.generator.(llm.JSONGenerator); ok {
		raw, err = jg.CompleteJSON(ctx, prompt)
	} else {
		raw, err = c.generator.Complete(ctx, prompt)
	}
	if err != nil {
		return Email{}, err
	}

	content, err := llm.ParseEmailContentResponse(raw)
	if err != nil {
		return Email{}, err
	}
	return Email{Subject: subject, PlainText: content.PlainText, HTML: content.HTML}, nil
}

func (c *Composer) buildDraftPrompt(venueName string, event *types.EventDescription) string {
	timeRange := event.StartTime
	if event.StartTime != "" && event.EndTime != "" {
		timeRange = event.StartTime + " to " + event.EndTime
	}
	return fmt.Sprintf(`Create a professional, engaging email to inquire about venue reservation for a corporate event.
I am an AI agent emailing on behalf of Reserved.ai for this venue booking.

The email should:
- Start with "Dear Sir/Madam,"
- Clearly state I am an AI agent emailing on behalf of Reserved.ai
- Be concise, professional, and highlight key requirements
- Use HTML formatting for the HTML version
- End with "%s\nReserved.ai\n%s" signature

Event details:
- Venue: %s
- Event Name: %s
- Type: %s
- Date: %s
- Time: %s
- Location: %s
- Number of Attendees: %d
- Budget: $%.0f
- Food & Beverage: %s
- Dietary Restrictions: %s
- Private/Semi-Private: %s
- Neighborhood Preference: %s
- Atmosphere Desired: %s
- Special Requirements: %s
- Decision Deadline: %s
- Additional Notes: %s

Return TWO versions:
1. A plain text email version (no HTML)
2. An HTML formatted version with the same content but with professional styling

For the HTML version, use styles to make it attractive but professional. Bold important details, use spacing for readability.

Format your response as a JSON with these fields:
{"plain_text": "Plain text version", "html": "HTML version"}`,
		c.senderName, c.senderAddr, venueName,
		event.EventName, event.EventType, event.StartDate, timeRange,
		event.LocationText(), event.Attendees, event.VenueBudget,
		event.FoodBeverage, event.DietaryText(),
		string(event.PrivacyPreference), event.NeighborhoodPreference,
		event.Atmosphere, event.SpecialRequirements,
		event.DecisionDate, event.Notes)
}

// fieldDescriptor declares one optional detail line. A single table drives
// both the plain-text and HTML renderings so the two versions cannot drift.
type fieldDescriptor struct {
	label string
	value func(*types.EventDescription) string
}

var optionalFields = []fieldDescriptor{
	{"Venue Type", func(e *types.EventDescription) string { return e.VenueType }},
	{"Total Budget", func(e *types.EventDescription) string {
		if e.VenueBudget <= 0 {
			return ""
		}
		return fmt.Sprintf("$%.0f", e.VenueBudget)
	}},
	{"Food & Beverage", func(e *types.EventDescription) string {
		if e.FoodBeverage == "Not needed" {
			return ""
		}
		return e.FoodBeverage
	}},
	{"Private/Semi-Private Preference", func(e *types.EventDescription) string { return string(e.PrivacyPreference) }},
	{"Neighborhood Preference", func(e *types.EventDescription) string { return e.NeighborhoodPreference }},
	{"Desired Atmosphere", func(e *types.EventDescription) string { return e.Atmosphere }},
	{"Special Requirements", func(e *types.EventDescription) string { return e.SpecialRequirements }},
	{"Dietary Restrictions", func(e *types.EventDescription) string { return e.DietaryText() }},
}

func (c *Composer) renderPlainText(venueName string, event *types.EventDescription) string {
	eventName := event.EventName
	if eventName == "" {
		eventName = "Corporate Event"
	}

	parts := []string{
		"Dear Sir/Madam,",
		"",
		"I am an AI agent emailing on behalf of Reserved.ai, helping to coordinate a venue reservation for our client.",
		"",
		fmt.Sprintf("I am inquiring about availability for the following event at %s:", venueName),
		"",
		"EVENT DETAILS:",
		fmt.Sprintf("Name: %s", eventName),
	}

	if event.EventType != "" {
		parts = append(parts, fmt.Sprintf("Type: %s", event.EventType))
	}
	if event.StartDate != "" {
		parts = append(parts, fmt.Sprintf("Date: %s", event.StartDate))
	}
	if t := timeLine(event); t != "" {
		parts = append(parts, fmt.Sprintf("Time: %s", t))
	}
	if loc := event.LocationText(); loc != "" {
		parts = append(parts, fmt.Sprintf("Location Preference: %s", loc))
	}
	if event.Attendees > 0 {
		parts = append(parts, fmt.Sprintf("Number of Attendees: %d", event.Attendees))
	}

	for _, f := range optionalFields {
		if v := f.value(event); v != "" {
			parts = append(parts, fmt.Sprintf("%s: %s", f.label, v))
		}
	}

	if event.Notes != "" {
		parts = append(parts, "", fmt.Sprintf("Additional Notes: %s", event.Notes))
	}
	if event.DecisionDate != "" {
		parts = append(parts, "", fmt.Sprintf("We need to make a decision by %s.", event.DecisionDate))
	}

	parts = append(parts,
		"",
		"Could you please confirm availability for this event and provide information about any suitable packages or options you offer?",
		"",
		"I look forward to your response and would be happy to discuss further details.",
		"",
		"Thank you for your consideration.",
		"",
		"Best regards,",
		c.senderName,
		"Reserved.ai",
		c.senderAddr,
	)

	return strings.Join(parts, "\n")
}

func (c *Composer) renderHTML(venueName string, event *types.EventDescription) string {
	eventName := event.EventName
	if eventName == "" {
		eventName = "Corporate Event"
	}

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html>
<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; }
.header { color: #4a6fa5; padding-bottom: 10px; border-bottom: 1px solid #eee; margin-bottom: 20px; }
.section { margin-bottom: 20px; }
.section-title { font-weight: bold; color: #4a6fa5; margin-bottom: 10px; }
.detail-row { margin-bottom: 5px; }
.label { font-weight: bold; width: 180px; display: inline-block; }
.footer { margin-top: 30px; padding-top: 15px; border-top: 1px solid #eee; font-size: 90%; color: #777; }
.highlight { color: #e74c3c; font-weight: bold; }
</style>
</head>
<body>
`)
	fmt.Fprintf(&b, `<div class="header"><h2>Venue Inquiry: %s at %s</h2></div>
`, html.EscapeString(eventName), html.EscapeString(venueName))
	b.WriteString(`<div class="section">
<p>Dear Sir/Madam,</p>
<p>I am an AI agent emailing on behalf of <strong>Reserved.ai</strong>, helping to coordinate a venue reservation for our client.</p>
<p>I am inquiring about availability for the following event:</p>
</div>
<div class="section">
<div class="section-title">EVENT DETAILS</div>
`)

	detail := func(label, value string, strong bool) {
		if value == "" {
			return
		}
		v := html.EscapeString(value)
		if strong {
			v = "<strong>" + v + "</strong>"
		}
		fmt.Fprintf(&b, `<div class="detail-row"><span class="label">%s:</span> %s</div>
`, label, v)
	}

	detail("Event Name", eventName, true)
	detail("Type", event.EventType, false)
	detail("Date", event.StartDate, true)
	detail("Time", timeLine(event), true)
	detail("Location Preference", event.LocationText(), false)
	if event.Attendees > 0 {
		detail("Number of Attendees", fmt.Sprintf("%d", event.Attendees), true)
	}
	for _, f := range optionalFields {
		detail(f.label, f.value(event), false)
	}
	b.WriteString("</div>\n")

	if event.Notes != "" {
		fmt.Fprintf(&b, `<div class="section">
<div class="section-title">ADDITIONAL NOTES</div>
<p>%s</p>
</div>
`, html.EscapeString(event.Notes))
	}
	if event.DecisionDate != "" {
		fmt.Fprintf(&b, `<div class="section">
<div class="section-title">TIMELINE</div>
<p>We need to make a decision by <span class="highlight">%s</span>.</p>
</div>
`, html.EscapeString(event.DecisionDate))
	}

	fmt.Fprintf(&b, `<div class="section">
<p>Could you please confirm availability for this event and provide information about any suitable packages or options you offer?</p>
<p>I look forward to your response and would be happy to discuss further details.</p>
</div>
<div class="footer">
<p>Thank you for your consideration.</p>
<p>Best regards,<br>%s<br>Reserved.ai<br>%s</p>
</div>
</body>
</html>`, html.EscapeString(c.senderName), html.EscapeString(c.senderAddr))

	return b.String()
}

func timeLine(event *types.EventDescription) string {
	switch {
	case event.StartTime != "" && event.EndTime != "":
		return event.StartTime + " to " + event.EndTime
	case event.StartTime != "":
		return event.StartTime
	default:
		return ""
	}
}
