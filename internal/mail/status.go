package mail

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/reservedai/venuescout/internal/llm"
)

// InquiryStatus is the interpreted state of a venue reservation thread.
type InquiryStatus struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	NextSteps string `json:"next_steps,omitempty"`
}

// StatusChecker polls the mailbox for a venue's reply to an inquiry and uses
// the LLM to classify it. When the provider cannot interpret the reply the
// raw snippet is surfaced with status "unknown" rather than dropped.
type StatusChecker struct {
	mailer    Mailer
	generator llm.TextGenerator
}

// NewStatusChecker creates a status checker. generator may be nil, in which
// case received replies are always reported as unknown with the raw snippet.
func NewStatusChecker(mailer Mailer, generator llm.TextGenerator) *StatusChecker {
	return &StatusChecker{mailer: mailer, generator: generator}
}

// Check looks for the latest reply from venueEmail about eventName. sentDate,
// when set, narrows the search to messages after the inquiry went out.
func (s *StatusChecker) Check(ctx context.Context, venueEmail, eventName, sentDate string) (*InquiryStatus, error) {
	query := fmt.Sprintf("from:%s subject:%s", venueEmail, eventName)
	if sentDate != "" {
		query += " after:" + sentDate
	}

	result, err := s.mailer.SearchLatest(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search mailbox: %w", err)
	}

	switch result.Status {
	case SearchStatusPending:
		return &InquiryStatus{
			Status:  llm.ReplyStatusPending,
			Message: "No response received from the venue yet.",
		}, nil
	case SearchStatusReceived:
		return s.interpret(ctx, result.Snippet), nil
	default:
		return &InquiryStatus{
			Status:  llm.ReplyStatusUnknown,
			Message: result.Message,
		}, nil
	}
}

func (s *StatusChecker) interpret(ctx context.Context, snippet string) *InquiryStatus {
	if s.generator == nil {
		return unknownStatus(snippet)
	}

	prompt := buildStatusPrompt(snippet)

	var raw string
	var err error
	if jg, ok := s.generator.(llm.JSONGenerator); ok {
		raw, err = jg.CompleteJSON(ctx, prompt)
	} else {
		raw, err = s.generator.Complete(ctx, prompt)
	}
	if err != nil {
		log.Printf("status checker: provider failed, returning raw reply: %v", err)
		return unknownStatus(snippet)
	}

	parsed, err := llm.ParseReplyStatusResponse(raw)
	if err != nil {
		log.Printf("status checker: unparseable classification, returning raw reply: %v", err)
		return unknownStatus(snippet)
	}

	return &InquiryStatus{
		Status:    parsed.Status,
		Message:   parsed.Message,
		NextSteps: parsed.NextSteps,
	}
}

func unknownStatus(snippet string) *InquiryStatus {
	return &InquiryStatus{
		Status:  llm.ReplyStatusUnknown,
		Message: "Received a reply that could not be interpreted automatically: " + strings.TrimSpace(snippet),
	}
}

func buildStatusPrompt(snippet string) string {
	return fmt.Sprintf(`Extract the venue reservation status from the following email response from a venue.

Email content:
%s

Classify the response into exactly one status:
- "confirmed": the venue has confirmed the reservation or availability
- "declined": the venue cannot accommodate the request
- "pending": the venue needs more information or has not decided yet

Format your response as a JSON with these fields:
{"status": "confirmed|pending|declined", "message": "one sentence summary of the venue's reply", "next_steps": "what the organizer should do next, if anything"}`, snippet)
}
