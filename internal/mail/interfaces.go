// Package mail implements the venue inquiry companion: composing reservation
// request emails, sending them through Gmail, and interpreting venue replies.
package mail

import "context"

// Send/search outcome statuses, mirrored into API responses.
const (
	SendStatusSent  = "sent"
	SendStatusError = "error"

	SearchStatusReceived = "received"
	SearchStatusPending  = "pending"
	SearchStatusError    = "error"
)

// SendResult reports the outcome of one send attempt.
type SendResult struct {
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message"`
}

// SearchResult reports the latest message matching a mailbox query. Snippet
// is only set when Status is "received".
type SearchResult struct {
	Status  string `json:"status"`
	Snippet string `json:"snippet,omitempty"`
	Message string `json:"message"`
}

// Mailer is the outbound/inbound email contract. Errors are reserved for
// transport failures; an empty mailbox is a "pending" SearchResult, not an
// error.
type Mailer interface {
	Send(ctx context.Context, to, subject, plainBody, htmlBody string) (*SendResult, error)
	SearchLatest(ctx context.Context, query string) (*SearchResult, error)
}

// Email is a composed inquiry ready to send.
type Email struct {
	Subject   string `json:"subject"`
	PlainText string `json:"plain_text"`
	HTML      string `json:"html"`
}
