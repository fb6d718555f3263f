package mail

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/reservedai/venuescout/internal/llm"
)

// GmailConfig holds configuration for the Gmail REST mailer.
type GmailConfig struct {
	AccessToken string        // pre-issued OAuth bearer token with send + readonly scopes
	FromAddress string        // sender address on outgoing mail
	BaseURL     string        // default: https://gmail.googleapis.com
	Timeout     time.Duration // default: 30s
}

// GmailMailer implements Mailer against the Gmail REST API. Like the LLM
// clients it is hand-rolled HTTP behind a circuit breaker, with no retries.
// OAuth browser flows are out of scope; the token arrives via config.
type GmailMailer struct {
	cfg            GmailConfig
	client         *http.Client
	circuitBreaker *llm.CircuitBreaker
}

// NewGmailMailer creates a Gmail mailer with the given configuration.
func NewGmailMailer(cfg GmailConfig) (*GmailMailer, error) {
	if cfg.AccessToken == "" {
		return nil, errors.New("gmail access token is required")
	}
	if cfg.FromAddress == "" {
		return nil, errors.New("gmail from address is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://gmail.googleapis.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &GmailMailer{
		cfg: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		circuitBreaker: llm.NewCircuitBreaker("gmail"),
	}, nil
}

// Send delivers a multipart/alternative message (plain + HTML) via the Gmail
// messages.send endpoint. An invalid recipient is reported as an error-status
// result, not a transport error.
func (m *GmailMailer) Send(ctx context.Context, to, subject, plainBody, htmlBody string) (*SendResult, error) {
	if to == "" || !strings.Contains(to, "@") {
		return &SendResult{
			Status:  SendStatusError,
			Message: fmt.Sprintf("invalid recipient email address: %s", to),
		}, nil
	}

	raw, err := buildMIMEMessage(m.cfg.FromAddress, to, subject, plainBody, htmlBody)
	if err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}

	result, err := m.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return m.send(ctx, raw)
	})
	if err != nil {
		if errors.Is(err, llm.ErrCircuitOpen) {
			return nil, fmt.Errorf("gmail circuit breaker open: %w", err)
		}
		return nil, err
	}
	return result.(*SendResult), nil
}

func (m *GmailMailer) send(ctx context.Context, rawMessage string) (*SendResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	body, err := json.Marshal(map[string]string{"raw": rawMessage})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST",
		m.cfg.BaseURL+"/gmail/v1/users/me/messages/send", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.cfg.AccessToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("gmail returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var sent struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&sent); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &SendResult{
		Status:    SendStatusSent,
		MessageID: sent.ID,
		Message:   "Email sent successfully.",
	}, nil
}

// SearchLatest returns the snippet of the newest message matching the query,
// or a pending result when the mailbox has no match.
func (m *GmailMailer) SearchLatest(ctx context.Context, query string) (*SearchResult, error) {
	result, err := m.circuitBreaker.Execute(ctx, func() (interface{}, error) {
		return m.searchLatest(ctx, query)
	})
	if err != nil {
		if errors.Is(err, llm.ErrCircuitOpen) {
			return nil, fmt.Errorf("gmail circuit breaker open: %w", err)
		}
		return nil, err
	}
	return result.(*SearchResult), nil
}

func (m *GmailMailer) searchLatest(ctx context.Context, query string) (*SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()

	listURL := fmt.Sprintf("%s/gmail/v1/users/me/messages?maxResults=1&q=%s",
		m.cfg.BaseURL, url.QueryEscape(query))

	var list struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := m.getJSON(ctx, listURL, &list); err != nil {
		return nil, err
	}

	if len(list.Messages) == 0 {
		return &SearchResult{
			Status:  SearchStatusPending,
			Message: "No response received yet.",
		}, nil
	}

	var msg struct {
		Snippet string `json:"snippet"`
	}
	msgURL := fmt.Sprintf("%s/gmail/v1/users/me/messages/%s?format=minimal", m.cfg.BaseURL, list.Messages[0].ID)
	if err := m.getJSON(ctx, msgURL, &msg); err != nil {
		return nil, err
	}

	snippet := msg.Snippet
	if snippet == "" {
		snippet = "No content available."
	}
	return &SearchResult{
		Status:  SearchStatusReceived,
		Snippet: snippet,
		Message: snippet,
	}, nil
}

func (m *GmailMailer) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.AccessToken)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("gmail returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// buildMIMEMessage assembles a base64url-encoded multipart/alternative
// message. Plain text comes first so clients without HTML support render it.
func buildMIMEMessage(from, to, subject, plainBody, htmlBody string) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())

	plainPart, err := mw.CreatePart(map[string][]string{
		"Content-Type": {"text/plain; charset=UTF-8"},
	})
	if err != nil {
		return "", err
	}
	if _, err := plainPart.Write([]byte(plainBody)); err != nil {
		return "", err
	}

	if htmlBody != "" {
		htmlPart, err := mw.CreatePart(map[string][]string{
			"Content-Type": {"text/html; charset=UTF-8"},
		})
		if err != nil {
			return "", err
		}
		if _, err := htmlPart.Write([]byte(htmlBody)); err != nil {
			return "", err
		}
	}

	if err := mw.Close(); err != nil {
		return "", err
	}

	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// Compile-time assertion.
var _ Mailer = (*GmailMailer)(nil)
