package mail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGmailMailer(t *testing.T, handler http.HandlerFunc) *GmailMailer {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	mailer, err := NewGmailMailer(GmailConfig{
		AccessToken: "test-token",
		FromAddress: "agent@reserved.events",
		BaseURL:     server.URL,
	})
	require.NoError(t, err)
	return mailer
}

func TestGmailSend(t *testing.T) {
	var gotAuth string
	var gotRaw string
	mailer := newTestGmailMailer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/gmail/v1/users/me/messages/send", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		require.NoError(t, json.Unmarshal(body, &req))
		gotRaw = req["raw"]

		fmt.Fprint(w, `{"id": "msg-123"}`)
	})

	result, err := mailer.Send(context.Background(), "events@grove.com",
		"Reservation Request: The Grove at 2026-09-14 18:00", "plain body", "<p>html body</p>")
	require.NoError(t, err)

	assert.Equal(t, SendStatusSent, result.Status)
	assert.Equal(t, "msg-123", result.MessageID)
	assert.Equal(t, "Bearer test-token", gotAuth)

	decoded, err := base64.URLEncoding.DecodeString(gotRaw)
	require.NoError(t, err)
	mime := string(decoded)
	assert.Contains(t, mime, "To: events@grove.com")
	assert.Contains(t, mime, "From: agent@reserved.events")
	assert.Contains(t, mime, "Subject: Reservation Request: The Grove at 2026-09-14 18:00")
	assert.Contains(t, mime, "multipart/alternative")
	assert.Contains(t, mime, "plain body")
	assert.Contains(t, mime, "<p>html body</p>")
	assert.True(t, strings.Index(mime, "plain body") < strings.Index(mime, "<p>html body</p>"),
		"plain part comes before html part")
}

func TestGmailSendInvalidRecipient(t *testing.T) {
	mailer := newTestGmailMailer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected for an invalid recipient")
	})

	result, err := mailer.Send(context.Background(), "not-an-address", "subject", "body", "")
	require.NoError(t, err)
	assert.Equal(t, SendStatusError, result.Status)
	assert.Contains(t, result.Message, "invalid recipient")
}

func TestGmailSendServerError(t *testing.T) {
	mailer := newTestGmailMailer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	_, err := mailer.Send(context.Background(), "events@grove.com", "subject", "body", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestGmailSearchLatest(t *testing.T) {
	mailer := newTestGmailMailer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/gmail/v1/users/me/messages":
			assert.Equal(t, "from:events@grove.com subject:Board Dinner", r.URL.Query().Get("q"))
			assert.Equal(t, "1", r.URL.Query().Get("maxResults"))
			fmt.Fprint(w, `{"messages": [{"id": "msg-9"}]}`)
		case r.URL.Path == "/gmail/v1/users/me/messages/msg-9":
			fmt.Fprint(w, `{"snippet": "We can host you on the 14th."}`)
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	result, err := mailer.SearchLatest(context.Background(), "from:events@grove.com subject:Board Dinner")
	require.NoError(t, err)
	assert.Equal(t, SearchStatusReceived, result.Status)
	assert.Equal(t, "We can host you on the 14th.", result.Snippet)
}

func TestGmailSearchLatestEmptyMailbox(t *testing.T) {
	mailer := newTestGmailMailer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"resultSizeEstimate": 0}`)
	})

	result, err := mailer.SearchLatest(context.Background(), "from:x subject:y")
	require.NoError(t, err)
	assert.Equal(t, SearchStatusPending, result.Status)
	assert.Empty(t, result.Snippet)
}

func TestNewGmailMailerValidation(t *testing.T) {
	_, err := NewGmailMailer(GmailConfig{FromAddress: "a@b.c"})
	assert.Error(t, err)

	_, err = NewGmailMailer(GmailConfig{AccessToken: "tok"})
	assert.Error(t, err)
}
