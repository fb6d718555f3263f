package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/reservedai/venuescout/internal/mail"
	"github.com/reservedai/venuescout/internal/recommend"
	"github.com/reservedai/venuescout/pkg/types"
)

// Engine is the recommendation pipeline surface the handlers depend on.
type Engine interface {
	FindBestVenues(ctx context.Context, event *types.EventDescription) (*recommend.Result, error)
	DescribeVenue(ctx context.Context, venue types.Venue, event *types.EventDescription, position int) string
}

// Composer drafts inquiry emails for a venue.
type Composer interface {
	Compose(ctx context.Context, venueName string, event *types.EventDescription) mail.Email
}

// StatusChecker interprets venue replies to an inquiry.
type StatusChecker interface {
	Check(ctx context.Context, venueEmail, eventName, sentDate string) (*mail.InquiryStatus, error)
}

// APIHandlers contains HTTP handlers for the REST API. The mail trio is nil
// when the inquiry mailer is disabled; those endpoints then answer 503.
type APIHandlers struct {
	engine        Engine
	composer      Composer
	mailer        mail.Mailer
	statusChecker StatusChecker
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(engine Engine) *APIHandlers {
	return &APIHandlers{engine: engine}
}

// SetMailComponents wires the optional inquiry mailer.
func (h *APIHandlers) SetMailComponents(composer Composer, mailer mail.Mailer, checker StatusChecker) {
	h.composer = composer
	h.mailer = mailer
	h.statusChecker = checker
}

// ErrorResponse is the JSON error body shared by every endpoint.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// PostRecommendations handles POST /api/recommendations - run the full
// two-stage pipeline for one event description.
func (h *APIHandlers) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	var event types.EventDescription
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid event description", err)
		return
	}
	if err := validateEvent(&event); err != nil {
		respondError(w, http.StatusBadRequest, "invalid event description", err)
		return
	}

	result, err := h.engine.FindBestVenues(r.Context(), &event)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "recommendation run failed", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// narrativeRequest is the body of POST /api/recommendations/narrative.
type narrativeRequest struct {
	Venue    types.Venue            `json:"venue"`
	Event    types.EventDescription `json:"event"`
	Position int                    `json:"position"`
}

// narrativeResponse carries one rendered venue write-up.
type narrativeResponse struct {
	Narrative string `json:"narrative"`
}

// PostNarrative handles POST /api/recommendations/narrative - render the
// detailed write-up for a single shortlisted venue.
func (h *APIHandlers) PostNarrative(w http.ResponseWriter, r *http.Request) {
	var req narrativeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid narrative request", err)
		return
	}
	if req.Venue.Name == "" {
		respondError(w, http.StatusBadRequest, "venue name is required", nil)
		return
	}
	if req.Position < 1 {
		req.Position = 1
	}

	narrative := h.engine.DescribeVenue(r.Context(), req.Venue, &req.Event, req.Position)
	respondJSON(w, http.StatusOK, narrativeResponse{Narrative: narrative})
}

// inquiryRequest is the body of POST /api/inquiries.
type inquiryRequest struct {
	VenueName  string                 `json:"venue_name"`
	VenueEmail string                 `json:"venue_email"`
	Event      types.EventDescription `json:"event"`
}

// inquiryResponse reports the composed subject and the send outcome.
type inquiryResponse struct {
	Subject   string `json:"subject"`
	Status    string `json:"status"`
	MessageID string `json:"message_id,omitempty"`
	Message   string `json:"message"`
}

// PostInquiry handles POST /api/inquiries - compose and send a reservation
// inquiry email to one venue.
func (h *APIHandlers) PostInquiry(w http.ResponseWriter, r *http.Request) {
	if h.composer == nil || h.mailer == nil {
		respondError(w, http.StatusServiceUnavailable, "inquiry mailer is not configured", nil)
		return
	}

	var req inquiryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid inquiry request", err)
		return
	}
	if req.VenueEmail == "" {
		respondError(w, http.StatusBadRequest, "venue email is required", nil)
		return
	}

	email := h.composer.Compose(r.Context(), req.VenueName, &req.Event)

	result, err := h.mailer.Send(r.Context(), req.VenueEmail, email.Subject, email.PlainText, email.HTML)
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to send inquiry", err)
		return
	}

	status := http.StatusOK
	if result.Status == mail.SendStatusError {
		status = http.StatusBadRequest
	}
	respondJSON(w, status, inquiryResponse{
		Subject:   email.Subject,
		Status:    result.Status,
		MessageID: result.MessageID,
		Message:   result.Message,
	})
}

// GetInquiryStatus handles GET /api/inquiries/status - poll for and interpret
// the venue's reply to a previously sent inquiry.
func (h *APIHandlers) GetInquiryStatus(w http.ResponseWriter, r *http.Request) {
	if h.statusChecker == nil {
		respondError(w, http.StatusServiceUnavailable, "inquiry mailer is not configured", nil)
		return
	}

	q := r.URL.Query()
	venueEmail := q.Get("venue_email")
	eventName := q.Get("event_name")
	if venueEmail == "" || eventName == "" {
		respondError(w, http.StatusBadRequest, "venue_email and event_name are required", nil)
		return
	}

	status, err := h.statusChecker.Check(r.Context(), venueEmail, eventName, q.Get("sent_date"))
	if err != nil {
		respondError(w, http.StatusBadGateway, "failed to check inquiry status", err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// validateEvent rejects inputs the pipeline cannot default its way around.
// Missing text fields are fine (the query builder substitutes placeholders);
// a negative count or an unrecognized privacy value is a caller bug.
func validateEvent(event *types.EventDescription) error {
	if event.Attendees < 0 {
		return fmt.Errorf("attendees must not be negative, got %d", event.Attendees)
	}
	if event.VenueBudget < 0 {
		return fmt.Errorf("venue_budget must not be negative, got %.2f", event.VenueBudget)
	}
	if event.PrivacyPreference != "" && !types.IsValidPrivacyPreference(string(event.PrivacyPreference)) {
		return fmt.Errorf("unrecognized private_preference: %q", event.PrivacyPreference)
	}
	return nil
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, log but don't try to write another response
		// (headers already sent)
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
