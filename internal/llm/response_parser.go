package llm

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
)

// ShortlistResponse is the structured result of the shortlist curation call.
// SelectedRestaurants holds venue display names in the model's preference order.
type ShortlistResponse struct {
	SelectedRestaurants []string `json:"selected_restaurants"`
	Reasoning           string   `json:"reasoning"`
}

// EmailContentResponse is the structured result of an AI-drafted inquiry email.
type EmailContentResponse struct {
	PlainText string `json:"plain_text"`
	HTML      string `json:"html"`
}

// Reply status values extracted from venue responses.
const (
	ReplyStatusConfirmed = "confirmed"
	ReplyStatusPending   = "pending"
	ReplyStatusDeclined  = "declined"
	ReplyStatusUnknown   = "unknown"
)

// ReplyStatusResponse is the structured interpretation of a venue's email reply.
type ReplyStatusResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	NextSteps string `json:"next_steps"`
}

// extractJSON extracts the first valid JSON object from a string that may contain
// extra text. This handles cases where LLMs add explanations before/after the
// JSON despite instructions.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	start := strings.Index(text, "{")
	if start == -1 {
		return text // no JSON found, return as-is and let the parser fail
	}

	// Find the matching closing brace, ignoring braces inside strings.
	braceCount := 0
	inString := false
	escape := false

	for i := start; i < len(text); i++ {
		char := text[i]

		if escape {
			escape = false
			continue
		}
		if char == '\\' {
			escape = true
			continue
		}
		if char == '"' {
			inString = !inString
			continue
		}
		if !inString {
			switch char {
			case '{':
				braceCount++
			case '}':
				braceCount--
				if braceCount == 0 {
					return text[start : i+1]
				}
			}
		}
	}

	return text // no complete JSON found, return as-is
}

// ParseShortlistResponse parses the Stage 1 curation JSON. Blank names are
// dropped with a log line rather than failing the batch; the caller handles
// name resolution against the live candidate pool, so no catalog validation
// happens here.
func ParseShortlistResponse(jsonStr string) (*ShortlistResponse, error) {
	cleanJSON := extractJSON(jsonStr)

	var response ShortlistResponse
	if err := json.Unmarshal([]byte(cleanJSON), &response); err != nil {
		return nil, fmt.Errorf("failed to parse shortlist JSON: %w", err)
	}

	if len(response.SelectedRestaurants) == 0 {
		return nil, fmt.Errorf("shortlist response contains no venue names")
	}

	names := make([]string, 0, len(response.SelectedRestaurants))
	for _, name := range response.SelectedRestaurants {
		name = strings.TrimSpace(name)
		if name == "" {
			log.Printf("response_parser: skipping blank venue name in shortlist")
			continue
		}
		names = append(names, name)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("shortlist response contains only blank venue names")
	}
	response.SelectedRestaurants = names
	response.Reasoning = strings.TrimSpace(response.Reasoning)

	return &response, nil
}

// ParseEmailContentResponse parses AI-drafted inquiry email JSON. Both the
// plain-text and HTML parts must be present; the composer falls back to its
// deterministic template on error.
func ParseEmailContentResponse(jsonStr string) (*EmailContentResponse, error) {
	cleanJSON := extractJSON(jsonStr)

	var response EmailContentResponse
	if err := json.Unmarshal([]byte(cleanJSON), &response); err != nil {
		return nil, fmt.Errorf("failed to parse email content JSON: %w", err)
	}

	if strings.TrimSpace(response.PlainText) == "" {
		return nil, fmt.Errorf("email content response has empty plain_text")
	}
	if strings.TrimSpace(response.HTML) == "" {
		return nil, fmt.Errorf("email content response has empty html")
	}

	return &response, nil
}

// ParseReplyStatusResponse parses reply status JSON and validates the status
// value. An unrecognized status is an error; the caller degrades to
// ReplyStatusUnknown with the raw snippet.
func ParseReplyStatusResponse(jsonStr string) (*ReplyStatusResponse, error) {
	cleanJSON := extractJSON(jsonStr)

	var response ReplyStatusResponse
	if err := json.Unmarshal([]byte(cleanJSON), &response); err != nil {
		return nil, fmt.Errorf("failed to parse reply status JSON: %w", err)
	}

	response.Status = strings.ToLower(strings.TrimSpace(response.Status))
	switch response.Status {
	case ReplyStatusConfirmed, ReplyStatusPending, ReplyStatusDeclined:
	default:
		return nil, fmt.Errorf("invalid reply status: %q (must be one of: confirmed, pending, declined)", response.Status)
	}

	return &response, nil
}
