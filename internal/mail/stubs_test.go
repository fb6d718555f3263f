package mail

import "context"

// stubGenerator is a canned llm.TextGenerator.
type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) GetModel() string { return "stub-model" }

// stubJSONGenerator additionally satisfies llm.JSONGenerator.
type stubJSONGenerator struct {
	stubGenerator
	jsonResponse string
	jsonErr      error
	jsonPrompts  []string
}

func (s *stubJSONGenerator) CompleteJSON(_ context.Context, prompt string) (string, error) {
	s.jsonPrompts = append(s.jsonPrompts, prompt)
	if s.jsonErr != nil {
		return "", s.jsonErr
	}
	return s.jsonResponse, nil
}

// stubMailer is a canned Mailer.
type stubMailer struct {
	sendResult   *SendResult
	sendErr      error
	searchResult *SearchResult
	searchErr    error
	sentTo       []string
	queries      []string
}

func (s *stubMailer) Send(_ context.Context, to, _, _, _ string) (*SendResult, error) {
	s.sentTo = append(s.sentTo, to)
	return s.sendResult, s.sendErr
}

func (s *stubMailer) SearchLatest(_ context.Context, query string) (*SearchResult, error) {
	s.queries = append(s.queries, query)
	return s.searchResult, s.searchErr
}
