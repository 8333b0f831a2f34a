package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"ethics-review-api/config"
	"ethics-review-api/models"
)

// AIAssist is the narrow contract the lifecycle controller needs from a
// language-model backend: summarize a protocol, or draft answers for a list
// of questions. Implementations must never hold a database transaction.
type AIAssist interface {
	Summarize(ctx context.Context, protocolText string) (string, error)
	Prefill(ctx context.Context, protocolText string, questions []models.Question) (map[int]string, error)
}

// NewAIAssist selects a backend from the configured provider. An empty or
// unknown provider yields the disabled adapter.
func NewAIAssist(cfg config.AIConfig) AIAssist {
	client := &http.Client{Timeout: cfg.Timeout}
	switch cfg.Provider {
	case "openai":
		base := cfg.BaseURL
		if base == "" {
			base = "https://api.openai.com/v1"
		}
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return &openAIAssist{client: client, baseURL: base, apiKey: cfg.APIKey, model: model}
	case "ollama":
		base := cfg.BaseURL
		if base == "" {
			base = "http://localhost:11434"
		}
		model := cfg.Model
		if model == "" {
			model = "llama3"
		}
		return &ollamaAssist{client: client, baseURL: base, model: model}
	case "http":
		return &httpAssist{client: client, baseURL: cfg.BaseURL, apiKey: cfg.APIKey}
	}
	return DisabledAIAssist{}
}

// DisabledAIAssist is the no-provider adapter. Callers treat its error as a
// soft failure.
type DisabledAIAssist struct{}

func (DisabledAIAssist) Summarize(context.Context, string) (string, error) {
	return "", ErrAIUnavailable
}

func (DisabledAIAssist) Prefill(context.Context, string, []models.Question) (map[int]string, error) {
	return nil, ErrAIUnavailable
}

const summarizePrompt = "Summarize the following research protocol for an ethics review coordinator. Keep it factual and under 300 words.\n\n"

// prefillPrompt asks for a strict JSON object keyed by question id so the
// answer can be parsed without provider-specific structure.
func prefillPrompt(protocolText string, questions []models.Question) string {
	var b strings.Builder
	b.WriteString("Based on the research protocol below, answer the numbered questions. ")
	b.WriteString("Respond with a single JSON object mapping each question id (as a string) to a free-text answer. ")
	b.WriteString("Omit questions the protocol does not answer.\n\nQuestions:\n")
	for _, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", q.QuestionID, q.QuestionText)
	}
	b.WriteString("\nProtocol:\n")
	b.WriteString(protocolText)
	return b.String()
}

// parsePrefillAnswers extracts {question_id: answer} from model output.
// Unparseable output produces an empty map, not an error: the caller treats
// it as "no answers produced".
func parsePrefillAnswers(raw string) map[int]string {
	raw = strings.TrimSpace(raw)
	// Models often wrap JSON in fences or prose; take the outermost braces.
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return map[int]string{}
	}

	var decoded map[string]string
	if err := json.Unmarshal([]byte(raw[start:end+1]), &decoded); err != nil {
		return map[int]string{}
	}

	answers := make(map[int]string, len(decoded))
	for key, value := range decoded {
		id, err := strconv.Atoi(strings.TrimSpace(key))
		if err != nil || strings.TrimSpace(value) == "" {
			continue
		}
		answers[id] = value
	}
	return answers
}

// openAIAssist talks to an OpenAI-compatible chat completions endpoint.
type openAIAssist struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
}

func (a *openAIAssist) complete(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model": a.model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai provider returned status %d", resp.StatusCode)
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if len(decoded.Choices) == 0 {
		return "", nil
	}
	return decoded.Choices[0].Message.Content, nil
}

func (a *openAIAssist) Summarize(ctx context.Context, protocolText string) (string, error) {
	return a.complete(ctx, summarizePrompt+protocolText)
}

func (a *openAIAssist) Prefill(ctx context.Context, protocolText string, questions []models.Question) (map[int]string, error) {
	raw, err := a.complete(ctx, prefillPrompt(protocolText, questions))
	if err != nil {
		return nil, err
	}
	return parsePrefillAnswers(raw), nil
}

// ollamaAssist talks to a local Ollama server.
type ollamaAssist struct {
	client  *http.Client
	baseURL string
	model   string
}

func (a *ollamaAssist) generate(ctx context.Context, prompt string) (string, error) {
	payload := map[string]interface{}{
		"model":  a.model,
		"prompt": prompt,
		"stream": false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai provider returned status %d", resp.StatusCode)
	}

	var decoded struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	return decoded.Response, nil
}

func (a *ollamaAssist) Summarize(ctx context.Context, protocolText string) (string, error) {
	return a.generate(ctx, summarizePrompt+protocolText)
}

func (a *ollamaAssist) Prefill(ctx context.Context, protocolText string, questions []models.Question) (map[int]string, error) {
	raw, err := a.generate(ctx, prefillPrompt(protocolText, questions))
	if err != nil {
		return nil, err
	}
	return parsePrefillAnswers(raw), nil
}

// httpAssist posts to a generic JSON service exposing /summarize and
// /prefill. Useful for in-house gateways that hide the actual provider.
type httpAssist struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

func (a *httpAssist) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ai provider returned status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (a *httpAssist) Summarize(ctx context.Context, protocolText string) (string, error) {
	var decoded struct {
		Summary string `json:"summary"`
	}
	err := a.post(ctx, "/summarize", map[string]string{"protocol_text": protocolText}, &decoded)
	if err != nil {
		return "", err
	}
	return decoded.Summary, nil
}

func (a *httpAssist) Prefill(ctx context.Context, protocolText string, questions []models.Question) (map[int]string, error) {
	type questionPayload struct {
		QuestionID   int    `json:"question_id"`
		QuestionText string `json:"question_text"`
	}
	qs := make([]questionPayload, 0, len(questions))
	for _, q := range questions {
		qs = append(qs, questionPayload{QuestionID: q.QuestionID, QuestionText: q.QuestionText})
	}

	var decoded struct {
		Answers map[string]string `json:"answers"`
	}
	err := a.post(ctx, "/prefill", map[string]interface{}{
		"protocol_text": protocolText,
		"questions":     qs,
	}, &decoded)
	if err != nil {
		return nil, err
	}

	answers := make(map[int]string, len(decoded.Answers))
	for key, value := range decoded.Answers {
		id, convErr := strconv.Atoi(strings.TrimSpace(key))
		if convErr != nil || strings.TrimSpace(value) == "" {
			continue
		}
		answers[id] = value
	}
	return answers, nil
}

// Compile-time interface checks.
var (
	_ AIAssist = (*openAIAssist)(nil)
	_ AIAssist = (*ollamaAssist)(nil)
	_ AIAssist = (*httpAssist)(nil)
	_ AIAssist = DisabledAIAssist{}
)
