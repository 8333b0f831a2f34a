package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ethics-review-api/config"
	"ethics-review-api/models"
)

func TestNewAIAssistProviderSelection(t *testing.T) {
	if _, ok := NewAIAssist(config.AIConfig{Provider: "", Timeout: time.Second}).(DisabledAIAssist); !ok {
		t.Error("empty provider should yield the disabled adapter")
	}
	if _, ok := NewAIAssist(config.AIConfig{Provider: "skynet", Timeout: time.Second}).(DisabledAIAssist); !ok {
		t.Error("unknown provider should yield the disabled adapter")
	}
	if _, ok := NewAIAssist(config.AIConfig{Provider: "openai", Timeout: time.Second}).(*openAIAssist); !ok {
		t.Error("openai provider not selected")
	}
	if _, ok := NewAIAssist(config.AIConfig{Provider: "ollama", Timeout: time.Second}).(*ollamaAssist); !ok {
		t.Error("ollama provider not selected")
	}
	if _, ok := NewAIAssist(config.AIConfig{Provider: "http", Timeout: time.Second}).(*httpAssist); !ok {
		t.Error("http provider not selected")
	}
}

func TestDisabledAIAssist(t *testing.T) {
	var a AIAssist = DisabledAIAssist{}
	if _, err := a.Summarize(context.Background(), "x"); !errors.Is(err, ErrAIUnavailable) {
		t.Errorf("Summarize: got %v, want ErrAIUnavailable", err)
	}
	if _, err := a.Prefill(context.Background(), "x", nil); !errors.Is(err, ErrAIUnavailable) {
		t.Errorf("Prefill: got %v, want ErrAIUnavailable", err)
	}
}

func TestOpenAIAssist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		var payload struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": `{"1": "an answer", "2": ""}`}},
			},
		})
	}))
	defer server.Close()

	assist := NewAIAssist(config.AIConfig{
		Provider: "openai",
		BaseURL:  server.URL,
		APIKey:   "sk-test",
		Model:    "gpt-4o-mini",
		Timeout:  5 * time.Second,
	})

	summary, err := assist.Summarize(context.Background(), "protocol")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary == "" {
		t.Fatal("empty summary")
	}

	answers, err := assist.Prefill(context.Background(), "protocol", []models.Question{
		{QuestionID: 1, QuestionText: "Q1"},
		{QuestionID: 2, QuestionText: "Q2"},
	})
	if err != nil {
		t.Fatalf("Prefill: %v", err)
	}
	if len(answers) != 1 || answers[1] != "an answer" {
		t.Fatalf("Prefill answers: %v (empty answers must be dropped)", answers)
	}
}

func TestOpenAIAssistErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	assist := NewAIAssist(config.AIConfig{Provider: "openai", BaseURL: server.URL, Timeout: 5 * time.Second})
	if _, err := assist.Summarize(context.Background(), "protocol"); err == nil {
		t.Fatal("non-200 status must surface as an error")
	}
}

func TestOllamaAssist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload struct {
			Stream bool `json:"stream"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if payload.Stream {
			t.Error("streaming must be disabled")
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "a local summary"})
	}))
	defer server.Close()

	assist := NewAIAssist(config.AIConfig{Provider: "ollama", BaseURL: server.URL, Timeout: 5 * time.Second})
	summary, err := assist.Summarize(context.Background(), "protocol")
	if err != nil {
		t.Fatalf("Summarize: %v", err)
	}
	if summary != "a local summary" {
		t.Fatalf("summary = %q", summary)
	}
}

func TestHTTPAssist(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/summarize":
			json.NewEncoder(w).Encode(map[string]string{"summary": "gateway summary"})
		case "/prefill":
			json.NewEncoder(w).Encode(map[string]interface{}{
				"answers": map[string]string{"3": "gateway answer", "nope": "dropped", "4": "  "},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	assist := NewAIAssist(config.AIConfig{Provider: "http", BaseURL: server.URL, Timeout: 5 * time.Second})

	summary, err := assist.Summarize(context.Background(), "protocol")
	if err != nil || summary != "gateway summary" {
		t.Fatalf("Summarize = %q, %v", summary, err)
	}

	answers, err := assist.Prefill(context.Background(), "protocol", []models.Question{{QuestionID: 3}})
	if err != nil {
		t.Fatalf("Prefill: %v", err)
	}
	if len(answers) != 1 || answers[3] != "gateway answer" {
		t.Fatalf("Prefill answers: %v", answers)
	}
}

func TestParsePrefillAnswers(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want map[int]string
	}{
		{"plain json", `{"1": "a", "2": "b"}`, map[int]string{1: "a", 2: "b"}},
		{"fenced json", "Here you go:\n```json\n{\"5\": \"answer\"}\n```\nHope that helps!", map[int]string{5: "answer"}},
		{"non-numeric keys dropped", `{"one": "a", "2": "b"}`, map[int]string{2: "b"}},
		{"empty answers dropped", `{"1": "", "2": "  ", "3": "kept"}`, map[int]string{3: "kept"}},
		{"no json at all", "I cannot answer that.", map[int]string{}},
		{"broken json", `{"1": "a",`, map[int]string{}},
		{"empty input", "", map[int]string{}},
	}
	for _, tc := range cases {
		got := parsePrefillAnswers(tc.raw)
		if len(got) != len(tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
			continue
		}
		for id, answer := range tc.want {
			if got[id] != answer {
				t.Errorf("%s: got[%d] = %q, want %q", tc.name, id, got[id], answer)
			}
		}
	}
}
