package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"augenblick-backend/internal/llm"
	"augenblick-backend/internal/llm/gemini"
)

func TestGenerateSendsSystemInstructionAndConfig(t *testing.T) {
	var got map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if key := r.Header.Get("x-goog-api-key"); key != "test-key" {
			t.Errorf("expected api key header, got %q", key)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "rewritten text"}}}},
			},
		})
	}))
	defer server.Close()

	client, err := gemini.NewClientWithBaseURL("test-key", "gemini-2.0-flash", server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL: %v", err)
	}

	out, err := client.Generate(context.Background(), "You are an editor.", "Rewrite this.", llm.GenerationConfig{
		Temperature:     1,
		TopP:            0.95,
		TopK:            40,
		MaxOutputTokens: 8192,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "rewritten text" {
		t.Fatalf("unexpected output %q", out)
	}

	if _, ok := got["systemInstruction"]; !ok {
		t.Fatalf("expected systemInstruction in request")
	}
	cfg, ok := got["generationConfig"].(map[string]any)
	if !ok {
		t.Fatalf("expected generationConfig in request")
	}
	if cfg["topK"] != float64(40) || cfg["maxOutputTokens"] != float64(8192) {
		t.Fatalf("unexpected generationConfig: %v", cfg)
	}
}

func TestGenerateSurfacesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"},
		})
	}))
	defer server.Close()

	client, err := gemini.NewClientWithBaseURL("bad-key", "gemini-2.0-flash", server.URL)
	if err != nil {
		t.Fatalf("NewClientWithBaseURL: %v", err)
	}

	_, err = client.Generate(context.Background(), "", "hello", llm.GenerationConfig{})
	if err == nil || !strings.Contains(err.Error(), "API key not valid") {
		t.Fatalf("expected API error surfaced, got %v", err)
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := gemini.NewClient("", "gemini-2.0-flash"); err == nil {
		t.Fatalf("expected error for missing api key")
	}
	if _, err := gemini.NewClient("key", ""); err == nil {
		t.Fatalf("expected error for missing model")
	}
}
