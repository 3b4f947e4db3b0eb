package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Parallel()

	if c := NewClient(Config{APIKey: "  "}); c != nil {
		t.Fatal("expected nil client without api key")
	}
}

func TestVerifyModel(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth, gotTitle string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotTitle = r.Header.Get("X-Title")
		if strings.HasSuffix(r.URL.Path, "/missing") {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"message":"model not found"}}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"openai/gpt-4o-mini","object":"model","created":0,"owned_by":"openai"}`))
	}))
	t.Cleanup(server.Close)

	cfg := Config{
		BaseURL:  server.URL,
		APIKey:   "secret",
		Model:    "openai/gpt-4o-mini",
		SiteName: "crew-assistants",
	}
	if err := VerifyModel(context.Background(), cfg); err != nil {
		t.Fatalf("VerifyModel() error = %v", err)
	}
	if gotPath != "/models/openai/gpt-4o-mini" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
	if gotTitle != "crew-assistants" {
		t.Fatalf("unexpected title header: %s", gotTitle)
	}

	cfg.Model = "missing"
	if err := VerifyModel(context.Background(), cfg); err == nil {
		t.Fatal("expected error for unknown model")
	}
}
