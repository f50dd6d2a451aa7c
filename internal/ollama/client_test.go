package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("expected Content-Type application/json, got %q", r.Header.Get("Content-Type"))
		}

		var req request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req.Model != "qwen3:8b" {
			t.Errorf("expected model qwen3:8b, got %q", req.Model)
		}
		if req.Prompt != "explain this" {
			t.Errorf("expected prompt, got %q", req.Prompt)
		}
		if req.Stream {
			t.Error("expected streaming disabled")
		}
		if req.Options.Temperature != 0.3 {
			t.Errorf("expected temperature 0.3, got %v", req.Options.Temperature)
		}

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"model":    "qwen3:8b",
			"response": "  it adds two numbers  ",
			"done":     true,
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3:8b", 0)

	result, err := c.Generate(context.Background(), "explain this")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != "  it adds two numbers  " {
		t.Errorf("expected raw response text, got %q", result)
	}
}

func TestGenerate_MissingResponseField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{"done": true})
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3:8b", 0)

	result, err := c.Generate(context.Background(), "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != missingResponse {
		t.Errorf("expected %q, got %q", missingResponse, result)
	}
}

func TestGenerate_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{
			"error": "model 'qwen3:8b' not found, try pulling it first",
		})
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3:8b", 0)

	_, err := c.Generate(context.Background(), "hi")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestGenerate_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html>proxy login</html>"))
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3:8b", 0)

	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestGenerate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	c := NewClient(server.URL, "qwen3:8b", 20*time.Millisecond)

	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("", "qwen3:8b", 0)
	if c.url != DefaultURL {
		t.Errorf("expected default url, got %q", c.url)
	}
	if c.client.Timeout != DefaultTimeout {
		t.Errorf("expected default timeout, got %v", c.client.Timeout)
	}
}
