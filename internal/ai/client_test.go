package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ollamachat/chathub/internal/log"
)

func TestGenerate(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Model != "test-model" || req.Prompt != "what is 2+2" || req.Stream {
			t.Errorf("unexpected request: %+v", req)
		}

		json.NewEncoder(w).Encode(generateResponse{Response: "4", Done: true})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "test-model", time.Second, log.Nop())

	text, err := c.Generate(context.Background(), "what is 2+2")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "4" {
		t.Fatalf("unexpected completion: %q", text)
	}
}

func TestGenerateErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "test-model", time.Second, log.Nop())

	_, err := c.Generate(context.Background(), "hi")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestGenerateTimeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "test-model", time.Minute, log.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Generate(ctx, "hi")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestGenerateConnectionRefused(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", "test-model", time.Second, log.Nop())

	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected transport error")
	}
}

func TestModels(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(tagsResponse{Models: []ModelInfo{{Name: "llama3.2:latest"}}})
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "llama3.2", time.Second, log.Nop())

	models, err := c.Models(context.Background())
	if err != nil {
		t.Fatalf("models: %v", err)
	}
	if len(models) != 1 || models[0].Name != "llama3.2:latest" {
		t.Fatalf("unexpected models: %+v", models)
	}
}

func TestEnsureModelAlreadyAvailable(t *testing.T) {
	var pulls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			json.NewEncoder(w).Encode(tagsResponse{Models: []ModelInfo{{Name: "llama3.2:latest"}}})
		case "/api/pull":
			pulls.Add(1)
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "llama3.2", time.Second, log.Nop())

	if err := c.EnsureModel(context.Background(), 3); err != nil {
		t.Fatalf("ensure model: %v", err)
	}
	if pulls.Load() != 0 {
		t.Fatalf("expected no pull, got %d", pulls.Load())
	}
}

func TestEnsureModelPullsMissingModel(t *testing.T) {
	var pulls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			json.NewEncoder(w).Encode(tagsResponse{})
		case "/api/pull":
			pulls.Add(1)
			w.Write([]byte(`{"status":"success"}`))
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "llama3.2", time.Second, log.Nop())

	if err := c.EnsureModel(context.Background(), 3); err != nil {
		t.Fatalf("ensure model: %v", err)
	}
	if pulls.Load() != 1 {
		t.Fatalf("expected one pull, got %d", pulls.Load())
	}
}

func TestEnsureModelRetriesPull(t *testing.T) {
	var pulls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			json.NewEncoder(w).Encode(tagsResponse{})
		case "/api/pull":
			if pulls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"status":"success"}`))
		}
	}))
	defer ts.Close()

	c := NewClient(ts.URL, "llama3.2", time.Second, log.Nop())

	if err := c.EnsureModel(context.Background(), 3); err != nil {
		t.Fatalf("ensure model: %v", err)
	}
	if pulls.Load() != 3 {
		t.Fatalf("expected three pull attempts, got %d", pulls.Load())
	}
}

func TestWaitReady(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(tagsResponse{})
	}))
	defer ts.Close()

	up := NewClient(ts.URL, "m", time.Second, log.Nop())
	if !up.WaitReady(context.Background(), 2, 10*time.Millisecond) {
		t.Fatal("expected backend to be ready")
	}

	down := NewClient("http://127.0.0.1:1", "m", time.Second, log.Nop())
	if down.WaitReady(context.Background(), 2, 10*time.Millisecond) {
		t.Fatal("expected backend to be down")
	}
}
