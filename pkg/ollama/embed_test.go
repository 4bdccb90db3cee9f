package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/WessleyAI/wessley-fitment/pkg/fn"
)

var fastRetry = fn.RetryOpts{MaxAttempts: 3, InitialWait: time.Millisecond, MaxWait: time.Millisecond}

func TestEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req ollamaEmbedReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.Model != "nomic-embed-text" || req.Prompt != "2020 Honda CBR600" {
			t.Errorf("request = %+v", req)
		}
		json.NewEncoder(w).Encode(ollamaEmbedResp{Embedding: []float64{0.25, -0.5}})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL+"/", "")
	vec, err := c.Embed(context.Background(), "2020 Honda CBR600")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 2 || vec[0] != 0.25 || vec[1] != -0.5 {
		t.Errorf("vec = %v", vec)
	}
	if c.Model() != DefaultModel {
		t.Errorf("Model() = %q", c.Model())
	}
}

func TestEmbed_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(ollamaEmbedResp{Embedding: []float64{1}})
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m").WithRetry(fastRetry)
	if _, err := c.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestEmbed_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "missing-model").WithRetry(fastRetry)
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestEmbed_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	c := NewEmbedClient(srv.URL, "m").WithRetry(fn.RetryOpts{MaxAttempts: 1})
	if _, err := c.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected decode error")
	}
}
