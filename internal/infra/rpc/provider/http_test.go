package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHTTPProvider_Call(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("failed to decode request: %v", err)
		}
		if req["method"] != "eth_getTransactionCount" {
			t.Errorf("unexpected method: %v", req["method"])
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"result":  "0x2a",
		})
	}))
	defer server.Close()

	p := NewHTTPProvider("test", server.URL, 5*time.Second)
	defer p.Close()

	result, err := p.Call(context.Background(), "eth_getTransactionCount", []any{"0xabc", "latest"})
	if err != nil {
		t.Fatalf("Call failed: %v", err)
	}
	if result != "0x2a" {
		t.Errorf("result = %v, want 0x2a", result)
	}

	health := p.GetHealth()
	if !health.Available {
		t.Error("expected provider to be available after success")
	}
}

func TestHTTPProvider_RPCError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0",
			"id":      1,
			"error":   map[string]any{"code": -32601, "message": "the method txpool_contentFrom does not exist"},
		})
	}))
	defer server.Close()

	p := NewHTTPProvider("test", server.URL, 5*time.Second)
	defer p.Close()

	_, err := p.Call(context.Background(), "txpool_contentFrom", []any{"0xabc"})
	if err == nil {
		t.Fatal("expected error for rpc error response")
	}
	if !strings.Contains(err.Error(), "-32601") {
		t.Errorf("expected error to carry rpc code, got %v", err)
	}
}

func TestHTTPProvider_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "10")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := NewHTTPProvider("test", server.URL, 5*time.Second)
	defer p.Close()

	_, err := p.Call(context.Background(), "eth_blockNumber", []any{})
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !strings.Contains(err.Error(), "429") {
		t.Errorf("expected 429 in error, got %v", err)
	}
}
