package routing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vietddude/noncegap/internal/infra/rpc/provider"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err    error
		expect ErrorAction
	}{
		{errors.New("429 Too Many Requests"), ActionFailover},
		{errors.New("project rate limit exceeded"), ActionFailover},
		{errors.New("quota exceeded"), ActionFailover},
		{errors.New("daily request count exceeded"), ActionFailover},
		{errors.New("403 Forbidden"), ActionFailover},
		{errors.New("Invalid JSON-RPC request -32600"), ActionFatal},
		{errors.New("Method not found -32601"), ActionFatal},
		{errors.New("Parse error -32700"), ActionFatal},
		{errors.New("connection reset by peer"), ActionRetry},
		{errors.New("timeout"), ActionRetry},
		{errors.New("500 Internal Server Error"), ActionRetry},
	}

	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.expect {
			t.Errorf("ClassifyError(%q) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}

type fakeProvider struct {
	name  string
	calls int
	fn    func(call int) (any, error)
}

func (f *fakeProvider) Call(ctx context.Context, method string, params []any) (any, error) {
	f.calls++
	return f.fn(f.calls)
}

func (f *fakeProvider) GetName() string { return f.name }
func (f *fakeProvider) GetHealth() provider.HealthStatus {
	return provider.HealthStatus{Available: true}
}
func (f *fakeProvider) IsAvailable() bool { return true }
func (f *fakeProvider) Close() error      { return nil }

func TestCallWithRetry_RecoversAfterTransientFailure(t *testing.T) {
	p := &fakeProvider{
		name: "flaky",
		fn: func(call int) (any, error) {
			if call < 3 {
				return nil, errors.New("connection reset by peer")
			}
			return "0x1", nil
		},
	}

	cfg := RetryConfig{MaxAttempts: 4, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiple: 1}
	result, err := CallWithRetry(context.Background(), p, "eth_blockNumber", nil, cfg)
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if result != "0x1" {
		t.Errorf("result = %v, want 0x1", result)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestCallWithRetry_FatalReturnsImmediately(t *testing.T) {
	p := &fakeProvider{
		name: "broken",
		fn: func(call int) (any, error) {
			return nil, errors.New("Method not found -32601")
		},
	}

	cfg := RetryConfig{MaxAttempts: 4, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffMultiple: 1}
	_, err := CallWithRetry(context.Background(), p, "txpool_contentFrom", nil, cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on fatal)", p.calls)
	}
}

func TestRouter_SkipsOpenCircuit(t *testing.T) {
	bad := &fakeProvider{name: "bad", fn: func(int) (any, error) { return nil, nil }}
	good := &fakeProvider{name: "good", fn: func(int) (any, error) { return nil, nil }}

	r := NewRouter(nil)
	r.AddProvider(bad)
	r.AddProvider(good)

	for i := 0; i < circuitThreshold; i++ {
		r.RecordFailure("bad", errors.New("timeout"))
	}

	p, err := r.GetProvider()
	if err != nil {
		t.Fatalf("GetProvider failed: %v", err)
	}
	if p.GetName() != "good" {
		t.Errorf("expected circuit-open provider skipped, got %s", p.GetName())
	}

	// Success closes the circuit again.
	r.RecordSuccess("bad", 10*time.Millisecond)
	p, err = r.GetProvider()
	if err != nil {
		t.Fatalf("GetProvider failed: %v", err)
	}
	if p.GetName() != "bad" {
		t.Errorf("expected recovered provider first in rotation, got %s", p.GetName())
	}
}

func TestRouter_RotateProvider(t *testing.T) {
	a := &fakeProvider{name: "a", fn: func(int) (any, error) { return nil, nil }}
	b := &fakeProvider{name: "b", fn: func(int) (any, error) { return nil, nil }}

	r := NewRouter(nil)
	r.AddProvider(a)
	r.AddProvider(b)

	p, err := r.RotateProvider()
	if err != nil {
		t.Fatalf("RotateProvider failed: %v", err)
	}
	if p.GetName() != "b" {
		t.Errorf("expected rotation to b, got %s", p.GetName())
	}
}
