package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errOutage = &StatusError{Service: "test", StatusCode: 503}

func failN(cb *CircuitBreaker, n int, err error) {
	for i := 0; i < n; i++ {
		_, _ = Call(context.Background(), cb, func(_ context.Context) (int, error) {
			return 0, err
		})
	}
}

func TestCircuitBreaker_ClosedState_PassesThrough(t *testing.T) {
	cb := NewCircuitBreaker("test", DefaultCircuitBreakerConfig())

	var calls int
	v, err := Call(context.Background(), cb, func(_ context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != "ok" || calls != 1 {
		t.Errorf("expected one call returning ok, got %d calls and %q", calls, v)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed state, got %s", cb.State())
	}
}

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 3,
		ResetTimeout:     time.Minute,
		ShouldTrip:       CountsAsOutage,
	})

	failN(cb, 3, errOutage)
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	_, err := Call(context.Background(), cb, func(_ context.Context) (int, error) {
		t.Error("should not be called when circuit is open")
		return 0, nil
	})
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("expected ErrCircuitOpen, got %v", err)
	}
	if Classify(err) != FailureCircuit {
		t.Errorf("expected circuit_open kind, got %s", Classify(err))
	}
}

func TestCircuitBreaker_IgnoresNonOutageErrors(t *testing.T) {
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
		ShouldTrip:       CountsAsOutage,
	})

	failN(cb, 5, &StatusError{Service: "test", StatusCode: 404})
	failN(cb, 5, context.Canceled)
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed state, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenProbe(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 1,
		ResetTimeout:     10 * time.Second,
	})
	cb.nowFunc = func() time.Time { return now }

	failN(cb, 1, errOutage)
	if cb.State() != CircuitOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	now = now.Add(11 * time.Second)
	if cb.State() != CircuitHalfOpen {
		t.Fatalf("expected half-open state, got %s", cb.State())
	}

	_, err := Call(context.Background(), cb, func(_ context.Context) (int, error) { return 1, nil })
	if err != nil {
		t.Fatalf("probe should pass: %v", err)
	}
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after successful probe, got %s", cb.State())
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Second})
	cb.nowFunc = func() time.Time { return now }

	failN(cb, 1, errOutage)
	now = now.Add(2 * time.Second)
	failN(cb, 1, errOutage)
	if cb.State() != CircuitOpen {
		t.Errorf("expected reopened circuit, got %s", cb.State())
	}

	cb.Reset()
	if cb.State() != CircuitClosed {
		t.Errorf("expected closed after reset, got %s", cb.State())
	}
}

func TestCall_NilBreaker(t *testing.T) {
	v, err := Call(context.Background(), nil, func(_ context.Context) (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("expected passthrough, got %d, %v", v, err)
	}
}

func TestServiceBreakers(t *testing.T) {
	sb := NewServiceBreakers(DefaultCircuitBreakerConfig())
	a := sb.Get("onemap")
	if sb.Get("onemap") != a {
		t.Error("expected the same breaker for the same service")
	}
	if sb.Get("singstat") == a {
		t.Error("expected distinct breakers per service")
	}
	states := sb.States()
	if states["onemap"] != "closed" || len(states) != 2 {
		t.Errorf("unexpected states: %v", states)
	}
}

func TestFromCircuitConfig(t *testing.T) {
	cfg := FromCircuitConfig(0, 0)
	if cfg.FailureThreshold != 5 || cfg.ResetTimeout != 30*time.Second {
		t.Errorf("expected defaults, got %+v", cfg)
	}
	cfg = FromCircuitConfig(2, 60)
	if cfg.FailureThreshold != 2 || cfg.ResetTimeout != time.Minute {
		t.Errorf("expected overrides, got %+v", cfg)
	}
}
