package server

import (
	"testing"
	"time"
)

func TestClientLimiter_perHost(t *testing.T) {
	l := newClientLimiter(1, 2)
	now := time.Date(2024, 11, 17, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow("10.0.0.1:1234") || !l.Allow("10.0.0.1:1234") {
		t.Fatal("burst of 2 should be allowed")
	}
	if l.Allow("10.0.0.1:5678") {
		t.Error("a second port on the same host should share the bucket")
	}
	if !l.Allow("10.0.0.2:1234") {
		t.Error("another host should have its own bucket")
	}
	now = now.Add(time.Second)
	if !l.Allow("10.0.0.1:1234") {
		t.Error("one token should refill after a second")
	}
}

func TestClientLimiter_evictsIdleClients(t *testing.T) {
	l := newClientLimiter(1, 2)
	now := time.Date(2024, 11, 17, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("10.0.0.1:1")
	l.Allow("10.0.0.2:1")
	now = now.Add(l.idleTTL / 2)
	l.Allow("10.0.0.2:1")
	now = now.Add(l.idleTTL/2 + time.Second)
	l.Allow("10.0.0.3:1")

	if _, ok := l.limiters["10.0.0.1"]; ok {
		t.Error("idle client should be evicted")
	}
	if _, ok := l.limiters["10.0.0.2"]; !ok {
		t.Error("recently seen client should be kept")
	}
	if len(l.limiters) != 2 {
		t.Errorf("limiters = %d, want 2", len(l.limiters))
	}
}

func TestNewClientLimiter_idleCoversRefill(t *testing.T) {
	tests := []struct {
		name      string
		perSecond float64
		burst     int
		want      time.Duration
	}{
		{"fast refill uses the floor", 5, 10, minIdleTTL},
		{"slow refill waits for a full bucket", 0.5, 1000, 2000 * time.Second},
		{"unlimited", 0, 0, minIdleTTL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := newClientLimiter(tt.perSecond, tt.burst).idleTTL; got != tt.want {
				t.Errorf("idleTTL = %s, want %s", got, tt.want)
			}
		})
	}
}
