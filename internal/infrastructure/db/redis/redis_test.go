package redis

import (
	"testing"
	"time"
)

func TestNewRateLimiter_Defaults(t *testing.T) {
	l := NewRateLimiter(nil, 0, 0)
	if l.Limit() != 1 {
		t.Errorf("expected limit floor of 1, got %d", l.Limit())
	}
	if l.window != time.Minute {
		t.Errorf("expected default window of 1m, got %v", l.window)
	}
}

func TestNewStatsCache_DefaultTTL(t *testing.T) {
	if c := NewStatsCache(nil, 0); c.ttl != defaultStatsTTL {
		t.Fatalf("expected %v, got %v", defaultStatsTTL, c.ttl)
	}
	if c := NewStatsCache(nil, time.Minute); c.ttl != time.Minute {
		t.Fatalf("expected 1m, got %v", c.ttl)
	}
}
