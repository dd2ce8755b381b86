package server

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiter applies per-connection sliding-window rate limiting to
// inbound websocket messages. Per-connection so one abusive client cannot
// starve the rest.
type RateLimiter struct {
	maxRequests int
	window      time.Duration
	requests    map[string][]time.Time // connectionID -> recent message times
	mu          sync.Mutex
}

func NewRateLimiter(maxRequests int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		window:      window,
		requests:    make(map[string][]time.Time),
	}
}

// Allow reports whether a connection may send another message. Old
// timestamps are dropped as a side effect so memory stays bounded.
func (r *RateLimiter) Allow(connectionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-r.window)

	valid := make([]time.Time, 0, len(r.requests[connectionID]))
	for _, ts := range r.requests[connectionID] {
		if ts.After(cutoff) {
			valid = append(valid, ts)
		}
	}

	if len(valid) >= r.maxRequests {
		r.requests[connectionID] = valid
		return false
	}
	r.requests[connectionID] = append(valid, now)
	return true
}

// RemoveConnection drops rate data when a websocket disconnects.
func (r *RateLimiter) RemoveConnection(connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, connectionID)
}

// ValidateEnvelopeType rejects unknown envelope types before routing.
func ValidateEnvelopeType(msgType string) error {
	switch msgType {
	case "register", "change", "event", "startevent", "resume", "ping", "pong":
		return nil
	}
	return fmt.Errorf("INVALID_MESSAGE_TYPE: unknown envelope type '%s'", msgType)
}

// ValidateName checks player, team, and lobby display names.
func ValidateName(name string) error {
	if len(name) == 0 {
		return fmt.Errorf("NAME_INVALID: name cannot be empty")
	}
	if len(name) > 32 {
		return fmt.Errorf("NAME_INVALID: name too long (max 32 characters)")
	}
	return nil
}
