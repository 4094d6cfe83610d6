// Package models holds the rate limiting result and key types.
package models

import (
	"strings"
	"time"
)

// EndpointClass groups routes that share one limit.
type EndpointClass string

const ClassAuth EndpointClass = "auth"

// RateLimitResult is the outcome of one Allow call.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // seconds, set when denied
}

// SanitizeKeySegment replaces ':' so caller-supplied values cannot forge
// adjacent key segments.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// IPKey builds the bucket key for a client IP within an endpoint class.
func IPKey(class EndpointClass, ip string) string {
	return "rl:" + SanitizeKeySegment(string(class)) + ":ip:" + SanitizeKeySegment(ip)
}
