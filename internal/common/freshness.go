// Package common provides shared utilities for Workpal
package common

import "time"

// FreshnessQuote is how long a stored quote stays usable before the
// monitor re-fetches it; it matches the evaluation cycle.
const FreshnessQuote = 5 * time.Minute

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
