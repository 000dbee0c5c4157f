// Package tracker is the GitHub issues client used by the reconcile and
// harvest passes. Responses are validated at the boundary into small typed
// records, and throttling is surfaced as ErrRateLimited so callers can back
// off instead of treating it as a hard failure.
package tracker
