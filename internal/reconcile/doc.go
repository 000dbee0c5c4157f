// Package reconcile drives the issue-creation pass: one linear walk over the
// dataset that converges tracker state to exactly one open issue per word
// still missing audio, with pacing, a creation cap, and bounded rate-limit
// backoff.
package reconcile
