// Package services defines shared utilities consumed by the reconcile and
// harvest passes.
//
// Key responsibilities:
//   - Context helpers that stamp the current word, issue number, and run
//     correlation identifier for logging.
//   - Structured error markers plus the Wrap helper that classify failures
//     into the taxonomy the passes act on (fatal configuration errors versus
//     recoverable per-entry failures).
package services
