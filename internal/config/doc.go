// Package config loads, normalizes, and validates the TOML configuration that
// drives every ekwe command. All values are resolved once at startup and the
// resulting Config is threaded into components immutably; nothing reads
// configuration ad hoc mid-run.
package config
