// Package logging builds the slog loggers used across ekwe. The console
// format renders compact "TIMESTAMP LEVEL component: message k=v" lines for
// interactive runs; the json format is for log shipping. Components receive a
// logger tagged with a "component" attribute at construction.
package logging
