// Package dedup converges duplicate tracking issues for one word onto a
// single canonical issue, deterministically.
package dedup
