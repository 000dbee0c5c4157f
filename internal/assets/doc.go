// Package assets names and stores harvested audio files. Slugs derived from
// dictionary words address files inside the audio directory; the matching
// raw-content URL is what gets written back into the dataset.
package assets
