// Package harvest closes the loop after contributors respond: it scans
// resolved tracker issues for uploaded recordings, stores the first usable
// file per word, and writes the public link back into the dataset.
package harvest
