// Package dataset loads and persists the dictionary file. The collection is
// read in full at run start, mutated in place by the harvester, and written
// back atomically only when an entry actually changed.
package dataset
